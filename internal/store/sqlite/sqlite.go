package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vovakirdan/rentline-server/internal/store"
)

const dsnParams = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite works best with a single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function.
// Tests pass Migrate to get the production schema on an in-memory database.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// Set connection pool limits before setup so :memory: stays one database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// DB exposes the underlying handle for migrations.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// ==== UserStore implementation ====

const userColumns = `id, email, password_hash, first_name, last_name, role, created_at`

func scanUser(row interface{ Scan(...any) error }) (*store.User, error) {
	var user store.User
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&user.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

// CreateUser inserts a new user.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *store.User) (*store.User, error) {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	createdAt := user.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	result, err := s.db.ExecContext(ctx, query,
		strings.TrimSpace(user.Email), user.PasswordHash, user.FirstName, user.LastName, user.Role, createdAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetUserByID(ctx, id)
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address (case-insensitive).
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*store.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	user, err := scanUser(s.db.QueryRowContext(ctx, query, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("user %q: %w", email, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return user, nil
}

// ==== PropertyStore implementation ====

const propertyColumns = `id, landlord_id, title, description, address, city, monthly_rent, bedrooms, available, created_at`

func scanProperty(row interface{ Scan(...any) error }) (*store.Property, error) {
	var p store.Property
	if err := row.Scan(
		&p.ID,
		&p.LandlordID,
		&p.Title,
		&p.Description,
		&p.Address,
		&p.City,
		&p.MonthlyRent,
		&p.Bedrooms,
		&p.Available,
		&p.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProperty inserts a new listing.
func (s *SQLiteStore) CreateProperty(ctx context.Context, p *store.Property) (*store.Property, error) {
	query := `
		INSERT INTO properties (landlord_id, title, description, address, city, monthly_rent, bedrooms, available, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	result, err := s.db.ExecContext(ctx, query,
		p.LandlordID, p.Title, p.Description, p.Address, p.City, p.MonthlyRent, p.Bedrooms, p.Available, createdAt)
	if err != nil {
		return nil, fmt.Errorf("insert property: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("get last insert id: %w", err)
	}

	return s.GetProperty(ctx, id)
}

// GetProperty retrieves a listing by ID.
func (s *SQLiteStore) GetProperty(ctx context.Context, id int64) (*store.Property, error) {
	query := `SELECT ` + propertyColumns + ` FROM properties WHERE id = ?`
	p, err := scanProperty(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("property %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query property: %w", err)
	}
	return p, nil
}

// ListProperties lists listings matching the filter, newest first.
func (s *SQLiteStore) ListProperties(ctx context.Context, filter store.PropertyFilter) ([]*store.Property, error) {
	var (
		where []string
		args  []any
	)
	if filter.City != "" {
		where = append(where, "city = ? COLLATE NOCASE")
		args = append(args, filter.City)
	}
	if filter.MaxRent > 0 {
		where = append(where, "monthly_rent <= ?")
		args = append(args, filter.MaxRent)
	}
	if filter.MinBedrooms > 0 {
		where = append(where, "bedrooms >= ?")
		args = append(args, filter.MinBedrooms)
	}
	if filter.AvailableOnly {
		where = append(where, "available = 1")
	}

	query := `SELECT ` + propertyColumns + ` FROM properties`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id DESC LIMIT ? OFFSET ?`

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit, max(filter.Offset, 0))

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query properties: %w", err)
	}
	defer rows.Close()

	properties := make([]*store.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, fmt.Errorf("scan property: %w", err)
		}
		properties = append(properties, p)
	}

	return properties, rows.Err()
}

// ==== MessageStore implementation ====

const messageColumns = `id, sender_id, receiver_id, property_id, content, sent_at, is_read`

func scanMessage(row interface{ Scan(...any) error }) (*store.Message, error) {
	var msg store.Message
	var propertyID sql.NullInt64
	if err := row.Scan(
		&msg.ID,
		&msg.SenderID,
		&msg.ReceiverID,
		&propertyID,
		&msg.Content,
		&msg.SentAt,
		&msg.IsRead,
	); err != nil {
		return nil, err
	}
	if propertyID.Valid {
		msg.PropertyID = &propertyID.Int64
	}
	return &msg, nil
}

// SaveMessage persists a message to storage.
func (s *SQLiteStore) SaveMessage(ctx context.Context, msg *store.Message) error {
	query := `
		INSERT INTO messages (sender_id, receiver_id, property_id, content, sent_at, is_read)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		msg.SenderID, msg.ReceiverID, msg.PropertyID, msg.Content, msg.SentAt, msg.IsRead)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	msg.ID = id
	return nil
}

// GetMessage retrieves a message by ID.
func (s *SQLiteStore) GetMessage(ctx context.Context, id int64) (*store.Message, error) {
	query := `SELECT ` + messageColumns + ` FROM messages WHERE id = ?`
	msg, err := scanMessage(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("message %d: %w", id, store.ErrNotFound)
		}
		return nil, fmt.Errorf("query message: %w", err)
	}
	return msg, nil
}

// MarkMessageRead sets the read flag of a message.
func (s *SQLiteStore) MarkMessageRead(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `UPDATE messages SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("update message: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("message %d: %w", id, store.ErrNotFound)
	}
	return nil
}

// ListConversation retrieves messages between two users with pagination.
func (s *SQLiteStore) ListConversation(ctx context.Context, userA, userB int64, limit int, beforeID *int64) ([]*store.Message, error) {
	query := `
		SELECT ` + messageColumns + `
		FROM messages
		WHERE ((sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?))
	`
	args := []any{userA, userB, userB, userA}
	if beforeID != nil {
		query += ` AND id < ?`
		args = append(args, *beforeID)
	}
	query += ` ORDER BY id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	messages := make([]*store.Message, 0, limit)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, msg)
	}

	return messages, rows.Err()
}

// ==== NotificationStore implementation ====

const notificationColumns = `id, user_id, message, type, related_entity_id, is_read, created_at`

func scanNotification(row interface{ Scan(...any) error }) (*store.Notification, error) {
	var n store.Notification
	var related sql.NullInt64
	if err := row.Scan(
		&n.ID,
		&n.UserID,
		&n.Message,
		&n.Type,
		&related,
		&n.IsRead,
		&n.CreatedAt,
	); err != nil {
		return nil, err
	}
	if related.Valid {
		n.RelatedEntityID = &related.Int64
	}
	return &n, nil
}

func (s *SQLiteStore) queryNotifications(ctx context.Context, query string, args ...any) ([]*store.Notification, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	notifications := make([]*store.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// SaveNotification persists a notification to storage.
func (s *SQLiteStore) SaveNotification(ctx context.Context, n *store.Notification) error {
	query := `
		INSERT INTO notifications (user_id, message, type, related_entity_id, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query,
		n.UserID, n.Message, n.Type, n.RelatedEntityID, n.IsRead, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	n.ID = id
	return nil
}

// ListUnread returns unread notifications for a user, newest first.
func (s *SQLiteStore) ListUnread(ctx context.Context, userID int64) ([]*store.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = ? AND is_read = 0
		ORDER BY id DESC
	`
	return s.queryNotifications(ctx, query, userID)
}

// MarkRead flips the read flag of a notification owned by userID.
func (s *SQLiteStore) MarkRead(ctx context.Context, id, userID int64) (*store.Notification, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return nil, fmt.Errorf("update notification: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("notification %d for user %d: %w", id, userID, store.ErrNotFound)
	}

	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE id = ?`
	n, err := scanNotification(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("query notification: %w", err)
	}
	return n, nil
}

// MarkAllRead flips every unread notification of a user.
func (s *SQLiteStore) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`, userID)
	if err != nil {
		return 0, fmt.Errorf("update notifications: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// ListNotifications returns a window of a user's notifications and the total count.
func (s *SQLiteStore) ListNotifications(ctx context.Context, userID int64, offset, limit int) ([]*store.Notification, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = ?`, userID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count notifications: %w", err)
	}

	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`
	items, err := s.queryNotifications(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
