package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/vovakirdan/rentline-server/internal/core"
	"github.com/vovakirdan/rentline-server/internal/store"
)

var (
	// ErrInvalidCredentials is returned when email/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when trying to register with an existing email.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidEmail is returned when the email address cannot be parsed.
	ErrInvalidEmail = errors.New("invalid email")
	// ErrInvalidName is returned when the first name is missing or too long.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrInvalidRole is returned for unknown or self-assigned admin roles.
	ErrInvalidRole = errors.New("invalid role")
)

const (
	minPasswordLength = 8
	maxNameLength     = 64
)

// RegisterRequest carries the fields of a new account.
type RegisterRequest struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      store.Role
}

// Service provides authentication operations.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig
}

// NewService creates a new authentication service.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig) *Service {
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
	}
}

// Register creates a new user with hashed password and returns a JWT token.
// Role defaults to tenant; admin accounts cannot be self-registered.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (string, *store.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return "", nil, ErrInvalidEmail
	}
	firstName := strings.TrimSpace(req.FirstName)
	if firstName == "" || len(firstName) > maxNameLength {
		return "", nil, ErrInvalidName
	}
	if len(req.Password) < minPasswordLength {
		return "", nil, ErrInvalidPassword
	}
	role := req.Role
	if role == "" {
		role = store.RoleTenant
	}
	if !role.Valid() || role == store.RoleAdmin {
		return "", nil, ErrInvalidRole
	}

	if existing, err := s.store.GetUserByEmail(ctx, email); err == nil && existing != nil {
		return "", nil, ErrUserExists
	} else if err != nil && !errors.Is(err, store.ErrNotFound) {
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}

	hashedPassword, err := HashPassword(req.Password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, &store.User{
		Email:        email,
		PasswordHash: hashedPassword,
		FirstName:    firstName,
		LastName:     strings.TrimSpace(req.LastName),
		Role:         role,
	})
	if err != nil {
		return "", nil, fmt.Errorf("create user: %w", err)
	}

	token, err := GenerateToken(s.jwtConfig, user)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	return token, user, nil
}

// Login validates credentials and returns a JWT token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *store.User, error) {
	user, err := s.store.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}

	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := GenerateToken(s.jwtConfig, user)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	return token, user, nil
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	return ValidateToken(s.jwtConfig, tokenString)
}

// Authenticate turns a bearer token into a caller identity.
// A missing or invalid token yields core.ErrUnauthenticated; a valid token
// without a usable user id yields core.ErrMalformedIdentity.
func (s *Service) Authenticate(tokenString string) (core.Identity, error) {
	if tokenString == "" {
		return core.Identity{}, core.ErrUnauthenticated
	}
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return core.Identity{}, fmt.Errorf("%w: %v", core.ErrUnauthenticated, err)
	}
	id := core.Identity{
		UserID:    claims.UserID,
		FirstName: claims.FirstName,
		Role:      string(claims.Role),
	}
	if err := id.Validate(); err != nil {
		return core.Identity{}, err
	}
	return id, nil
}
