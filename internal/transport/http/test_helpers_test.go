package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/rentline-server/internal/auth"
	"github.com/vovakirdan/rentline-server/internal/config"
	"github.com/vovakirdan/rentline-server/internal/core"
	"github.com/vovakirdan/rentline-server/internal/metrics"
	"github.com/vovakirdan/rentline-server/internal/proto"
	"github.com/vovakirdan/rentline-server/internal/service/messages"
	"github.com/vovakirdan/rentline-server/internal/service/notifications"
	"github.com/vovakirdan/rentline-server/internal/store"
	"github.com/vovakirdan/rentline-server/internal/store/sqlite"
)

const testJWTSecret = "test-secret-change-me"

type testEnv struct {
	ts        *httptest.Server
	handler   http.Handler
	store     *sqlite.SQLiteStore
	auth      *auth.Service
	chat      core.Channel
	notifyHub core.Channel
	registry  *prometheus.Registry
}

// newTestEnv wires the full HTTP stack on an in-memory database.
func newTestEnv(t *testing.T, mutate func(*config.Config)) *testEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.JWTSecret = testJWTSecret
	cfg.JWTIssuer = "test"
	cfg.JWTAudience = "test"
	cfg.InvocationRate = 0
	if mutate != nil {
		mutate(&cfg)
	}

	st, err := sqlite.NewWithSetup(":memory:", sqlite.Migrate)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	logger := zerolog.Nop()
	authService := auth.NewService(st, &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	})
	messageService := messages.New(st)
	notificationService := notifications.New(st)

	reg := prometheus.NewRegistry()
	collector := metrics.NewCollector(reg)

	chat := core.NewChatChannel(
		core.NewRegistry(core.ChannelChat, collector),
		messageService,
		notificationService,
		st,
		core.ChatOptions{ScopeReadReceipts: cfg.ScopeReadReceipts},
		&logger,
	)
	notifyHub := core.NewNotificationChannel(
		core.NewRegistry(core.ChannelNotifications, collector),
		notificationService,
		&logger,
	)

	server := NewServer(Deps{
		Auth:          authService,
		Store:         st,
		Messages:      messageService,
		Notifications: notificationService,
		Chat:          chat,
		NotifyHub:     notifyHub,
		Metrics:       collector,
		Gatherer:      reg,
	}, &cfg, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return &testEnv{
		ts:        ts,
		handler:   server.Handler,
		store:     st,
		auth:      authService,
		chat:      chat,
		notifyHub: notifyHub,
		registry:  reg,
	}
}

// register creates an account and returns its token and user.
func (e *testEnv) register(t *testing.T, email, firstName string, role store.Role) (string, *store.User) {
	t.Helper()

	token, user, err := e.auth.Register(context.Background(), auth.RegisterRequest{
		Email:     email,
		Password:  "password123",
		FirstName: firstName,
		Role:      role,
	})
	require.NoError(t, err)
	return token, user
}

func (e *testEnv) wsURL(path string) string {
	return strings.Replace(e.ts.URL, "http", "ws", 1) + path
}

// dial opens a realtime connection and waits until the server has bound it.
func (e *testEnv) dial(t *testing.T, ctx context.Context, ch core.Channel, path, token string) *websocket.Conn {
	t.Helper()

	before := ch.Registry().Connections()
	conn, _, err := websocket.Dial(ctx, e.wsURL(path), &websocket.DialOptions{
		HTTPHeader: http.Header{"Authorization": []string{"Bearer " + token}},
	})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })

	require.Eventually(t, func() bool {
		return ch.Registry().Connections() > before
	}, 2*time.Second, 5*time.Millisecond)
	return conn
}

func send(t *testing.T, ctx context.Context, conn *websocket.Conn, method string, data any) {
	t.Helper()

	inbound := map[string]any{"type": method}
	if data != nil {
		inbound["data"] = data
	}
	require.NoError(t, wsjson.Write(ctx, conn, inbound))
}

// frame is an outbound envelope with the payload left raw.
type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func read(t *testing.T, ctx context.Context, conn *websocket.Conn) frame {
	t.Helper()

	var f frame
	require.NoError(t, wsjson.Read(ctx, conn, &f))
	return f
}

// barrier sends a ping and requires the pong to be the next frame. Commands
// of a connection run in order, so every event caused by earlier commands
// has been queued by the time the pong arrives.
func barrier(t *testing.T, ctx context.Context, conn *websocket.Conn) {
	t.Helper()

	send(t, ctx, conn, proto.InboundTypePing, nil)
	f := read(t, ctx, conn)
	require.Equal(t, proto.OutboundTypeEvent, f.Type, "unexpected frame %+v", f)
	require.Equal(t, "pong", f.Event, "unexpected frame %+v", f)
}
