package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	stdhttp "net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/rentline-server/internal/auth"
	"github.com/vovakirdan/rentline-server/internal/config"
	"github.com/vovakirdan/rentline-server/internal/core"
	"github.com/vovakirdan/rentline-server/internal/metrics"
	"github.com/vovakirdan/rentline-server/internal/service/messages"
	"github.com/vovakirdan/rentline-server/internal/service/notifications"
	"github.com/vovakirdan/rentline-server/internal/store"
	"github.com/vovakirdan/rentline-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/rentline-server/internal/transport/http"
)

// App wires together core and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	chat            core.Channel
	notifications   core.Channel
	store           store.Store
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	var (
		st  *sqlite.SQLiteStore
		err error
	)
	if cfg.AutoMigrate {
		st, err = sqlite.NewWithSetup(cfg.DatabasePath, sqlite.Migrate)
	} else {
		st, err = sqlite.New(cfg.DatabasePath)
	}
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	logger.Info().Str("db_path", cfg.DatabasePath).Bool("auto_migrate", cfg.AutoMigrate).Msg("database initialized")

	jwtConfig := &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      cfg.JWTTTL,
	}
	authService := auth.NewService(st, jwtConfig)
	messageService := messages.New(st)
	notificationService := notifications.New(st)

	var (
		collector *metrics.Collector
		gatherer  prometheus.Gatherer
		observer  core.Observer
	)
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		collector = metrics.NewCollector(reg)
		gatherer = reg
		observer = collector
	}

	chatLog := logger.With().Str("component", "chat").Logger()
	notifyLog := logger.With().Str("component", "notifications").Logger()

	chat := core.NewChatChannel(
		core.NewRegistry(core.ChannelChat, observer),
		messageService,
		notificationService,
		st,
		core.ChatOptions{ScopeReadReceipts: cfg.ScopeReadReceipts},
		&chatLog,
	)
	notifyHub := core.NewNotificationChannel(
		core.NewRegistry(core.ChannelNotifications, observer),
		notificationService,
		&notifyLog,
	)

	server := transporthttp.NewServer(transporthttp.Deps{
		Auth:          authService,
		Store:         st,
		Messages:      messageService,
		Notifications: notificationService,
		Chat:          chat,
		NotifyHub:     notifyHub,
		Metrics:       collector,
		Gatherer:      gatherer,
	}, cfg, logger)

	return &App{
		server:          server,
		shutdownTimeout: cfg.ShutdownTimeout,
		chat:            chat,
		notifications:   notifyHub,
		store:           st,
		log:             logger,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	serverErr := make(chan error, 1)

	// Shutdown does not touch hijacked connections; deriving requests from
	// ctx ends every realtime session when ctx is cancelled.
	a.server.BaseContext = func(net.Listener) context.Context { return ctx }

	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	select {
	case err := <-serverErr:
		a.cleanup()
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().
			Int("chat_connections", a.chat.Registry().Connections()).
			Int("notification_connections", a.notifications.Registry().Connections()).
			Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			a.cleanup()
			return err
		}

		a.cleanup()
		return <-serverErr
	}
}

// cleanup closes database and other resources.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
}
