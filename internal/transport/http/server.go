package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/rentline-server/internal/auth"
	"github.com/vovakirdan/rentline-server/internal/config"
	"github.com/vovakirdan/rentline-server/internal/core"
	"github.com/vovakirdan/rentline-server/internal/metrics"
	"github.com/vovakirdan/rentline-server/internal/service/messages"
	"github.com/vovakirdan/rentline-server/internal/service/notifications"
	"github.com/vovakirdan/rentline-server/internal/store"
)

// Deps are the collaborators the HTTP layer serves.
type Deps struct {
	Auth          *auth.Service
	Store         store.Store
	Messages      *messages.Service
	Notifications *notifications.Service
	Chat          core.Channel
	NotifyHub     core.Channel

	// Metrics and Gatherer are optional.
	Metrics  *metrics.Collector
	Gatherer prometheus.Gatherer
}

// NewServer builds an HTTP server with REST and realtime routes.
func NewServer(deps Deps, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/health", healthHandler)
	if cfg.MetricsEnabled && deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(metrics.Handler(deps.Gatherer)))
	}

	var recorder InvocationRecorder
	if deps.Metrics != nil {
		recorder = deps.Metrics
	}
	wsOpts := WSOptions{
		MaxMessageBytes: cfg.MaxMessageBytes,
		SendBuffer:      cfg.SendBufferSize,
		InvocationRate:  cfg.InvocationRate,
		InvocationBurst: cfg.InvocationBurst,
		AllowedOrigins:  cfg.AllowedOrigins,
	}

	apiHandlers := NewAPIHandlers(deps.Auth, logger)
	userHandlers := NewUserHandlers(deps.Store, logger)
	propertyHandlers := NewPropertyHandlers(deps.Store, logger)
	historyHandlers := NewHistoryHandlers(deps.Messages, deps.Notifications, logger)

	api := router.Group("/api")
	{
		api.POST("/auth/register", apiHandlers.Register)
		api.POST("/auth/login", apiHandlers.Login)
		api.GET("/properties", propertyHandlers.ListProperties)
		api.GET("/properties/:id", propertyHandlers.GetProperty)

		protected := api.Group("")
		protected.Use(AuthMiddleware(deps.Auth, logger))
		{
			protected.GET("/users/me", userHandlers.Me)
			protected.POST("/properties", propertyHandlers.CreateProperty)
			protected.GET("/messages/:userId", historyHandlers.Conversation)
			protected.GET("/notifications", historyHandlers.NotificationHistory)
			protected.GET("/notifications/unread", historyHandlers.UnreadNotifications)
		}
	}

	// The hubs hijack their connection, which gin's writer refuses once the
	// upgrade response is written, so they are served next to the router.
	mux := stdhttp.NewServeMux()
	mux.Handle("/hubs/chat", NewWSHandler(deps.Chat, deps.Auth, wsOpts, recorder, logger))
	mux.Handle("/hubs/notifications", NewWSHandler(deps.NotifyHub, deps.Auth, wsOpts, recorder, logger))
	mux.Handle("/", router)

	var statuses StatusRecorder
	if deps.Metrics != nil {
		statuses = deps.Metrics
	}

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           withRequestLogging(mux, logger, statuses),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func healthHandler(c *gin.Context) {
	c.String(stdhttp.StatusOK, "ok")
}
