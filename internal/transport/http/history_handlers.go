package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/rentline-server/internal/core"
	"github.com/vovakirdan/rentline-server/internal/proto"
	"github.com/vovakirdan/rentline-server/internal/service/messages"
	"github.com/vovakirdan/rentline-server/internal/service/notifications"
)

// HistoryHandlers serves persisted messages and notifications over REST.
type HistoryHandlers struct {
	messages      *messages.Service
	notifications *notifications.Service
	log           *zerolog.Logger
}

// NewHistoryHandlers creates a new history handlers instance.
func NewHistoryHandlers(msgs *messages.Service, notes *notifications.Service, logger *zerolog.Logger) *HistoryHandlers {
	return &HistoryHandlers{
		messages:      msgs,
		notifications: notes,
		log:           logger,
	}
}

func (h *HistoryHandlers) fail(c *gin.Context, err error, msg string) {
	ce := classifyError(err)
	if ce.Code == core.ErrCodeInternal {
		h.log.Error().Err(err).Msg(msg)
	}
	c.JSON(httpStatus(ce), ErrorResponse{Error: ce.Message})
}

// Conversation returns messages exchanged with another user, newest first.
// GET /api/messages/:userId?before=&limit=
func (h *HistoryHandlers) Conversation(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	otherID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil || otherID <= 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid user id"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if limit, err = strconv.Atoi(raw); err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
	}

	var beforeID *int64
	if raw := c.Query("before"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid before"})
			return
		}
		beforeID = &v
	}

	list, err := h.messages.Conversation(c.Request.Context(), identity.UserID, otherID, limit, beforeID)
	if err != nil {
		h.fail(c, err, "failed to load conversation")
		return
	}

	response := make([]proto.Message, 0, len(list))
	for _, m := range list {
		response = append(response, proto.FromMessage(m))
	}
	c.JSON(http.StatusOK, response)
}

// NotificationHistory returns one page of the caller's notifications.
// GET /api/notifications?page=&pageSize=
func (h *HistoryHandlers) NotificationHistory(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid page"})
		return
	}
	pageSize, err := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(notifications.DefaultPageSize)))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid pageSize"})
		return
	}

	result, err := h.notifications.GetNotificationHistory(c.Request.Context(), identity.UserID, page, pageSize)
	if err != nil {
		h.fail(c, err, "failed to load notification history")
		return
	}
	c.JSON(http.StatusOK, proto.FromNotificationPage(result))
}

// UnreadNotifications returns the caller's unread notifications.
// GET /api/notifications/unread
func (h *HistoryHandlers) UnreadNotifications(c *gin.Context) {
	identity, ok := currentIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
		return
	}

	list, err := h.notifications.GetUnreadNotifications(c.Request.Context(), identity.UserID)
	if err != nil {
		h.fail(c, err, "failed to load unread notifications")
		return
	}
	c.JSON(http.StatusOK, proto.FromNotifications(list))
}
