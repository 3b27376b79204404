package http

import (
	"bufio"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/rentline-server/internal/core"
)

const (
	// ContextKeyUserID is the context key for storing user ID.
	ContextKeyUserID = "user_id"
	// ContextKeyFirstName is the context key for storing the first name.
	ContextKeyFirstName = "first_name"
	// ContextKeyRole is the context key for storing the user role.
	ContextKeyRole = "role"
)

// bearerToken extracts a token from the Authorization header or, for
// browser WebSocket clients that cannot set headers, the access_token
// query parameter.
func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("access_token")
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: msg})
}

// AuthMiddleware creates a middleware that validates JWT tokens.
func AuthMiddleware(authn Authenticator, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := authn.Authenticate(bearerToken(c.Request))
		if err != nil {
			logger.Debug().Err(err).Msg("invalid token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: classifyError(err).Code})
			return
		}

		c.Set(ContextKeyUserID, identity.UserID)
		c.Set(ContextKeyFirstName, identity.FirstName)
		c.Set(ContextKeyRole, identity.Role)

		c.Next()
	}
}

// currentIdentity reads the identity stored by AuthMiddleware.
func currentIdentity(c *gin.Context) (core.Identity, bool) {
	uid, ok := c.Get(ContextKeyUserID)
	if !ok {
		return core.Identity{}, false
	}
	id, ok := uid.(int64)
	if !ok {
		return core.Identity{}, false
	}
	return core.Identity{
		UserID:    id,
		FirstName: c.GetString(ContextKeyFirstName),
		Role:      c.GetString(ContextKeyRole),
	}, true
}

// statusWriter remembers the status code written by a handler. It keeps
// hijacking available for the WebSocket upgrade.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// Status returns the written status, 200 if the handler wrote nothing.
func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// StatusRecorder counts HTTP responses by status code.
type StatusRecorder interface {
	RecordHTTPStatus(statusCode int)
}

// withRequestLogging logs every request and, when rec is not nil, counts
// its status. Upgraded realtime connections are logged with status 101 once
// the session ends.
func withRequestLogging(next http.Handler, logger *zerolog.Logger, rec StatusRecorder) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)

		if rec != nil {
			rec.RecordHTTPStatus(sw.Status())
		}
		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.Status()).
			Msg("http request")
	})
}
