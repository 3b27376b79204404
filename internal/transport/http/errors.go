package http

import (
	"errors"
	"net/http"

	"github.com/vovakirdan/rentline-server/internal/auth"
	"github.com/vovakirdan/rentline-server/internal/core"
	"github.com/vovakirdan/rentline-server/internal/service/messages"
	"github.com/vovakirdan/rentline-server/internal/service/notifications"
	"github.com/vovakirdan/rentline-server/internal/store"
)

var badRequestErrors = []error{
	messages.ErrEmptyContent,
	messages.ErrContentTooLong,
	messages.ErrCannotMessageSelf,
	messages.ErrInvalidMessageID,
	notifications.ErrInvalidUser,
	notifications.ErrEmptyMessage,
	notifications.ErrInvalidType,
	notifications.ErrInvalidPage,
	notifications.ErrInvalidPerPage,
}

var notFoundErrors = []error{
	messages.ErrRecipientNotFound,
	messages.ErrPropertyNotFound,
	store.ErrNotFound,
}

// classifyError maps an error to the code and message shown to clients.
// Anything unrecognised is reported as internal without leaking details.
func classifyError(err error) *core.CoreError {
	if ce, ok := core.AsCoreError(err); ok {
		return ce
	}
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return &core.CoreError{Code: core.ErrCodeBadRequest, Message: target.Error()}
		}
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return &core.CoreError{Code: core.ErrCodeNotFound, Message: target.Error()}
		}
	}
	return &core.CoreError{Code: core.ErrCodeInternal, Message: "internal server error"}
}

// httpStatus returns the HTTP status for a classified error.
func httpStatus(ce *core.CoreError) int {
	switch ce.Code {
	case core.ErrCodeUnauthenticated, core.ErrCodeMalformedIdentity:
		return http.StatusUnauthorized
	case core.ErrCodeBadRequest:
		return http.StatusBadRequest
	case core.ErrCodeNotFound:
		return http.StatusNotFound
	case core.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// authStatus maps auth service errors for the register/login endpoints.
func authStatus(err error) (int, string) {
	switch {
	case errors.Is(err, auth.ErrUserExists):
		return http.StatusConflict, "user already exists"
	case errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized, "invalid credentials"
	case errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrInvalidName),
		errors.Is(err, auth.ErrInvalidPassword),
		errors.Is(err, auth.ErrInvalidRole):
		return http.StatusBadRequest, err.Error()
	}
	return http.StatusInternalServerError, "internal server error"
}
