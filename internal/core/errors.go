package core

import (
	"errors"

	"github.com/vovakirdan/rentline-server/internal/store"
)

// Error codes for domain errors.
const (
	ErrCodeUnauthenticated   = "unauthenticated"
	ErrCodeMalformedIdentity = "malformed_identity"
	ErrCodeBadRequest        = "bad_request"
	ErrCodeNotFound          = "not_found"
	ErrCodeRateLimited       = "rate_limited"
	ErrCodeUnknownMethod     = "unknown_method"
	ErrCodeInternal          = "internal"
)

var (
	// ErrUnauthenticated means the connection carries no identity at all.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrMalformedIdentity means an identity is present but has no usable user id.
	ErrMalformedIdentity = errors.New("malformed identity")
	// ErrUnknownCommand is returned for commands a channel does not serve.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrAlreadyBound means the connection already belongs to another group.
	ErrAlreadyBound = errors.New("connection already bound to another group")
)

// CoreError wraps a code and human-readable message.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}

// AsCoreError classifies errors the core knows about. ok is false for
// anything else; callers decide how to expose those.
func AsCoreError(err error) (ce *CoreError, ok bool) {
	switch {
	case err == nil:
		return nil, false
	case errors.As(err, &ce):
		return ce, true
	case errors.Is(err, ErrUnauthenticated):
		return coreError(ErrCodeUnauthenticated, "authentication required"), true
	case errors.Is(err, ErrMalformedIdentity):
		return coreError(ErrCodeMalformedIdentity, "identity has no user id"), true
	case errors.Is(err, ErrUnknownCommand):
		return coreError(ErrCodeUnknownMethod, "method not supported on this channel"), true
	case errors.Is(err, store.ErrNotFound):
		return coreError(ErrCodeNotFound, "not found"), true
	}
	return nil, false
}
