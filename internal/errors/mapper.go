// internal/errors/mapper.go
package errors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"
)

// Domain sentinels. Services return these (possibly wrapped) and the HTTP
// layer maps them with Write.
var (
	// ErrNotFound covers missing groups, unknown join codes and expired guest
	// sessions alike, so a caller cannot probe which codes exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput marks malformed input caught before any store access.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotMember is returned when a user acts on a group they never joined.
	ErrNotMember = errors.New("not a member of this group")

	// ErrNoSwipes is returned by undo when the actor has nothing to undo.
	ErrNoSwipes = errors.New("no swipes to undo")

	// ErrStoreUnavailable signals the persistent store cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// InvalidInput wraps ErrInvalidInput with a caller-facing reason.
func InvalidInput(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, msg)
}

// Map converts repo/domain errors into an HTTP status code.
// Keeps handlers clean by centralizing error mapping.
func Map(err error) int {
	switch {
	case err == nil:
		return http.StatusOK

	case errors.Is(err, ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound

	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest

	case errors.Is(err, ErrNotMember):
		return http.StatusForbidden

	case errors.Is(err, ErrNoSwipes):
		return http.StatusConflict

	case errors.Is(err, ErrStoreUnavailable):
		return http.StatusServiceUnavailable

	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout

	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

// Write maps err and writes it as a JSON error response.
func Write(w http.ResponseWriter, err error) {
	status := Map(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	msg := err.Error()
	if status == http.StatusInternalServerError {
		// do not leak internals to clients
		msg = "internal error"
	}
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
