package gateway

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrAuthFailure matches responses that trigger the one-shot token
	// refresh: HTTP 401/403 or a server-reported invalid token.
	ErrAuthFailure = errors.New("auth_failure")
	// ErrNotFound matches HTTP 404 responses.
	ErrNotFound = errors.New("not_found")
	// ErrServerError matches any other non-2xx response.
	ErrServerError = errors.New("server_error")
	// ErrTokenMint reports a failed credential exchange.
	ErrTokenMint = errors.New("token_mint_failed")
	// ErrGeolocationSave is the generic geolocation save failure; no upstream
	// detail is propagated.
	ErrGeolocationSave = errors.New("geolocation_save_failed")
)

// StatusError carries the upstream status and body text of a non-2xx
// response.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Body)
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrAuthFailure:
		if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
			return true
		}
		return strings.Contains(e.Body, "Invalid token")
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrServerError:
		return !e.Is(ErrNotFound) && !e.Is(ErrAuthFailure)
	default:
		return false
	}
}
