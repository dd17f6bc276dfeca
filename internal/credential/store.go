// Package credential caches the opaque DevRoom bearer token.
package credential

import (
	"context"
	"errors"
)

var ErrEmptyToken = errors.New("empty_token")

// Store holds at most one bearer token with a fixed expiry. Implementations
// read-check-then-write without mutual exclusion across processes; concurrent
// mints may overwrite each other, which is benign (both tokens stay valid).
type Store interface {
	// Get returns the cached token. The second result is false when no
	// unexpired token is cached.
	Get(ctx context.Context) (string, bool, error)
	// Put caches a token for the store's TTL, replacing any previous one.
	Put(ctx context.Context, token string) error
	// Delete removes the cached token.
	Delete(ctx context.Context) error
}
