package kvstore

import (
	"context"
	"time"
)

// Store defines the interface for persistent string key-value storage.
// It backs the client session state: implementations must treat a missing
// key as a normal condition (ErrKeyNotFound), never as a failure that
// corrupts other keys.
type Store interface {
	// Get retrieves the value for a key. Returns ErrKeyNotFound when the
	// key is absent.
	Get(ctx context.Context, key string) (string, error)

	// Set stores a value under a key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes a key. Removing an absent key is a no-op.
	Remove(ctx context.Context, key string) error
}

// Flash defines short-lived, read-once storage. It carries values across a
// full-page navigation (for example the post-auth destination during a
// redirect-based sign-in) and clears them unconditionally on first read.
type Flash interface {
	// Put stores a value with a TTL after which it silently disappears.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Take retrieves and removes the value in one step. The value is gone
	// after the first Take regardless of what the caller does with it.
	// Returns ErrKeyNotFound when the key is absent or expired.
	Take(ctx context.Context, key string) (string, error)
}
