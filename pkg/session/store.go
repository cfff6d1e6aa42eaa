// Package session holds the single bearer credential of a client session.
//
// A Store owns exactly one named slot. Setting a value replaces the previous
// one, reads never fail (an empty slot reads as absent), and clearing is
// idempotent. Every Store instance is its own session: nothing is shared
// between instances and nothing outlives the process.
package session

import "context"

// DefaultKey is the slot name used when none is configured.
const DefaultKey = "app_token"

// Store is the credential slot consumed by the auth client.
type Store interface {
	// Set replaces the current credential with value.
	Set(ctx context.Context, value string) error

	// Get returns the current credential, or ("", false) when the slot is empty.
	Get(ctx context.Context) (string, bool)

	// Clear empties the slot. Clearing an empty slot is a no-op.
	Clear(ctx context.Context)

	// Key returns the slot name.
	Key() string
}

func normalizeKey(key string) string {
	if key == "" {
		return DefaultKey
	}
	return key
}
