// Package kvstore holds the short-lived verification sessions.
//
// Two families of backend satisfy Store: a shared one with native key
// expiry (Redis, or DynamoDB with a TTL attribute) and MemoryStore, an
// in-process map with lazy expiry. MemoryStore is private to one process,
// so running several API instances against it means a code requested
// through one instance cannot be verified through another. Deployments with
// more than one instance must run with a reachable shared backend.
package kvstore

import (
	"context"
	"time"
)

// Store is a byte-valued key/value store with per-key expiry.
// Get returns an error wrapping domain.ErrNotFound when the key is absent or
// has expired.
type Store interface {
	SetWithExpiry(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by backends that can report reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
