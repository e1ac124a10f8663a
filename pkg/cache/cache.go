// Package cache provides byte-level caching backends for registry responses.
//
// Three backends implement [Cache]:
//
//   - [FileCache]: one JSON file per entry under a directory (CLI default)
//   - [RedisCache]: shared cache for multiple crawler instances
//   - [NullCache]: disables caching
//
// Keys are produced by a [Keyer] so that every backend stores the same
// logical entry under the same name.
package cache

import (
	"context"
	"time"
)

// TTLHTTP is the default lifetime of a cached registry response.
const TTLHTTP = 24 * time.Hour

// Cache stores opaque byte payloads with an optional expiry.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get returns the payload for key. A miss is reported as (nil, false, nil).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key. A ttl of 0 means the entry never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases backend resources.
	Close() error
}

// Keyer builds cache keys.
type Keyer interface {
	// HTTPKey returns the key for a registry response in namespace.
	HTTPKey(namespace, key string) string
}

// DefaultKeyer produces unscoped keys of the form "http:<namespace>:<key>".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// HTTPKey implements Keyer.
func (DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}
