// Package cache provides content-addressed caching for computed diagrams.
//
// Computing positions is cheap for small models but the rendered SVG of a
// large content model is not, and both are pure functions of the model and
// the options used. The pipeline keys every result by a hash of its inputs
// and stores it in a [Cache].
//
// # Backends
//
//   - [FileCache]: one JSON file per entry, for the CLI
//   - [RedisCache]: shared cache for several API instances
//   - [MongoCache]: document store with a TTL index
//   - [NullCache]: caching disabled
//
// # Keys
//
// A [Keyer] builds keys from a model hash and the options that influence the
// result. [ScopedKeyer] prefixes every key, for separate namespaces on one
// shared backend.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values with an optional expiry.
//
// Get returns hit=false and no error on a miss. A ttl of zero means the entry
// does not expire.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, hit bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Time-to-live values for the cached stages.
const (
	// TTLPositions applies to computed position maps.
	TTLPositions = 7 * 24 * time.Hour

	// TTLRender applies to rendered artifacts.
	TTLRender = 24 * time.Hour
)

// Key types reported to observability hooks.
const (
	KeyTypePositions = "positions"
	KeyTypeRender    = "render"
)
