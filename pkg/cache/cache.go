// Package cache stores decoded catalog shards on disk.
//
// Each shard is one immutable entry named after the shard file, holding the
// packed little-endian records produced by the catalog package. Entries are
// written once with an atomic replace-on-write and never updated, so the
// presence of an entry is the whole idempotence contract: a shard whose
// entry exists is never downloaded again.
//
// Two implementations are provided:
//   - [FileCache]: one "<shard>.bin" file per entry in a directory
//   - [MemoryCache]: an in-process map, for tests and dry runs
package cache

import "context"

// Cache is the storage contract used by the ingester and the renderer.
//
// Implementations must be safe for concurrent use by multiple goroutines
// as long as they operate on different keys.
type Cache interface {
	// Has reports whether key has an entry.
	Has(ctx context.Context, key string) (bool, error)

	// Get returns the entry for key. The bool is false on a miss.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key atomically. A concurrent reader sees either
	// no entry or the complete entry.
	Set(ctx context.Context, key string, data []byte) error

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}
