// Package cache implements the hierarchical cache-aside layer that keeps a
// Campaign -> Streams -> Filters projection in a TTL-capable key-value store
// consistent with the relational source of truth.
package cache

import (
	"context"
	"fmt"
	"time"
)

// Store is the key-value collaborator the cache layer talks to. The record
// store remains the source of truth; a Store holds a derived, independently
// expirable projection. Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value at key. found is false when the key does not
	// exist or has expired.
	Get(ctx context.Context, key string) (value string, found bool, err error)

	// Set stores value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Del removes the given keys. Missing keys are not an error.
	Del(ctx context.Context, keys ...string) error

	// SAdd adds members to the unordered set at key and refreshes the
	// set's ttl. A zero ttl leaves the expiry untouched.
	SAdd(ctx context.Context, key string, ttl time.Duration, members ...string) error

	// SRem removes a member from the set at key. Absence is not an error.
	SRem(ctx context.Context, key, member string) error

	// SMembers returns the members of the set at key. present is false
	// when the set key does not exist at all, which is distinct from an
	// existing empty set.
	SMembers(ctx context.Context, key string) (members []string, present bool, err error)

	// Ping verifies connectivity.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close() error
}

// Key builders. The flat-key naming mirrors the entity tables; index sets
// hang off the parent key.

func campaignKey(id uint) string {
	return fmt.Sprintf("campaign:%d", id)
}

func campaignCodeKey(code string) string {
	return fmt.Sprintf("campaignCode:%s", code)
}

func campaignStreamsKey(id uint) string {
	return fmt.Sprintf("campaign:%d:streams", id)
}

func streamKey(id uint) string {
	return fmt.Sprintf("stream:%d", id)
}

func streamFiltersKey(id uint) string {
	return fmt.Sprintf("stream:%d:filters", id)
}

func filterKey(id uint) string {
	return fmt.Sprintf("filter:%d", id)
}

func trafficSourceKey(id uint) string {
	return fmt.Sprintf("trafficSource:%d", id)
}
