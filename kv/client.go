// Package kv defines the primitive store command surface the persistence
// engine is written against, with a Redis-backed implementation for
// production and an in-memory implementation for tests and embedded use.
package kv

import "context"

// Client is the fixed command surface of the underlying key-value store.
// Each call is atomic on its own; no transaction spans multiple calls. The
// one composite operation is FilterIDs, which the store executes with
// run-to-completion isolation.
type Client interface {
	// HSet writes the given fields into the hash at key in one batch.
	HSet(ctx context.Context, key string, fields map[string]string) error

	// HMGet reads the named fields from the hash at key in one batch.
	// Absent fields are omitted from the result.
	HMGet(ctx context.Context, key string, fields ...string) (map[string]string, error)

	// HDel removes fields from the hash at key.
	HDel(ctx context.Context, key string, fields ...string) error

	// SAdd adds members to the set at key.
	SAdd(ctx context.Context, key string, members ...string) error

	// SRem removes members from the set at key.
	SRem(ctx context.Context, key string, members ...string) error

	// SInter returns the intersection of the sets at keys.
	SInter(ctx context.Context, keys ...string) ([]string, error)

	// SUnion returns the union of the sets at keys.
	SUnion(ctx context.Context, keys ...string) ([]string, error)

	// SScan iterates the set at key, returning a batch of members matching
	// the glob pattern and a continuation cursor. A returned cursor of zero
	// signals completion.
	SScan(ctx context.Context, key string, cursor uint64, match string, count int64) ([]string, uint64, error)

	// ZAdd writes member with the given score into the sorted set at key.
	ZAdd(ctx context.Context, key, member string, score float64) error

	// ZRem removes members from the sorted set at key.
	ZRem(ctx context.Context, key string, members ...string) error

	// ZRange returns members of the sorted set at key by ascending rank,
	// start and stop inclusive; negative offsets count from the end.
	ZRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// ZRevRange is ZRange by descending rank.
	ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// RPush appends values to the list at key.
	RPush(ctx context.Context, key string, values ...string) error

	// LRange returns list elements, start and stop inclusive; negative
	// offsets count from the end.
	LRange(ctx context.Context, key string, start, stop int64) ([]string, error)

	// LRem removes up to count occurrences of value from the list at key,
	// scanning head to tail.
	LRem(ctx context.Context, key string, count int64, value string) error

	// LLen returns the length of the list at key.
	LLen(ctx context.Context, key string) (int64, error)

	// Get reads the string at key. The second return is false when the key
	// is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set writes the string at key.
	Set(ctx context.Context, key, value string) error

	// Del removes keys of any structure type.
	Del(ctx context.Context, keys ...string) error

	// FilterIDs evaluates a composite filter atomically inside the store
	// and returns the paginated id slice.
	FilterIDs(ctx context.Context, req FilterRequest) ([]string, error)

	// Close releases the client's resources.
	Close() error
}
