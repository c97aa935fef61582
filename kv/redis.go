package kv

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// filterScript evaluates a composite filter as one uninterruptible step
// inside the store. It receives the JSON-serialized FilterRequest as its
// single argument and returns the paginated id slice.
const filterScript = `
local req = cjson.decode(ARGV[1])
local running = {}
local order = {}

-- An empty running set is replaced outright, so the first contributing
-- condition acts as the seed. The seed's member order survives to the
-- output, carrying any orderBy ordering through the set combinations.
local function combine(members)
  if #order == 0 or req.type == 'OR' then
    for _, m in ipairs(members) do
      if not running[m] then
        running[m] = true
        order[#order + 1] = m
      end
    end
    return
  end
  local incoming = {}
  for _, m in ipairs(members) do
    incoming[m] = true
  end
  local kept = {}
  for _, m in ipairs(order) do
    if incoming[m] then
      kept[#kept + 1] = m
    else
      running[m] = nil
    end
  end
  order = kept
end

if req.orderBy then
  local key = req.prefix .. 'sort:' .. req.orderBy.name
  local members
  if req.orderBy.strategy == 'DESC' then
    members = redis.call('ZREVRANGEBYSCORE', key, req.orderBy.max, req.orderBy.min)
  else
    members = redis.call('ZRANGEBYSCORE', key, req.orderBy.min, req.orderBy.max)
  end
  combine(members)
end

for _, cond in ipairs(req.scores) do
  local key = req.prefix .. 'sort:' .. cond.key
  combine(redis.call('ZRANGEBYSCORE', key, cond.min, cond.max))
end

for _, cond in ipairs(req.equals) do
  local key = req.prefix .. 'index:' .. cond.key .. ':' .. cond.value
  combine(redis.call('SMEMBERS', key))
end

local out = {}
for i = req.offset + 1, #order do
  if req.limit >= 0 and #out >= req.limit then
    break
  end
  out[#out + 1] = order[i]
end
return out
`

// RedisClient implements Client against a Redis server.
type RedisClient struct {
	rdb    *redis.Client
	filter *redis.Script
}

// NewRedisClient creates a client for the given server options.
func NewRedisClient(opts *redis.Options) *RedisClient {
	return &RedisClient{
		rdb:    redis.NewClient(opts),
		filter: redis.NewScript(filterScript),
	}
}

// HSet writes the given fields into the hash at key in one command.
func (r *RedisClient) HSet(ctx context.Context, key string, fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return r.rdb.HSet(ctx, key, fields).Err()
}

// HMGet reads the named fields from the hash at key, omitting absent ones.
func (r *RedisClient) HMGet(ctx context.Context, key string, fields ...string) (map[string]string, error) {
	vals, err := r.rdb.HMGet(ctx, key, fields...).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(fields))
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[fields[i]] = s
		}
	}
	return out, nil
}

// HDel removes fields from the hash at key.
func (r *RedisClient) HDel(ctx context.Context, key string, fields ...string) error {
	return r.rdb.HDel(ctx, key, fields...).Err()
}

// SAdd adds members to the set at key.
func (r *RedisClient) SAdd(ctx context.Context, key string, members ...string) error {
	return r.rdb.SAdd(ctx, key, toAny(members)...).Err()
}

// SRem removes members from the set at key.
func (r *RedisClient) SRem(ctx context.Context, key string, members ...string) error {
	return r.rdb.SRem(ctx, key, toAny(members)...).Err()
}

// SInter returns the intersection of the sets at keys.
func (r *RedisClient) SInter(ctx context.Context, keys ...string) ([]string, error) {
	return r.rdb.SInter(ctx, keys...).Result()
}

// SUnion returns the union of the sets at keys.
func (r *RedisClient) SUnion(ctx context.Context, keys ...string) ([]string, error) {
	return r.rdb.SUnion(ctx, keys...).Result()
}

// SScan iterates the set at key with server-defined batching.
func (r *RedisClient) SScan(ctx context.Context, key string, cursor uint64, match string, count int64) ([]string, uint64, error) {
	return r.rdb.SScan(ctx, key, cursor, match, count).Result()
}

// ZAdd writes member with the given score into the sorted set at key.
func (r *RedisClient) ZAdd(ctx context.Context, key, member string, score float64) error {
	return r.rdb.ZAdd(ctx, key, redis.Z{Score: score, Member: member}).Err()
}

// ZRem removes members from the sorted set at key.
func (r *RedisClient) ZRem(ctx context.Context, key string, members ...string) error {
	return r.rdb.ZRem(ctx, key, toAny(members)...).Err()
}

// ZRange returns members by ascending rank, start and stop inclusive.
func (r *RedisClient) ZRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return r.rdb.ZRange(ctx, key, start, stop).Result()
}

// ZRevRange returns members by descending rank, start and stop inclusive.
func (r *RedisClient) ZRevRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return r.rdb.ZRevRange(ctx, key, start, stop).Result()
}

// RPush appends values to the list at key.
func (r *RedisClient) RPush(ctx context.Context, key string, values ...string) error {
	return r.rdb.RPush(ctx, key, toAny(values)...).Err()
}

// LRange returns list elements, start and stop inclusive.
func (r *RedisClient) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return r.rdb.LRange(ctx, key, start, stop).Result()
}

// LRem removes up to count occurrences of value from the list at key.
func (r *RedisClient) LRem(ctx context.Context, key string, count int64, value string) error {
	return r.rdb.LRem(ctx, key, count, value).Err()
}

// LLen returns the length of the list at key.
func (r *RedisClient) LLen(ctx context.Context, key string) (int64, error) {
	return r.rdb.LLen(ctx, key).Result()
}

// Get reads the string at key; the second return is false when absent.
func (r *RedisClient) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set writes the string at key.
func (r *RedisClient) Set(ctx context.Context, key, value string) error {
	return r.rdb.Set(ctx, key, value, 0).Err()
}

// Del removes keys of any structure type.
func (r *RedisClient) Del(ctx context.Context, keys ...string) error {
	return r.rdb.Del(ctx, keys...).Err()
}

// FilterIDs runs the composite filter script with run-to-completion
// isolation (EVALSHA with EVAL fallback on a cold script cache).
func (r *RedisClient) FilterIDs(ctx context.Context, req FilterRequest) ([]string, error) {
	payload, err := json.Marshal(req.normalized())
	if err != nil {
		return nil, fmt.Errorf("marshal filter request: %w", err)
	}
	ids, err := r.filter.Run(ctx, r.rdb, []string{}, string(payload)).StringSlice()
	if err != nil {
		return nil, fmt.Errorf("run filter script: %w", err)
	}
	return ids, nil
}

// Close closes the underlying connection pool.
func (r *RedisClient) Close() error {
	return r.rdb.Close()
}

// toAny widens a string slice for the variadic go-redis command builders.
func toAny(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
