package kv

import (
	"context"
	"sort"
	"sync"
)

// MemoryClient is an in-memory implementation of the Client interface with
// store-equivalent range, scan and filter semantics. It is safe for
// concurrent use; FilterIDs evaluates under the lock, giving it the same
// single-snapshot isolation the store's script engine provides.
type MemoryClient struct {
	mu      sync.RWMutex
	hashes  map[string]map[string]string
	sets    map[string]map[string]struct{}
	zsets   map[string]map[string]float64
	lists   map[string][]string
	strings map[string]string
}

// NewMemoryClient creates an empty in-memory client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		hashes:  make(map[string]map[string]string),
		sets:    make(map[string]map[string]struct{}),
		zsets:   make(map[string]map[string]float64),
		lists:   make(map[string][]string),
		strings: make(map[string]string),
	}
}

// HSet writes the given fields into the hash at key.
func (m *MemoryClient) HSet(_ context.Context, key string, fields map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.hashes[key]
	if !ok {
		h = make(map[string]string, len(fields))
		m.hashes[key] = h
	}
	for f, v := range fields {
		h[f] = v
	}
	return nil
}

// HMGet reads the named fields from the hash at key, omitting absent ones.
func (m *MemoryClient) HMGet(_ context.Context, key string, fields ...string) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make(map[string]string, len(fields))
	h, ok := m.hashes[key]
	if !ok {
		return out, nil
	}
	for _, f := range fields {
		if v, present := h[f]; present {
			out[f] = v
		}
	}
	return out, nil
}

// HDel removes fields from the hash at key.
func (m *MemoryClient) HDel(_ context.Context, key string, fields ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	h, ok := m.hashes[key]
	if !ok {
		return nil
	}
	for _, f := range fields {
		delete(h, f)
	}
	if len(h) == 0 {
		delete(m.hashes, key)
	}
	return nil
}

// SAdd adds members to the set at key.
func (m *MemoryClient) SAdd(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sets[key]
	if !ok {
		s = make(map[string]struct{}, len(members))
		m.sets[key] = s
	}
	for _, member := range members {
		s[member] = struct{}{}
	}
	return nil
}

// SRem removes members from the set at key.
func (m *MemoryClient) SRem(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sets[key]
	if !ok {
		return nil
	}
	for _, member := range members {
		delete(s, member)
	}
	if len(s) == 0 {
		delete(m.sets, key)
	}
	return nil
}

// SInter returns the intersection of the sets at keys.
func (m *MemoryClient) SInter(_ context.Context, keys ...string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(keys) == 0 {
		return nil, nil
	}
	var out []string
	for member := range m.sets[keys[0]] {
		in := true
		for _, key := range keys[1:] {
			if _, ok := m.sets[key][member]; !ok {
				in = false
				break
			}
		}
		if in {
			out = append(out, member)
		}
	}
	sort.Strings(out)
	return out, nil
}

// SUnion returns the union of the sets at keys.
func (m *MemoryClient) SUnion(_ context.Context, keys ...string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	seen := make(map[string]struct{})
	for _, key := range keys {
		for member := range m.sets[key] {
			seen[member] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for member := range seen {
		out = append(out, member)
	}
	sort.Strings(out)
	return out, nil
}

// SScan iterates the set at key. The in-memory implementation returns all
// matches in a single batch with a zero completion cursor.
func (m *MemoryClient) SScan(_ context.Context, key string, _ uint64, match string, _ int64) ([]string, uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []string
	for member := range m.sets[key] {
		if matchGlob(match, member) {
			out = append(out, member)
		}
	}
	sort.Strings(out)
	return out, 0, nil
}

// ZAdd writes member with the given score into the sorted set at key.
func (m *MemoryClient) ZAdd(_ context.Context, key, member string, score float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	z, ok := m.zsets[key]
	if !ok {
		z = make(map[string]float64)
		m.zsets[key] = z
	}
	z[member] = score
	return nil
}

// ZRem removes members from the sorted set at key.
func (m *MemoryClient) ZRem(_ context.Context, key string, members ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	z, ok := m.zsets[key]
	if !ok {
		return nil
	}
	for _, member := range members {
		delete(z, member)
	}
	if len(z) == 0 {
		delete(m.zsets, key)
	}
	return nil
}

// ZRange returns members by ascending rank, start and stop inclusive.
func (m *MemoryClient) ZRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ranked := m.rankedMembers(key)
	lo, hi, ok := rangeBounds(start, stop, int64(len(ranked)))
	if !ok {
		return nil, nil
	}
	return append([]string(nil), ranked[lo:hi+1]...), nil
}

// ZRevRange returns members by descending rank, start and stop inclusive.
func (m *MemoryClient) ZRevRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ranked := m.rankedMembers(key)
	for i, j := 0, len(ranked)-1; i < j; i, j = i+1, j-1 {
		ranked[i], ranked[j] = ranked[j], ranked[i]
	}
	lo, hi, ok := rangeBounds(start, stop, int64(len(ranked)))
	if !ok {
		return nil, nil
	}
	return append([]string(nil), ranked[lo:hi+1]...), nil
}

// rankedMembers returns the members of a sorted set ordered by score, ties
// broken lexicographically. Caller holds at least the read lock.
func (m *MemoryClient) rankedMembers(key string) []string {
	z := m.zsets[key]
	members := make([]string, 0, len(z))
	for member := range z {
		members = append(members, member)
	}
	sort.Slice(members, func(i, j int) bool {
		si, sj := z[members[i]], z[members[j]]
		if si != sj {
			return si < sj
		}
		return members[i] < members[j]
	})
	return members
}

// RPush appends values to the list at key.
func (m *MemoryClient) RPush(_ context.Context, key string, values ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lists[key] = append(m.lists[key], values...)
	return nil
}

// LRange returns list elements, start and stop inclusive.
func (m *MemoryClient) LRange(_ context.Context, key string, start, stop int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l := m.lists[key]
	lo, hi, ok := rangeBounds(start, stop, int64(len(l)))
	if !ok {
		return nil, nil
	}
	return append([]string(nil), l[lo:hi+1]...), nil
}

// LRem removes up to count occurrences of value, scanning head to tail.
// A zero count removes every occurrence.
func (m *MemoryClient) LRem(_ context.Context, key string, count int64, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	l, ok := m.lists[key]
	if !ok {
		return nil
	}
	out := l[:0]
	removed := int64(0)
	for _, v := range l {
		if v == value && (count == 0 || removed < count) {
			removed++
			continue
		}
		out = append(out, v)
	}
	if len(out) == 0 {
		delete(m.lists, key)
	} else {
		m.lists[key] = out
	}
	return nil
}

// LLen returns the length of the list at key.
func (m *MemoryClient) LLen(_ context.Context, key string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.lists[key])), nil
}

// Get reads the string at key.
func (m *MemoryClient) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.strings[key]
	return v, ok, nil
}

// Set writes the string at key.
func (m *MemoryClient) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.strings[key] = value
	return nil
}

// Del removes keys of any structure type.
func (m *MemoryClient) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.hashes, key)
		delete(m.sets, key)
		delete(m.zsets, key)
		delete(m.lists, key)
		delete(m.strings, key)
	}
	return nil
}

// FilterIDs evaluates the composite filter under the client lock, observing
// a single consistent snapshot across all conditions.
func (m *MemoryClient) FilterIDs(_ context.Context, req FilterRequest) ([]string, error) {
	req = req.normalized()

	m.mu.RLock()
	defer m.mu.RUnlock()

	running := make(map[string]struct{})
	var order []string

	// An empty running set is replaced outright, so the first contributing
	// condition acts as the seed regardless of the combinator. The seed's
	// member order survives to the output, which is what makes an orderBy
	// ordering observable past the set combinations.
	combine := func(members []string) {
		if len(running) == 0 || req.Type == CombineOr {
			for _, member := range members {
				if _, ok := running[member]; !ok {
					running[member] = struct{}{}
					order = append(order, member)
				}
			}
			return
		}
		incoming := make(map[string]struct{}, len(members))
		for _, member := range members {
			incoming[member] = struct{}{}
		}
		kept := order[:0]
		for _, member := range order {
			if _, ok := incoming[member]; ok {
				kept = append(kept, member)
			} else {
				delete(running, member)
			}
		}
		order = kept
	}

	if ob := req.OrderBy; ob != nil {
		members := m.zRangeByScore(req.Prefix+"sort:"+ob.Name, ob.Min, ob.Max)
		if ob.Strategy == StrategyDesc {
			for i, j := 0, len(members)-1; i < j; i, j = i+1, j-1 {
				members[i], members[j] = members[j], members[i]
			}
		}
		combine(members)
	}
	for _, cond := range req.Scores {
		combine(m.zRangeByScore(req.Prefix+"sort:"+cond.Key, cond.Min, cond.Max))
	}
	for _, cond := range req.Equals {
		s := m.sets[req.Prefix+"index:"+cond.Key+":"+cond.Value]
		members := make([]string, 0, len(s))
		for member := range s {
			members = append(members, member)
		}
		sort.Strings(members)
		combine(members)
	}

	if req.Offset >= len(order) {
		return nil, nil
	}
	ids := order[req.Offset:]
	if req.Limit >= 0 && req.Limit < len(ids) {
		ids = ids[:req.Limit]
	}
	return ids, nil
}

// zRangeByScore returns members with min <= score <= max in ascending score
// order, ties broken lexically. Caller holds at least the read lock.
func (m *MemoryClient) zRangeByScore(key string, min, max float64) []string {
	var out []string
	for _, member := range m.rankedMembers(key) {
		if score := m.zsets[key][member]; score >= min && score <= max {
			out = append(out, member)
		}
	}
	return out
}

// Close releases nothing; the memory client holds no external resources.
func (m *MemoryClient) Close() error { return nil }

// rangeBounds resolves inclusive start/stop offsets against a sequence of
// length n, with negative offsets counting from the end. ok is false when
// the resolved window is empty.
func rangeBounds(start, stop, n int64) (int64, int64, bool) {
	if n == 0 {
		return 0, 0, false
	}
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if stop < 0 {
		stop += n
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n || stop < 0 {
		return 0, 0, false
	}
	return start, stop, true
}

// matchGlob reports whether s matches a glob pattern supporting '*' (any
// run, including empty) and '?' (any single byte).
func matchGlob(pattern, s string) bool {
	var pi, si int
	star, mark := -1, 0
	for si < len(s) {
		switch {
		case pi < len(pattern) && (pattern[pi] == '?' || pattern[pi] == s[si]):
			pi++
			si++
		case pi < len(pattern) && pattern[pi] == '*':
			star = pi
			mark = si
			pi++
		case star >= 0:
			pi = star + 1
			mark++
			si = mark
		default:
			return false
		}
	}
	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
