package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lattice/kv"
	"lattice/store"
)

func TestFilter_EqualsAndScores(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	// active ∩ age in [18, 65]
	ids, err := s.Filter(ctx, "user", kv.FilterRequest{
		Equals: []kv.EqualsCondition{{Key: "status", Value: "active"}},
		Scores: []kv.ScoreCondition{{Key: "age", Min: 18, Max: 65}},
		Type:   kv.CombineAnd,
		Limit:  -1,
	})
	require.NoError(t, err)

	// Must equal the intersection computed via separate lookups.
	active, err := s.FindIDs(ctx, "user", []store.Condition{{Field: "status", Value: "active"}}, store.FindOptions{})
	require.NoError(t, err)
	assert.ElementsMatch(t, active, ids)
	assert.ElementsMatch(t, []string{"u1", "u3"}, ids)
}

func TestFilter_ScoreWindowNarrows(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	ids, err := s.Filter(ctx, "user", kv.FilterRequest{
		Equals: []kv.EqualsCondition{{Key: "status", Value: "active"}},
		Scores: []kv.ScoreCondition{{Key: "age", Min: 30, Max: 65}},
		Type:   kv.CombineAnd,
		Limit:  -1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids)
}

func TestFilter_Or(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	ids, err := s.Filter(ctx, "user", kv.FilterRequest{
		Equals: []kv.EqualsCondition{{Key: "status", Value: "idle"}},
		Scores: []kv.ScoreCondition{{Key: "age", Min: 0, Max: 20}},
		Type:   kv.CombineOr,
		Limit:  -1,
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u2", "u3"}, ids)
}

func TestFilter_OrderBySeedsRunningSet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	ids, err := s.Filter(ctx, "user", kv.FilterRequest{
		OrderBy: &kv.FilterOrder{Name: "age", Min: 0, Max: 40, Strategy: kv.StrategyAsc},
		Equals:  []kv.EqualsCondition{{Key: "status", Value: "active"}},
		Type:    kv.CombineAnd,
		Limit:   -1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"u3", "u1"}, ids)
}

func TestFilter_Pagination(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	all, err := s.Filter(ctx, "user", kv.FilterRequest{
		Scores: []kv.ScoreCondition{{Key: "age", Min: 0, Max: 100}},
		Type:   kv.CombineAnd,
		Limit:  -1,
	})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := s.Filter(ctx, "user", kv.FilterRequest{
		Scores: []kv.ScoreCondition{{Key: "age", Min: 0, Max: 100}},
		Type:   kv.CombineAnd,
		Limit:  2,
		Offset: 2,
	})
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestFilter_NegativeBounds(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	_, err := s.Filter(ctx, "user", kv.FilterRequest{
		Scores: []kv.ScoreCondition{{Key: "age", Min: 0, Max: 100}},
		Type:   kv.CombineAnd,
		Limit:  1,
		Offset: -1,
	})
	assert.ErrorIs(t, err, store.ErrInvalidQuery)

	_, err = s.Filter(ctx, "user", kv.FilterRequest{
		Scores: []kv.ScoreCondition{{Key: "age", Min: 0, Max: 100}},
		Type:   kv.CombineAnd,
		Limit:  -2,
	})
	assert.ErrorIs(t, err, store.ErrInvalidQuery)
}

func TestFilter_UnknownCombinator(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Filter(ctx, "user", kv.FilterRequest{Type: "XOR", Limit: -1})
	assert.ErrorIs(t, err, store.ErrInvalidQuery)
}

func TestFilter_UnknownStrategy(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Filter(ctx, "user", kv.FilterRequest{
		OrderBy: &kv.FilterOrder{Name: "age", Strategy: "SIDEWAYS"},
		Limit:   -1,
	})
	assert.ErrorIs(t, err, store.ErrInvalidQuery)
}
