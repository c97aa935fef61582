package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lattice/store"
)

func seedUsers(t *testing.T, s *store.Store) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, user("u1", "alice@example.com", "Alice Smith", 34, "active")))
	require.NoError(t, s.Save(ctx, user("u2", "bob@example.com", "Bob", 52, "idle")))
	require.NoError(t, s.Save(ctx, user("u3", "carol@example.com", "Carol Smithers", 19, "active")))
}

// --- List ---

func TestListIDs_InsertionOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	ids, err := s.ListIDs(ctx, "user", store.ListOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1", "u2", "u3"}, ids)
}

func TestListIDs_Window(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	ids, err := s.ListIDs(ctx, "user", store.ListOptions{Offset: 1, Limit: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, ids)

	ids, err = s.ListIDs(ctx, "user", store.ListOptions{Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u3"}, ids)

	ids, err = s.ListIDs(ctx, "user", store.ListOptions{Offset: 99})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestListIDs_OrderBy(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	ids, err := s.ListIDs(ctx, "user", store.ListOptions{OrderBy: &store.OrderBy{Field: "age", Strategy: store.Asc}})
	require.NoError(t, err)
	assert.Equal(t, []string{"u3", "u1", "u2"}, ids)

	ids, err = s.ListIDs(ctx, "user", store.ListOptions{OrderBy: &store.OrderBy{Field: "age", Strategy: store.Desc}})
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u1", "u3"}, ids)

	// Rank window, not value window.
	ids, err = s.ListIDs(ctx, "user", store.ListOptions{
		OrderBy: &store.OrderBy{Field: "age", Strategy: store.Asc},
		Offset:  1,
		Limit:   1,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, ids)
}

func TestListIDs_NotListable(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.ListIDs(ctx, "profile", store.ListOptions{})
	var notListable *store.NotListableError
	require.ErrorAs(t, err, &notListable)
	assert.Equal(t, "profile", notListable.Entity)
}

func TestListIDs_OrderByUnsortableField(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.ListIDs(ctx, "user", store.ListOptions{OrderBy: &store.OrderBy{Field: "name", Strategy: store.Asc}})
	assert.ErrorIs(t, err, store.ErrInvalidQuery)
}

func TestList_LoadsRecords(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	records, err := s.List(ctx, "user", store.ListOptions{Limit: 2})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Alice Smith", records[0].String("name"))
	assert.Equal(t, "Bob", records[1].String("name"))
}

// --- Find ---

func TestFindIDs_And(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	ids, err := s.FindIDs(ctx, "user", []store.Condition{{Field: "status", Value: "active"}}, store.FindOptions{})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u3"}, ids)
}

func TestFindIDs_Or(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	ids, err := s.FindIDs(ctx, "user", []store.Condition{
		{Field: "status", Value: "active"},
		{Field: "status", Value: "idle"},
	}, store.FindOptions{Combinator: store.Or})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2", "u3"}, ids)
}

func TestFindIDs_AndAcrossValues(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	// No record is both active and idle.
	ids, err := s.FindIDs(ctx, "user", []store.Condition{
		{Field: "status", Value: "active"},
		{Field: "status", Value: "idle"},
	}, store.FindOptions{})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFindIDs_NoConditions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.FindIDs(ctx, "user", nil, store.FindOptions{})
	assert.ErrorIs(t, err, store.ErrInvalidQuery)
}

func TestFindIDs_HalfPagination(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	limit := 1
	_, err := s.FindIDs(ctx, "user", []store.Condition{{Field: "status", Value: "active"}}, store.FindOptions{Limit: &limit})
	assert.ErrorIs(t, err, store.ErrInvalidQuery)

	offset := 0
	_, err = s.FindIDs(ctx, "user", []store.Condition{{Field: "status", Value: "active"}}, store.FindOptions{Offset: &offset})
	assert.ErrorIs(t, err, store.ErrInvalidQuery)
}

func TestFindIDs_NegativePagination(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	limit, offset := 1, -1
	_, err := s.FindIDs(ctx, "user", []store.Condition{{Field: "status", Value: "active"}},
		store.FindOptions{Limit: &limit, Offset: &offset})
	assert.ErrorIs(t, err, store.ErrInvalidQuery)

	limit, offset = -1, 0
	_, err = s.FindIDs(ctx, "user", []store.Condition{{Field: "status", Value: "active"}},
		store.FindOptions{Limit: &limit, Offset: &offset})
	assert.ErrorIs(t, err, store.ErrInvalidQuery)
}

func TestFindIDs_Pagination(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	limit, offset := 1, 1
	ids, err := s.FindIDs(ctx, "user", []store.Condition{{Field: "status", Value: "active"}},
		store.FindOptions{Limit: &limit, Offset: &offset})
	require.NoError(t, err)
	assert.Len(t, ids, 1)

	offset = 99
	ids, err = s.FindIDs(ctx, "user", []store.Condition{{Field: "status", Value: "active"}},
		store.FindOptions{Limit: &limit, Offset: &offset})
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestFindIDs_UnknownField(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.FindIDs(ctx, "user", []store.Condition{{Field: "ghost", Value: "x"}}, store.FindOptions{})
	assert.ErrorIs(t, err, store.ErrInvalidQuery)
}

func TestFind_LoadsRecords(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	records, err := s.Find(ctx, "user", []store.Condition{{Field: "status", Value: "idle"}}, store.FindOptions{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Bob", records[0].String("name"))
}

// --- Search ---

func TestSearchIDs_Substring(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	ids, err := s.SearchIDs(ctx, "user", "name", "smith", 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u3"}, ids)
}

func TestSearchIDs_CaseInsensitive(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	ids, err := s.SearchIDs(ctx, "user", "name", "SMITH", 10)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u3"}, ids)
}

func TestSearchIDs_ExcludesNonMatches(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	ids, err := s.SearchIDs(ctx, "user", "name", "bob", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{"u2"}, ids)
}

func TestSearchIDs_Limit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	ids, err := s.SearchIDs(ctx, "user", "name", "smith", 1)
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestSearch_LoadsRecords(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	seedUsers(t, s)

	records, err := s.Search(ctx, "user", "name", "carol", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "u3", records[0].String("id"))
}
