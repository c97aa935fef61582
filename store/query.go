package store

import (
	"context"
	"fmt"
	"strings"

	"lattice/internal/keys"
	"lattice/schema"
)

// Sort strategies for OrderBy.
const (
	Asc  = "ASC"
	Desc = "DESC"
)

// Combinators for Find.
const (
	And = "AND"
	Or  = "OR"
)

// OrderBy orders a listing by rank over the sortable structure of a field.
type OrderBy struct {
	Field    string
	Strategy string
}

// ListOptions windows and orders a listing. A Limit of zero or less means
// to the end.
type ListOptions struct {
	Limit   int
	Offset  int
	OrderBy *OrderBy
}

// Condition is one exact-match find condition. Value is a field value in
// its Go representation and is encoded per the declared property type.
type Condition struct {
	Field string
	Value any
}

// FindOptions combines and windows find conditions. Limit and Offset are
// optional but must be supplied together, and both must be non-negative.
type FindOptions struct {
	// Combinator is And (intersection, the default) or Or (union).
	Combinator string

	Limit  *int
	Offset *int
}

// ListIDs enumerates primary keys of a listable entity type. Without an
// order it returns the insertion-order window; with one it returns the same
// window taken by rank over the field's sortable structure.
func (s *Store) ListIDs(ctx context.Context, typ string, opts ListOptions) ([]string, error) {
	desc, err := s.schemas.Lookup(typ)
	if err != nil {
		return nil, err
	}
	if !desc.Listable {
		return nil, &NotListableError{Entity: desc.Name}
	}

	start := int64(opts.Offset)
	stop := int64(-1)
	if opts.Limit > 0 {
		stop = start + int64(opts.Limit) - 1
	}

	if opts.OrderBy == nil {
		ids, err := s.client.LRange(ctx, keys.List(desc.Name), start, stop)
		if err != nil {
			return nil, fmt.Errorf("read list: %w", err)
		}
		return ids, nil
	}

	p, ok := desc.Property(opts.OrderBy.Field)
	if !ok || !p.Sortable {
		return nil, fmt.Errorf("%w: cannot order by field %q of %q", ErrInvalidQuery, opts.OrderBy.Field, desc.Name)
	}
	sortKey := keys.Sort(desc.Name, p.Name)
	if opts.OrderBy.Strategy == Desc {
		ids, err := s.client.ZRevRange(ctx, sortKey, start, stop)
		if err != nil {
			return nil, fmt.Errorf("read sort range: %w", err)
		}
		return ids, nil
	}
	ids, err := s.client.ZRange(ctx, sortKey, start, stop)
	if err != nil {
		return nil, fmt.Errorf("read sort range: %w", err)
	}
	return ids, nil
}

// List is ListIDs with each id loaded. Ids whose record vanished between
// the enumeration and the load are skipped.
func (s *Store) List(ctx context.Context, typ string, opts ListOptions) ([]*Record, error) {
	ids, err := s.ListIDs(ctx, typ, opts)
	if err != nil {
		return nil, err
	}
	return s.loadAll(ctx, typ, ids)
}

// FindIDs returns the primary keys matching the exact-match conditions,
// intersected (And) or unioned (Or). Result order is unspecified. Limit and
// offset, when supplied as a pair, slice the combined result client-side.
func (s *Store) FindIDs(ctx context.Context, typ string, conditions []Condition, opts FindOptions) ([]string, error) {
	desc, err := s.schemas.Lookup(typ)
	if err != nil {
		return nil, err
	}
	if len(conditions) == 0 {
		return nil, fmt.Errorf("%w: find requires at least one condition", ErrInvalidQuery)
	}
	if (opts.Limit == nil) != (opts.Offset == nil) {
		return nil, fmt.Errorf("%w: limit and offset must be supplied together", ErrInvalidQuery)
	}
	if opts.Limit != nil && (*opts.Limit < 0 || *opts.Offset < 0) {
		return nil, fmt.Errorf("%w: limit and offset must be non-negative", ErrInvalidQuery)
	}

	indexKeys := make([]string, len(conditions))
	for i, cond := range conditions {
		enc, err := s.conditionValue(desc, cond)
		if err != nil {
			return nil, err
		}
		indexKeys[i] = keys.Index(desc.Name, cond.Field, enc)
	}

	var ids []string
	if opts.Combinator == Or {
		ids, err = s.client.SUnion(ctx, indexKeys...)
	} else {
		ids, err = s.client.SInter(ctx, indexKeys...)
	}
	if err != nil {
		return nil, fmt.Errorf("combine index sets: %w", err)
	}

	if opts.Limit == nil {
		return ids, nil
	}
	offset, limit := *opts.Offset, *opts.Limit
	if offset >= len(ids) {
		return nil, nil
	}
	ids = ids[offset:]
	if limit < len(ids) {
		ids = ids[:limit]
	}
	return ids, nil
}

// Find is FindIDs with each id loaded.
func (s *Store) Find(ctx context.Context, typ string, conditions []Condition, opts FindOptions) ([]*Record, error) {
	ids, err := s.FindIDs(ctx, typ, conditions, opts)
	if err != nil {
		return nil, err
	}
	return s.loadAll(ctx, typ, ids)
}

// conditionValue encodes a condition value per the declared property type.
// String input is accepted as the already-encoded form for any type.
func (s *Store) conditionValue(desc *schema.Descriptor, cond Condition) (string, error) {
	p, ok := desc.Property(cond.Field)
	if !ok {
		return "", fmt.Errorf("%w: entity %q has no field %q", ErrInvalidQuery, desc.Name, cond.Field)
	}
	if s, isString := cond.Value.(string); isString {
		return s, nil
	}
	return encodeValue(p, cond.Value)
}

// SearchIDs scans the searchable set of a field for members containing the
// needle, case-insensitively, accumulating primary keys in scan order until
// the cursor completes or limit is reached. A limit of zero or less means
// unlimited.
func (s *Store) SearchIDs(ctx context.Context, typ, field, needle string, limit int) ([]string, error) {
	desc, err := s.schemas.Lookup(typ)
	if err != nil {
		return nil, err
	}

	pattern := "*:_id_:*" + strings.ToLower(needle) + "*"
	searchKey := keys.Search(desc.Name, field)

	var ids []string
	var cursor uint64
	for {
		batch, next, err := s.client.SScan(ctx, searchKey, cursor, pattern, 100)
		if err != nil {
			return nil, fmt.Errorf("scan search set: %w", err)
		}
		for _, member := range batch {
			if pk, ok := keys.SplitSearchMember(member); ok {
				ids = append(ids, pk)
			}
		}
		cursor = next
		if cursor == 0 || (limit > 0 && len(ids) >= limit) {
			break
		}
	}

	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}

// Search is SearchIDs with each id loaded.
func (s *Store) Search(ctx context.Context, typ, field, needle string, limit int) ([]*Record, error) {
	ids, err := s.SearchIDs(ctx, typ, field, needle, limit)
	if err != nil {
		return nil, err
	}
	return s.loadAll(ctx, typ, ids)
}

func (s *Store) loadAll(ctx context.Context, typ string, ids []string) ([]*Record, error) {
	records := make([]*Record, 0, len(ids))
	for _, id := range ids {
		rec, err := s.GetOne(ctx, typ, id)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, rec)
		}
	}
	return records, nil
}
