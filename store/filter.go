package store

import (
	"context"
	"fmt"

	"lattice/internal/keys"
	"lattice/kv"
)

// Filter evaluates a composite filter (range, equality and ordering
// conditions combined by AND/OR) atomically inside the store and returns the
// paginated primary-key slice. All conditions observe a single consistent
// snapshot; no per-condition round trips are made.
//
// The request's Prefix is derived from the entity type and must be left
// empty by the caller. A Limit of -1 means unlimited.
func (s *Store) Filter(ctx context.Context, typ string, req kv.FilterRequest) ([]string, error) {
	desc, err := s.schemas.Lookup(typ)
	if err != nil {
		return nil, err
	}

	switch req.Type {
	case "", kv.CombineAnd, kv.CombineOr:
	default:
		return nil, fmt.Errorf("%w: unknown combinator %q", ErrInvalidQuery, req.Type)
	}
	if ob := req.OrderBy; ob != nil {
		switch ob.Strategy {
		case kv.StrategyAsc, kv.StrategyDesc:
		default:
			return nil, fmt.Errorf("%w: unknown sort strategy %q", ErrInvalidQuery, ob.Strategy)
		}
	}
	if req.Offset < 0 || req.Limit < -1 {
		return nil, fmt.Errorf("%w: offset must be non-negative and limit at least -1", ErrInvalidQuery)
	}

	req.Prefix = keys.Namespace(desc.Name)
	ids, err := s.client.FilterIDs(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("evaluate filter: %w", err)
	}
	return ids, nil
}
