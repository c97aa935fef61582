package store

import (
	"context"
	"fmt"

	"lattice/internal/keys"
	"lattice/kv"
	"lattice/schema"
)

// Store persists typed records into the key-value store and maintains the
// derived structures (list, unique keys, index sets, sortable and searchable
// structures) that make them queryable.
type Store struct {
	client  kv.Client
	schemas *schema.Registry
}

// New creates a Store over the given client and schema registry.
func New(client kv.Client, schemas *schema.Registry) *Store {
	return &Store{client: client, schemas: schemas}
}

// Schemas returns the schema registry the store resolves descriptors from.
func (s *Store) Schemas() *schema.Registry {
	return s.schemas
}

// resolved is the primitive-encoded form of a record, ready to diff and
// write. Relation fields hold the referenced primary key.
type resolved struct {
	desc    *schema.Descriptor
	primary string
	// encoded maps property names to their stored string form; null fields
	// are absent.
	encoded map[string]string
	// values keeps the original field values for score computation and
	// cascades.
	values map[string]any
}

// resolve encodes every non-null declared property of rec. No writes happen
// here; cascades run later at their specified points.
func (s *Store) resolve(rec *Record) (*resolved, error) {
	desc, err := s.schemas.Lookup(rec.Type)
	if err != nil {
		return nil, err
	}

	r := &resolved{
		desc:    desc,
		encoded: make(map[string]string, len(desc.Properties)),
		values:  make(map[string]any, len(desc.Properties)),
	}

	for _, p := range desc.Properties {
		v := rec.Get(p.Name)
		if v == nil {
			continue
		}
		var enc string
		if rel, ok := desc.Relation(p.Name); ok {
			enc, err = s.referenceKey(rel, v)
		} else {
			enc, err = encodeValue(p, v)
		}
		if err != nil {
			return nil, err
		}
		r.encoded[p.Name] = enc
		r.values[p.Name] = v
	}

	primary, ok := r.encoded[desc.Primary]
	if !ok || primary == "" {
		return nil, fmt.Errorf("lattice: entity %q has no primary value in field %q", desc.Name, desc.Primary)
	}
	r.primary = primary
	return r, nil
}

// referenceKey extracts the referenced primary key from a relation field,
// which holds either the key itself or a nested record.
func (s *Store) referenceKey(rel schema.Relation, v any) (string, error) {
	switch ref := v.(type) {
	case string:
		return ref, nil
	case *Record:
		target, err := s.schemas.Lookup(rel.Target)
		if err != nil {
			return "", err
		}
		pk, ok := ref.Get(target.Primary).(string)
		if !ok || pk == "" {
			return "", fmt.Errorf("lattice: related %q record has no primary value", rel.Target)
		}
		return pk, nil
	}
	return "", fmt.Errorf("lattice: relation field holds %T, want string or *Record", v)
}

// Save creates the record on first save of its primary key and performs a
// diff-based update afterwards, keeping every derived structure consistent
// with the new field values once the call completes.
//
// The uniqueness check is check-then-set across two store calls: two
// concurrent saves claiming the same new value can race. Derived-structure
// writes already executed when a UniquenessError is detected are not rolled
// back.
func (s *Store) Save(ctx context.Context, rec *Record) error {
	next, err := s.resolve(rec)
	if err != nil {
		return err
	}
	desc := next.desc
	pk := next.primary
	hashKey := keys.Hash(desc.Name, pk)

	prev, err := s.client.HMGet(ctx, hashKey, desc.PropertyNames()...)
	if err != nil {
		return fmt.Errorf("load previous record: %w", err)
	}
	_, exists := prev[desc.Primary]
	isNew := !exists

	var indexChanged, uniqueChanged bool
	if !isNew {
		for _, p := range desc.Properties {
			prevEnc, hadPrev := prev[p.Name]
			nextEnc, hasNext := next.encoded[p.Name]
			if hadPrev == hasNext && prevEnc == nextEnc {
				continue
			}

			if !hasNext {
				if err := s.client.HDel(ctx, hashKey, p.Name); err != nil {
					return fmt.Errorf("clear field %s: %w", p.Name, err)
				}
			}
			if rel, ok := desc.Relation(p.Name); ok && rel.CascadeUpdate && hasNext {
				if nested, ok := next.values[p.Name].(*Record); ok {
					if err := s.Save(ctx, nested); err != nil {
						return fmt.Errorf("cascade update %s: %w", p.Name, err)
					}
				}
			}
			if p.Searchable && hadPrev {
				if err := s.client.SRem(ctx, keys.Search(desc.Name, p.Name), keys.SearchMember(pk, prevEnc)); err != nil {
					return fmt.Errorf("drop search entry %s: %w", p.Name, err)
				}
			}
			if p.Sortable && hadPrev {
				if err := s.client.ZRem(ctx, keys.Sort(desc.Name, p.Name), pk); err != nil {
					return fmt.Errorf("drop sort entry %s: %w", p.Name, err)
				}
			}
			if desc.IsIndexed(p.Name) {
				indexChanged = true
			}
			if desc.IsUnique(p.Name) {
				uniqueChanged = true
			}
		}

		// Index memberships are rebuilt wholesale below, so drop every
		// previous membership when any indexed field changed.
		if indexChanged {
			for _, field := range desc.Indexes {
				if prevEnc, ok := prev[field]; ok {
					if err := s.client.SRem(ctx, keys.Index(desc.Name, field, prevEnc), pk); err != nil {
						return fmt.Errorf("drop index membership %s: %w", field, err)
					}
				}
			}
		}
		if uniqueChanged {
			for _, field := range desc.Uniques {
				if prevEnc, ok := prev[field]; ok {
					if err := s.client.Del(ctx, keys.Unique(desc.Name, field, prevEnc)); err != nil {
						return fmt.Errorf("drop unique key %s: %w", field, err)
					}
				}
			}
		}
	}

	for _, field := range desc.Uniques {
		nextEnc, ok := next.encoded[field]
		if !ok {
			continue
		}
		key := keys.Unique(desc.Name, field, nextEnc)
		owner, found, err := s.client.Get(ctx, key)
		if err != nil {
			return fmt.Errorf("check unique key %s: %w", field, err)
		}
		if found && owner != pk {
			return &UniquenessError{Entity: desc.Name, Field: field}
		}
		if err := s.client.Set(ctx, key, pk); err != nil {
			return fmt.Errorf("write unique key %s: %w", field, err)
		}
	}

	hashFields := make(map[string]string, len(next.encoded))
	for _, p := range desc.Properties {
		enc, ok := next.encoded[p.Name]
		if !ok {
			continue
		}
		if rel, relOK := desc.Relation(p.Name); relOK && isNew && rel.CascadeInsert {
			if nested, nestedOK := next.values[p.Name].(*Record); nestedOK {
				if err := s.Save(ctx, nested); err != nil {
					return fmt.Errorf("cascade insert %s: %w", p.Name, err)
				}
			}
		}
		hashFields[p.Name] = enc

		if p.Sortable {
			score, err := sortScore(p, next.values[p.Name])
			if err != nil {
				return fmt.Errorf("lattice: field %q: %w", p.Name, err)
			}
			if err := s.client.ZAdd(ctx, keys.Sort(desc.Name, p.Name), pk, score); err != nil {
				return fmt.Errorf("write sort entry %s: %w", p.Name, err)
			}
		}
		if p.Searchable {
			if err := s.client.SAdd(ctx, keys.Search(desc.Name, p.Name), keys.SearchMember(pk, enc)); err != nil {
				return fmt.Errorf("write search entry %s: %w", p.Name, err)
			}
		}
	}

	if err := s.client.HSet(ctx, hashKey, hashFields); err != nil {
		return fmt.Errorf("write record hash: %w", err)
	}

	for _, field := range desc.Indexes {
		if enc, ok := next.encoded[field]; ok {
			if err := s.client.SAdd(ctx, keys.Index(desc.Name, field, enc), pk); err != nil {
				return fmt.Errorf("write index membership %s: %w", field, err)
			}
		}
	}

	if desc.Listable && isNew {
		if err := s.client.RPush(ctx, keys.List(desc.Name), pk); err != nil {
			return fmt.Errorf("append to list: %w", err)
		}
	}

	return nil
}

// GetOne loads a record by primary key. A nil record with a nil error means
// not found. Has-one fields are loaded recursively; there is no cycle
// detection, so cyclic relation graphs are the caller's responsibility.
func (s *Store) GetOne(ctx context.Context, typ, id string) (*Record, error) {
	desc, err := s.schemas.Lookup(typ)
	if err != nil {
		return nil, err
	}
	return s.getByPrimary(ctx, desc, id)
}

// GetOneBy loads a record by the value of the primary field or of a declared
// unique field. Any other lookup field fails with InvalidUniqueKeyError.
func (s *Store) GetOneBy(ctx context.Context, typ, field, value string) (*Record, error) {
	desc, err := s.schemas.Lookup(typ)
	if err != nil {
		return nil, err
	}
	if field == desc.Primary {
		return s.getByPrimary(ctx, desc, value)
	}
	if !desc.IsUnique(field) {
		return nil, &InvalidUniqueKeyError{Entity: desc.Name, Field: field}
	}

	pk, found, err := s.client.Get(ctx, keys.Unique(desc.Name, field, value))
	if err != nil {
		return nil, fmt.Errorf("resolve unique key %s: %w", field, err)
	}
	if !found {
		return nil, nil
	}
	return s.getByPrimary(ctx, desc, pk)
}

func (s *Store) getByPrimary(ctx context.Context, desc *schema.Descriptor, pk string) (*Record, error) {
	raw, err := s.client.HMGet(ctx, keys.Hash(desc.Name, pk), desc.PropertyNames()...)
	if err != nil {
		return nil, fmt.Errorf("read record hash: %w", err)
	}
	if _, ok := raw[desc.Primary]; !ok {
		return nil, nil
	}

	rec := NewRecord(desc.Name)
	for _, p := range desc.Properties {
		enc, ok := raw[p.Name]
		if !ok {
			continue
		}
		if rel, relOK := desc.Relation(p.Name); relOK {
			related, err := s.GetOne(ctx, rel.Target, enc)
			if err != nil {
				return nil, err
			}
			if related != nil {
				rec.Set(p.Name, related)
			}
			continue
		}
		v, err := decodeValue(p, enc)
		if err != nil {
			return nil, err
		}
		rec.Set(p.Name, v)
	}
	return rec, nil
}

// Delete removes the record hash and unwinds every derived structure
// reference for the primary key. Deleting an absent record tears down
// whatever stale entries remain and is otherwise a no-op.
func (s *Store) Delete(ctx context.Context, typ, id string) error {
	desc, err := s.schemas.Lookup(typ)
	if err != nil {
		return err
	}
	hashKey := keys.Hash(desc.Name, id)

	prev, err := s.client.HMGet(ctx, hashKey, desc.PropertyNames()...)
	if err != nil {
		return fmt.Errorf("load record: %w", err)
	}

	for _, field := range desc.Uniques {
		if enc, ok := prev[field]; ok {
			if err := s.client.Del(ctx, keys.Unique(desc.Name, field, enc)); err != nil {
				return fmt.Errorf("drop unique key %s: %w", field, err)
			}
		}
	}
	for _, field := range desc.Indexes {
		if enc, ok := prev[field]; ok {
			if err := s.client.SRem(ctx, keys.Index(desc.Name, field, enc), id); err != nil {
				return fmt.Errorf("drop index membership %s: %w", field, err)
			}
		}
	}
	if desc.Listable {
		if err := s.client.LRem(ctx, keys.List(desc.Name), 1, id); err != nil {
			return fmt.Errorf("drop list entry: %w", err)
		}
	}
	for _, p := range desc.Properties {
		if p.Sortable {
			if err := s.client.ZRem(ctx, keys.Sort(desc.Name, p.Name), id); err != nil {
				return fmt.Errorf("drop sort entry %s: %w", p.Name, err)
			}
		}
		if p.Searchable {
			if enc, ok := prev[p.Name]; ok {
				if err := s.client.SRem(ctx, keys.Search(desc.Name, p.Name), keys.SearchMember(id, enc)); err != nil {
					return fmt.Errorf("drop search entry %s: %w", p.Name, err)
				}
			}
		}
	}

	if err := s.client.Del(ctx, hashKey); err != nil {
		return fmt.Errorf("delete record hash: %w", err)
	}
	return nil
}
