package store

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery is returned when find is called with no conditions or
	// with exactly one of limit/offset supplied.
	ErrInvalidQuery = errors.New("lattice: invalid query")
)

// UniquenessError is returned when a save would claim a unique value already
// owned by a different primary key. Steps executed before the violation are
// not rolled back.
type UniquenessError struct {
	// Entity is the entity type name.
	Entity string

	// Field is the unique field whose value is already claimed.
	Field string
}

func (e *UniquenessError) Error() string {
	return fmt.Sprintf("lattice: duplicate value for unique field %q on entity %q", e.Field, e.Entity)
}

// NotListableError is returned when list is called on an entity type not
// declared listable.
type NotListableError struct {
	// Entity is the entity type name.
	Entity string
}

func (e *NotListableError) Error() string {
	return fmt.Sprintf("lattice: entity %q is not listable", e.Entity)
}

// InvalidUniqueKeyError is returned when a lookup key passed to GetOneBy is
// neither the primary field nor a declared unique field.
type InvalidUniqueKeyError struct {
	// Entity is the entity type name.
	Entity string

	// Field is the rejected lookup key.
	Field string
}

func (e *InvalidUniqueKeyError) Error() string {
	return fmt.Sprintf("lattice: field %q is not a unique key of entity %q", e.Field, e.Entity)
}
