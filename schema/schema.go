// Package schema defines entity descriptors and the process-wide registry
// the persistence engine resolves them from. A registry is populated once at
// startup and read-only afterwards.
package schema

import (
	"errors"
	"fmt"
)

// Type is the declared primitive type of a property.
type Type string

// Supported property types.
const (
	String    Type = "string"
	Number    Type = "number"
	Boolean   Type = "boolean"
	Timestamp Type = "timestamp"
)

// Property describes one declared field of an entity.
type Property struct {
	// Name is the field name as stored in the record hash.
	Name string `yaml:"name"`

	// Type is the declared primitive type.
	Type Type `yaml:"type"`

	// Searchable enables the substring-search set for this field.
	Searchable bool `yaml:"searchable"`

	// Sortable enables the range-queryable sortable structure for this
	// field. Only number, timestamp and boolean carry a numeric score.
	Sortable bool `yaml:"sortable"`
}

// Relation describes a has-one reference to another entity.
type Relation struct {
	// Target is the referenced entity name.
	Target string `yaml:"target"`

	// CascadeInsert saves the referenced entity when the owner is first
	// created.
	CascadeInsert bool `yaml:"cascadeInsert"`

	// CascadeUpdate saves the referenced entity when the owner field
	// changes on an update.
	CascadeUpdate bool `yaml:"cascadeUpdate"`
}

// Descriptor is the resolved metadata for one entity type.
type Descriptor struct {
	// Name is the collection name, the first segment of every store key.
	Name string `yaml:"name"`

	// Primary is the name of the primary-key property.
	Primary string `yaml:"primary"`

	// Properties lists every declared field, in declaration order.
	Properties []Property `yaml:"properties"`

	// Uniques names the properties carrying a uniqueness constraint.
	Uniques []string `yaml:"unique"`

	// Indexes names the properties carrying an exact-match index.
	Indexes []string `yaml:"index"`

	// Listable enables insertion-order enumeration for this entity.
	Listable bool `yaml:"listable"`

	// Relations maps property names to their has-one relation.
	Relations map[string]Relation `yaml:"relations"`
}

// Registry validation and lookup errors.
var (
	// ErrUnknownEntity is returned when no descriptor is registered for a
	// requested entity name.
	ErrUnknownEntity = errors.New("lattice: unknown entity")

	// ErrInvalidDescriptor is returned when a descriptor fails
	// registration-time validation.
	ErrInvalidDescriptor = errors.New("lattice: invalid descriptor")

	// ErrDuplicateEntity is returned when a name is registered twice.
	ErrDuplicateEntity = errors.New("lattice: entity already registered")
)

// Property returns the declared property with the given name.
func (d *Descriptor) Property(name string) (Property, bool) {
	for _, p := range d.Properties {
		if p.Name == name {
			return p, true
		}
	}
	return Property{}, false
}

// PropertyNames returns every declared property name in declaration order.
func (d *Descriptor) PropertyNames() []string {
	names := make([]string, len(d.Properties))
	for i, p := range d.Properties {
		names[i] = p.Name
	}
	return names
}

// IsUnique reports whether the named property carries a uniqueness constraint.
func (d *Descriptor) IsUnique(name string) bool {
	for _, u := range d.Uniques {
		if u == name {
			return true
		}
	}
	return false
}

// IsIndexed reports whether the named property carries an exact-match index.
func (d *Descriptor) IsIndexed(name string) bool {
	for _, idx := range d.Indexes {
		if idx == name {
			return true
		}
	}
	return false
}

// Relation returns the has-one relation declared on the named property.
func (d *Descriptor) Relation(name string) (Relation, bool) {
	rel, ok := d.Relations[name]
	return rel, ok
}

// validate checks internal consistency of a descriptor.
func (d *Descriptor) validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: empty entity name", ErrInvalidDescriptor)
	}
	if d.Primary == "" {
		return fmt.Errorf("%w: entity %q has no primary field", ErrInvalidDescriptor, d.Name)
	}

	seen := make(map[string]Property, len(d.Properties))
	for _, p := range d.Properties {
		if p.Name == "" {
			return fmt.Errorf("%w: entity %q has an unnamed property", ErrInvalidDescriptor, d.Name)
		}
		if _, dup := seen[p.Name]; dup {
			return fmt.Errorf("%w: entity %q declares property %q twice", ErrInvalidDescriptor, d.Name, p.Name)
		}
		switch p.Type {
		case String, Number, Boolean, Timestamp:
		default:
			return fmt.Errorf("%w: entity %q property %q has unknown type %q", ErrInvalidDescriptor, d.Name, p.Name, p.Type)
		}
		if p.Sortable && p.Type == String {
			// Sortable structures hold numeric scores; strings have none.
			return fmt.Errorf("%w: entity %q property %q is a sortable string", ErrInvalidDescriptor, d.Name, p.Name)
		}
		seen[p.Name] = p
	}

	if p, ok := seen[d.Primary]; !ok {
		return fmt.Errorf("%w: entity %q primary field %q is not declared", ErrInvalidDescriptor, d.Name, d.Primary)
	} else if p.Type != String {
		return fmt.Errorf("%w: entity %q primary field %q must be a string", ErrInvalidDescriptor, d.Name, d.Primary)
	}

	for _, u := range d.Uniques {
		if _, ok := seen[u]; !ok {
			return fmt.Errorf("%w: entity %q unique field %q is not declared", ErrInvalidDescriptor, d.Name, u)
		}
	}
	for _, idx := range d.Indexes {
		if _, ok := seen[idx]; !ok {
			return fmt.Errorf("%w: entity %q indexed field %q is not declared", ErrInvalidDescriptor, d.Name, idx)
		}
	}
	for field, rel := range d.Relations {
		p, ok := seen[field]
		if !ok {
			return fmt.Errorf("%w: entity %q relation field %q is not declared", ErrInvalidDescriptor, d.Name, field)
		}
		if p.Type != String {
			// A relation field stores the referenced primary key.
			return fmt.Errorf("%w: entity %q relation field %q must be a string", ErrInvalidDescriptor, d.Name, field)
		}
		if rel.Target == "" {
			return fmt.Errorf("%w: entity %q relation field %q has no target", ErrInvalidDescriptor, d.Name, field)
		}
	}

	return nil
}

// Registry holds the descriptors for every known entity type.
type Registry struct {
	byName map[string]*Descriptor
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*Descriptor)}
}

// Register validates and adds a descriptor. It should be called during
// process startup, before the registry is handed to the engine.
func (r *Registry) Register(d Descriptor) error {
	if err := d.validate(); err != nil {
		return err
	}
	if _, exists := r.byName[d.Name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEntity, d.Name)
	}
	r.byName[d.Name] = &d
	return nil
}

// Lookup returns the descriptor registered under the given entity name.
func (r *Registry) Lookup(name string) (*Descriptor, error) {
	d, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, name)
	}
	return d, nil
}

// Names returns every registered entity name.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}
