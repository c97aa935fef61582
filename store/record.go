package store

import "time"

// Record is an entity instance addressed by its declared type name. Field
// values use the Go representation of the declared property type:
//
//	string    -> string
//	number    -> float64 (int and int64 are accepted on save)
//	boolean   -> bool
//	timestamp -> time.Time
//
// A has-one relation field holds either the referenced entity's primary key
// as a string or a nested *Record (required for cascading saves). A missing
// or nil field is null.
type Record struct {
	// Type is the registered entity name.
	Type string

	// Fields maps declared property names to values.
	Fields map[string]any
}

// NewRecord creates an empty record of the given entity type.
func NewRecord(typ string) *Record {
	return &Record{Type: typ, Fields: make(map[string]any)}
}

// Get returns the value of a field, nil if unset.
func (r *Record) Get(name string) any {
	if r.Fields == nil {
		return nil
	}
	return r.Fields[name]
}

// Set assigns a field value and returns the record for chaining.
func (r *Record) Set(name string, value any) *Record {
	if r.Fields == nil {
		r.Fields = make(map[string]any)
	}
	r.Fields[name] = value
	return r
}

// String returns a string field, "" if unset or of another type.
func (r *Record) String(name string) string {
	v, _ := r.Get(name).(string)
	return v
}

// Number returns a number field, 0 if unset or of another type.
func (r *Record) Number(name string) float64 {
	v, _ := r.Get(name).(float64)
	return v
}

// Bool returns a boolean field, false if unset or of another type.
func (r *Record) Bool(name string) bool {
	v, _ := r.Get(name).(bool)
	return v
}

// Time returns a timestamp field, the zero time if unset or of another type.
func (r *Record) Time(name string) time.Time {
	v, _ := r.Get(name).(time.Time)
	return v
}

// Related returns a loaded has-one field, nil if unset or not yet loaded.
func (r *Record) Related(name string) *Record {
	v, _ := r.Get(name).(*Record)
	return v
}
