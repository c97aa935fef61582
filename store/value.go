package store

import (
	"fmt"
	"strconv"
	"time"

	"lattice/schema"
)

// encodeValue converts a field value to its stored primitive string form:
// text and booleans as-is, numbers as decimal strings, timestamps as epoch
// milliseconds.
func encodeValue(p schema.Property, v any) (string, error) {
	switch p.Type {
	case schema.String:
		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("lattice: field %q expects a string, got %T", p.Name, v)
		}
		return s, nil
	case schema.Number:
		f, err := asFloat(v)
		if err != nil {
			return "", fmt.Errorf("lattice: field %q: %w", p.Name, err)
		}
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	case schema.Boolean:
		b, ok := v.(bool)
		if !ok {
			return "", fmt.Errorf("lattice: field %q expects a boolean, got %T", p.Name, v)
		}
		return strconv.FormatBool(b), nil
	case schema.Timestamp:
		t, ok := v.(time.Time)
		if !ok {
			return "", fmt.Errorf("lattice: field %q expects a time.Time, got %T", p.Name, v)
		}
		return strconv.FormatInt(t.UnixMilli(), 10), nil
	}
	return "", fmt.Errorf("lattice: field %q has unknown type %q", p.Name, p.Type)
}

// decodeValue converts a stored primitive string back to the declared Go
// representation. Booleans decode from the literal "true"; anything else is
// false. Unparseable numbers and timestamps surface as errors rather than
// silent zero values.
func decodeValue(p schema.Property, raw string) (any, error) {
	switch p.Type {
	case schema.String:
		return raw, nil
	case schema.Number:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("lattice: field %q holds non-numeric value %q", p.Name, raw)
		}
		return f, nil
	case schema.Boolean:
		return raw == "true", nil
	case schema.Timestamp:
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("lattice: field %q holds non-timestamp value %q", p.Name, raw)
		}
		return time.UnixMilli(ms).UTC(), nil
	}
	return nil, fmt.Errorf("lattice: field %q has unknown type %q", p.Name, p.Type)
}

// sortScore returns the numeric score a value contributes to a sortable
// structure. Registration guarantees sortable fields are one of these types.
func sortScore(p schema.Property, v any) (float64, error) {
	switch p.Type {
	case schema.Number:
		return asFloat(v)
	case schema.Timestamp:
		t, ok := v.(time.Time)
		if !ok {
			return 0, fmt.Errorf("expects a time.Time, got %T", v)
		}
		return float64(t.UnixMilli()), nil
	case schema.Boolean:
		if b, ok := v.(bool); ok {
			if b {
				return 1, nil
			}
			return 0, nil
		}
		return 0, fmt.Errorf("expects a boolean, got %T", v)
	}
	return 0, fmt.Errorf("type %q has no sort score", p.Type)
}

// asFloat widens the accepted numeric input types.
func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	}
	return 0, fmt.Errorf("expects a number, got %T", v)
}
