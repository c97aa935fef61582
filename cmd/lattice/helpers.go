package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"lattice/schema"
	"lattice/store"
)

// recordFromDocument converts a decoded JSON document to a typed record per
// the entity's descriptor. Timestamps accept RFC 3339 strings or epoch
// milliseconds; relation fields accept a primary-key string or a nested
// document.
func recordFromDocument(reg *schema.Registry, typ string, doc map[string]any) (*store.Record, error) {
	desc, err := reg.Lookup(typ)
	if err != nil {
		return nil, err
	}

	rec := store.NewRecord(typ)
	for name, raw := range doc {
		p, ok := desc.Property(name)
		if !ok {
			return nil, fmt.Errorf("entity %q has no field %q", typ, name)
		}
		if raw == nil {
			continue
		}

		if rel, isRel := desc.Relation(name); isRel {
			switch ref := raw.(type) {
			case string:
				rec.Set(name, ref)
			case map[string]any:
				nested, err := recordFromDocument(reg, rel.Target, ref)
				if err != nil {
					return nil, err
				}
				rec.Set(name, nested)
			default:
				return nil, fmt.Errorf("field %q expects a key or a %s document", name, rel.Target)
			}
			continue
		}

		v, err := fieldFromJSON(p, raw)
		if err != nil {
			return nil, err
		}
		rec.Set(name, v)
	}
	return rec, nil
}

func fieldFromJSON(p schema.Property, raw any) (any, error) {
	switch p.Type {
	case schema.String:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("field %q expects a string", p.Name)
		}
		return s, nil
	case schema.Number:
		f, ok := raw.(float64)
		if !ok {
			return nil, fmt.Errorf("field %q expects a number", p.Name)
		}
		return f, nil
	case schema.Boolean:
		b, ok := raw.(bool)
		if !ok {
			return nil, fmt.Errorf("field %q expects a boolean", p.Name)
		}
		return b, nil
	case schema.Timestamp:
		switch t := raw.(type) {
		case string:
			ts, err := time.Parse(time.RFC3339, t)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", p.Name, err)
			}
			return ts, nil
		case float64:
			return time.UnixMilli(int64(t)).UTC(), nil
		}
		return nil, fmt.Errorf("field %q expects an RFC 3339 string or epoch milliseconds", p.Name)
	}
	return nil, fmt.Errorf("field %q has unknown type %q", p.Name, p.Type)
}

// documentFromRecord converts a record back to a JSON-encodable document.
func documentFromRecord(rec *store.Record) map[string]any {
	doc := make(map[string]any, len(rec.Fields))
	for name, v := range rec.Fields {
		switch val := v.(type) {
		case time.Time:
			doc[name] = val.Format(time.RFC3339)
		case *store.Record:
			doc[name] = documentFromRecord(val)
		default:
			doc[name] = val
		}
	}
	return doc
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readDocument decodes a JSON document from the argument, or from stdin when
// the argument is "-".
func readDocument(arg string) (map[string]any, error) {
	data := []byte(arg)
	if arg == "-" {
		var err error
		data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}
