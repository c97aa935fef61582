package schema

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// file is the on-disk shape of a schema document.
type file struct {
	Entities []Descriptor `yaml:"entities"`
}

// Load reads entity descriptors from a YAML file and returns a populated
// registry. The document holds a top-level "entities" list of descriptors:
//
//	entities:
//	  - name: user
//	    primary: id
//	    listable: true
//	    properties:
//	      - {name: id, type: string}
//	      - {name: email, type: string}
//	      - {name: age, type: number, sortable: true}
//	    unique: [email]
//	    index: [status]
//	    relations:
//	      profile: {target: profile, cascadeInsert: true}
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema file: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from a YAML schema document.
func Parse(data []byte) (*Registry, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	r := NewRegistry()
	for _, d := range f.Entities {
		if err := r.Register(d); err != nil {
			return nil, err
		}
	}
	return r, nil
}
