package codebase

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/roach88/phpnarrow/internal/typespec"
)

// File is the YAML form of a fixture codebase.
//
//	classes:
//	  - name: Collection
//	    interfaces: [ArrayAccess]
//	    array_access: {key: int, value: string}
//	  - name: Suit
//	    kind: enum
//	    cases: [Hearts, Spades]
type File struct {
	Classes []ClassSpec `yaml:"classes"`
}

// ClassSpec is one declaration in a File.
type ClassSpec struct {
	Name        string           `yaml:"name"`
	Kind        Kind             `yaml:"kind,omitempty"`
	Parent      string           `yaml:"parent,omitempty"`
	Interfaces  []string         `yaml:"interfaces,omitempty"`
	Final       bool             `yaml:"final,omitempty"`
	Cases       []string         `yaml:"cases,omitempty"`
	ArrayAccess *ArrayAccessSpec `yaml:"array_access,omitempty"`
}

// ArrayAccessSpec binds ArrayAccess<Key, Value>.
type ArrayAccessSpec struct {
	Key   typespec.Spec `yaml:"key"`
	Value typespec.Spec `yaml:"value"`
}

// Load reads a File and returns a table holding the built-ins plus every
// declared class.
func Load(r io.Reader) (*Memory, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode codebase: %w", err)
	}
	m := NewMemory()
	if err := m.AddFile(f); err != nil {
		return nil, err
	}
	return m, nil
}

// AddFile registers every declaration of f.
func (m *Memory) AddFile(f File) error {
	for _, cs := range f.Classes {
		if cs.Name == "" {
			return fmt.Errorf("codebase: class without a name")
		}
		switch cs.Kind {
		case "", KindClass, KindInterface, KindEnum, KindTrait:
		default:
			return fmt.Errorf("codebase: class %s: unknown kind %q", cs.Name, cs.Kind)
		}
		info := ClassInfo{
			Name:       cs.Name,
			Kind:       cs.Kind,
			Parent:     cs.Parent,
			Interfaces: cs.Interfaces,
			Final:      cs.Final,
			Cases:      cs.Cases,
		}
		if cs.ArrayAccess != nil {
			k, err := cs.ArrayAccess.Key.Build()
			if err != nil {
				return fmt.Errorf("codebase: class %s: array_access key: %w", cs.Name, err)
			}
			v, err := cs.ArrayAccess.Value.Build()
			if err != nil {
				return fmt.Errorf("codebase: class %s: array_access value: %w", cs.Name, err)
			}
			info.ArrayAccessKey, info.ArrayAccessValue = k, v
		}
		m.Add(info)
	}
	return nil
}
