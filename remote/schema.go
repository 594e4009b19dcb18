// Package remote implements a schema-driven property mirror for objects that
// live on the other side of a network connection.
//
// Local writes are applied optimistically and turned into exactly one outbound
// command; status reads coming back from the remote are merged without echoing
// those writes back out as new commands.
package remote

import (
	"fmt"
)

// Command is a single outbound request to the remote side.
type Command struct {
	Name   string
	Params map[string]string
}

// String renders the command for logs.
func (c Command) String() string {
	if len(c.Params) == 0 {
		return c.Name
	}
	return fmt.Sprintf("%s%v", c.Name, c.Params)
}

// View gives read access to the current local values while the engine holds
// its lock. It must not be retained after the callback returns.
type View interface {
	Get(name string) any
}

// Field declares one property of a remote object.
type Field struct {
	Name string

	// Default is the value before anything has been read from the remote.
	Default any

	// ReadOnly fields are only ever updated from snapshots.
	ReadOnly bool

	// Validate normalizes a candidate value against the field's domain.
	// A nil Validate accepts anything.
	Validate func(value any, view View) (any, error)

	// Command builds the outbound request for a new value.
	Command func(value any) Command
}

func (f Field) normalize(value any, view View) (any, error) {
	if f.Validate == nil {
		return value, nil
	}
	return f.Validate(value, view)
}

// Schema is the closed set of fields for one kind of remote object.
type Schema struct {
	fields []Field
	index  map[string]int
}

// NewSchema builds a schema from fields in declaration order. Declaration order
// is also the order in which change notifications are emitted.
func NewSchema(fields ...Field) (*Schema, error) {
	s := &Schema{index: make(map[string]int, len(fields))}

	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("schema: field without a name")
		}
		if _, exists := s.index[f.Name]; exists {
			return nil, fmt.Errorf("schema: duplicate field %s", f.Name)
		}
		if !f.ReadOnly && f.Command == nil {
			return nil, fmt.Errorf("schema: writable field %s has no command", f.Name)
		}

		s.index[f.Name] = len(s.fields)
		s.fields = append(s.fields, f)
	}

	return s, nil
}

// Field looks up a field by name.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[i], true
}

// Names returns field names in declaration order.
func (s *Schema) Names() []string {
	names := make([]string, len(s.fields))
	for i, f := range s.fields {
		names[i] = f.Name
	}
	return names
}

type values map[string]any

func (v values) Get(name string) any {
	return v[name]
}

// Bool reads a boolean from a view, returning false for missing values.
func Bool(v View, name string) bool {
	b, _ := v.Get(name).(bool)
	return b
}

// Float reads a float64 from a view, returning 0 for missing values.
func Float(v View, name string) float64 {
	f, _ := v.Get(name).(float64)
	return f
}
