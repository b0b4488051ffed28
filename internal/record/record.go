package record

import (
	"encoding/json"
	"fmt"
)

// ── Record ──────────────────────────────────────────────────
// A single parsed row: field values keyed by name, tied to the schema
// that produced it. A field that never received a column stays unset,
// which is not the same as holding the empty string.

// Record is one row of a declared type.
type Record struct {
	schema *Schema
	values map[string]any
}

func newRecord(s *Schema) *Record {
	return &Record{schema: s, values: make(map[string]any, len(s.Fields))}
}

// Type returns the record's type name.
func (r *Record) Type() string { return r.schema.TypeName }

// Schema returns the schema this record was built from.
func (r *Record) Schema() *Schema { return r.schema }

// Get returns the value stored for the named field, or nil when the field
// is unset. Names outside the schema fail with ErrUnknownField.
func (r *Record) Get(name string) (any, error) {
	if _, ok := r.schema.Field(name); !ok {
		return nil, fmt.Errorf("%s.%s: %w", r.schema.TypeName, name, ErrUnknownField)
	}
	return r.values[name], nil
}

// IsSet reports whether the named field holds a value.
func (r *Record) IsSet(name string) (bool, error) {
	if _, ok := r.schema.Field(name); !ok {
		return false, fmt.Errorf("%s.%s: %w", r.schema.TypeName, name, ErrUnknownField)
	}
	_, set := r.values[name]
	return set, nil
}

// Set runs raw through the field's constructor when one is declared,
// stores the result and returns it. Fields without a constructor store
// raw unchanged.
func (r *Record) Set(name, raw string) (any, error) {
	f, ok := r.schema.Field(name)
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", r.schema.TypeName, name, ErrUnknownField)
	}
	return r.setField(f, raw)
}

func (r *Record) setField(f Field, raw string) (any, error) {
	val := any(raw)
	if f.Ctor != nil {
		fn, err := r.schema.reg.constructor(f.Ctor.TypeName, f.Ctor.Func)
		if err != nil {
			return nil, &ConstructError{TypeName: f.Ctor.TypeName, Func: f.Ctor.Func, Field: f.Name, Raw: raw, Err: err}
		}
		v, err := fn(raw)
		if err != nil {
			return nil, &ConstructError{TypeName: f.Ctor.TypeName, Func: f.Ctor.Func, Field: f.Name, Raw: raw, Err: err}
		}
		val = v
	}
	r.values[f.Name] = val
	return val, nil
}

// Values returns a copy of the set fields.
func (r *Record) Values() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// MarshalJSON encodes the set fields as a JSON object.
func (r *Record) MarshalJSON() ([]byte, error) { return json.Marshal(r.values) }
