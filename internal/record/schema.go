package record

import "sync"

// ── Schema ──────────────────────────────────────────────────

// Schema is the declared shape of one record type: an ordered field list
// plus the splitter used to break lines into columns. Fields are fixed at
// declaration; the splitter may be swapped at any time.
type Schema struct {
	TypeName string
	Fields   []Field

	index map[string]int // field name -> position

	mu    sync.RWMutex
	split Splitter

	reg *Registry // constructor lookups
}

// FieldNames returns the declared field names in positional order.
func (s *Schema) FieldNames() []string {
	names := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		names[i] = f.Name
	}
	return names
}

// Field returns the named field's descriptor.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// Splitter returns the splitter currently used for this type.
func (s *Schema) Splitter() Splitter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.split
}

// SetSplitter swaps the splitter used by subsequent parses. Records
// already produced are unaffected.
func (s *Schema) SetSplitter(sp Splitter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.split = sp
}
