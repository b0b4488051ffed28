package record

import (
	"fmt"
	"sort"
	"sync"
)

// ── Registry ────────────────────────────────────────────────
// Declared record types plus the value constructors their fields name.
// Registries are independent: build as many as you need (tests construct
// throwaway instances).

// Constructor builds a field value from raw column text.
type Constructor func(raw string) (any, error)

// Registry holds declared record types and registered constructors.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*Schema
	ctors map[string]Constructor // "Type.Func" -> factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		types: map[string]*Schema{},
		ctors: map[string]Constructor{},
	}
}

// Declare registers typeName with the given ordered field specs and the
// default colon delimiter. Each spec is "name", "name=Type" or
// "name=Type=Func"; a bare type means Type.New. Redeclaring a type fails
// with ErrDuplicateType.
func (r *Registry) Declare(typeName string, fieldSpecs ...string) (*Schema, error) {
	if typeName == "" {
		return nil, fmt.Errorf("declare: empty type name")
	}

	fields := make([]Field, 0, len(fieldSpecs))
	index := make(map[string]int, len(fieldSpecs))
	for _, spec := range fieldSpecs {
		f, err := parseFieldSpec(spec)
		if err != nil {
			return nil, fmt.Errorf("declare %s: %w", typeName, err)
		}
		if _, dup := index[f.Name]; dup {
			return nil, fmt.Errorf("declare %s: duplicate field %q", typeName, f.Name)
		}
		index[f.Name] = len(fields)
		fields = append(fields, f)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[typeName]; exists {
		return nil, fmt.Errorf("declare %s: %w", typeName, ErrDuplicateType)
	}
	s := &Schema{
		TypeName: typeName,
		Fields:   fields,
		index:    index,
		split:    DefaultDelimiter,
		reg:      r,
	}
	r.types[typeName] = s
	return s, nil
}

// Schema returns the schema declared for typeName.
func (r *Registry) Schema(typeName string) (*Schema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.types[typeName]
	if !ok {
		return nil, fmt.Errorf("%q: %w", typeName, ErrUnknownType)
	}
	return s, nil
}

// Types returns the declared type names, sorted.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetDelimiter swaps the splitter used for typeName's subsequent parses.
func (r *Registry) SetDelimiter(typeName string, sp Splitter) error {
	s, err := r.Schema(typeName)
	if err != nil {
		return err
	}
	s.SetSplitter(sp)
	return nil
}

// Delimiter returns the splitter currently configured for typeName.
func (r *Registry) Delimiter(typeName string) (Splitter, error) {
	s, err := r.Schema(typeName)
	if err != nil {
		return nil, err
	}
	return s.Splitter(), nil
}

// RegisterConstructor binds fn as typeName.funcName for fields declared
// with that reference. Constructors may be registered before or after the
// schemas that name them; rebinding a name fails.
func (r *Registry) RegisterConstructor(typeName, funcName string, fn Constructor) error {
	if typeName == "" || funcName == "" || fn == nil {
		return fmt.Errorf("register constructor: type, func and factory are required")
	}
	key := typeName + "." + funcName
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.ctors[key]; exists {
		return fmt.Errorf("register constructor %s: already bound", key)
	}
	r.ctors[key] = fn
	return nil
}

// constructor resolves a CtorRef against the registered factories.
func (r *Registry) constructor(typeName, funcName string) (Constructor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.ctors[typeName+"."+funcName]
	if !ok {
		return nil, fmt.Errorf("%s.%s: %w", typeName, funcName, ErrUnknownConstructor)
	}
	return fn, nil
}
