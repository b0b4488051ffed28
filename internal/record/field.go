package record

import (
	"fmt"
	"strings"
)

// ── Field ───────────────────────────────────────────────────
// One positional column in a record type. Declaration order is column
// order: column i of a line lands in field i.

// DefaultCtorFunc is assumed when a field spec names a constructor type
// without a factory func.
const DefaultCtorFunc = "New"

// CtorRef names the value constructor for a field: a registered type name
// plus the factory func bound under it.
type CtorRef struct {
	TypeName string
	Func     string
}

func (c CtorRef) String() string { return c.TypeName + "." + c.Func }

// Field describes a single column of a record type.
type Field struct {
	Name string
	Ctor *CtorRef // nil: raw column text is stored as-is
}

// parseFieldSpec parses a single declaration entry:
//
//	"name"            raw string field
//	"name=Type"       construct via Type.New
//	"name=Type=Func"  construct via Type.Func
func parseFieldSpec(spec string) (Field, error) {
	parts := strings.Split(spec, "=")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch len(parts) {
	case 1:
		if parts[0] == "" {
			return Field{}, fmt.Errorf("field spec %q: empty name", spec)
		}
		return Field{Name: parts[0]}, nil
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return Field{}, fmt.Errorf("field spec %q: empty segment", spec)
		}
		return Field{Name: parts[0], Ctor: &CtorRef{TypeName: parts[1], Func: DefaultCtorFunc}}, nil
	case 3:
		if parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return Field{}, fmt.Errorf("field spec %q: empty segment", spec)
		}
		return Field{Name: parts[0], Ctor: &CtorRef{TypeName: parts[1], Func: parts[2]}}, nil
	default:
		return Field{}, fmt.Errorf("field spec %q: too many segments", spec)
	}
}
