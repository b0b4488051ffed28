package record

import (
	"errors"
	"fmt"
)

// ── Errors ──────────────────────────────────────────────────
// Failures propagate to the caller unmodified: no retries, no partial
// results, no logging down here.

var (
	// ErrDuplicateType is returned when a type name is declared twice.
	ErrDuplicateType = errors.New("record type already declared")

	// ErrUnknownType is returned for lookups of undeclared type names.
	ErrUnknownType = errors.New("unknown record type")

	// ErrUnknownField is returned by record accessors for field names the
	// schema does not declare.
	ErrUnknownField = errors.New("unknown field")

	// ErrUnknownConstructor is returned when a field names a constructor
	// that was never registered.
	ErrUnknownConstructor = errors.New("unknown constructor")
)

// ConstructError reports a failed field-value construction: the named
// factory was missing or returned an error for the raw column text.
type ConstructError struct {
	TypeName string // constructor type name, e.g. "Date"
	Func     string // factory func bound under the type, e.g. "New"
	Field    string // field being set
	Raw      string // raw column text handed to the factory
	Err      error
}

func (e *ConstructError) Error() string {
	return fmt.Sprintf("construct %s via %s.%s from %q: %v", e.Field, e.TypeName, e.Func, e.Raw, e.Err)
}

func (e *ConstructError) Unwrap() error { return e.Err }

// FileError reports a source file that could not be opened.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return fmt.Sprintf("open %s: %v", e.Path, e.Err) }

func (e *FileError) Unwrap() error { return e.Err }

// ReadError reports a stream that failed mid-read. Line is the 1-based
// number of the line being read when the failure surfaced.
type ReadError struct {
	Line int
	Err  error
}

func (e *ReadError) Error() string { return fmt.Sprintf("read line %d: %v", e.Line, e.Err) }

func (e *ReadError) Unwrap() error { return e.Err }
