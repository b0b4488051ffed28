package record

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// ── Parsing ─────────────────────────────────────────────────
// The engine turns delimited lines into records: one record per line,
// column i -> field i. Splitting is blind to quotes and escapes, and a
// stream is consumed in a single ordered pass.

// Engine parses lines, streams and files against a registry's types.
type Engine struct {
	reg *Registry
}

// NewEngine returns an engine bound to reg.
func NewEngine(reg *Registry) *Engine { return &Engine{reg: reg} }

// New returns a blank record of typeName with no fields set.
func (e *Engine) New(typeName string) (*Record, error) {
	s, err := e.reg.Schema(typeName)
	if err != nil {
		return nil, err
	}
	return newRecord(s), nil
}

// ParseLine builds one record from line. Columns map positionally onto
// the declared fields; surplus columns are dropped and fields beyond the
// last column stay unset.
func (e *Engine) ParseLine(typeName, line string) (*Record, error) {
	s, err := e.reg.Schema(typeName)
	if err != nil {
		return nil, err
	}
	return parseLine(s, line)
}

func parseLine(s *Schema, line string) (*Record, error) {
	cols := trimTrailingEmpty(s.Splitter().Split(chomp(line)))
	rec := newRecord(s)
	for i, f := range s.Fields {
		if i >= len(cols) {
			break
		}
		if _, err := rec.setField(f, cols[i]); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// ParseStream reads src line by line and produces one record per line in
// input order, blank lines included. A read failure aborts the whole
// call: no partial results are returned.
func (e *Engine) ParseStream(typeName string, src io.Reader) ([]*Record, error) {
	s, err := e.reg.Schema(typeName)
	if err != nil {
		return nil, err
	}

	var recs []*Record
	br := bufio.NewReader(src)
	for lineNo := 1; ; lineNo++ {
		line, err := br.ReadString('\n')
		if err != nil && err != io.EOF {
			return nil, &ReadError{Line: lineNo, Err: err}
		}
		if line != "" {
			rec, perr := parseLine(s, line)
			if perr != nil {
				return nil, perr
			}
			recs = append(recs, rec)
		}
		if err == io.EOF {
			return recs, nil
		}
	}
}

// ParseFile opens path and parses its lines. The handle is released on
// every exit path; open failures come back as *FileError.
func (e *Engine) ParseFile(typeName, path string) ([]*Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Err: err}
	}
	defer f.Close()
	return e.ParseStream(typeName, f)
}

// chomp strips one trailing line terminator: "\r\n", "\n" or "\r".
func chomp(line string) string {
	if strings.HasSuffix(line, "\r\n") {
		return line[:len(line)-2]
	}
	if strings.HasSuffix(line, "\n") || strings.HasSuffix(line, "\r") {
		return line[:len(line)-1]
	}
	return line
}

// trimTrailingEmpty drops empty columns off the tail, so a blank line has
// zero columns and "a::" keeps only "a". Interior empties survive.
func trimTrailingEmpty(cols []string) []string {
	n := len(cols)
	for n > 0 && cols[n-1] == "" {
		n--
	}
	return cols[:n]
}
