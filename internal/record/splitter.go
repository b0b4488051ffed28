package record

import (
	"fmt"
	"regexp"
	"strings"
)

// ── Splitting ───────────────────────────────────────────────
// A Splitter breaks one line into columns. Every type starts with a
// literal colon and can be switched to any other splitter at runtime;
// the change applies to subsequent parses only.

// DefaultDelimiter is the splitter every declared type starts with.
const DefaultDelimiter = Delim(":")

// Splitter breaks a line into columns. Implementations see the line with
// its terminator already stripped and must not be quote- or escape-aware.
type Splitter interface {
	Split(line string) []string
}

// Delim splits on a literal substring.
type Delim string

func (d Delim) Split(line string) []string { return strings.Split(line, string(d)) }

func (d Delim) String() string { return string(d) }

// Pattern splits on a compiled regular expression.
type Pattern struct {
	re *regexp.Regexp
}

// NewPattern compiles expr into a Pattern splitter.
func NewPattern(expr string) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, fmt.Errorf("compile split pattern: %w", err)
	}
	return Pattern{re: re}, nil
}

func (p Pattern) Split(line string) []string { return p.re.Split(line, -1) }

func (p Pattern) String() string { return p.re.String() }
