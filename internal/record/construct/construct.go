package construct

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"flatfile/internal/record"
)

// ── Builtin constructors ────────────────────────────────────
// The parsing core resolves constructor references by name only; Register
// binds the standard factories onto a registry so field specs like
// "dob=Date" work out of the box. Callers can bind their own factories
// alongside or instead of these.

// dateLayouts tried in order by Date.
var dateLayouts = []string{
	"01/02/2006",
	"2006-01-02",
	"02.01.2006",
	"Jan 2, 2006",
}

// timeLayouts tried in order by Time.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"15:04:05",
	"15:04",
}

// Register binds the builtin factories onto reg under their conventional
// names: Int.New, Float.New, Bool.New, String.New, Date.New, Time.New.
func Register(reg *record.Registry) error {
	bindings := []struct {
		typeName string
		ctor     record.Constructor
	}{
		{"Int", Int},
		{"Float", Float},
		{"Bool", Bool},
		{"String", String},
		{"Date", Date},
		{"Time", Time},
	}
	for _, b := range bindings {
		if err := reg.RegisterConstructor(b.typeName, record.DefaultCtorFunc, b.ctor); err != nil {
			return err
		}
	}
	return nil
}

// Int parses raw as a base-10 integer.
func Int(raw string) (any, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse int: %w", err)
	}
	return n, nil
}

// Float parses raw as a 64-bit float.
func Float(raw string) (any, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return nil, fmt.Errorf("parse float: %w", err)
	}
	return f, nil
}

// Bool accepts true/yes/1 and false/no/0, case-insensitive.
func Bool(raw string) (any, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	}
	return nil, fmt.Errorf("parse bool: unrecognized value %q", raw)
}

// String stores raw untouched. Declaring "name=String" just makes the
// default passthrough explicit.
func String(raw string) (any, error) { return raw, nil }

// Date parses raw against the common date layouts.
func Date(raw string) (any, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("parse date: no layout matches %q", raw)
}

// Time parses raw against RFC3339 and clock layouts.
func Time(raw string) (any, error) {
	s := strings.TrimSpace(raw)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return nil, fmt.Errorf("parse time: no layout matches %q", raw)
}
