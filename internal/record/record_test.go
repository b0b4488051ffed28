package record_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"flatfile/internal/record"
)

func TestRecordSetGet(t *testing.T) {
	t.Parallel()

	reg := record.NewRegistry()
	if _, err := reg.Declare("Person", "first", "last"); err != nil {
		t.Fatalf("Declare() error = %v", err)
	}
	eng := record.NewEngine(reg)

	rec, err := eng.New("Person")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if rec.Type() != "Person" {
		t.Fatalf("Type() = %q, want %q", rec.Type(), "Person")
	}
	if set, err := rec.IsSet("first"); err != nil || set {
		t.Fatalf("IsSet() on fresh record = (%v, %v), want (false, nil)", set, err)
	}

	v, err := rec.Set("first", "Ada")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if v != "Ada" {
		t.Fatalf("Set() returned %v, want %q", v, "Ada")
	}
	got, err := rec.Get("first")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "Ada" {
		t.Fatalf("Get() = %v, want %q", got, "Ada")
	}
	if set, _ := rec.IsSet("first"); !set {
		t.Fatalf("IsSet() = false after Set()")
	}

	// Declared but never set: nil value, distinct from "".
	got, err = rec.Get("last")
	if err != nil {
		t.Fatalf("Get() on unset field error = %v", err)
	}
	if got != nil {
		t.Fatalf("Get() on unset field = %v, want nil", got)
	}
}

func TestRecordUnknownField(t *testing.T) {
	t.Parallel()

	reg := record.NewRegistry()
	if _, err := reg.Declare("Person", "first"); err != nil {
		t.Fatalf("Declare() error = %v", err)
	}
	rec, err := record.NewEngine(reg).New("Person")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := rec.Get("ghost"); !errors.Is(err, record.ErrUnknownField) {
		t.Fatalf("Get() error = %v, want ErrUnknownField", err)
	}
	if _, err := rec.Set("ghost", "x"); !errors.Is(err, record.ErrUnknownField) {
		t.Fatalf("Set() error = %v, want ErrUnknownField", err)
	}
	if _, err := rec.IsSet("ghost"); !errors.Is(err, record.ErrUnknownField) {
		t.Fatalf("IsSet() error = %v, want ErrUnknownField", err)
	}
}

func TestRecordConstructor(t *testing.T) {
	t.Parallel()

	reg := record.NewRegistry()
	if _, err := reg.Declare("Person", "first", "dob=Date"); err != nil {
		t.Fatalf("Declare() error = %v", err)
	}

	calls := 0
	var raws []string
	err := reg.RegisterConstructor("Date", "New", func(raw string) (any, error) {
		calls++
		raws = append(raws, raw)
		return time.Date(1968, 5, 3, 0, 0, 0, 0, time.UTC), nil
	})
	if err != nil {
		t.Fatalf("RegisterConstructor() error = %v", err)
	}

	rec, err := record.NewEngine(reg).New("Person")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	v, err := rec.Set("dob", "05/03/1968")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	want := time.Date(1968, 5, 3, 0, 0, 0, 0, time.UTC)
	if !v.(time.Time).Equal(want) {
		t.Fatalf("Set() returned %v, want %v", v, want)
	}
	if calls != 1 {
		t.Fatalf("constructor called %d times, want 1", calls)
	}
	if len(raws) != 1 || raws[0] != "05/03/1968" {
		t.Fatalf("constructor received %v, want the raw column text", raws)
	}
	got, err := rec.Get("dob")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.(time.Time).Equal(want) {
		t.Fatalf("Get() = %v, want the constructed value %v", got, want)
	}

	// Fields without a constructor store the raw text untouched.
	if _, err := rec.Set("first", "Ada"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if calls != 1 {
		t.Fatalf("constructor called %d times after raw Set, want 1", calls)
	}
}

func TestRecordConstructorFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("bad date")
	reg := record.NewRegistry()
	if _, err := reg.Declare("Person", "dob=Date"); err != nil {
		t.Fatalf("Declare() error = %v", err)
	}
	if err := reg.RegisterConstructor("Date", "New", func(raw string) (any, error) {
		return nil, boom
	}); err != nil {
		t.Fatalf("RegisterConstructor() error = %v", err)
	}

	rec, err := record.NewEngine(reg).New("Person")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = rec.Set("dob", "not-a-date")
	if err == nil {
		t.Fatalf("Set() expected error, got nil")
	}

	var cerr *record.ConstructError
	if !errors.As(err, &cerr) {
		t.Fatalf("Set() error type %T, want *ConstructError", err)
	}
	if cerr.TypeName != "Date" || cerr.Func != "New" || cerr.Field != "dob" || cerr.Raw != "not-a-date" {
		t.Fatalf("ConstructError = %+v, want Date.New on dob with raw text", cerr)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("ConstructError should unwrap to the factory error")
	}
	if set, _ := rec.IsSet("dob"); set {
		t.Fatalf("field should stay unset after failed construction")
	}
}

func TestRecordConstructorUnregistered(t *testing.T) {
	t.Parallel()

	reg := record.NewRegistry()
	if _, err := reg.Declare("Person", "dob=Date"); err != nil {
		t.Fatalf("Declare() error = %v", err)
	}

	rec, err := record.NewEngine(reg).New("Person")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = rec.Set("dob", "05/03/1968")
	if !errors.Is(err, record.ErrUnknownConstructor) {
		t.Fatalf("Set() error = %v, want ErrUnknownConstructor", err)
	}
	var cerr *record.ConstructError
	if !errors.As(err, &cerr) {
		t.Fatalf("Set() error type %T, want *ConstructError", err)
	}
}

func TestRecordValuesCopy(t *testing.T) {
	t.Parallel()

	reg := record.NewRegistry()
	if _, err := reg.Declare("T", "a"); err != nil {
		t.Fatalf("Declare() error = %v", err)
	}
	rec, err := record.NewEngine(reg).New("T")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := rec.Set("a", "one"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	vals := rec.Values()
	vals["a"] = "mutated"
	got, err := rec.Get("a")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got != "one" {
		t.Fatalf("Get() = %v after mutating Values() copy, want %q", got, "one")
	}
}

func TestRecordMarshalJSON(t *testing.T) {
	t.Parallel()

	reg := record.NewRegistry()
	if _, err := reg.Declare("T", "a", "b"); err != nil {
		t.Fatalf("Declare() error = %v", err)
	}
	rec, err := record.NewEngine(reg).New("T")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := rec.Set("a", "one"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	out, err := json.Marshal(rec)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(out) != `{"a":"one"}` {
		t.Fatalf("Marshal() = %s, want unset fields omitted", out)
	}
}
