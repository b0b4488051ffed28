package destinations

import (
	"fmt"

	"flatfile/internal/config"
	"flatfile/internal/record"
)

// ── Column mapping ──────────────────────────────────────────
// Projects record fields onto destination columns. An empty mapping
// writes every declared field under its own name; entries select a
// subset and may rename.

// writePlan is the resolved projection for one schema: which record
// fields are written, under which column names, and the constructor
// hints used for column typing.
type writePlan struct {
	fields  []string
	columns []string
	ctors   []*record.CtorRef
}

func buildPlan(schema *record.Schema, mapping []config.ColumnMapping) (writePlan, error) {
	var plan writePlan
	if len(mapping) == 0 {
		plan.fields = schema.FieldNames()
		plan.columns = plan.fields
		for _, f := range schema.Fields {
			plan.ctors = append(plan.ctors, f.Ctor)
		}
		return plan, nil
	}

	for _, m := range mapping {
		f, ok := schema.Field(m.Field)
		if !ok {
			return writePlan{}, fmt.Errorf("column mapping: %s has no field %q", schema.TypeName, m.Field)
		}
		col := m.Column
		if col == "" {
			col = m.Field
		}
		plan.fields = append(plan.fields, f.Name)
		plan.columns = append(plan.columns, col)
		plan.ctors = append(plan.ctors, f.Ctor)
	}
	return plan, nil
}

// row projects one record through the plan. Unset fields come back as
// nil so drivers write NULL or leave the key absent.
func (p writePlan) row(rec *record.Record) ([]any, error) {
	vals := make([]any, len(p.fields))
	for i, f := range p.fields {
		v, err := rec.Get(f)
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}
