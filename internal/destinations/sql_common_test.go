package destinations

import (
	"strings"
	"testing"

	"flatfile/internal/config"
	"flatfile/internal/record"
)

func planSchema(t *testing.T) *record.Schema {
	t.Helper()
	reg := record.NewRegistry()
	s, err := reg.Declare("Person", "first", "last", "dob=Date", "age=Int", "score=Float", "active=Bool")
	if err != nil {
		t.Fatalf("Declare() error = %v", err)
	}
	return s
}

func TestBuildPlanDefault(t *testing.T) {
	t.Parallel()

	plan, err := buildPlan(planSchema(t), nil)
	if err != nil {
		t.Fatalf("buildPlan() error = %v", err)
	}
	if len(plan.fields) != 6 {
		t.Fatalf("plan has %d fields, want all 6", len(plan.fields))
	}
	for i := range plan.fields {
		if plan.fields[i] != plan.columns[i] {
			t.Fatalf("default plan renamed %q to %q", plan.fields[i], plan.columns[i])
		}
	}
}

func TestBuildPlanMapping(t *testing.T) {
	t.Parallel()

	mapping := []config.ColumnMapping{
		{Field: "first", Column: "first_name"},
		{Field: "age"},
	}
	plan, err := buildPlan(planSchema(t), mapping)
	if err != nil {
		t.Fatalf("buildPlan() error = %v", err)
	}
	if len(plan.fields) != 2 {
		t.Fatalf("plan has %d fields, want 2", len(plan.fields))
	}
	if plan.columns[0] != "first_name" {
		t.Fatalf("columns[0] = %q, want %q", plan.columns[0], "first_name")
	}
	if plan.columns[1] != "age" {
		t.Fatalf("columns[1] = %q, want field name fallback", plan.columns[1])
	}
	if plan.ctors[1] == nil || plan.ctors[1].TypeName != "Int" {
		t.Fatalf("ctors[1] = %+v, want the field's Int hint", plan.ctors[1])
	}
}

func TestBuildPlanUnknownField(t *testing.T) {
	t.Parallel()

	_, err := buildPlan(planSchema(t), []config.ColumnMapping{{Field: "ghost"}})
	if err == nil {
		t.Fatalf("buildPlan() expected error for unknown field, got nil")
	}
}

func TestCreateTableSQL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		d    dialect
		want string
	}{
		{
			name: "sqlite",
			d:    sqliteDialect,
			want: `CREATE TABLE IF NOT EXISTS "people" ("first" TEXT, "last" TEXT, "dob" TEXT, "age" INTEGER, "score" REAL, "active" INTEGER)`,
		},
		{
			name: "mysql",
			d:    mysqlDialect,
			want: "CREATE TABLE IF NOT EXISTS `people` (`first` TEXT, `last` TEXT, `dob` DATETIME, `age` BIGINT, `score` DOUBLE, `active` TINYINT(1))",
		},
		{
			name: "postgres",
			d:    postgresDialect,
			want: `CREATE TABLE IF NOT EXISTS "people" ("first" TEXT, "last" TEXT, "dob" TIMESTAMPTZ, "age" BIGINT, "score" DOUBLE PRECISION, "active" BOOLEAN)`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			plan, err := buildPlan(planSchema(t), nil)
			if err != nil {
				t.Fatalf("buildPlan() error = %v", err)
			}
			dest := &sqlDest{d: tc.d, table: "people"}
			if got := dest.createTableSQL(plan); got != tc.want {
				t.Fatalf("createTableSQL() =\n %s\nwant:\n %s", got, tc.want)
			}
		})
	}
}

func TestBuildMySQLDSN(t *testing.T) {
	t.Parallel()

	cfg := config.DestConfig{User: "app", Password: "s3cret", Host: "db.internal", Database: "warehouse"}
	got := buildMySQLDSN(cfg)
	want := "app:s3cret@tcp(db.internal:3306)/warehouse?parseTime=true&charset=utf8mb4"
	if got != want {
		t.Fatalf("buildMySQLDSN() = %q, want %q", got, want)
	}

	cfg.SSLMode = "require"
	if got := buildMySQLDSN(cfg); !strings.HasSuffix(got, "&tls=true") {
		t.Fatalf("buildMySQLDSN() = %q, want tls suffix with sslmode=require", got)
	}

	cfg.DSN = "custom-dsn"
	if got := buildMySQLDSN(cfg); got != "custom-dsn" {
		t.Fatalf("buildMySQLDSN() = %q, want explicit dsn untouched", got)
	}
}

func TestBuildPostgresDSN(t *testing.T) {
	t.Parallel()

	cfg := config.DestConfig{User: "app", Password: "s3cret", Host: "db.internal", Database: "warehouse"}
	got := buildPostgresDSN(cfg)
	want := "host=db.internal port=5432 user=app password=s3cret dbname=warehouse sslmode=disable"
	if got != want {
		t.Fatalf("buildPostgresDSN() = %q, want %q", got, want)
	}

	cfg.Port = 5433
	cfg.SSLMode = "require"
	got = buildPostgresDSN(cfg)
	if !strings.Contains(got, "port=5433") || !strings.Contains(got, "sslmode=require") {
		t.Fatalf("buildPostgresDSN() = %q, want overridden port and sslmode", got)
	}
}
