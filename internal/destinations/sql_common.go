package destinations

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"flatfile/internal/config"
	"flatfile/internal/record"
)

// ── Shared SQL destination ──────────────────────────────────
// One implementation backs SQLite, MySQL and Postgres; the dialect
// carries the driver-specific pieces.

// dialect captures the driver-specific SQL bits.
type dialect struct {
	placeholder sq.PlaceholderFormat
	quoteIdent  func(string) string
	columnType  func(ctor *record.CtorRef) string
}

var sqliteDialect = dialect{
	placeholder: sq.Question,
	quoteIdent:  quoteDouble,
	columnType: func(ctor *record.CtorRef) string {
		switch ctorType(ctor) {
		case "Int", "Bool":
			return "INTEGER"
		case "Float":
			return "REAL"
		default:
			return "TEXT"
		}
	},
}

var mysqlDialect = dialect{
	placeholder: sq.Question,
	quoteIdent:  quoteBacktick,
	columnType: func(ctor *record.CtorRef) string {
		switch ctorType(ctor) {
		case "Int":
			return "BIGINT"
		case "Float":
			return "DOUBLE"
		case "Bool":
			return "TINYINT(1)"
		case "Date", "Time":
			return "DATETIME"
		default:
			return "TEXT"
		}
	},
}

var postgresDialect = dialect{
	placeholder: sq.Dollar,
	quoteIdent:  quoteDouble,
	columnType: func(ctor *record.CtorRef) string {
		switch ctorType(ctor) {
		case "Int":
			return "BIGINT"
		case "Float":
			return "DOUBLE PRECISION"
		case "Bool":
			return "BOOLEAN"
		case "Date", "Time":
			return "TIMESTAMPTZ"
		default:
			return "TEXT"
		}
	},
}

func ctorType(c *record.CtorRef) string {
	if c == nil {
		return ""
	}
	return c.TypeName
}

func quoteDouble(s string) string   { return `"` + strings.ReplaceAll(s, `"`, `""`) + `"` }
func quoteBacktick(s string) string { return "`" + strings.ReplaceAll(s, "`", "``") + "`" }

// sqlDest writes records into one table of a SQL database.
type sqlDest struct {
	db      *sql.DB
	d       dialect
	table   string
	mapping []config.ColumnMapping
}

func newSQLDest(driverName string, d dialect, dsn, table string, mapping []config.ColumnMapping) (*sqlDest, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driverName, err)
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(10 * time.Minute)

	return &sqlDest{db: db, d: d, table: table, mapping: mapping}, nil
}

func (s *sqlDest) Write(ctx context.Context, schema *record.Schema, records []*record.Record, mode Mode) (int, error) {
	plan, err := buildPlan(schema, s.mapping)
	if err != nil {
		return 0, err
	}

	if mode == ModeReplace {
		drop := "DROP TABLE IF EXISTS " + s.d.quoteIdent(s.table)
		if _, err := s.db.ExecContext(ctx, drop); err != nil {
			return 0, fmt.Errorf("drop table: %w", err)
		}
	}
	if _, err := s.db.ExecContext(ctx, s.createTableSQL(plan)); err != nil {
		return 0, fmt.Errorf("create table: %w", err)
	}
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	builder := sq.StatementBuilder.PlaceholderFormat(s.d.placeholder)
	quoted := make([]string, len(plan.columns))
	for i, c := range plan.columns {
		quoted[i] = s.d.quoteIdent(c)
	}

	// A failure before Commit rolls back every insert, so error paths
	// report zero rows written.
	written := 0
	for _, rec := range records {
		vals, err := plan.row(rec)
		if err != nil {
			return 0, err
		}
		sqlStr, args, err := builder.Insert(s.d.quoteIdent(s.table)).Columns(quoted...).Values(vals...).ToSql()
		if err != nil {
			return 0, fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return 0, fmt.Errorf("insert row %d: %w", written+1, err)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return written, nil
}

func (s *sqlDest) createTableSQL(plan writePlan) string {
	cols := make([]string, len(plan.columns))
	for i, c := range plan.columns {
		cols[i] = s.d.quoteIdent(c) + " " + s.d.columnType(plan.ctors[i])
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", s.d.quoteIdent(s.table), strings.Join(cols, ", "))
}

func (s *sqlDest) Close() error { return s.db.Close() }
