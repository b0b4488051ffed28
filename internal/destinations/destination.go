package destinations

import (
	"context"
	"fmt"

	"flatfile/internal/config"
	"flatfile/internal/record"
)

// ── Destination ────────────────────────────────────────────
// A Destination loads parsed records into a target system, one table or
// collection per job. Implementations live in this package, one file per
// driver, sharing the SQL core where they can.

// Mode determines how records land in the target.
type Mode string

const (
	ModeReplace Mode = "replace" // drop and recreate the target, insert fresh
	ModeAppend  Mode = "append"  // ensure the target exists, add rows
)

// Destination writes records into a target system.
type Destination interface {
	Write(ctx context.Context, schema *record.Schema, records []*record.Record, mode Mode) (int, error)
	Close() error
}

// Open builds the destination a job's config names. The column mapping
// may be empty, in which case every declared field is written under its
// own name.
func Open(cfg config.DestConfig, columns []config.ColumnMapping) (Destination, error) {
	switch cfg.Driver {
	case "sqlite":
		return newSQLiteDest(cfg, columns)
	case "mysql":
		return newSQLDest("mysql", mysqlDialect, buildMySQLDSN(cfg), cfg.Table, columns)
	case "postgres":
		return newSQLDest("postgres", postgresDialect, buildPostgresDSN(cfg), cfg.Table, columns)
	case "mongodb":
		return newMongoDest(cfg, columns)
	case "webhook":
		return newWebhookDest(cfg, columns)
	default:
		return nil, fmt.Errorf("unsupported destination driver: %s", cfg.Driver)
	}
}
