package destinations

import (
	"fmt"

	_ "modernc.org/sqlite"

	"flatfile/internal/config"
)

// newSQLiteDest opens (or creates) the target database file in WAL mode
// with a busy timeout.
func newSQLiteDest(cfg config.DestConfig, mapping []config.ColumnMapping) (*sqlDest, error) {
	path := cfg.DSN
	if path == "" {
		path = cfg.Database
	}
	if path == "" {
		return nil, fmt.Errorf("sqlite destination needs a dsn or database path")
	}
	dsn := path + "?_journal_mode=WAL&_busy_timeout=5000"
	return newSQLDest("sqlite", sqliteDialect, dsn, cfg.Table, mapping)
}
