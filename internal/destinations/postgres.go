package destinations

import (
	"fmt"

	_ "github.com/lib/pq"

	"flatfile/internal/config"
)

// buildPostgresDSN constructs a Postgres connection string from a
// destination config. An explicit dsn wins over the host/port fields.
func buildPostgresDSN(cfg config.DestConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	port := cfg.Port
	if port == 0 {
		port = 5432
	}
	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, port, cfg.User, cfg.Password, cfg.Database, sslMode,
	)
}
