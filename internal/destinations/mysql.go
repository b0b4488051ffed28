package destinations

import (
	"fmt"

	_ "github.com/go-sql-driver/mysql"

	"flatfile/internal/config"
)

// buildMySQLDSN constructs a MySQL DSN from a destination config. An
// explicit dsn wins over the host/port fields.
func buildMySQLDSN(cfg config.DestConfig) string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		cfg.User, cfg.Password, cfg.Host, port, cfg.Database,
	)
	if cfg.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}
