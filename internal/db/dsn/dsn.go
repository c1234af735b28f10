// Package dsn provides Data Source Name construction utilities for database connections.
package dsn

import (
	"fmt"

	"github.com/ToonStack-Admin/ToonStack-Admin/internal/config"
)

// Create builds the Data Source Name for the configured database driver.
func Create(cfg *config.Config) string {
	if cfg.DB.Driver == config.DBDriverPostgres {
		return createPostgres(cfg)
	}

	return createMySQL(cfg)
}

func createMySQL(cfg *config.Config) string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.Name,
		cfg.DB.Extras,
	)
}

func createPostgres(cfg *config.Config) string {
	sslMode := cfg.DB.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		cfg.DB.Host,
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Name,
		cfg.DB.Port,
		sslMode,
	)
}
