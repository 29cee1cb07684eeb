package db

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

// Open connects to the configured driver, migrates the schema and creates the
// uniqueness indexes the import pipeline relies on.
func Open(log *logger.Logger, cfg Config) (*gorm.DB, error) {
	var (
		theDB *gorm.DB
		err   error
	)
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "postgres", "postgresql":
		var pg *PostgresService
		pg, err = NewPostgresService(log, cfg)
		if err == nil {
			theDB = pg.DB()
		}
	case "sqlite", "sqlite3":
		var lite *SQLiteService
		lite, err = NewSQLiteService(log, cfg.SQLitePath)
		if err == nil {
			theDB = lite.DB()
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	if err := Migrate(theDB); err != nil {
		return nil, err
	}
	return theDB, nil
}

func Migrate(db *gorm.DB) error {
	if err := AutoMigrateAll(db); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	if err := EnsureIndexes(db); err != nil {
		return err
	}
	return nil
}
