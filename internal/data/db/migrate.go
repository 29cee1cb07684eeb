package db

import (
	"fmt"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"gorm.io/gorm"
)

// Data tables in dependency order; ClearAll drops them in reverse.
func dataModels() []interface{} {
	return []interface{}{
		&types.Cohort{},
		&types.Concept{},
		&types.Mapping{},
		&types.LongitudinalMeasurement{},
		&types.BiomarkerMeasurement{},
	}
}

func AutoMigrateAll(db *gorm.DB) error {
	all := append([]interface{}{&types.User{}, &types.ImportJob{}}, dataModels()...)
	return db.AutoMigrate(all...)
}

// EnsureIndexes creates the concept uniqueness indexes. They are partial so
// that CDM concepts, whose cohort_id is NULL, still collide on variable.
// Both Postgres and SQLite accept this syntax.
func EnsureIndexes(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uq_concept_cdm_variable
		ON concept (variable)
		WHERE source_type = 'cdm';
	`).Error; err != nil {
		return fmt.Errorf("create uq_concept_cdm_variable: %w", err)
	}
	if err := db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS uq_concept_cohort_variable
		ON concept (variable, cohort_id)
		WHERE source_type = 'cohort';
	`).Error; err != nil {
		return fmt.Errorf("create uq_concept_cohort_variable: %w", err)
	}
	return nil
}

// ClearAll drops every data table and recreates the empty schema. Users and
// the import job history survive a wipe.
func ClearAll(db *gorm.DB) error {
	all := dataModels()
	for i := len(all) - 1; i >= 0; i-- {
		if err := db.Migrator().DropTable(all[i]); err != nil {
			return fmt.Errorf("drop table: %w", err)
		}
	}
	return Migrate(db)
}
