package repos

import (
	"github.com/yungbote/pdataviewer-backend/internal/data/repos/auth"
	"github.com/yungbote/pdataviewer-backend/internal/data/repos/catalog"
	"github.com/yungbote/pdataviewer-backend/internal/data/repos/jobs"
	"github.com/yungbote/pdataviewer-backend/internal/data/repos/measurements"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type UserRepo = auth.UserRepo

type CohortRepo = catalog.CohortRepo
type ConceptRepo = catalog.ConceptRepo
type MappingRepo = catalog.MappingRepo

type LongitudinalRepo = measurements.LongitudinalRepo
type LongitudinalRow = measurements.LongitudinalRow
type BiomarkerRepo = measurements.BiomarkerRepo

type ImportJobRepo = jobs.ImportJobRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return auth.NewUserRepo(db, baseLog) }

func NewCohortRepo(db *gorm.DB, baseLog *logger.Logger) CohortRepo {
	return catalog.NewCohortRepo(db, baseLog)
}
func NewConceptRepo(db *gorm.DB, baseLog *logger.Logger) ConceptRepo {
	return catalog.NewConceptRepo(db, baseLog)
}
func NewMappingRepo(db *gorm.DB, baseLog *logger.Logger) MappingRepo {
	return catalog.NewMappingRepo(db, baseLog)
}

func NewLongitudinalRepo(db *gorm.DB, baseLog *logger.Logger) LongitudinalRepo {
	return measurements.NewLongitudinalRepo(db, baseLog)
}
func NewBiomarkerRepo(db *gorm.DB, baseLog *logger.Logger) BiomarkerRepo {
	return measurements.NewBiomarkerRepo(db, baseLog)
}

func NewImportJobRepo(db *gorm.DB, baseLog *logger.Logger) ImportJobRepo {
	return jobs.NewImportJobRepo(db, baseLog)
}
