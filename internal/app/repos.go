package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/pdataviewer-backend/internal/data/repos"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

type Repos struct {
	Tx repos.TxRunner

	User         repos.UserRepo
	Cohort       repos.CohortRepo
	Concept      repos.ConceptRepo
	Mapping      repos.MappingRepo
	Longitudinal repos.LongitudinalRepo
	Biomarker    repos.BiomarkerRepo
	ImportJob    repos.ImportJobRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Tx:           repos.NewGormTxRunner(db),
		User:         repos.NewUserRepo(db, log),
		Cohort:       repos.NewCohortRepo(db, log),
		Concept:      repos.NewConceptRepo(db, log),
		Mapping:      repos.NewMappingRepo(db, log),
		Longitudinal: repos.NewLongitudinalRepo(db, log),
		Biomarker:    repos.NewBiomarkerRepo(db, log),
		ImportJob:    repos.NewImportJobRepo(db, log),
	}
}
