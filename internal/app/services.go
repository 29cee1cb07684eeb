package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/pdataviewer-backend/internal/cache"
	"github.com/yungbote/pdataviewer-backend/internal/jobs/pipeline"
	"github.com/yungbote/pdataviewer-backend/internal/jobs/runtime"
	"github.com/yungbote/pdataviewer-backend/internal/jobs/worker"
	"github.com/yungbote/pdataviewer-backend/internal/modules/importer"
	"github.com/yungbote/pdataviewer-backend/internal/observability"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
	"github.com/yungbote/pdataviewer-backend/internal/services"
)

type Services struct {
	Catalog       services.CatalogService
	Visualization services.VisualizationService
	StudyPicker   services.StudyPickerService
	Auth          services.AuthService
	ImportJobs    services.ImportJobService
	Database      services.DatabaseService

	Importer *importer.Importer
	Worker   *worker.Worker
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, r Repos, viewCache *cache.ViewCache, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")
	im := importer.New(importer.Deps{
		Log:          log,
		Tx:           r.Tx,
		Cohorts:      r.Cohort,
		Concepts:     r.Concept,
		Mappings:     r.Mapping,
		Longitudinal: r.Longitudinal,
		Biomarkers:   r.Biomarker,

		MaxExpandedBytes: cfg.MaxUploadBytes * 10,
	})

	out := Services{
		Catalog:       services.NewCatalogService(log, r.Cohort, r.Concept, r.Mapping, r.Longitudinal, r.Biomarker, viewCache),
		Visualization: services.NewVisualizationService(log, r.Cohort, r.Concept, r.Mapping, viewCache),
		StudyPicker:   services.NewStudyPickerService(log, r.Cohort, r.Concept, r.Mapping),
		Auth:          services.NewAuthService(log, r.User),
		ImportJobs:    services.NewImportJobService(log, r.ImportJob),
		Database:      services.NewDatabaseService(db, log, viewCache),
		Importer:      im,
	}

	if cfg.WorkerEnabled {
		reg := runtime.NewRegistry()
		if err := pipeline.Register(reg, im, viewCache); err != nil {
			return Services{}, fmt.Errorf("register import handlers: %w", err)
		}
		out.Worker = worker.NewWorker(log, r.ImportJob, reg, metrics, worker.Config{
			Concurrency:  cfg.WorkerConcurrency,
			PollInterval: cfg.PollInterval,
		})
	}
	return out, nil
}
