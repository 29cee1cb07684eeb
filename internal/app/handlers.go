package app

import (
	httpH "github.com/yungbote/pdataviewer-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pdataviewer-backend/internal/http/middleware"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

type Handlers struct {
	Health        *httpH.HealthHandler
	Catalog       *httpH.CatalogHandler
	Visualization *httpH.VisualizationHandler
	StudyPicker   *httpH.StudyPickerHandler
	Database      *httpH.DatabaseHandler
}

func wireHandlers(log *logger.Logger, cfg Config, s Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:        httpH.NewHealthHandler(),
		Catalog:       httpH.NewCatalogHandler(s.Catalog),
		Visualization: httpH.NewVisualizationHandler(s.Visualization),
		StudyPicker:   httpH.NewStudyPickerHandler(s.StudyPicker),
		Database:      httpH.NewDatabaseHandler(log, s.ImportJobs, s.Database, cfg.MaxUploadBytes),
	}
}

func wireMiddleware(log *logger.Logger, s Services) *httpMW.AuthMiddleware {
	return httpMW.NewAuthMiddleware(log, s.Auth)
}
