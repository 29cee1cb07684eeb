package app

import (
	"github.com/gin-gonic/gin"

	server "github.com/yungbote/pdataviewer-backend/internal/http"
	httpMW "github.com/yungbote/pdataviewer-backend/internal/http/middleware"
	"github.com/yungbote/pdataviewer-backend/internal/observability"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

func wireRouter(log *logger.Logger, cfg Config, h Handlers, auth *httpMW.AuthMiddleware, metrics *observability.Metrics) *gin.Engine {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return server.NewRouter(server.RouterConfig{
		Log:                  log.With("component", "HTTP"),
		Metrics:              metrics,
		ServiceName:          serviceName,
		CORSOrigins:          cfg.CORSOrigins,
		AuthMiddleware:       auth,
		HealthHandler:        h.Health,
		CatalogHandler:       h.Catalog,
		VisualizationHandler: h.Visualization,
		StudyPickerHandler:   h.StudyPicker,
		DatabaseHandler:      h.Database,
	})
}
