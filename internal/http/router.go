package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/pdataviewer-backend/internal/http/handlers"
	httpMW "github.com/yungbote/pdataviewer-backend/internal/http/middleware"
	"github.com/yungbote/pdataviewer-backend/internal/observability"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler        *httpH.HealthHandler
	CatalogHandler       *httpH.CatalogHandler
	VisualizationHandler *httpH.VisualizationHandler
	StudyPickerHandler   *httpH.StudyPickerHandler
	DatabaseHandler      *httpH.DatabaseHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.TraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/version", cfg.HealthHandler.Version)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	if h := cfg.CatalogHandler; h != nil {
		r.GET("/cohorts", h.CohortNames)
		r.GET("/cohorts/metadata", h.CohortMetadata)

		r.GET("/cdm", h.CDM)
		r.GET("/cdm/variables", h.CDMVariables)
		r.GET("/cdm/modalities", h.Modalities)

		r.GET("/longitudinal", h.LongitudinalVariables)
		r.GET("/longitudinal/:variable", h.Longitudinal)
		r.GET("/longitudinal/:variable/:cohort", h.Longitudinal)

		r.GET("/biomarkers", h.BiomarkerVariables)
		r.GET("/biomarkers/cohorts", h.BiomarkerCohorts)
		r.GET("/biomarkers/diagnoses", h.BiomarkerDiagnoses)
		r.GET("/biomarkers/cohorts/:cohort/diagnoses/:diagnosis", h.BiomarkerValues)
	}

	if cfg.VisualizationHandler != nil {
		r.POST("/visualization/chords", cfg.VisualizationHandler.Chords)
	}
	if cfg.StudyPickerHandler != nil {
		r.POST("/studypicker/rank", cfg.StudyPickerHandler.Rank)
	}

	// Database (basic auth)
	if cfg.DatabaseHandler != nil {
		db := r.Group("/database")
		if cfg.AuthMiddleware != nil {
			db.Use(cfg.AuthMiddleware.RequireBasicAuth())
		}
		db.POST("/import", cfg.DatabaseHandler.Import)
		db.GET("/imports/:id", cfg.DatabaseHandler.GetImport)
		db.DELETE("/delete", cfg.DatabaseHandler.Delete)
	}

	return r
}
