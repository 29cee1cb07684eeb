package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pdataviewer-backend/internal/http/response"
	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
	"github.com/yungbote/pdataviewer-backend/internal/services"
)

// CatalogHandler serves the read-only cohort, CDM, longitudinal and
// biomarker views.
type CatalogHandler struct {
	catalog services.CatalogService
}

func NewCatalogHandler(catalog services.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GET /cohorts
func (h *CatalogHandler) CohortNames(c *gin.Context) {
	out, err := h.catalog.CohortNames(c.Request.Context())
	respond(c, out, err)
}

// GET /cohorts/metadata
func (h *CatalogHandler) CohortMetadata(c *gin.Context) {
	out, err := h.catalog.CohortMetadata(c.Request.Context())
	respond(c, out, err)
}

// GET /cdm?modality=
func (h *CatalogHandler) CDM(c *gin.Context) {
	out, err := h.catalog.CDM(c.Request.Context(), c.Query("modality"))
	respond(c, out, err)
}

// GET /cdm/variables
func (h *CatalogHandler) CDMVariables(c *gin.Context) {
	out, err := h.catalog.CDMVariables(c.Request.Context())
	respond(c, out, err)
}

// GET /cdm/modalities
func (h *CatalogHandler) Modalities(c *gin.Context) {
	out, err := h.catalog.Modalities(c.Request.Context())
	respond(c, out, err)
}

// GET /longitudinal
func (h *CatalogHandler) LongitudinalVariables(c *gin.Context) {
	out, err := h.catalog.LongitudinalVariables(c.Request.Context())
	respond(c, out, err)
}

// GET /longitudinal/:variable and /longitudinal/:variable/:cohort
func (h *CatalogHandler) Longitudinal(c *gin.Context) {
	out, err := h.catalog.Longitudinal(c.Request.Context(), c.Param("variable"), c.Param("cohort"))
	respond(c, out, err)
}

// GET /biomarkers
func (h *CatalogHandler) BiomarkerVariables(c *gin.Context) {
	out, err := h.catalog.BiomarkerVariables(c.Request.Context())
	respond(c, out, err)
}

// GET /biomarkers/cohorts?biomarker=
func (h *CatalogHandler) BiomarkerCohorts(c *gin.Context) {
	biomarker, err := requiredQuery(c, "biomarker")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.catalog.BiomarkerCohorts(c.Request.Context(), biomarker)
	respond(c, out, err)
}

// GET /biomarkers/diagnoses?biomarker=
func (h *CatalogHandler) BiomarkerDiagnoses(c *gin.Context) {
	biomarker, err := requiredQuery(c, "biomarker")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.catalog.BiomarkerDiagnoses(c.Request.Context(), biomarker)
	respond(c, out, err)
}

// GET /biomarkers/cohorts/:cohort/diagnoses/:diagnosis?biomarker=
func (h *CatalogHandler) BiomarkerValues(c *gin.Context) {
	biomarker, err := requiredQuery(c, "biomarker")
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	out, err := h.catalog.BiomarkerValues(c.Request.Context(), biomarker, c.Param("cohort"), c.Param("diagnosis"))
	respond(c, out, err)
}

func respond(c *gin.Context, payload any, err error) {
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, payload)
}

func requiredQuery(c *gin.Context, key string) (string, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return "", fmt.Errorf("query parameter %q is required: %w", key, apperr.ErrInvalidArgument)
	}
	return v, nil
}

func invalid(msg string, err error) error {
	if err == nil {
		return fmt.Errorf("%s: %w", msg, apperr.ErrInvalidArgument)
	}
	return fmt.Errorf("%s: %v: %w", msg, err, apperr.ErrInvalidArgument)
}
