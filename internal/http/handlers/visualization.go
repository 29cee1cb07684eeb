package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pdataviewer-backend/internal/http/response"
	"github.com/yungbote/pdataviewer-backend/internal/services"
)

type VisualizationHandler struct {
	viz services.VisualizationService
}

func NewVisualizationHandler(viz services.VisualizationService) *VisualizationHandler {
	return &VisualizationHandler{viz: viz}
}

type chordsRequest struct {
	Modality string   `json:"modality"`
	Cohorts  []string `json:"cohorts"`
}

// POST /visualization/chords
// Body {"modality": "...", "cohorts": [...]} or ?modality=. The body wins.
func (h *VisualizationHandler) Chords(c *gin.Context) {
	req := chordsRequest{Modality: c.Query("modality")}
	if c.Request.ContentLength != 0 && c.Request.Body != nil {
		var body chordsRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			response.RespondErr(c, invalid("invalid chords request", err))
			return
		}
		if body.Modality != "" {
			req.Modality = body.Modality
		}
		req.Cohorts = body.Cohorts
	}
	out, err := h.viz.Chords(c.Request.Context(), req.Modality, req.Cohorts)
	respond(c, out, err)
}
