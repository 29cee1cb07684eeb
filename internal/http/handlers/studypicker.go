package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/pdataviewer-backend/internal/http/response"
	"github.com/yungbote/pdataviewer-backend/internal/services"
)

type StudyPickerHandler struct {
	picker services.StudyPickerService
}

func NewStudyPickerHandler(picker services.StudyPickerService) *StudyPickerHandler {
	return &StudyPickerHandler{picker: picker}
}

// POST /studypicker/rank
// Body is a JSON array of CDM variable names.
func (h *StudyPickerHandler) Rank(c *gin.Context) {
	var variables []string
	if err := c.ShouldBindJSON(&variables); err != nil {
		response.RespondErr(c, invalid("body must be a JSON array of variable names", err))
		return
	}
	out, err := h.picker.Rank(c.Request.Context(), variables)
	respond(c, out, err)
}
