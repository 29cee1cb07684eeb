package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pdataviewer-backend/internal/services"
)

type HealthHandler struct{}

func NewHealthHandler() *HealthHandler { return &HealthHandler{} }

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /version
func (h *HealthHandler) Version(c *gin.Context) {
	c.JSON(http.StatusOK, services.Version)
}
