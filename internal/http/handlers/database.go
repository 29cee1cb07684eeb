package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/pdataviewer-backend/internal/http/response"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/ctxutil"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
	"github.com/yungbote/pdataviewer-backend/internal/services"
)

var acceptedUploads = map[string]bool{".zip": true, ".csv": true, ".xlsx": true}

type DatabaseHandler struct {
	log       *logger.Logger
	jobs      services.ImportJobService
	db        services.DatabaseService
	maxUpload int64
}

func NewDatabaseHandler(log *logger.Logger, jobs services.ImportJobService, db services.DatabaseService, maxUploadBytes int64) *DatabaseHandler {
	return &DatabaseHandler{
		log:       log.With("handler", "DatabaseHandler"),
		jobs:      jobs,
		db:        db,
		maxUpload: maxUploadBytes,
	}
}

// POST /database/import
// Multipart field "file"; upload_type and variable come from the query or the form.
func (h *DatabaseHandler) Import(c *gin.Context) {
	if h.maxUpload > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.RespondErr(c, invalid("no file uploaded", err))
		return
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !acceptedUploads[ext] {
		response.RespondErr(c, invalid("invalid file type, only .zip, .csv or .xlsx files are accepted", nil))
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.RespondErr(c, invalid("unreadable upload", err))
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		response.RespondErr(c, invalid("unreadable upload", err))
		return
	}

	uploadType := c.Query("upload_type")
	if uploadType == "" {
		uploadType = c.PostForm("upload_type")
	}
	variable := c.Query("variable")
	if variable == "" {
		variable = c.PostForm("variable")
	}

	job, err := h.jobs.Enqueue(c.Request.Context(), services.EnqueueImportInput{
		UploadType:  uploadType,
		Filename:    filepath.Base(fh.Filename),
		Variable:    variable,
		RequestedBy: ctxutil.GetUserName(c.Request.Context()),
		Content:     content,
	})
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondAccepted(c, fmt.Sprintf("Import of %s started in the background.", job.UploadType), job)
}

// GET /database/imports/:id
func (h *DatabaseHandler) GetImport(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondErr(c, invalid("invalid import job id", err))
		return
	}
	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"job": job})
}

// DELETE /database/delete
func (h *DatabaseHandler) Delete(c *gin.Context) {
	if err := h.db.Wipe(c.Request.Context()); err != nil {
		response.RespondErr(c, err)
		return
	}
	h.log.Info("Database wiped", "user", ctxutil.GetUserName(c.Request.Context()))
	response.RespondMessage(c, "All tables deleted successfully!")
}
