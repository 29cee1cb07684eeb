// Package response shapes every JSON body the API writes: plain payloads on
// success, {"message"} acknowledgements, and {"error": {...}} on failure.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/ingestion/table"
	"github.com/yungbote/pdataviewer-backend/internal/modules/cdm"
)

// APIError is the error body. Missing and Variable repeat the structured part
// of upload and ranking failures so clients need not parse Message.
type APIError struct {
	Message  string   `json:"message"`
	Code     string   `json:"code,omitempty"`
	File     string   `json:"file,omitempty"`
	Missing  []string `json:"missing,omitempty"`
	Variable string   `json:"variable,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

type MessageEnvelope struct {
	Message string `json:"message"`
}

// ImportAccepted answers an upload that was queued for the import worker.
type ImportAccepted struct {
	Message string           `json:"message"`
	Job     *types.ImportJob `json:"job"`
}

// RespondError writes an error body with an explicit status and code.
func RespondError(c *gin.Context, status int, code string, err error) {
	body := APIError{Message: "unknown error", Code: code}
	if err != nil {
		body.Message = err.Error()
	}
	var missing *table.MissingColumnsError
	if errors.As(err, &missing) {
		body.File, body.Missing = missing.File, missing.Missing
	}
	var unknownVar *cdm.VariableNotFoundError
	if errors.As(err, &unknownVar) {
		body.Variable = unknownVar.Variable
	}
	c.JSON(status, ErrorEnvelope{Error: body})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondMessage(c *gin.Context, msg string) {
	c.JSON(http.StatusOK, MessageEnvelope{Message: msg})
}

func RespondAccepted(c *gin.Context, msg string, job *types.ImportJob) {
	c.JSON(http.StatusAccepted, ImportAccepted{Message: msg, Job: job})
}
