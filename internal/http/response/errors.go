package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pdataviewer-backend/internal/ingestion/table"
	"github.com/yungbote/pdataviewer-backend/internal/modules/cdm"
	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
)

var errInternal = errors.New("internal server error")

// StatusFor maps a service error to its HTTP status and error code.
func StatusFor(err error) (int, string) {
	var missing *table.MissingColumnsError
	var unknownVar *cdm.VariableNotFoundError
	switch {
	case errors.As(err, &missing):
		return http.StatusBadRequest, "missing_columns"
	case errors.As(err, &unknownVar):
		return http.StatusNotFound, "variable_not_found"
	case errors.Is(err, apperr.ErrInvalidArgument):
		return http.StatusBadRequest, "invalid_request"
	case errors.Is(err, apperr.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	}
	return http.StatusInternalServerError, "internal_error"
}

// RespondErr writes err with the status StatusFor picks. Internal errors are
// not echoed to the client.
func RespondErr(c *gin.Context, err error) {
	status, code := StatusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		RespondError(c, status, code, errInternal)
		return
	}
	RespondError(c, status, code, err)
}
