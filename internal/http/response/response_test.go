package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/ingestion/table"
	"github.com/yungbote/pdataviewer-backend/internal/modules/cdm"
)

func respond(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)
	return w, c
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) APIError {
	t.Helper()
	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env.Error
}

func TestRespondErrMissingColumns(t *testing.T) {
	err := fmt.Errorf("import cohorts: %w", &table.MissingColumnsError{
		File:    "cohorts.csv",
		Missing: []string{"Cohort", "Description"},
	})
	w, _ := respond(t, func(c *gin.Context) { RespondErr(c, err) })

	assert.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "missing_columns", body.Code)
	assert.Equal(t, "cohorts.csv", body.File)
	assert.Equal(t, []string{"Cohort", "Description"}, body.Missing)
	assert.Contains(t, body.Message, "missing columns: Cohort, Description")
	assert.Empty(t, body.Variable)
}

func TestRespondErrUnknownVariable(t *testing.T) {
	w, _ := respond(t, func(c *gin.Context) {
		RespondErr(c, &cdm.VariableNotFoundError{Variable: "moca_total"})
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "variable_not_found", body.Code)
	assert.Equal(t, "moca_total", body.Variable)
	assert.Empty(t, body.Missing)
}

func TestRespondErrHidesInternalErrors(t *testing.T) {
	w, c := respond(t, func(c *gin.Context) {
		RespondErr(c, errors.New("pq: connection refused"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decodeError(t, w)
	assert.Equal(t, "internal_error", body.Code)
	assert.Equal(t, "internal server error", body.Message)
	require.Len(t, c.Errors, 1)
	assert.Contains(t, c.Errors.String(), "connection refused")
}

func TestRespondAccepted(t *testing.T) {
	job := &types.ImportJob{UploadType: types.UploadMetadata}
	w, _ := respond(t, func(c *gin.Context) {
		RespondAccepted(c, "Import of metadata started in the background.", job)
	})

	assert.Equal(t, http.StatusAccepted, w.Code)
	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Import of metadata started in the background.", got["message"])
	assert.Contains(t, got, "job")
}
