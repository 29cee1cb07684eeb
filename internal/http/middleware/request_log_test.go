package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

func observedLogger() (*logger.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return &logger.Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestRequestLoggerFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log, logs := observedLogger()

	r := gin.New()
	r.Use(TraceContext(), RequestLogger(log))
	r.GET("/healthcheck", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/cohorts/:name", func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "cohort not found"})
	})
	r.GET("/concepts", func(c *gin.Context) { c.JSON(http.StatusOK, []string{}) })

	for _, target := range []string{"/healthcheck", "/cohorts/PPMI", "/concepts?q=age"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, target, nil))
	}

	entries := logs.All()
	require.Len(t, entries, 3)

	health := entries[0]
	assert.Equal(t, zapcore.DebugLevel, health.Level)
	assert.Equal(t, "Request", health.Message)

	missing := entries[1]
	assert.Equal(t, zapcore.WarnLevel, missing.Level)
	assert.Equal(t, "Request rejected", missing.Message)
	fields := missing.ContextMap()
	assert.Equal(t, "http", fields["component"])
	assert.Equal(t, "/cohorts/:name", fields["route"])
	assert.Equal(t, "/cohorts/PPMI", fields["path"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
	assert.NotEmpty(t, fields["request_id"])

	search := entries[2]
	assert.Equal(t, zapcore.InfoLevel, search.Level)
	fields = search.ContextMap()
	assert.Equal(t, "q=age", fields["query"])
	assert.NotContains(t, fields, "path")
	assert.NotContains(t, fields, "user")
}

func TestRequestLoggerNilPassesThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestLogger(nil))
	r.GET("/version", func(c *gin.Context) { c.String(http.StatusOK, "dev") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/version", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dev", w.Body.String())
}
