package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/pdataviewer-backend/internal/pkg/ctxutil"
)

func TestTraceContextRequestID(t *testing.T) {
	t.Parallel()
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(TraceContext())
	r.GET("/cohorts", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		if td == nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, td.RequestID)
	})

	cases := []struct {
		name   string
		header string
		keep   bool
	}{
		{"client id kept", "import-42", true},
		{"missing", "", false},
		{"spaces rejected", "bad id", false},
		{"too long", strings.Repeat("a", maxRequestIDLen+1), false},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/cohorts", nil)
		if tc.header != "" {
			req.Header.Set(requestIDHeader, tc.header)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		got := rec.Header().Get(requestIDHeader)
		if got == "" || rec.Body.String() != got {
			t.Fatalf("%s: header %q body %q", tc.name, got, rec.Body.String())
		}
		if tc.keep != (got == tc.header) {
			t.Fatalf("%s: got request id %q", tc.name, got)
		}
	}
}
