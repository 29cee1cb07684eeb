package observability

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsExposition(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/cdm", 200, 30*time.Millisecond)
	m.ObserveAPI("GET", "/cdm", 200, 2*time.Second)
	m.ObserveImport("cdm", "succeeded", 12, time.Second)

	assert.Equal(t, float64(2), m.apiRequests.Value("GET", "/cdm", "200"))
	assert.Equal(t, float64(12), m.rowsImported.Value("cdm"))

	var buf bytes.Buffer
	require.NoError(t, m.WritePrometheus(&buf))
	out := buf.String()
	assert.Contains(t, out, `pdv_api_requests_total{method="GET",route="/cdm",status="200"} 2`)
	assert.Contains(t, out, `pdv_api_request_duration_seconds_bucket{method="GET",route="/cdm",le="0.05"} 1`)
	assert.Contains(t, out, `pdv_api_request_duration_seconds_bucket{method="GET",route="/cdm",le="+Inf"} 2`)
	assert.Contains(t, out, `pdv_import_jobs_total{upload_type="cdm",status="succeeded"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", 200, time.Millisecond)
	m.InflightInc()
	m.ObserveImport("cdm", "failed", 0, time.Second)
	assert.NoError(t, m.WritePrometheus(&bytes.Buffer{}))
}

func TestLabelEscaping(t *testing.T) {
	assert.Equal(t, `{a="x\"y",b="unknown"}`, labelString([]string{"a", "b"}, []string{`x"y`}))
	assert.Equal(t, `{le="1"}`, withLe("", "1"))
}

func TestParseHeaders(t *testing.T) {
	assert.Equal(t, map[string]string{"a": "1", "b": "2=3"}, ParseHeaders(" a=1, b=2=3 ,bad,=x"))
	assert.Nil(t, ParseHeaders(""))
}
