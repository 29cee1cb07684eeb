package observability

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

// Metrics is the process-wide registry served on /metrics. A nil *Metrics
// accepts every call and records nothing.
type Metrics struct {
	apiRequests    *CounterVec
	apiLatency     *HistogramVec
	apiInflight    *Gauge
	imports        *CounterVec
	importDuration *HistogramVec
	rowsImported   *CounterVec
	queueDepth     *GaugeVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("pdv_api_requests_total", "HTTP requests served", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec("pdv_api_request_duration_seconds", "HTTP request latency",
			[]string{"method", "route"}, nil),
		apiInflight: NewGauge("pdv_api_inflight_requests", "HTTP requests in flight"),
		imports:     NewCounterVec("pdv_import_jobs_total", "Finished import jobs", []string{"upload_type", "status"}),
		importDuration: NewHistogramVec("pdv_import_job_duration_seconds", "Import job run time",
			[]string{"upload_type"}, []float64{0.1, 0.5, 1, 5, 15, 60, 300}),
		rowsImported: NewCounterVec("pdv_import_rows_total", "Rows read by successful imports", []string{"upload_type"}),
		queueDepth:   NewGaugeVec("pdv_import_queue_depth", "Import jobs by status", []string{"status"}),
	}
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) InflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) InflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

func (m *Metrics) ObserveImport(uploadType, status string, rows int, dur time.Duration) {
	if m == nil {
		return
	}
	m.imports.Inc(uploadType, status)
	m.importDuration.Observe(dur.Seconds(), uploadType)
	if rows > 0 {
		m.rowsImported.Add(float64(rows), uploadType)
	}
}

// StartJobQueueCollector refreshes the queue depth gauge every interval until
// ctx is done.
func (m *Metrics) StartJobQueueCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 15 * time.Second
	}
	statuses := []string{types.ImportJobQueued, types.ImportJobRunning, types.ImportJobSucceeded, types.ImportJobFailed}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				var rows []struct {
					Status string
					Count  int64
				}
				if err := db.WithContext(ctx).
					Model(&types.ImportJob{}).
					Select("status, count(*) as count").
					Group("status").
					Scan(&rows).Error; err != nil {
					if log != nil {
						log.Warn("metrics: import queue depth query failed", "error", err)
					}
					continue
				}
				for _, s := range statuses {
					m.queueDepth.Set(0, s)
				}
				for _, row := range rows {
					status := strings.TrimSpace(row.Status)
					if status == "" {
						status = "unknown"
					}
					m.queueDepth.Set(float64(row.Count), status)
				}
			}
		}
	}()
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	for _, c := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.imports,
		m.importDuration,
		m.rowsImported,
		m.queueDepth,
	} {
		if err := c.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}
