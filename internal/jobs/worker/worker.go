package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/yungbote/pdataviewer-backend/internal/data/repos"
	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/jobs/runtime"
	"github.com/yungbote/pdataviewer-backend/internal/observability"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

type Config struct {
	Concurrency    int
	PollInterval   time.Duration
	HeartbeatEvery time.Duration
	// StaleAfter is how long a running job may go without a heartbeat before
	// it is requeued at startup.
	StaleAfter time.Duration
}

func (c Config) withDefaults() Config {
	if c.Concurrency < 1 {
		c.Concurrency = 1
	}
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.HeartbeatEvery <= 0 {
		c.HeartbeatEvery = 30 * time.Second
	}
	if c.StaleAfter <= 0 {
		c.StaleAfter = 30 * time.Minute
	}
	return c
}

type Worker struct {
	log      *logger.Logger
	repo     repos.ImportJobRepo
	registry *runtime.Registry
	metrics  *observability.Metrics
	cfg      Config
}

func NewWorker(baseLog *logger.Logger, repo repos.ImportJobRepo, registry *runtime.Registry, metrics *observability.Metrics, cfg Config) *Worker {
	return &Worker{
		log:      baseLog.With("component", "ImportWorker"),
		repo:     repo,
		registry: registry,
		metrics:  metrics,
		cfg:      cfg.withDefaults(),
	}
}

// Run requeues stale jobs, then polls the queue until ctx is done.
func (w *Worker) Run(ctx context.Context) error {
	w.requeueStale(ctx)

	w.log.Info("Starting import worker pool", "concurrency", w.cfg.Concurrency, "upload_types", w.registry.Types())
	var wg sync.WaitGroup
	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			w.runLoop(ctx, workerID)
		}(i + 1)
	}
	wg.Wait()
	return nil
}

// requeueStale puts running jobs whose heartbeat is older than StaleAfter
// back on the queue. It outlives a cancelled ctx so a shutdown racing startup
// cannot strand jobs as running.
func (w *Worker) requeueStale(ctx context.Context) {
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
	defer cancel()
	cutoff := time.Now().Add(-w.cfg.StaleAfter)
	if _, err := w.repo.RequeueStale(dbctx.Context{Ctx: rctx}, cutoff); err != nil {
		w.log.Warn("RequeueStale failed", "error", err)
	}
}

func (w *Worker) runLoop(ctx context.Context, workerID int) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.log.Info("Worker loop stopped", "worker_id", workerID)
			return
		case <-ticker.C:
			for w.RunOnce(ctx) {
				if ctx.Err() != nil {
					return
				}
			}
		}
	}
}

// RunOnce claims and runs at most one job. It reports whether a job was run.
func (w *Worker) RunOnce(ctx context.Context) bool {
	job, err := w.repo.ClaimNext(dbctx.Context{Ctx: ctx})
	if err != nil {
		w.log.Warn("ClaimNext failed", "error", err)
		return false
	}
	if job == nil {
		return false
	}
	w.execute(ctx, job)
	return true
}

func (w *Worker) execute(ctx context.Context, job *types.ImportJob) {
	jc := runtime.NewContext(ctx, job, w.repo, w.log)
	start := time.Now()
	defer func() {
		w.metrics.ObserveImport(string(job.UploadType), jc.Job.Status, jc.RowsRead, time.Since(start))
	}()

	h, ok := w.registry.Get(job.UploadType)
	if !ok {
		jc.Fail("dispatch", &missingHandlerError{UploadType: string(job.UploadType)})
		return
	}

	hbCtx, stopHeartbeat := context.WithCancel(ctx)
	defer stopHeartbeat()
	go w.heartbeat(hbCtx, job)

	defer func() {
		if r := recover(); r != nil {
			w.log.Error("Import handler panic", "job_id", job.ID, "upload_type", job.UploadType, "panic", r)
			jc.Fail("panic", &panicError{Val: r})
		}
	}()
	if runErr := h.Run(jc); runErr != nil {
		// handlers normally fail the job themselves
		jc.Fail("run", runErr)
	}
}

func (w *Worker) heartbeat(ctx context.Context, job *types.ImportJob) {
	t := time.NewTicker(w.cfg.HeartbeatEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := w.repo.Heartbeat(dbctx.Context{Ctx: ctx}, job.ID); err != nil {
				w.log.Warn("Heartbeat failed", "job_id", job.ID, "error", err)
			}
		}
	}
}

type missingHandlerError struct{ UploadType string }

func (e *missingHandlerError) Error() string {
	return "no handler registered for upload_type=" + e.UploadType
}

type panicError struct{ Val any }

func (e *panicError) Error() string { return fmt.Sprintf("panic: %v", e.Val) }
