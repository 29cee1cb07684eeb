package worker

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/pdataviewer-backend/internal/data/repos"
	"github.com/yungbote/pdataviewer-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/jobs/pipeline"
	"github.com/yungbote/pdataviewer-backend/internal/jobs/runtime"
	"github.com/yungbote/pdataviewer-backend/internal/modules/importer"
	"github.com/yungbote/pdataviewer-backend/internal/observability"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
)

func newTestWorker(t *testing.T) (*Worker, repos.ImportJobRepo, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	im := importer.New(importer.Deps{
		Log:          log,
		Tx:           repos.NewGormTxRunner(db),
		Cohorts:      repos.NewCohortRepo(db, log),
		Concepts:     repos.NewConceptRepo(db, log),
		Mappings:     repos.NewMappingRepo(db, log),
		Longitudinal: repos.NewLongitudinalRepo(db, log),
		Biomarkers:   repos.NewBiomarkerRepo(db, log),
	})
	reg := runtime.NewRegistry()
	require.NoError(t, pipeline.Register(reg, im, nil))
	jobs := repos.NewImportJobRepo(db, log)
	return NewWorker(log, jobs, reg, observability.NewMetrics(), Config{}), jobs, db
}

func enqueue(t *testing.T, jobs repos.ImportJobRepo, ut types.UploadType, filename, content string) *types.ImportJob {
	t.Helper()
	job, err := jobs.Create(dbctx.Context{Ctx: context.Background()}, &types.ImportJob{
		UploadType: ut,
		Filename:   filename,
		Content:    []byte(content),
	})
	require.NoError(t, err)
	return job
}

func TestRunOnceImportsMetadata(t *testing.T) {
	w, jobs, db := newTestWorker(t)
	ctx := context.Background()
	job := enqueue(t, jobs, types.UploadMetadata, "metadata.csv",
		"cohort,participants,healthyControls,prodromalPatients,pdPatients,longitudinalPatients,followUpInterval,location,doi,link,color\n"+
			"cohort_x,100,40,,60,80,6 months,Luxembourg,,,#ff0000\n")

	assert.True(t, w.RunOnce(ctx))
	assert.False(t, w.RunOnce(ctx), "queue should be drained")

	got, err := jobs.GetByID(dbctx.Context{Ctx: ctx}, job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ImportJobSucceeded, got.Status)
	assert.Empty(t, got.Content)
	assert.NotNil(t, got.FinishedAt)

	var res pipeline.Result
	require.NoError(t, json.Unmarshal(got.Result, &res))
	require.Len(t, res.Files, 1)
	assert.Equal(t, int64(1), res.Files[0].CohortsInserted)

	var n int64
	require.NoError(t, db.Model(&types.Cohort{}).Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestRunOnceRecordsFailure(t *testing.T) {
	w, jobs, _ := newTestWorker(t)
	ctx := context.Background()
	job := enqueue(t, jobs, types.UploadMetadata, "metadata.csv", "cohort,color\ncohort_x,#fff\n")

	assert.True(t, w.RunOnce(ctx))

	got, err := jobs.GetByID(dbctx.Context{Ctx: ctx}, job.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ImportJobFailed, got.Status)
	assert.Equal(t, "import", got.Stage)
	assert.Contains(t, got.Error, "missing columns")
}

func TestRunRequeuesStaleJobsEvenWhenCancelled(t *testing.T) {
	w, jobs, db := newTestWorker(t)
	stale := enqueue(t, jobs, types.UploadMetadata, "metadata.csv", "x")
	fresh := enqueue(t, jobs, types.UploadMetadata, "other.csv", "x")
	require.NoError(t, db.Model(&types.ImportJob{}).Where("id = ?", stale.ID).
		Updates(map[string]interface{}{"status": types.ImportJobRunning, "heartbeat_at": time.Now().Add(-2 * time.Hour)}).Error)
	require.NoError(t, db.Model(&types.ImportJob{}).Where("id = ?", fresh.ID).
		Updates(map[string]interface{}{"status": types.ImportJobRunning, "heartbeat_at": time.Now()}).Error)

	// Shutdown already requested: the pool exits at once, the requeue still lands.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, w.Run(ctx))

	got, err := jobs.GetByID(dbctx.Context{Ctx: context.Background()}, stale.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ImportJobQueued, got.Status)

	got, err = jobs.GetByID(dbctx.Context{Ctx: context.Background()}, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ImportJobRunning, got.Status)
}
