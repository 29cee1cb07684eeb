package runtime

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/pdataviewer-backend/internal/data/repos"
	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/ctxutil"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

/*
Context is the execution handle for one claimed import job.
Handlers never write the import_job row directly; they report through
Progress, Succeed and Fail, which keep the row and the in-memory Job in step.
Terminal transitions drop the stored upload content.
*/
type Context struct {
	Ctx  context.Context
	Job  *types.ImportJob
	Repo repos.ImportJobRepo
	Log  *logger.Logger
	// RowsRead is set by the handler for metrics.
	RowsRead int
}

func NewContext(ctx context.Context, job *types.ImportJob, repo repos.ImportJobRepo, baseLog *logger.Logger) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	c := &Context{Ctx: ctx, Job: job, Repo: repo, Log: baseLog}
	if job != nil {
		c.Ctx = ctxutil.WithTraceData(ctx, &ctxutil.TraceData{RequestID: job.ID.String()})
		if job.RequestedBy != "" {
			c.Ctx = ctxutil.WithUserName(c.Ctx, job.RequestedBy)
		}
		c.Log = baseLog.With("job_id", job.ID, "filename", job.Filename, "upload_type", job.UploadType)
	}
	return c
}

func (c *Context) update(fields map[string]interface{}) {
	if c.Repo == nil || c.Job == nil || c.Job.ID == uuid.Nil {
		return
	}
	if err := c.Repo.UpdateFields(dbctx.Context{Ctx: context.WithoutCancel(c.Ctx)}, c.Job.ID, fields); err != nil {
		c.Log.Warn("Import job update failed", "error", err)
	}
}

func marshalResult(result any) datatypes.JSON {
	if result == nil {
		return nil
	}
	b, err := json.Marshal(result)
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}

// StoreResult records result without changing the job status.
func (c *Context) StoreResult(result any) {
	if c == nil {
		return
	}
	res := marshalResult(result)
	c.update(map[string]interface{}{"result": res})
	if c.Job != nil {
		c.Job.Result = res
	}
}

// Progress records a non-terminal stage and refreshes the heartbeat.
func (c *Context) Progress(stage string) {
	if c == nil {
		return
	}
	now := time.Now()
	c.update(map[string]interface{}{
		"stage":        stage,
		"heartbeat_at": now,
	})
	if c.Job != nil {
		c.Job.Stage = stage
		c.Job.HeartbeatAt = &now
	}
}

// Fail marks the job failed at stage with err as its message.
func (c *Context) Fail(stage string, err error) {
	if c == nil {
		return
	}
	now := time.Now()
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	c.update(map[string]interface{}{
		"status":      types.ImportJobFailed,
		"stage":       stage,
		"error":       msg,
		"content":     nil,
		"finished_at": now,
	})
	if c.Job != nil {
		c.Job.Status = types.ImportJobFailed
		c.Job.Stage = stage
		c.Job.Error = msg
		c.Job.Content = nil
		c.Job.FinishedAt = &now
	}
	c.Log.Error("Import FAILURE", "stage", stage, "error", msg)
}

// Succeed marks the job succeeded and stores result as JSON.
func (c *Context) Succeed(finalStage string, result any) {
	if c == nil {
		return
	}
	now := time.Now()
	res := marshalResult(result)
	c.update(map[string]interface{}{
		"status":       types.ImportJobSucceeded,
		"stage":        finalStage,
		"error":        "",
		"result":       res,
		"content":      nil,
		"heartbeat_at": now,
		"finished_at":  now,
	})
	if c.Job != nil {
		c.Job.Status = types.ImportJobSucceeded
		c.Job.Stage = finalStage
		c.Job.Error = ""
		c.Job.Result = res
		c.Job.Content = nil
		c.Job.FinishedAt = &now
	}
	c.Log.Info("Import SUCCESS", "stage", finalStage)
}
