package jobs

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

// Claim attempts before giving up on a contended queue for this poll.
const maxClaimRetries = 3

type ImportJobRepo interface {
	Create(dbc dbctx.Context, job *types.ImportJob) (*types.ImportJob, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ImportJob, error)
	// ClaimNext moves the oldest queued job to running and returns it, or nil
	// when the queue is empty.
	ClaimNext(dbc dbctx.Context) (*types.ImportJob, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	Heartbeat(dbc dbctx.Context, id uuid.UUID) error
	// RequeueStale returns running jobs whose last heartbeat is older than cutoff to the queue.
	RequeueStale(dbc dbctx.Context, cutoff time.Time) (int64, error)
}

type importJobRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewImportJobRepo(db *gorm.DB, baseLog *logger.Logger) ImportJobRepo {
	return &importJobRepo{
		db:  db,
		log: baseLog.With("repo", "ImportJobRepo"),
	}
}

func (r *importJobRepo) Create(dbc dbctx.Context, job *types.ImportJob) (*types.ImportJob, error) {
	if job == nil {
		return nil, fmt.Errorf("nil import job")
	}
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.Status == "" {
		job.Status = types.ImportJobQueued
	}
	if err := dbc.DB(r.db).Create(job).Error; err != nil {
		return nil, err
	}
	return job, nil
}

func (r *importJobRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.ImportJob, error) {
	var job types.ImportJob
	err := dbc.DB(r.db).Where("id = ?", id).Take(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("import job %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *importJobRepo) ClaimNext(dbc dbctx.Context) (*types.ImportJob, error) {
	for attempt := 0; attempt < maxClaimRetries; attempt++ {
		var job types.ImportJob
		err := dbc.DB(r.db).
			Where("status = ?", types.ImportJobQueued).
			Order("created_at ASC").
			Limit(1).
			Find(&job).Error
		if err != nil {
			return nil, err
		}
		if job.ID == uuid.Nil {
			return nil, nil
		}

		now := time.Now()
		res := dbc.DB(r.db).
			Model(&types.ImportJob{}).
			Where("id = ? AND status = ?", job.ID, types.ImportJobQueued).
			Updates(map[string]interface{}{
				"status":       types.ImportJobRunning,
				"stage":        "claimed",
				"attempts":     gorm.Expr("attempts + 1"),
				"started_at":   now,
				"heartbeat_at": now,
				"updated_at":   now,
			})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			// another worker got it first
			continue
		}
		job.Status = types.ImportJobRunning
		job.Stage = "claimed"
		job.Attempts++
		job.StartedAt = &now
		job.HeartbeatAt = &now
		return &job, nil
	}
	return nil, nil
}

func (r *importJobRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return dbc.DB(r.db).
		Model(&types.ImportJob{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *importJobRepo) Heartbeat(dbc dbctx.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return nil
	}
	now := time.Now()
	return dbc.DB(r.db).
		Model(&types.ImportJob{}).
		Where("id = ? AND status = ?", id, types.ImportJobRunning).
		Updates(map[string]interface{}{
			"heartbeat_at": now,
			"updated_at":   now,
		}).Error
}

func (r *importJobRepo) RequeueStale(dbc dbctx.Context, cutoff time.Time) (int64, error) {
	res := dbc.DB(r.db).
		Model(&types.ImportJob{}).
		Where("status = ? AND (heartbeat_at IS NULL OR heartbeat_at < ?)", types.ImportJobRunning, cutoff).
		Updates(map[string]interface{}{
			"status":     types.ImportJobQueued,
			"stage":      "requeued",
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		r.log.Warn("Requeued stale import jobs", "count", res.RowsAffected)
	}
	return res.RowsAffected, nil
}
