package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/pdataviewer-backend/internal/data/repos"
	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

type EnqueueImportInput struct {
	UploadType  string
	Filename    string
	Variable    string
	RequestedBy string
	Content     []byte
}

type ImportJobService interface {
	Enqueue(ctx context.Context, in EnqueueImportInput) (*types.ImportJob, error)
	Get(ctx context.Context, id uuid.UUID) (*types.ImportJob, error)
}

type importJobService struct {
	log  *logger.Logger
	jobs repos.ImportJobRepo
}

func NewImportJobService(log *logger.Logger, jobs repos.ImportJobRepo) ImportJobService {
	return &importJobService{
		log:  log.With("service", "ImportJobService"),
		jobs: jobs,
	}
}

func (s *importJobService) Enqueue(ctx context.Context, in EnqueueImportInput) (*types.ImportJob, error) {
	ut, ok := types.ParseUploadType(in.UploadType)
	if !ok {
		return nil, fmt.Errorf("unknown upload type %q: %w", in.UploadType, apperr.ErrInvalidArgument)
	}
	filename := strings.TrimSpace(in.Filename)
	if filename == "" {
		return nil, fmt.Errorf("missing filename: %w", apperr.ErrInvalidArgument)
	}
	if len(in.Content) == 0 {
		return nil, fmt.Errorf("%s: empty upload: %w", filename, apperr.ErrInvalidArgument)
	}
	job, err := s.jobs.Create(dbctx.Context{Ctx: ctx}, &types.ImportJob{
		UploadType:  ut,
		Filename:    filename,
		Variable:    strings.TrimSpace(in.Variable),
		RequestedBy: in.RequestedBy,
		Content:     in.Content,
		Status:      types.ImportJobQueued,
		Stage:       "queued",
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("Queued import", "job_id", job.ID, "filename", filename, "upload_type", ut, "bytes", len(in.Content))
	return job, nil
}

func (s *importJobService) Get(ctx context.Context, id uuid.UUID) (*types.ImportJob, error) {
	return s.jobs.GetByID(dbctx.Context{Ctx: ctx}, id)
}
