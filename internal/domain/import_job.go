package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UploadType string

const (
	UploadLongitudinal UploadType = "longitudinal"
	UploadBiomarkers   UploadType = "biomarkers"
	UploadMetadata     UploadType = "metadata"
	UploadCDM          UploadType = "cdm"
)

// ParseUploadType accepts the wire names case-insensitively.
func ParseUploadType(raw string) (UploadType, bool) {
	switch UploadType(strings.ToLower(strings.TrimSpace(raw))) {
	case UploadLongitudinal:
		return UploadLongitudinal, true
	case UploadBiomarkers:
		return UploadBiomarkers, true
	case UploadMetadata:
		return UploadMetadata, true
	case UploadCDM:
		return UploadCDM, true
	}
	return "", false
}

const (
	ImportJobQueued    = "queued"
	ImportJobRunning   = "running"
	ImportJobSucceeded = "succeeded"
	ImportJobFailed    = "failed"
)

// ImportJob is a queued upload processed by the background import worker.
type ImportJob struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UploadType  UploadType     `gorm:"column:upload_type;type:varchar(32);not null" json:"uploadType"`
	Filename    string         `gorm:"column:filename;not null" json:"filename"`
	Variable    string         `gorm:"column:variable" json:"variable,omitempty"`
	RequestedBy string         `gorm:"column:requested_by" json:"requestedBy,omitempty"`
	Content     []byte         `gorm:"column:content" json:"-"`
	Status      string         `gorm:"column:status;not null;index" json:"status"`
	Stage       string         `gorm:"column:stage" json:"stage,omitempty"`
	Attempts    int            `gorm:"column:attempts;not null;default:0" json:"attempts"`
	Error       string         `gorm:"column:error" json:"error,omitempty"`
	Result      datatypes.JSON `gorm:"column:result" json:"result,omitempty"`
	HeartbeatAt *time.Time     `gorm:"column:heartbeat_at" json:"heartbeatAt,omitempty"`
	StartedAt   *time.Time     `gorm:"column:started_at" json:"startedAt,omitempty"`
	FinishedAt  *time.Time     `gorm:"column:finished_at" json:"finishedAt,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"createdAt"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updatedAt"`
}

func (ImportJob) TableName() string { return "import_job" }
