package measurements

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

// LongitudinalRow is a measurement joined with its cohort name.
type LongitudinalRow struct {
	ID                uint   `json:"id"`
	Months            int    `json:"months"`
	Variable          string `json:"variable"`
	PatientCount      int    `json:"patientCount"`
	TotalPatientCount int    `json:"totalPatientCount"`
	Cohort            string `json:"cohort"`
}

type LongitudinalRepo interface {
	CreateIgnoreConflicts(dbc dbctx.Context, rows []*types.LongitudinalMeasurement) (int64, error)
	ListVariables(dbc dbctx.Context) ([]string, error)
	// List filters by variable and cohort id when they are non-zero.
	List(dbc dbctx.Context, variable string, cohortID uint) ([]LongitudinalRow, error)
	Count(dbc dbctx.Context) (int64, error)
}

type longitudinalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLongitudinalRepo(db *gorm.DB, baseLog *logger.Logger) LongitudinalRepo {
	return &longitudinalRepo{db: db, log: baseLog.With("repo", "LongitudinalRepo")}
}

func (r *longitudinalRepo) CreateIgnoreConflicts(dbc dbctx.Context, rows []*types.LongitudinalMeasurement) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, batchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("insert longitudinal measurements: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *longitudinalRepo) ListVariables(dbc dbctx.Context) ([]string, error) {
	var out []string
	if err := dbc.DB(r.db).
		Model(&types.LongitudinalMeasurement{}).
		Distinct("variable").
		Order("variable ASC").
		Pluck("variable", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *longitudinalRepo) List(dbc dbctx.Context, variable string, cohortID uint) ([]LongitudinalRow, error) {
	q := dbc.DB(r.db).
		Table("longitudinal_measurement AS lm").
		Select("lm.id, lm.months, lm.variable, lm.patient_count, lm.total_patient_count, c.name AS cohort").
		Joins("JOIN cohort c ON c.id = lm.cohort_id").
		Order("lm.id ASC")
	if variable != "" {
		q = q.Where("lm.variable = ?", variable)
	}
	if cohortID != 0 {
		q = q.Where("lm.cohort_id = ?", cohortID)
	}
	var out []LongitudinalRow
	if err := q.Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *longitudinalRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.LongitudinalMeasurement{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
