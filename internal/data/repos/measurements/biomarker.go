package measurements

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

type BiomarkerRepo interface {
	CreateIgnoreConflicts(dbc dbctx.Context, rows []*types.BiomarkerMeasurement) (int64, error)
	ListVariables(dbc dbctx.Context) ([]string, error)
	ListCohortNames(dbc dbctx.Context, variable string) ([]string, error)
	ListDiagnoses(dbc dbctx.Context, variable, cohortName string) ([]string, error)
	// ListValues filters by cohort id and diagnosis when they are non-zero.
	ListValues(dbc dbctx.Context, variable string, cohortID uint, diagnosis string) ([]float64, error)
	Count(dbc dbctx.Context) (int64, error)
}

type biomarkerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBiomarkerRepo(db *gorm.DB, baseLog *logger.Logger) BiomarkerRepo {
	return &biomarkerRepo{db: db, log: baseLog.With("repo", "BiomarkerRepo")}
}

func (r *biomarkerRepo) CreateIgnoreConflicts(dbc dbctx.Context, rows []*types.BiomarkerMeasurement) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&rows, batchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("insert biomarker measurements: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *biomarkerRepo) ListVariables(dbc dbctx.Context) ([]string, error) {
	var out []string
	if err := dbc.DB(r.db).
		Model(&types.BiomarkerMeasurement{}).
		Distinct("variable").
		Order("variable ASC").
		Pluck("variable", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *biomarkerRepo) ListCohortNames(dbc dbctx.Context, variable string) ([]string, error) {
	var out []string
	if err := dbc.DB(r.db).
		Table("cohort AS c").
		Joins("JOIN biomarker_measurement bm ON bm.cohort_id = c.id").
		Where("bm.variable = ?", variable).
		Distinct("c.name").
		Order("c.name ASC").
		Pluck("c.name", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *biomarkerRepo) ListDiagnoses(dbc dbctx.Context, variable, cohortName string) ([]string, error) {
	var out []string
	if err := dbc.DB(r.db).
		Table("biomarker_measurement AS bm").
		Joins("JOIN cohort c ON c.id = bm.cohort_id").
		Where("bm.variable = ? AND c.name = ?", variable, cohortName).
		Distinct("bm.diagnosis").
		Order("bm.diagnosis ASC").
		Pluck("bm.diagnosis", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *biomarkerRepo) ListValues(dbc dbctx.Context, variable string, cohortID uint, diagnosis string) ([]float64, error) {
	q := dbc.DB(r.db).
		Model(&types.BiomarkerMeasurement{}).
		Where("variable = ?", variable).
		Order("id ASC")
	if cohortID != 0 {
		q = q.Where("cohort_id = ?", cohortID)
	}
	if diagnosis != "" {
		q = q.Where("diagnosis = ?", diagnosis)
	}
	var out []float64
	if err := q.Pluck("measurement", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *biomarkerRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.BiomarkerMeasurement{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
