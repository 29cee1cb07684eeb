package catalog

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

type CohortRepo interface {
	// CreateIgnoreConflicts inserts cohorts, skipping names that already exist.
	// It returns the number of rows actually inserted.
	CreateIgnoreConflicts(dbc dbctx.Context, cohorts []*types.Cohort) (int64, error)
	List(dbc dbctx.Context) ([]*types.Cohort, error)
	ListNames(dbc dbctx.Context) ([]string, error)
	GetByName(dbc dbctx.Context, name string) (*types.Cohort, error)
	NameToID(dbc dbctx.Context) (map[string]uint, error)
	Count(dbc dbctx.Context) (int64, error)
}

type cohortRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCohortRepo(db *gorm.DB, baseLog *logger.Logger) CohortRepo {
	return &cohortRepo{db: db, log: baseLog.With("repo", "CohortRepo")}
}

func (r *cohortRepo) CreateIgnoreConflicts(dbc dbctx.Context, cohorts []*types.Cohort) (int64, error) {
	if len(cohorts) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&cohorts, batchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("insert cohorts: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *cohortRepo) List(dbc dbctx.Context) ([]*types.Cohort, error) {
	var out []*types.Cohort
	if err := dbc.DB(r.db).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cohortRepo) ListNames(dbc dbctx.Context) ([]string, error) {
	var out []string
	if err := dbc.DB(r.db).Model(&types.Cohort{}).Order("name ASC").Pluck("name", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cohortRepo) GetByName(dbc dbctx.Context, name string) (*types.Cohort, error) {
	var c types.Cohort
	err := dbc.DB(r.db).Where("name = ?", name).Take(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("cohort %q: %w", name, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// NameToID snapshots the cohort name -> id map used to resolve import rows.
func (r *cohortRepo) NameToID(dbc dbctx.Context) (map[string]uint, error) {
	var rows []struct {
		ID   uint
		Name string
	}
	if err := dbc.DB(r.db).Model(&types.Cohort{}).Select("id, name").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]uint, len(rows))
	for _, row := range rows {
		out[row.Name] = row.ID
	}
	return out, nil
}

func (r *cohortRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.Cohort{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
