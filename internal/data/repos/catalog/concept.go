package catalog

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

type ConceptRepo interface {
	// CreateIgnoreConflicts inserts concepts, skipping rows that collide with an
	// existing (variable, source_type, cohort_id). IDs on the input are not
	// reliable afterwards; re-fetch by natural key.
	CreateIgnoreConflicts(dbc dbctx.Context, concepts []*types.Concept) (int64, error)
	GetCDMByVariables(dbc dbctx.Context, variables []string) ([]*types.Concept, error)
	GetCohortConceptsByCohortIDs(dbc dbctx.Context, cohortIDs []uint) ([]*types.Concept, error)
	ListCDM(dbc dbctx.Context) ([]*types.Concept, error)
	ListAll(dbc dbctx.Context) ([]*types.Concept, error)
	CountBySource(dbc dbctx.Context, source types.ConceptSource) (int64, error)
}

type conceptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewConceptRepo(db *gorm.DB, baseLog *logger.Logger) ConceptRepo {
	return &conceptRepo{db: db, log: baseLog.With("repo", "ConceptRepo")}
}

func (r *conceptRepo) CreateIgnoreConflicts(dbc dbctx.Context, concepts []*types.Concept) (int64, error) {
	if len(concepts) == 0 {
		return 0, nil
	}
	for _, c := range concepts {
		if err := c.Validate(); err != nil {
			return 0, err
		}
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&concepts, batchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("insert concepts: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *conceptRepo) GetCDMByVariables(dbc dbctx.Context, variables []string) ([]*types.Concept, error) {
	var out []*types.Concept
	for _, part := range chunks(variables, batchSize) {
		var page []*types.Concept
		if err := dbc.DB(r.db).
			Where("source_type = ? AND variable IN ?", types.ConceptSourceCDM, part).
			Find(&page).Error; err != nil {
			return nil, err
		}
		out = append(out, page...)
	}
	return out, nil
}

func (r *conceptRepo) GetCohortConceptsByCohortIDs(dbc dbctx.Context, cohortIDs []uint) ([]*types.Concept, error) {
	var out []*types.Concept
	for _, part := range chunks(cohortIDs, batchSize) {
		var page []*types.Concept
		if err := dbc.DB(r.db).
			Where("source_type = ? AND cohort_id IN ?", types.ConceptSourceCohort, part).
			Find(&page).Error; err != nil {
			return nil, err
		}
		out = append(out, page...)
	}
	return out, nil
}

func (r *conceptRepo) ListCDM(dbc dbctx.Context) ([]*types.Concept, error) {
	var out []*types.Concept
	if err := dbc.DB(r.db).
		Where("source_type = ?", types.ConceptSourceCDM).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) ListAll(dbc dbctx.Context) ([]*types.Concept, error) {
	var out []*types.Concept
	if err := dbc.DB(r.db).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *conceptRepo) CountBySource(dbc dbctx.Context, source types.ConceptSource) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.Concept{}).Where("source_type = ?", source).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
