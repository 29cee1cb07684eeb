package catalog

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

type MappingRepo interface {
	CreateIgnoreConflicts(dbc dbctx.Context, mappings []*types.Mapping) (int64, error)
	// List returns mappings ordered by id; an empty modality means every modality.
	List(dbc dbctx.Context, modality string) ([]*types.Mapping, error)
	ListModalities(dbc dbctx.Context) ([]string, error)
	Count(dbc dbctx.Context) (int64, error)
}

type mappingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMappingRepo(db *gorm.DB, baseLog *logger.Logger) MappingRepo {
	return &mappingRepo{db: db, log: baseLog.With("repo", "MappingRepo")}
}

func (r *mappingRepo) CreateIgnoreConflicts(dbc dbctx.Context, mappings []*types.Mapping) (int64, error) {
	if len(mappings) == 0 {
		return 0, nil
	}
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(&mappings, batchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("insert mappings: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *mappingRepo) List(dbc dbctx.Context, modality string) ([]*types.Mapping, error) {
	q := dbc.DB(r.db).Order("id ASC")
	if modality != "" {
		q = q.Where("modality = ?", modality)
	}
	var out []*types.Mapping
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mappingRepo) ListModalities(dbc dbctx.Context) ([]string, error) {
	var out []string
	if err := dbc.DB(r.db).
		Model(&types.Mapping{}).
		Distinct("modality").
		Order("modality ASC").
		Pluck("modality", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *mappingRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	if err := dbc.DB(r.db).Model(&types.Mapping{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
