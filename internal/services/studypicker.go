package services

import (
	"context"

	"github.com/yungbote/pdataviewer-backend/internal/data/repos"
	"github.com/yungbote/pdataviewer-backend/internal/modules/cdm"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

type StudyPickerService interface {
	Rank(ctx context.Context, variables []string) ([]cdm.RankRow, error)
}

type studyPickerService struct {
	log    *logger.Logger
	graphs graphLoader
}

func NewStudyPickerService(log *logger.Logger, cohorts repos.CohortRepo, concepts repos.ConceptRepo, mappings repos.MappingRepo) StudyPickerService {
	return &studyPickerService{
		log:    log.With("service", "StudyPickerService"),
		graphs: graphLoader{cohorts: cohorts, concepts: concepts, mappings: mappings},
	}
}

func (s *studyPickerService) Rank(ctx context.Context, variables []string) ([]cdm.RankRow, error) {
	if len(variables) == 0 {
		return nil, cdm.ErrNoVariables
	}
	g, err := s.graphs.load(dbctx.Context{Ctx: ctx}, "")
	if err != nil {
		return nil, err
	}
	return cdm.RankCohorts(g, variables)
}
