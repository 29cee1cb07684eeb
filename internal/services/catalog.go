package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/pdataviewer-backend/internal/cache"
	"github.com/yungbote/pdataviewer-backend/internal/data/repos"
	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/modules/cdm"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

// Version is the API version reported by /version.
var Version = "0.0.2"

// CompleteDiagnosis selects every diagnosis of a cohort.
const CompleteDiagnosis = "Complete"

type CatalogService interface {
	CohortNames(ctx context.Context) ([]string, error)
	CohortMetadata(ctx context.Context) ([]*types.Cohort, error)

	CDMVariables(ctx context.Context) ([]string, error)
	Modalities(ctx context.Context) ([]string, error)
	CDM(ctx context.Context, modality string) (cdm.Table, error)

	LongitudinalVariables(ctx context.Context) ([]string, error)
	Longitudinal(ctx context.Context, variable, cohort string) ([]repos.LongitudinalRow, error)

	BiomarkerVariables(ctx context.Context) ([]string, error)
	BiomarkerCohorts(ctx context.Context, biomarker string) ([]string, error)
	BiomarkerDiagnoses(ctx context.Context, biomarker string) ([]string, error)
	BiomarkerValues(ctx context.Context, biomarker, cohort, diagnosis string) ([]float64, error)
}

type catalogService struct {
	log          *logger.Logger
	cohorts      repos.CohortRepo
	concepts     repos.ConceptRepo
	mappings     repos.MappingRepo
	longitudinal repos.LongitudinalRepo
	biomarkers   repos.BiomarkerRepo
	cache        *cache.ViewCache
	graphs       graphLoader
}

func NewCatalogService(
	log *logger.Logger,
	cohorts repos.CohortRepo,
	concepts repos.ConceptRepo,
	mappings repos.MappingRepo,
	longitudinal repos.LongitudinalRepo,
	biomarkers repos.BiomarkerRepo,
	viewCache *cache.ViewCache,
) CatalogService {
	return &catalogService{
		log:          log.With("service", "CatalogService"),
		cohorts:      cohorts,
		concepts:     concepts,
		mappings:     mappings,
		longitudinal: longitudinal,
		biomarkers:   biomarkers,
		cache:        viewCache,
		graphs:       graphLoader{cohorts: cohorts, concepts: concepts, mappings: mappings},
	}
}

func (s *catalogService) CohortNames(ctx context.Context) ([]string, error) {
	return s.cohorts.ListNames(dbctx.Context{Ctx: ctx})
}

func (s *catalogService) CohortMetadata(ctx context.Context) ([]*types.Cohort, error) {
	return s.cohorts.List(dbctx.Context{Ctx: ctx})
}

func (s *catalogService) CDMVariables(ctx context.Context) ([]string, error) {
	return cache.Load(ctx, s.cache, "cdm:variables", func(ctx context.Context) ([]string, error) {
		concepts, err := s.concepts.ListCDM(dbctx.Context{Ctx: ctx})
		if err != nil {
			return nil, err
		}
		out := make([]string, 0, len(concepts))
		for _, c := range concepts {
			out = append(out, c.Variable)
		}
		return out, nil
	})
}

func (s *catalogService) Modalities(ctx context.Context) ([]string, error) {
	return cache.Load(ctx, s.cache, "cdm:modalities", func(ctx context.Context) ([]string, error) {
		return s.mappings.ListModalities(dbctx.Context{Ctx: ctx})
	})
}

func (s *catalogService) CDM(ctx context.Context, modality string) (cdm.Table, error) {
	modality = strings.TrimSpace(modality)
	return cache.Load(ctx, s.cache, "cdm:table:"+modality, func(ctx context.Context) (cdm.Table, error) {
		g, err := s.graphs.load(dbctx.Context{Ctx: ctx}, modality)
		if err != nil {
			return cdm.Table{}, err
		}
		return cdm.Reconstruct(g, modality), nil
	})
}

func (s *catalogService) LongitudinalVariables(ctx context.Context) ([]string, error) {
	return s.longitudinal.ListVariables(dbctx.Context{Ctx: ctx})
}

// Longitudinal lists the measurements of variable, optionally limited to one
// cohort. An unknown cohort is a not-found error.
func (s *catalogService) Longitudinal(ctx context.Context, variable, cohort string) ([]repos.LongitudinalRow, error) {
	dbc := dbctx.Context{Ctx: ctx}
	var cohortID uint
	if cohort = strings.TrimSpace(cohort); cohort != "" {
		c, err := s.cohorts.GetByName(dbc, cohort)
		if err != nil {
			return nil, err
		}
		cohortID = c.ID
	}
	return s.longitudinal.List(dbc, strings.TrimSpace(variable), cohortID)
}

func (s *catalogService) BiomarkerVariables(ctx context.Context) ([]string, error) {
	return s.biomarkers.ListVariables(dbctx.Context{Ctx: ctx})
}

func (s *catalogService) BiomarkerCohorts(ctx context.Context, biomarker string) ([]string, error) {
	return s.biomarkers.ListCohortNames(dbctx.Context{Ctx: ctx}, strings.TrimSpace(biomarker))
}

// BiomarkerDiagnoses labels every diagnosis group per cohort as
// "<cohort> (<diagnosis> Group)", adding "<cohort> (Complete)" when a cohort
// has more than one group.
func (s *catalogService) BiomarkerDiagnoses(ctx context.Context, biomarker string) ([]string, error) {
	dbc := dbctx.Context{Ctx: ctx}
	biomarker = strings.TrimSpace(biomarker)
	cohorts, err := s.biomarkers.ListCohortNames(dbc, biomarker)
	if err != nil {
		return nil, err
	}
	out := []string{}
	for _, cohort := range cohorts {
		diagnoses, err := s.biomarkers.ListDiagnoses(dbc, biomarker, cohort)
		if err != nil {
			return nil, err
		}
		for _, d := range diagnoses {
			out = append(out, fmt.Sprintf("%s (%s Group)", cohort, d))
		}
		if len(diagnoses) > 1 {
			out = append(out, fmt.Sprintf("%s (%s)", cohort, CompleteDiagnosis))
		}
	}
	return out, nil
}

func (s *catalogService) BiomarkerValues(ctx context.Context, biomarker, cohort, diagnosis string) ([]float64, error) {
	dbc := dbctx.Context{Ctx: ctx}
	c, err := s.cohorts.GetByName(dbc, strings.TrimSpace(cohort))
	if err != nil {
		return nil, err
	}
	diagnosis = strings.TrimSpace(diagnosis)
	if diagnosis == CompleteDiagnosis {
		diagnosis = ""
	}
	return s.biomarkers.ListValues(dbc, strings.TrimSpace(biomarker), c.ID, diagnosis)
}
