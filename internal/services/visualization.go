package services

import (
	"context"
	"sort"
	"strings"

	"github.com/yungbote/pdataviewer-backend/internal/cache"
	"github.com/yungbote/pdataviewer-backend/internal/data/repos"
	"github.com/yungbote/pdataviewer-backend/internal/modules/cdm"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/logger"
)

type VisualizationService interface {
	// Chords builds the chord diagram of one modality, optionally limited to
	// the named cohorts.
	Chords(ctx context.Context, modality string, cohorts []string) (cdm.ChordDiagram, error)
}

type visualizationService struct {
	log    *logger.Logger
	cache  *cache.ViewCache
	graphs graphLoader
}

func NewVisualizationService(
	log *logger.Logger,
	cohorts repos.CohortRepo,
	concepts repos.ConceptRepo,
	mappings repos.MappingRepo,
	viewCache *cache.ViewCache,
) VisualizationService {
	return &visualizationService{
		log:    log.With("service", "VisualizationService"),
		cache:  viewCache,
		graphs: graphLoader{cohorts: cohorts, concepts: concepts, mappings: mappings},
	}
}

func (s *visualizationService) Chords(ctx context.Context, modality string, cohorts []string) (cdm.ChordDiagram, error) {
	modality = strings.TrimSpace(modality)
	filter := normalizeNames(cohorts)
	key := "chords:" + modality + ":" + strings.Join(filter, "\x1f")
	return cache.Load(ctx, s.cache, key, func(ctx context.Context) (cdm.ChordDiagram, error) {
		g, err := s.graphs.load(dbctx.Context{Ctx: ctx}, modality)
		if err != nil {
			return cdm.ChordDiagram{}, err
		}
		d := cdm.BuildChords(g, modality, filter)
		s.log.Debug("Built chord diagram", "modality", modality, "nodes", len(d.Nodes), "links", len(d.Links))
		return d, nil
	})
}

// normalizeNames trims, drops blanks and sorts so equal filters share a cache key.
func normalizeNames(names []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
