package services

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/pdataviewer-backend/internal/data/repos"
	"github.com/yungbote/pdataviewer-backend/internal/modules/cdm"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
)

var tracer = otel.Tracer("github.com/yungbote/pdataviewer-backend/internal/services")

// graphLoader snapshots cohorts, concepts and mappings into a cdm.Graph. An
// empty modality loads mappings of every modality.
type graphLoader struct {
	cohorts  repos.CohortRepo
	concepts repos.ConceptRepo
	mappings repos.MappingRepo
}

func (l graphLoader) load(dbc dbctx.Context, modality string) (g *cdm.Graph, err error) {
	ctx, span := tracer.Start(dbc.Ctx, "services.loadGraph", trace.WithAttributes(
		attribute.String("modality", modality),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	dbc.Ctx = ctx

	cohorts, err := l.cohorts.List(dbc)
	if err != nil {
		return nil, err
	}
	concepts, err := l.concepts.ListAll(dbc)
	if err != nil {
		return nil, err
	}
	mappings, err := l.mappings.List(dbc, modality)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("mappings", len(mappings)))
	return cdm.NewGraph(cohorts, concepts, mappings), nil
}
