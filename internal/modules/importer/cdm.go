package importer

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/ingestion/table"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
)

const FeatureColumn = "Feature"

// CDMIgnoredColumns are descriptive columns of a CDM modality file that never
// name a cohort.
var CDMIgnoredColumns = []string{
	FeatureColumn,
	"CURIE",
	"Definition",
	"Synonyms",
	"OMOP",
	"UMLS",
	"UK Biobank",
	"Rank",
}

func isIgnoredCDMColumn(col string) bool {
	for _, c := range CDMIgnoredColumns {
		if c == col {
			return true
		}
	}
	return false
}

type cohortVariable struct {
	variable string
	cohortID uint
}

type rawMapping struct {
	feature string
	target  cohortVariable
}

// ImportCDM imports one modality file: a Feature column plus one column per
// cohort whose cells list the cohort's equivalent variables, comma separated.
// Columns that do not name a known cohort are skipped, as are rows without a
// feature.
func (im *Importer) ImportCDM(ctx context.Context, tbl *table.Table, modality string) (sum *Summary, err error) {
	ctx, span := tracer.Start(ctx, "importer.ImportCDM", trace.WithAttributes(
		attribute.String("file", tbl.Name),
		attribute.String("modality", modality),
		attribute.Int("rows", len(tbl.Rows)),
	))
	defer func() { finishSpan(span, err) }()

	modality = strings.TrimSpace(modality)
	if modality == "" {
		return nil, fmt.Errorf("%s: modality is required: %w", tbl.Name, apperr.ErrInvalidArgument)
	}
	if err := tbl.Require(FeatureColumn); err != nil {
		return nil, err
	}
	sum = newSummary(tbl.Name, types.UploadCDM, modality, len(tbl.Rows))

	err = im.deps.Tx.InTx(ctx, func(dbc dbctx.Context) error {
		cohortIDs, err := im.deps.Cohorts.NameToID(dbc)
		if err != nil {
			return err
		}

		var cohortCols []string
		for _, col := range tbl.Header {
			switch {
			case col == "":
			case isIgnoredCDMColumn(col):
				if col != FeatureColumn {
					sum.IgnoredColumns = append(sum.IgnoredColumns, col)
				}
			case cohortIDs[col] != 0:
				cohortCols = append(cohortCols, col)
			default:
				sum.UnknownCohortColumns = append(sum.UnknownCohortColumns, col)
			}
		}

		// 1. CDM concepts for every distinct non-blank feature.
		features := newOrderedSet[string]()
		for _, row := range tbl.Rows {
			if f := tbl.Get(row, FeatureColumn); f != "" {
				features.Add(f)
			}
		}
		cdmRows := make([]*types.Concept, 0, len(features.Items()))
		for _, f := range features.Items() {
			cdmRows = append(cdmRows, &types.Concept{Variable: f, SourceType: types.ConceptSourceCDM})
		}
		n, err := im.deps.Concepts.CreateIgnoreConflicts(dbc, cdmRows)
		if err != nil {
			return err
		}
		sum.CDMConceptsInserted = n

		// 2. Authoritative ids, whether just inserted or already present.
		cdmConcepts, err := im.deps.Concepts.GetCDMByVariables(dbc, features.Items())
		if err != nil {
			return err
		}
		cdmByVariable := make(map[string]*types.Concept, len(cdmConcepts))
		for _, c := range cdmConcepts {
			cdmByVariable[c.Variable] = c
		}

		// 3. Candidate cohort concepts and the mappings they take part in.
		candidates := newOrderedSet[cohortVariable]()
		var pending []rawMapping
		for _, row := range tbl.Rows {
			feature := tbl.Get(row, FeatureColumn)
			if feature == "" || cdmByVariable[feature] == nil {
				sum.RowsSkipped++
				continue
			}
			for _, col := range cohortCols {
				for _, v := range splitCell(tbl.Get(row, col)) {
					cv := cohortVariable{variable: v, cohortID: cohortIDs[col]}
					candidates.Add(cv)
					pending = append(pending, rawMapping{feature: feature, target: cv})
				}
			}
		}

		// 4. Deduplicated cohort concepts.
		cohortRows := make([]*types.Concept, 0, len(candidates.Items()))
		for _, cv := range candidates.Items() {
			id := cv.cohortID
			cohortRows = append(cohortRows, &types.Concept{
				Variable:   cv.variable,
				SourceType: types.ConceptSourceCohort,
				CohortID:   &id,
			})
		}
		n, err = im.deps.Concepts.CreateIgnoreConflicts(dbc, cohortRows)
		if err != nil {
			return err
		}
		sum.CohortConceptsInserted = n

		// 5. Ids of every cohort concept in the touched cohorts.
		touched := make([]uint, 0, len(cohortCols))
		for _, col := range cohortCols {
			touched = append(touched, cohortIDs[col])
		}
		owned, err := im.deps.Concepts.GetCohortConceptsByCohortIDs(dbc, touched)
		if err != nil {
			return err
		}
		byCohortVariable := make(map[cohortVariable]*types.Concept, len(owned))
		for _, c := range owned {
			if c.CohortID != nil {
				byCohortVariable[cohortVariable{variable: c.Variable, cohortID: *c.CohortID}] = c
			}
		}

		// 6. Mappings CDM -> cohort, deduplicated on (source, target).
		type edge struct{ source, target uint }
		edges := newOrderedSet[edge]()
		var mappings []*types.Mapping
		for _, p := range pending {
			source := cdmByVariable[p.feature]
			target := byCohortVariable[p.target]
			if source == nil || target == nil {
				continue
			}
			if !edges.Add(edge{source.ID, target.ID}) {
				continue
			}
			m := &types.Mapping{SourceID: source.ID, TargetID: target.ID, Modality: modality}
			if err := m.ValidateEnds(source, target); err != nil {
				return err
			}
			mappings = append(mappings, m)
		}
		n, err = im.deps.Mappings.CreateIgnoreConflicts(dbc, mappings)
		if err != nil {
			return err
		}
		sum.MappingsInserted = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	im.log.Info("Imported CDM modality",
		"file", tbl.Name,
		"modality", modality,
		"rows", sum.RowsRead,
		"cdm_concepts", sum.CDMConceptsInserted,
		"cohort_concepts", sum.CohortConceptsInserted,
		"mappings", sum.MappingsInserted,
	)
	if len(sum.UnknownCohortColumns) > 0 {
		im.log.Debug("Skipped columns without a matching cohort", "file", tbl.Name, "columns", sum.UnknownCohortColumns)
	}
	return sum, nil
}

// splitCell returns the trimmed, non-empty comma-separated values of a cell.
func splitCell(cell string) []string {
	if cell == "" {
		return nil
	}
	parts := strings.Split(cell, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
