package importer

import (
	"context"
	"fmt"
	"math"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/ingestion/table"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
)

var (
	LongitudinalColumns = []string{"months", "cohort", "patientCount", "totalPatientCount"}
	BiomarkerColumns    = []string{"participantNumber", "cohort", "measurement", "diagnosis"}
)

// ImportLongitudinal stores per-visit patient counts for one variable. Rows
// naming an unknown cohort are dropped.
func (im *Importer) ImportLongitudinal(ctx context.Context, tbl *table.Table, variable string) (sum *Summary, err error) {
	ctx, span := tracer.Start(ctx, "importer.ImportLongitudinal", trace.WithAttributes(
		attribute.String("file", tbl.Name),
		attribute.String("variable", variable),
	))
	defer func() { finishSpan(span, err) }()

	variable = strings.TrimSpace(variable)
	if variable == "" {
		return nil, fmt.Errorf("%s: variable is required: %w", tbl.Name, apperr.ErrInvalidArgument)
	}
	if err := tbl.Require(LongitudinalColumns...); err != nil {
		return nil, err
	}
	sum = newSummary(tbl.Name, types.UploadLongitudinal, variable, len(tbl.Rows))

	err = im.deps.Tx.InTx(ctx, func(dbc dbctx.Context) error {
		cohortIDs, err := im.deps.Cohorts.NameToID(dbc)
		if err != nil {
			return err
		}
		unknown := newOrderedSet[string]()
		rows := make([]*types.LongitudinalMeasurement, 0, len(tbl.Rows))
		for i, row := range tbl.Rows {
			line := i + 2
			cohort := tbl.Get(row, "cohort")
			cohortID, ok := cohortIDs[cohort]
			if !ok {
				if cohort != "" {
					unknown.Add(cohort)
				}
				sum.RowsSkipped++
				continue
			}
			months, ok := parseInt(tbl.Get(row, "months"))
			if !ok || months < math.MinInt32 || months > math.MaxInt32 {
				return cellError(tbl.Name, line, "months", tbl.Get(row, "months"), "a whole number of months")
			}
			patients, err := requiredCount(tbl, row, line, "patientCount")
			if err != nil {
				return err
			}
			total, err := requiredCount(tbl, row, line, "totalPatientCount")
			if err != nil {
				return err
			}
			rows = append(rows, &types.LongitudinalMeasurement{
				Variable:          variable,
				Months:            int(months),
				CohortID:          cohortID,
				PatientCount:      patients,
				TotalPatientCount: total,
			})
		}
		sum.UnknownCohorts = unknown.Items()
		n, err := im.deps.Longitudinal.CreateIgnoreConflicts(dbc, rows)
		if err != nil {
			return err
		}
		sum.MeasurementsInserted = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	im.log.Info("Imported longitudinal measurements",
		"file", tbl.Name, "variable", variable, "rows", sum.RowsRead, "inserted", sum.MeasurementsInserted)
	return sum, nil
}

// ImportBiomarkers stores one value per participant, cohort and biomarker.
// Rows naming an unknown cohort, or with no participant or value, are dropped.
func (im *Importer) ImportBiomarkers(ctx context.Context, tbl *table.Table, variable string) (sum *Summary, err error) {
	ctx, span := tracer.Start(ctx, "importer.ImportBiomarkers", trace.WithAttributes(
		attribute.String("file", tbl.Name),
		attribute.String("variable", variable),
	))
	defer func() { finishSpan(span, err) }()

	variable = strings.TrimSpace(variable)
	if variable == "" {
		return nil, fmt.Errorf("%s: variable is required: %w", tbl.Name, apperr.ErrInvalidArgument)
	}
	if err := tbl.Require(BiomarkerColumns...); err != nil {
		return nil, err
	}
	sum = newSummary(tbl.Name, types.UploadBiomarkers, variable, len(tbl.Rows))

	err = im.deps.Tx.InTx(ctx, func(dbc dbctx.Context) error {
		cohortIDs, err := im.deps.Cohorts.NameToID(dbc)
		if err != nil {
			return err
		}
		unknown := newOrderedSet[string]()
		rows := make([]*types.BiomarkerMeasurement, 0, len(tbl.Rows))
		for i, row := range tbl.Rows {
			line := i + 2
			cohort := tbl.Get(row, "cohort")
			cohortID, ok := cohortIDs[cohort]
			if !ok {
				if cohort != "" {
					unknown.Add(cohort)
				}
				sum.RowsSkipped++
				continue
			}
			rawParticipant := tbl.Get(row, "participantNumber")
			rawValue := tbl.Get(row, "measurement")
			if rawParticipant == "" || rawValue == "" {
				sum.RowsSkipped++
				continue
			}
			participant, ok := parseInt(rawParticipant)
			if !ok {
				return cellError(tbl.Name, line, "participantNumber", rawParticipant, "an integer")
			}
			value, ok := parseFloat(rawValue)
			if !ok {
				return cellError(tbl.Name, line, "measurement", rawValue, "a number")
			}
			rows = append(rows, &types.BiomarkerMeasurement{
				Variable:      variable,
				ParticipantID: participant,
				CohortID:      cohortID,
				Measurement:   value,
				Diagnosis:     tbl.Get(row, "diagnosis"),
			})
		}
		sum.UnknownCohorts = unknown.Items()
		n, err := im.deps.Biomarkers.CreateIgnoreConflicts(dbc, rows)
		if err != nil {
			return err
		}
		sum.MeasurementsInserted = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	im.log.Info("Imported biomarker measurements",
		"file", tbl.Name, "variable", variable, "rows", sum.RowsRead, "inserted", sum.MeasurementsInserted)
	return sum, nil
}

func requiredCount(tbl *table.Table, row []string, line int, col string) (int, error) {
	raw := tbl.Get(row, col)
	v, err := optionalCount(tbl.Name, line, col, raw)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return 0, cellError(tbl.Name, line, col, raw, "a non-negative integer")
	}
	return *v, nil
}
