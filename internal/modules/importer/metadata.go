package importer

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/ingestion/table"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
)

var MetadataColumns = []string{
	"cohort",
	"participants",
	"healthyControls",
	"prodromalPatients",
	"pdPatients",
	"longitudinalPatients",
	"followUpInterval",
	"location",
	"doi",
	"link",
	"color",
}

// ImportMetadata creates one cohort per row. Cohorts that already exist are
// left untouched. Any missing column or malformed cell aborts the file before
// anything is written.
func (im *Importer) ImportMetadata(ctx context.Context, tbl *table.Table) (sum *Summary, err error) {
	ctx, span := tracer.Start(ctx, "importer.ImportMetadata", trace.WithAttributes(
		attribute.String("file", tbl.Name),
		attribute.Int("rows", len(tbl.Rows)),
	))
	defer func() { finishSpan(span, err) }()

	if err := tbl.Require(MetadataColumns...); err != nil {
		return nil, err
	}

	sum = newSummary(tbl.Name, types.UploadMetadata, "", len(tbl.Rows))
	names := newOrderedSet[string]()
	cohorts := make([]*types.Cohort, 0, len(tbl.Rows))
	for i, row := range tbl.Rows {
		line := i + 2
		name := tbl.Get(row, "cohort")
		if name == "" || !names.Add(name) {
			sum.RowsSkipped++
			continue
		}
		c, err := cohortFromRow(tbl, row, line, name)
		if err != nil {
			return nil, err
		}
		cohorts = append(cohorts, c)
	}

	err = im.deps.Tx.InTx(ctx, func(dbc dbctx.Context) error {
		n, err := im.deps.Cohorts.CreateIgnoreConflicts(dbc, cohorts)
		if err != nil {
			return err
		}
		sum.CohortsInserted = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	im.log.Info("Imported cohort metadata", "file", tbl.Name, "rows", sum.RowsRead, "inserted", sum.CohortsInserted)
	return sum, nil
}

func cohortFromRow(tbl *table.Table, row []string, line int, name string) (*types.Cohort, error) {
	c := &types.Cohort{Name: name}
	counts := []struct {
		col string
		dst **int
	}{
		{"participants", &c.Participants},
		{"healthyControls", &c.ControlParticipants},
		{"prodromalPatients", &c.ProdromalParticipants},
		{"pdPatients", &c.PDParticipants},
		{"longitudinalPatients", &c.LongitudinalParticipants},
	}
	for _, f := range counts {
		v, err := optionalCount(tbl.Name, line, f.col, tbl.Get(row, f.col))
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	c.FollowUpInterval = optionalText(tbl.Get(row, "followUpInterval"))
	c.Location = optionalText(tbl.Get(row, "location"))
	c.DOI = optionalText(tbl.Get(row, "doi"))
	c.Link = optionalText(tbl.Get(row, "link"))
	c.Color = tbl.Get(row, "color")
	if c.Color == "" {
		return nil, fmt.Errorf("%s line %d: cohort %q has no color: %w", tbl.Name, line, name, apperr.ErrInvalidArgument)
	}
	return c, nil
}
