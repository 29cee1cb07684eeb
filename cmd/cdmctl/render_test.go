package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/modules/cdm"
	"github.com/yungbote/pdataviewer-backend/internal/modules/importer"
)

func TestRenderRank(t *testing.T) {
	var buf bytes.Buffer
	renderRank(&buf, []cdm.RankRow{
		{Cohort: "cohort_x", Found: "2/2 (100.0%)"},
		{Cohort: "cohort_y", Found: "1/2 (50.0%)", Missing: "sex"},
	})
	out := buf.String()
	assert.Contains(t, out, "COHORT")
	assert.Contains(t, out, "cohort_x")
	assert.Contains(t, out, "1/2 (50.0%)")
	assert.Contains(t, out, "sex")

	buf.Reset()
	renderRank(&buf, nil)
	assert.Equal(t, "No cohort maps any of the variables.\n", buf.String())
}

func TestRenderCDMFillsGaps(t *testing.T) {
	var buf bytes.Buffer
	renderCDM(&buf, cdm.Table{
		Columns: []string{"Feature", "cohort_x", "cohort_y"},
		Rows: []map[string]string{
			{"Feature": "age", "cohort_x": "age_x"},
		},
	})
	assert.Contains(t, buf.String(), "age_x")
	assert.Contains(t, buf.String(), "COHORT Y")
}

func TestRenderChords(t *testing.T) {
	var buf bytes.Buffer
	renderChords(&buf, cdm.ChordDiagram{
		Nodes: []cdm.ChordNode{{Name: "age_x", Group: "cohort_x"}, {Name: "age_y", Group: "cohort_y"}},
		Links: []cdm.ChordLink{{Source: "age_x", Target: "age_y"}},
	})
	assert.Contains(t, buf.String(), "cohort_y")

	buf.Reset()
	renderChords(&buf, cdm.ChordDiagram{})
	assert.Equal(t, "No links.\n", buf.String())
}

func TestRenderSummaries(t *testing.T) {
	var buf bytes.Buffer
	renderSummaries(&buf, []*importer.Summary{{
		File:                 "demographics.csv",
		UploadType:           types.UploadCDM,
		Variable:             "demographics",
		RowsRead:             3,
		CDMConceptsInserted:  2,
		MappingsInserted:     4,
		UnknownCohortColumns: []string{"ghost"},
	}})
	out := buf.String()
	assert.Contains(t, out, "demographics.csv")
	assert.Contains(t, out, "ghost")
	assert.Contains(t, out, " 6 ")
}
