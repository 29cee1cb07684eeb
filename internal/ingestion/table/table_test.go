package table

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
)

func TestParseCSV(t *testing.T) {
	raw := "\xEF\xBB\xBF Feature ,cohort_a,cohort_b\nage,\"age_a, age_a2\",age_b\n,,\nheight,height_a\n"
	tbl, err := Parse("demographics.csv", []byte(raw))
	require.NoError(t, err)

	assert.Equal(t, []string{"Feature", "cohort_a", "cohort_b"}, tbl.Header)
	require.Len(t, tbl.Rows, 2, "blank rows are dropped")
	assert.Equal(t, "age_a, age_a2", tbl.Get(tbl.Rows[0], "cohort_a"))
	assert.Equal(t, "", tbl.Get(tbl.Rows[1], "cohort_b"), "short rows are padded")
	assert.Equal(t, "", tbl.Get(tbl.Rows[0], "nope"))
}

func TestRequire(t *testing.T) {
	tbl, err := Parse("metadata.csv", []byte("cohort,color\nPPMI,#fff\n"))
	require.NoError(t, err)

	require.NoError(t, tbl.Require("cohort", "color"))

	err = tbl.Require("cohort", "doi", "link")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidArgument))
	mc, ok := AsMissingColumns(err)
	require.True(t, ok)
	assert.Equal(t, []string{"doi", "link"}, mc.Missing)
	assert.Equal(t, "metadata.csv: missing columns: doi, link", err.Error())
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse("empty.csv", nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
}

func TestParseXLSX(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	require.NoError(t, f.SetSheetRow(sheet, "A1", &[]interface{}{"Feature", "cohort_a"}))
	require.NoError(t, f.SetSheetRow(sheet, "A2", &[]interface{}{"age", "age_a"}))
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	tbl, err := Parse("Demographics.XLSX", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, []string{"Feature", "cohort_a"}, tbl.Header)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "age_a", tbl.Get(tbl.Rows[0], "cohort_a"))
}
