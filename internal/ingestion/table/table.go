// Package table reads uploaded tabular files (CSV or XLSX) into a header plus
// string rows, the common shape every importer works from.
package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Table is a parsed file. Header names are trimmed; rows are padded to the
// header width and blank rows are dropped.
type Table struct {
	Name   string
	Header []string
	Rows   [][]string

	index map[string]int
}

// MissingColumnsError reports the required columns a file lacks.
type MissingColumnsError struct {
	File    string
	Missing []string
}

func (e *MissingColumnsError) Error() string {
	msg := "missing columns: " + strings.Join(e.Missing, ", ")
	if e.File != "" {
		return e.File + ": " + msg
	}
	return msg
}

func (e *MissingColumnsError) Is(target error) bool {
	return target == apperr.ErrInvalidArgument
}

// Parse picks the reader from the file extension; anything that is not
// .xlsx is read as CSV.
func Parse(name string, raw []byte) (*Table, error) {
	if strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return ParseXLSX(name, raw)
	}
	return ParseCSV(name, bytes.NewReader(raw))
}

func ParseCSV(name string, r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv %s: %w", name, err)
	}
	return build(name, records)
}

// ParseXLSX reads the first sheet of a workbook.
func ParseXLSX(name string, raw []byte) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("open xlsx %s: %w", name, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("%s has no sheets: %w", name, apperr.ErrInvalidArgument)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q of %s: %w", sheet, name, err)
	}
	return build(name, rows)
}

func build(name string, records [][]string) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%s is empty: %w", name, apperr.ErrInvalidArgument)
	}
	header := make([]string, len(records[0]))
	index := make(map[string]int, len(header))
	for i, h := range records[0] {
		h = strings.TrimSpace(h)
		header[i] = h
		if _, dup := index[h]; !dup && h != "" {
			index[h] = i
		}
	}

	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		row := make([]string, len(header))
		copy(row, rec)
		rows = append(rows, row)
	}
	return &Table{Name: name, Header: header, Rows: rows, index: index}, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func (t *Table) Has(col string) bool {
	_, ok := t.index[col]
	return ok
}

// Require fails with a *MissingColumnsError naming every absent column.
func (t *Table) Require(cols ...string) error {
	var missing []string
	for _, c := range cols {
		if !t.Has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return &MissingColumnsError{File: t.Name, Missing: missing}
	}
	return nil
}

// Get returns the trimmed cell of row under col, or "" when the column is absent.
func (t *Table) Get(row []string, col string) string {
	i, ok := t.index[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// AsMissingColumns unwraps err into a *MissingColumnsError when it is one.
func AsMissingColumns(err error) (*MissingColumnsError, bool) {
	var mc *MissingColumnsError
	if errors.As(err, &mc) {
		return mc, true
	}
	return nil, false
}
