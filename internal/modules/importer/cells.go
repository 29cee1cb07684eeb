package importer

import (
	"fmt"
	"math"
	"strconv"

	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
)

// Cell parsers take already-trimmed values. Integers written as "12.0" are
// accepted since spreadsheet exports often produce them.

func cellError(file string, line int, col, raw, want string) error {
	return fmt.Errorf("%s line %d: column %s: %q is not %s: %w", file, line, col, raw, want, apperr.ErrInvalidArgument)
}

func parseInt(raw string) (int64, bool) {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f > math.MaxInt64 || f < math.MinInt64 {
		return 0, false
	}
	return int64(f), true
}

func parseFloat(raw string) (float64, bool) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// optionalCount parses a blank-or-non-negative integer cell.
func optionalCount(file string, line int, col, raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	n, ok := parseInt(raw)
	if !ok || n < 0 || n > math.MaxInt32 {
		return nil, cellError(file, line, col, raw, "a non-negative integer")
	}
	v := int(n)
	return &v, nil
}

func optionalText(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}
