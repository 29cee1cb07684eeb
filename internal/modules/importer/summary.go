package importer

import types "github.com/yungbote/pdataviewer-backend/internal/domain"

// Summary describes what one file import wrote. Inserted counts exclude rows
// that already existed.
type Summary struct {
	File       string           `json:"file"`
	UploadType types.UploadType `json:"uploadType"`
	// Modality for CDM files, variable for measurement files.
	Variable string `json:"variable,omitempty"`

	RowsRead    int `json:"rowsRead"`
	RowsSkipped int `json:"rowsSkipped"`

	CohortsInserted        int64 `json:"cohortsInserted,omitempty"`
	CDMConceptsInserted    int64 `json:"cdmConceptsInserted,omitempty"`
	CohortConceptsInserted int64 `json:"cohortConceptsInserted,omitempty"`
	MappingsInserted       int64 `json:"mappingsInserted,omitempty"`
	MeasurementsInserted   int64 `json:"measurementsInserted,omitempty"`

	IgnoredColumns       []string `json:"ignoredColumns,omitempty"`
	UnknownCohortColumns []string `json:"unknownCohortColumns,omitempty"`
	UnknownCohorts       []string `json:"unknownCohorts,omitempty"`
}

func newSummary(file string, ut types.UploadType, variable string, rows int) *Summary {
	return &Summary{File: file, UploadType: ut, Variable: variable, RowsRead: rows}
}

// orderedSet keeps first-seen order.
type orderedSet[T comparable] struct {
	seen  map[T]struct{}
	items []T
}

func newOrderedSet[T comparable]() *orderedSet[T] {
	return &orderedSet[T]{seen: map[T]struct{}{}}
}

func (s *orderedSet[T]) Add(v T) bool {
	if _, ok := s.seen[v]; ok {
		return false
	}
	s.seen[v] = struct{}{}
	s.items = append(s.items, v)
	return true
}

func (s *orderedSet[T]) Items() []T { return s.items }
