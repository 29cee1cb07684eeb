package cdm

import "sort"

// FeatureColumn is the key of the CDM feature name in every Table row.
const FeatureColumn = "Feature"

// Table is the denormalized CDM: one row per CDM concept keyed by column
// name. Columns lists Feature followed by every cohort that appears in some
// row, sorted by name.
type Table struct {
	Columns []string            `json:"columns"`
	Rows    []map[string]string `json:"rows"`
}

// Reconstruct rebuilds the feature x cohort table. When a concept is mapped
// to several variables of the same cohort the lowest mapping id wins. An
// empty modality uses mappings of every modality.
func Reconstruct(g *Graph, modality string) Table {
	rows := make([]map[string]string, 0, len(g.cdm))
	used := map[string]struct{}{}
	for _, concept := range g.cdm {
		row := map[string]string{FeatureColumn: concept.Variable}
		for _, cv := range g.linked(concept, modality) {
			if _, taken := row[cv.Cohort]; taken || cv.Cohort == FeatureColumn {
				continue
			}
			row[cv.Cohort] = cv.Variable
			used[cv.Cohort] = struct{}{}
		}
		rows = append(rows, row)
	}

	cohorts := make([]string, 0, len(used))
	for name := range used {
		cohorts = append(cohorts, name)
	}
	sort.Strings(cohorts)
	return Table{Columns: append([]string{FeatureColumn}, cohorts...), Rows: rows}
}
