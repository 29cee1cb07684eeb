package cdm

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
)

// VariableNotFoundError is returned when a requested variable has no CDM concept.
type VariableNotFoundError struct {
	Variable string
}

func (e *VariableNotFoundError) Error() string {
	return fmt.Sprintf("variable not found: %s", e.Variable)
}

func (e *VariableNotFoundError) Is(target error) bool { return target == apperr.ErrNotFound }

var ErrNoVariables = fmt.Errorf("the variables list cannot be empty: %w", apperr.ErrInvalidArgument)

// RankRow is one cohort's coverage of the requested variables.
type RankRow struct {
	Cohort     string `json:"cohort"`
	Found      string `json:"found"`
	Missing    string `json:"missing"`
	FoundCount int    `json:"-"`
}

type cohortTally struct {
	name    string
	found   int
	missing []string
}

// RankCohorts scores every cohort by how many of the requested CDM variables
// it maps, through mappings of any modality whose source is the CDM concept.
// A cohort counts a variable once however many of its variables map to it.
// Cohorts covering nothing are left out; the rest are sorted by coverage,
// ties keeping first-touched order. Blank and repeated names are dropped
// first, so the "n/total" denominator counts distinct variables.
func RankCohorts(g *Graph, variables []string) ([]RankRow, error) {
	requested := make([]string, 0, len(variables))
	dedup := map[string]bool{}
	for _, v := range variables {
		v = strings.TrimSpace(v)
		if v == "" || dedup[v] {
			continue
		}
		dedup[v] = true
		requested = append(requested, v)
	}
	if len(requested) == 0 {
		return nil, ErrNoVariables
	}

	concepts := make([]uint, len(requested))
	for i, v := range requested {
		c, ok := g.cdmByName[v]
		if !ok {
			return nil, &VariableNotFoundError{Variable: v}
		}
		concepts[i] = c.ID
	}

	var order []*cohortTally
	tallies := map[string]*cohortTally{}
	touch := func(name string) *cohortTally {
		t, ok := tallies[name]
		if !ok {
			t = &cohortTally{name: name}
			tallies[name] = t
			order = append(order, t)
		}
		return t
	}

	for i, v := range requested {
		mapped := map[string]bool{}
		for _, m := range g.bySource[concepts[i]] {
			target := g.concepts[m.TargetID]
			if target == nil || target.CohortID == nil {
				continue
			}
			name, ok := g.cohortNames[*target.CohortID]
			if !ok || mapped[name] {
				continue
			}
			mapped[name] = true
			touch(name).found++
		}
		for _, c := range g.cohorts {
			if !mapped[c.Name] {
				t := touch(c.Name)
				t.missing = append(t.missing, v)
			}
		}
	}

	total := len(requested)
	rows := make([]RankRow, 0, len(order))
	for _, t := range order {
		if t.found == 0 {
			continue
		}
		rows = append(rows, RankRow{
			Cohort:     t.name,
			Found:      fmt.Sprintf("%d/%d (%s%%)", t.found, total, formatPercent(float64(t.found)/float64(total)*100)),
			Missing:    strings.Join(t.missing, ", "),
			FoundCount: t.found,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].FoundCount > rows[j].FoundCount })
	return rows, nil
}

// formatPercent rounds to two decimals and prints the shortest form, keeping
// a ".0" on whole numbers: 66.67, 50.0, 100.0.
func formatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "0.0"
	}
	rounded, _ := strconv.ParseFloat(strconv.FormatFloat(p, 'f', 2, 64), 64)
	s := strconv.FormatFloat(rounded, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
