// Package cdm derives the read views of the common data model: the
// feature x cohort table, the chord diagram and the cohort ranking. All of
// them work on an in-memory Graph snapshot and never touch the store.
package cdm

import (
	"sort"
	"strings"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
)

// Graph indexes concepts and mappings for direction-free traversal.
type Graph struct {
	cohorts     []*types.Cohort // by name
	cohortNames map[uint]string
	concepts    map[uint]*types.Concept
	cdm         []*types.Concept // by id
	cdmByName   map[string]*types.Concept
	bySource    map[uint][]*types.Mapping // by mapping id
	byTarget    map[uint][]*types.Mapping // by mapping id
}

func NewGraph(cohorts []*types.Cohort, concepts []*types.Concept, mappings []*types.Mapping) *Graph {
	g := &Graph{
		cohorts:     append([]*types.Cohort(nil), cohorts...),
		cohortNames: make(map[uint]string, len(cohorts)),
		concepts:    make(map[uint]*types.Concept, len(concepts)),
		cdmByName:   map[string]*types.Concept{},
		bySource:    map[uint][]*types.Mapping{},
		byTarget:    map[uint][]*types.Mapping{},
	}
	sort.SliceStable(g.cohorts, func(i, j int) bool { return g.cohorts[i].Name < g.cohorts[j].Name })
	for _, c := range g.cohorts {
		g.cohortNames[c.ID] = c.Name
	}

	for _, c := range concepts {
		g.concepts[c.ID] = c
		if c.IsCDM() {
			g.cdm = append(g.cdm, c)
		}
	}
	sort.SliceStable(g.cdm, func(i, j int) bool { return g.cdm[i].ID < g.cdm[j].ID })
	for _, c := range g.cdm {
		if _, ok := g.cdmByName[c.Variable]; !ok {
			g.cdmByName[c.Variable] = c
		}
	}

	ordered := append([]*types.Mapping(nil), mappings...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })
	for _, m := range ordered {
		g.bySource[m.SourceID] = append(g.bySource[m.SourceID], m)
		g.byTarget[m.TargetID] = append(g.byTarget[m.TargetID], m)
	}
	return g
}

// CohortVariable is a cohort concept seen from a CDM concept.
type CohortVariable struct {
	Variable string
	Cohort   string
}

// linked returns the cohort variables mapped to cdm, as source first and
// then as target, each in mapping id order. An empty modality matches all.
// Duplicates are kept.
func (g *Graph) linked(cdm *types.Concept, modality string) []CohortVariable {
	var out []CohortVariable
	visit := func(ms []*types.Mapping, other func(*types.Mapping) uint) {
		for _, m := range ms {
			if modality != "" && m.Modality != modality {
				continue
			}
			c := g.concepts[other(m)]
			if c == nil || c.CohortID == nil {
				continue
			}
			cohort, ok := g.cohortNames[*c.CohortID]
			label := strings.TrimSpace(c.Variable)
			if !ok || cohort == "" || label == "" {
				continue
			}
			out = append(out, CohortVariable{Variable: label, Cohort: cohort})
		}
	}
	visit(g.bySource[cdm.ID], func(m *types.Mapping) uint { return m.TargetID })
	visit(g.byTarget[cdm.ID], func(m *types.Mapping) uint { return m.SourceID })
	return out
}

// CDMConcepts returns the CDM concepts in id order.
func (g *Graph) CDMConcepts() []*types.Concept { return g.cdm }

// CohortNames returns every cohort name, sorted.
func (g *Graph) CohortNames() []string {
	out := make([]string, 0, len(g.cohorts))
	for _, c := range g.cohorts {
		out = append(out, c.Name)
	}
	return out
}
