package cdm

// ChordNode is a cohort variable; Group is its cohort.
type ChordNode struct {
	Name  string `json:"name"`
	Group string `json:"group"`
}

// ChordLink joins two variable names, Source <= Target.
type ChordLink struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

type ChordDiagram struct {
	Nodes []ChordNode `json:"nodes"`
	Links []ChordLink `json:"links"`
}

// BuildChords links cohort variables that share a CDM concept under one
// modality. Concepts reaching fewer than two cohorts contribute nothing.
// Links are undirected and deduplicated on the ordered pair of variable
// names, so two concepts producing the same pair yield one link. When cohorts
// is non-empty only variables of those cohorts are considered.
func BuildChords(g *Graph, modality string, cohorts []string) ChordDiagram {
	var allowed map[string]bool
	if len(cohorts) > 0 {
		allowed = make(map[string]bool, len(cohorts))
		for _, c := range cohorts {
			allowed[c] = true
		}
	}

	out := ChordDiagram{Nodes: []ChordNode{}, Links: []ChordLink{}}
	nodeSeen := map[ChordNode]bool{}
	linkSeen := map[ChordLink]bool{}

	for _, concept := range g.cdm {
		seen := map[CohortVariable]bool{}
		var vars []CohortVariable
		groups := map[string]bool{}
		for _, cv := range g.linked(concept, modality) {
			if allowed != nil && !allowed[cv.Cohort] {
				continue
			}
			if seen[cv] {
				continue
			}
			seen[cv] = true
			vars = append(vars, cv)
			groups[cv.Cohort] = true
		}
		if len(groups) < 2 {
			continue
		}

		for _, cv := range vars {
			n := ChordNode{Name: cv.Variable, Group: cv.Cohort}
			if !nodeSeen[n] {
				nodeSeen[n] = true
				out.Nodes = append(out.Nodes, n)
			}
		}
		for i := 0; i < len(vars); i++ {
			for j := i + 1; j < len(vars); j++ {
				if vars[i].Cohort == vars[j].Cohort {
					continue
				}
				a, b := vars[i].Variable, vars[j].Variable
				if a > b {
					a, b = b, a
				}
				l := ChordLink{Source: a, Target: b}
				if a == b || linkSeen[l] {
					continue
				}
				linkSeen[l] = true
				out.Links = append(out.Links, l)
			}
		}
	}
	return out
}
