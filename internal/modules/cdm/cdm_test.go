package cdm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
)

type graphBuilder struct {
	cohorts  []*types.Cohort
	concepts []*types.Concept
	mappings []*types.Mapping
	cohortID map[string]uint
	cdmID    map[string]uint
	nextID   uint
}

func newBuilder(cohorts ...string) *graphBuilder {
	b := &graphBuilder{cohortID: map[string]uint{}, cdmID: map[string]uint{}}
	for _, name := range cohorts {
		b.nextID++
		b.cohorts = append(b.cohorts, &types.Cohort{ID: b.nextID, Name: name, Color: "#000"})
		b.cohortID[name] = b.nextID
	}
	return b
}

func (b *graphBuilder) feature(names ...string) *graphBuilder {
	for _, name := range names {
		b.nextID++
		b.concepts = append(b.concepts, &types.Concept{ID: b.nextID, Variable: name, SourceType: types.ConceptSourceCDM})
		b.cdmID[name] = b.nextID
	}
	return b
}

func (b *graphBuilder) cohortConcept(cohort, variable string) uint {
	b.nextID++
	id := b.cohortID[cohort]
	b.concepts = append(b.concepts, &types.Concept{ID: b.nextID, Variable: variable, SourceType: types.ConceptSourceCohort, CohortID: &id})
	return b.nextID
}

// mapTo adds a cdm -> cohort mapping.
func (b *graphBuilder) mapTo(feature, modality, cohort, variable string) *graphBuilder {
	target := b.cohortConcept(cohort, variable)
	b.nextID++
	b.mappings = append(b.mappings, &types.Mapping{ID: b.nextID, SourceID: b.cdmID[feature], TargetID: target, Modality: modality})
	return b
}

// mapFrom adds a cohort -> cdm mapping, the reverse of what the importer writes.
func (b *graphBuilder) mapFrom(feature, modality, cohort, variable string) *graphBuilder {
	source := b.cohortConcept(cohort, variable)
	b.nextID++
	b.mappings = append(b.mappings, &types.Mapping{ID: b.nextID, SourceID: source, TargetID: b.cdmID[feature], Modality: modality})
	return b
}

func (b *graphBuilder) graph() *Graph { return NewGraph(b.cohorts, b.concepts, b.mappings) }

// scenarioGraph: age maps to cohort_x and cohort_y, height to all three
// cohorts, bmi to nothing.
func scenarioGraph() *graphBuilder {
	return newBuilder("cohort_x", "cohort_y", "cohort_z").
		feature("age", "height", "bmi").
		mapTo("age", "demographics", "cohort_x", "age_x").
		mapTo("age", "demographics", "cohort_y", "age_y").
		mapTo("height", "demographics", "cohort_x", "height_x").
		mapTo("height", "demographics", "cohort_y", "height_y").
		mapTo("height", "demographics", "cohort_z", "height_z")
}

func TestBuildChordsScenario(t *testing.T) {
	got := BuildChords(scenarioGraph().graph(), "demographics", nil)

	assert.Equal(t, []ChordNode{
		{Name: "age_x", Group: "cohort_x"},
		{Name: "age_y", Group: "cohort_y"},
		{Name: "height_x", Group: "cohort_x"},
		{Name: "height_y", Group: "cohort_y"},
		{Name: "height_z", Group: "cohort_z"},
	}, got.Nodes)
	assert.Equal(t, []ChordLink{
		{Source: "age_x", Target: "age_y"},
		{Source: "height_x", Target: "height_y"},
		{Source: "height_x", Target: "height_z"},
		{Source: "height_y", Target: "height_z"},
	}, got.Links)
}

func TestBuildChordsSkipsSingleCohortConcepts(t *testing.T) {
	b := scenarioGraph().
		feature("weight", "sex").
		mapTo("weight", "demographics", "cohort_x", "weight_x").
		mapTo("weight", "demographics", "cohort_x", "weight_x_kg").
		mapTo("sex", "clinical", "cohort_x", "sex_x").
		mapTo("sex", "clinical", "cohort_y", "sex_y")
	got := BuildChords(b.graph(), "demographics", nil)

	for _, n := range got.Nodes {
		assert.NotContains(t, []string{"weight_x", "weight_x_kg", "sex_x", "sex_y"}, n.Name)
	}
	assert.Len(t, got.Nodes, 5)
	assert.Len(t, got.Links, 4)
}

func TestBuildChordsIsDirectionFree(t *testing.T) {
	b := newBuilder("cohort_a", "cohort_b").
		feature("sex").
		mapTo("sex", "demographics", "cohort_a", "sex_a").
		mapFrom("sex", "demographics", "cohort_b", "gender_b")
	got := BuildChords(b.graph(), "demographics", nil)

	assert.Equal(t, []ChordNode{{Name: "sex_a", Group: "cohort_a"}, {Name: "gender_b", Group: "cohort_b"}}, got.Nodes)
	assert.Equal(t, []ChordLink{{Source: "gender_b", Target: "sex_a"}}, got.Links)
}

func TestBuildChordsInvariants(t *testing.T) {
	b := scenarioGraph().
		feature("stature").
		// same variable pair through a second concept collapses into one link
		mapTo("stature", "demographics", "cohort_x", "height_x").
		mapTo("stature", "demographics", "cohort_y", "height_y").
		mapTo("stature", "demographics", "cohort_y", "stature_y")
	got := BuildChords(b.graph(), "", nil)

	links := map[ChordLink]int{}
	for _, l := range got.Links {
		assert.NotEqual(t, l.Source, l.Target)
		assert.LessOrEqual(t, l.Source, l.Target)
		links[l]++
	}
	for l, n := range links {
		assert.Equal(t, 1, n, "duplicate link %v", l)
	}
	assert.Equal(t, 1, links[ChordLink{Source: "height_x", Target: "height_y"}])
	assert.Equal(t, 1, links[ChordLink{Source: "height_x", Target: "stature_y"}])
	// same cohort: never linked
	assert.Zero(t, links[ChordLink{Source: "height_y", Target: "stature_y"}])
}

func TestBuildChordsCohortFilter(t *testing.T) {
	got := BuildChords(scenarioGraph().graph(), "demographics", []string{"cohort_x", "cohort_z"})

	assert.Equal(t, []ChordNode{
		{Name: "height_x", Group: "cohort_x"},
		{Name: "height_z", Group: "cohort_z"},
	}, got.Nodes)
	assert.Equal(t, []ChordLink{{Source: "height_x", Target: "height_z"}}, got.Links)
}

func TestBuildChordsUnknownModalityIsEmpty(t *testing.T) {
	got := BuildChords(scenarioGraph().graph(), "imaging", nil)
	assert.NotNil(t, got.Nodes)
	assert.NotNil(t, got.Links)
	assert.Empty(t, got.Nodes)
	assert.Empty(t, got.Links)
}

func TestRankCohortsScenario(t *testing.T) {
	rows, err := RankCohorts(scenarioGraph().graph(), []string{"age", "height", "bmi"})
	require.NoError(t, err)

	assert.Equal(t, []RankRow{
		{Cohort: "cohort_x", Found: "2/3 (66.67%)", Missing: "bmi", FoundCount: 2},
		{Cohort: "cohort_y", Found: "2/3 (66.67%)", Missing: "bmi", FoundCount: 2},
		{Cohort: "cohort_z", Found: "1/3 (33.33%)", Missing: "age, bmi", FoundCount: 1},
	}, rows)
}

func TestRankCohortsCoverageProperty(t *testing.T) {
	b := scenarioGraph().
		feature("sex").
		mapTo("sex", "clinical", "cohort_z", "sex_z").
		mapTo("sex", "clinical", "cohort_z", "gender_z")
	requested := []string{"age", "height", "bmi", "sex"}
	rows, err := RankCohorts(b.graph(), requested)
	require.NoError(t, err)

	for _, r := range rows {
		assert.Greater(t, r.FoundCount, 0)
		missing := 0
		if r.Missing != "" {
			missing = len(splitMissing(r.Missing))
		}
		assert.Equal(t, len(requested)-missing, r.FoundCount, r.Cohort)
	}
	assert.Equal(t, "cohort_z", rows[len(rows)-1].Cohort)
	assert.Equal(t, "2/4 (50.0%)", rows[len(rows)-1].Found)
}

func TestRankCohortsOmitsCohortsWithoutCoverage(t *testing.T) {
	rows, err := RankCohorts(scenarioGraph().graph(), []string{"age"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "1/1 (100.0%)", rows[0].Found)
	assert.Equal(t, "", rows[0].Missing)
}

func TestRankCohortsDenominatorCountsDistinctVariables(t *testing.T) {
	rows, err := RankCohorts(scenarioGraph().graph(), []string{"age", " age ", "", "bmi", "age"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, "1/2 (50.0%)", r.Found, r.Cohort)
		assert.Equal(t, "bmi", r.Missing, r.Cohort)
	}
}

func TestRankCohortsErrors(t *testing.T) {
	g := scenarioGraph().graph()

	_, err := RankCohorts(g, nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidArgument)
	_, err = RankCohorts(g, []string{" "})
	assert.ErrorIs(t, err, ErrNoVariables)

	_, err = RankCohorts(g, []string{"age", "shoe_size"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	var nf *VariableNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, "shoe_size", nf.Variable)
	assert.Equal(t, "variable not found: shoe_size", err.Error())

	// cohort variables are not CDM features
	_, err = RankCohorts(g, []string{"age_x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestReconstruct(t *testing.T) {
	b := scenarioGraph().
		mapTo("age", "demographics", "cohort_x", "age_x_later").
		mapTo("bmi", "clinical", "cohort_z", "bmi_z")

	all := Reconstruct(b.graph(), "")
	assert.Equal(t, []string{"Feature", "cohort_x", "cohort_y", "cohort_z"}, all.Columns)
	require.Len(t, all.Rows, 3)
	assert.Equal(t, map[string]string{"Feature": "age", "cohort_x": "age_x", "cohort_y": "age_y"}, all.Rows[0])
	assert.Equal(t, map[string]string{"Feature": "bmi", "cohort_z": "bmi_z"}, all.Rows[2])

	demo := Reconstruct(b.graph(), "demographics")
	assert.Equal(t, map[string]string{"Feature": "bmi"}, demo.Rows[2])
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "66.67", formatPercent(200.0/3))
	assert.Equal(t, "50.0", formatPercent(50))
	assert.Equal(t, "100.0", formatPercent(100))
	assert.Equal(t, "14.29", formatPercent(100.0/7))
	assert.Equal(t, "12.5", formatPercent(12.5))
}

func splitMissing(s string) []string {
	var out []string
	start := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] == ',' && s[i+1] == ' ' {
			out = append(out, s[start:i])
			start = i + 2
		}
	}
	return append(out, s[start:])
}
