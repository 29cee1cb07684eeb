package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pdataviewer-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
)

func TestCohortRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewCohortRepo(db, testutil.Logger(t))

	n, err := repo.CreateIgnoreConflicts(dbc, []*types.Cohort{
		{Name: "PPMI", Color: "#111111"},
		{Name: "LuxPARK", Color: "#222222"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	// existing names are skipped, not updated
	n, err = repo.CreateIgnoreConflicts(dbc, []*types.Cohort{{Name: "PPMI", Color: "#999999"}})
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	names, err := repo.ListNames(dbc)
	require.NoError(t, err)
	assert.Equal(t, []string{"LuxPARK", "PPMI"}, names)

	ppmi, err := repo.GetByName(dbc, "PPMI")
	require.NoError(t, err)
	assert.Equal(t, "#111111", ppmi.Color)

	_, err = repo.GetByName(dbc, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	ids, err := repo.NameToID(dbc)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
	assert.Equal(t, ppmi.ID, ids["PPMI"])
}

func TestConceptRepoUniqueness(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewConceptRepo(db, testutil.Logger(t))

	a := testutil.SeedCohort(t, ctx, tx, "cohort_a")
	b := testutil.SeedCohort(t, ctx, tx, "cohort_b")

	cdm := func() []*types.Concept {
		return []*types.Concept{
			{Variable: "age", SourceType: types.ConceptSourceCDM},
			{Variable: "sex", SourceType: types.ConceptSourceCDM},
		}
	}
	n, err := repo.CreateIgnoreConflicts(dbc, cdm())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	n, err = repo.CreateIgnoreConflicts(dbc, cdm())
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "cdm concepts with NULL cohort must still collide")

	owned := func() []*types.Concept {
		return []*types.Concept{
			{Variable: "age_x", SourceType: types.ConceptSourceCohort, CohortID: &a.ID},
			{Variable: "age_x", SourceType: types.ConceptSourceCohort, CohortID: &b.ID},
			{Variable: "age", SourceType: types.ConceptSourceCohort, CohortID: &a.ID},
		}
	}
	n, err = repo.CreateIgnoreConflicts(dbc, owned())
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)
	n, err = repo.CreateIgnoreConflicts(dbc, owned())
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	count, err := repo.CountBySource(dbc, types.ConceptSourceCDM)
	require.NoError(t, err)
	assert.EqualValues(t, 2, count)
	count, err = repo.CountBySource(dbc, types.ConceptSourceCohort)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)

	got, err := repo.GetCDMByVariables(dbc, []string{"age", "unknown"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "age", got[0].Variable)
	assert.Nil(t, got[0].CohortID)

	scoped, err := repo.GetCohortConceptsByCohortIDs(dbc, []uint{a.ID})
	require.NoError(t, err)
	assert.Len(t, scoped, 2)
	for _, c := range scoped {
		require.NotNil(t, c.CohortID)
		assert.Equal(t, a.ID, *c.CohortID)
	}

	_, err = repo.CreateIgnoreConflicts(dbc, []*types.Concept{{Variable: "orphan", SourceType: types.ConceptSourceCohort}})
	assert.Error(t, err)
}

func TestMappingRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewMappingRepo(db, testutil.Logger(t))

	cohort := testutil.SeedCohort(t, ctx, tx, "cohort_a")
	age := testutil.SeedCDMConcept(t, ctx, tx, "age")
	ageX := testutil.SeedCohortConcept(t, ctx, tx, cohort.ID, "age_x")

	rows := func() []*types.Mapping {
		return []*types.Mapping{
			{SourceID: age.ID, TargetID: ageX.ID, Modality: "demographics"},
			{SourceID: age.ID, TargetID: ageX.ID, Modality: "clinical"},
		}
	}
	n, err := repo.CreateIgnoreConflicts(dbc, rows())
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
	n, err = repo.CreateIgnoreConflicts(dbc, rows())
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)

	all, err := repo.List(dbc, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	demo, err := repo.List(dbc, "demographics")
	require.NoError(t, err)
	require.Len(t, demo, 1)
	assert.Equal(t, ageX.ID, demo[0].TargetID)

	modalities, err := repo.ListModalities(dbc)
	require.NoError(t, err)
	assert.Equal(t, []string{"clinical", "demographics"}, modalities)
}

func TestCohortDeleteCascades(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	cohort := testutil.SeedCohort(t, ctx, tx, "cohort_a")
	age := testutil.SeedCDMConcept(t, ctx, tx, "age")
	ageX := testutil.SeedCohortConcept(t, ctx, tx, cohort.ID, "age_x")
	testutil.SeedMapping(t, ctx, tx, age.ID, ageX.ID, "demographics")

	require.NoError(t, tx.Delete(&types.Cohort{}, cohort.ID).Error)

	concepts := NewConceptRepo(db, testutil.Logger(t))
	n, err := concepts.CountBySource(dbc, types.ConceptSourceCohort)
	require.NoError(t, err)
	assert.Zero(t, n)

	mappings := NewMappingRepo(db, testutil.Logger(t))
	n, err = mappings.Count(dbc)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestChunks(t *testing.T) {
	assert.Nil(t, chunks([]int{}, 2))
	assert.Equal(t, [][]int{{1, 2}, {3}}, chunks([]int{1, 2, 3}, 2))
}
