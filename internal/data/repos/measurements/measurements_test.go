package measurements

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pdataviewer-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
)

func TestLongitudinalRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewLongitudinalRepo(db, testutil.Logger(t))

	a := testutil.SeedCohort(t, ctx, tx, "cohort_a")
	b := testutil.SeedCohort(t, ctx, tx, "cohort_b")

	rows := func() []*types.LongitudinalMeasurement {
		return []*types.LongitudinalMeasurement{
			{Variable: "updrs", Months: 0, CohortID: a.ID, PatientCount: 10, TotalPatientCount: 12},
			{Variable: "updrs", Months: 12, CohortID: a.ID, PatientCount: 8, TotalPatientCount: 12},
			{Variable: "updrs", Months: 0, CohortID: b.ID, PatientCount: 5, TotalPatientCount: 5},
			{Variable: "moca", Months: 0, CohortID: b.ID, PatientCount: 4, TotalPatientCount: 5},
		}
	}
	n, err := repo.CreateIgnoreConflicts(dbc, rows())
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	n, err = repo.CreateIgnoreConflicts(dbc, rows())
	require.NoError(t, err)
	assert.Zero(t, n)

	vars, err := repo.ListVariables(dbc)
	require.NoError(t, err)
	assert.Equal(t, []string{"moca", "updrs"}, vars)

	all, err := repo.List(dbc, "updrs", 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	onlyA, err := repo.List(dbc, "updrs", a.ID)
	require.NoError(t, err)
	require.Len(t, onlyA, 2)
	assert.Equal(t, "cohort_a", onlyA[0].Cohort)
	assert.Equal(t, 12, onlyA[1].Months)
}

func TestBiomarkerRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	repo := NewBiomarkerRepo(db, testutil.Logger(t))

	a := testutil.SeedCohort(t, ctx, tx, "cohort_a")
	b := testutil.SeedCohort(t, ctx, tx, "cohort_b")

	n, err := repo.CreateIgnoreConflicts(dbc, []*types.BiomarkerMeasurement{
		{Variable: "csf_abeta", ParticipantID: 1, CohortID: a.ID, Measurement: 1.5, Diagnosis: "PD"},
		{Variable: "csf_abeta", ParticipantID: 2, CohortID: a.ID, Measurement: 2.5, Diagnosis: "HC"},
		{Variable: "csf_abeta", ParticipantID: 1, CohortID: b.ID, Measurement: 3.5, Diagnosis: "PD"},
		{Variable: "csf_tau", ParticipantID: 1, CohortID: a.ID, Measurement: 9, Diagnosis: "PD"},
		// same participant, cohort and biomarker: ignored
		{Variable: "csf_abeta", ParticipantID: 1, CohortID: a.ID, Measurement: 7, Diagnosis: "PD"},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)

	vars, err := repo.ListVariables(dbc)
	require.NoError(t, err)
	assert.Equal(t, []string{"csf_abeta", "csf_tau"}, vars)

	cohorts, err := repo.ListCohortNames(dbc, "csf_abeta")
	require.NoError(t, err)
	assert.Equal(t, []string{"cohort_a", "cohort_b"}, cohorts)

	diagnoses, err := repo.ListDiagnoses(dbc, "csf_abeta", "cohort_a")
	require.NoError(t, err)
	assert.Equal(t, []string{"HC", "PD"}, diagnoses)

	values, err := repo.ListValues(dbc, "csf_abeta", a.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2.5}, values)

	values, err = repo.ListValues(dbc, "csf_abeta", a.ID, "PD")
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5}, values)
}
