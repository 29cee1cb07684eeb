package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/pdataviewer-backend/internal/data/repos/testutil"
	types "github.com/yungbote/pdataviewer-backend/internal/domain"
	"github.com/yungbote/pdataviewer-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/pdataviewer-backend/internal/pkg/errors"
)

func TestImportJobRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewImportJobRepo(db, testutil.Logger(t))

	now := time.Now().UTC()
	older, err := repo.Create(dbc, &types.ImportJob{
		UploadType: types.UploadCDM,
		Filename:   "demographics.csv",
		Content:    []byte("Feature\n"),
		CreatedAt:  now.Add(-2 * time.Minute),
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, older.ID)
	assert.Equal(t, types.ImportJobQueued, older.Status)

	_, err = repo.Create(dbc, &types.ImportJob{
		UploadType: types.UploadMetadata,
		Filename:   "metadata.csv",
		CreatedAt:  now.Add(-1 * time.Minute),
	})
	require.NoError(t, err)

	claimed, err := repo.ClaimNext(dbc)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, older.ID, claimed.ID)
	assert.Equal(t, types.ImportJobRunning, claimed.Status)
	assert.Equal(t, 1, claimed.Attempts)

	stored, err := repo.GetByID(dbc, older.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ImportJobRunning, stored.Status)
	assert.Equal(t, []byte("Feature\n"), stored.Content)

	require.NoError(t, repo.UpdateFields(dbc, older.ID, map[string]interface{}{
		"status": types.ImportJobSucceeded,
		"stage":  "done",
	}))
	stored, err = repo.GetByID(dbc, older.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ImportJobSucceeded, stored.Status)

	second, err := repo.ClaimNext(dbc)
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "metadata.csv", second.Filename)

	none, err := repo.ClaimNext(dbc)
	require.NoError(t, err)
	assert.Nil(t, none)

	// second is running with a fresh heartbeat; a cutoff in the future makes it stale
	n, err := repo.RequeueStale(dbc, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	requeued, err := repo.GetByID(dbc, second.ID)
	require.NoError(t, err)
	assert.Equal(t, types.ImportJobQueued, requeued.Status)

	_, err = repo.GetByID(dbc, uuid.New())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
