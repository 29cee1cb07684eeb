package auth

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

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewUserRepo(db, testutil.Logger(t))

	created, err := repo.CreateIgnoreConflicts(dbc, &types.User{Name: "admin", HashedPassword: "h1"})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = repo.CreateIgnoreConflicts(dbc, &types.User{Name: "admin", HashedPassword: "h2"})
	require.NoError(t, err)
	assert.False(t, created)

	u, err := repo.GetByName(dbc, "admin")
	require.NoError(t, err)
	assert.Equal(t, "h1", u.HashedPassword)

	exists, err := repo.NameExists(dbc, "admin")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetByName(dbc, "nobody")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
