package memory

import (
	"context"
	"testing"
	"time"

	"linker_auth/internal/models"
	"linker_auth/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveUser_Uniqueness(t *testing.T) {
	ctx := context.Background()
	r := New()

	id, err := r.SaveUser(ctx, models.User{Username: "alice", Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = r.SaveUser(ctx, models.User{Username: "other", Email: "a@x.com"})
	require.ErrorIs(t, err, storage.ErrEmailExists)

	_, err = r.SaveUser(ctx, models.User{Username: "alice", Email: "b@x.com"})
	require.ErrorIs(t, err, storage.ErrUsernameExists)
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	r := New()

	id, err := r.SaveUser(ctx, models.User{Username: "alice", Email: "a@x.com", PassHash: []byte("old")})
	require.NoError(t, err)

	require.NoError(t, r.UpdatePassword(ctx, id, []byte("new")))

	u, err := r.UserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), u.PassHash)

	require.ErrorIs(t, r.UpdatePassword(ctx, 99, []byte("x")), storage.ErrUserNotFound)
}

func TestLatestReset_NewestWinsAndTiesByInsertion(t *testing.T) {
	ctx := context.Background()
	r := New()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.SaveResetRequest(ctx, models.ResetRequest{Kind: models.ResetManual, Email: "a@x.com", Hash: "h1", CreatedAt: t0}))
	require.NoError(t, r.SaveResetRequest(ctx, models.ResetRequest{Kind: models.ResetManual, Email: "a@x.com", Hash: "h2", CreatedAt: t0.Add(time.Minute)}))
	require.NoError(t, r.SaveResetRequest(ctx, models.ResetRequest{Kind: models.ResetManual, Email: "a@x.com", Hash: "h3", CreatedAt: t0.Add(time.Minute)}))
	require.NoError(t, r.SaveResetRequest(ctx, models.ResetRequest{Kind: models.ResetAuto, Email: "a@x.com", Hash: "h4", CreatedAt: t0.Add(time.Hour)}))

	got, err := r.LatestResetByEmail(ctx, models.ResetManual, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "h3", got.Hash)

	got, err = r.LatestResetByEmail(ctx, models.ResetAuto, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "h4", got.Hash)

	_, err = r.LatestResetByHash(ctx, models.ResetAuto, "h1")
	require.ErrorIs(t, err, storage.ErrResetNotFound)
}
