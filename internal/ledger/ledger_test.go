package ledger

import (
	"context"
	"regexp"
	"strconv"
	"testing"
	"time"

	"linker_auth/internal/models"
	"linker_auth/internal/storage"
	"linker_auth/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	hashRe = regexp.MustCompile(`^[0-9a-f]{64}$`)
	codeRe = regexp.MustCompile(`^[0-9]{6}$`)
)

func TestRecordManualRequest(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l := New(memory.New(), WithClock(func() time.Time { return t0 }))

	hash, err := l.RecordManualRequest(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Regexp(t, hashRe, hash)

	rec, err := l.LookupByHash(ctx, models.ResetManual, hash)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", rec.Email)
	assert.Equal(t, t0, rec.CreatedAt)
	assert.Empty(t, rec.SecretCode)

	_, err = l.LookupByHash(ctx, models.ResetAuto, hash)
	require.ErrorIs(t, err, storage.ErrResetNotFound)
}

func TestRecordAutoRequest(t *testing.T) {
	ctx := context.Background()
	l := New(memory.New())

	hash, code, err := l.RecordAutoRequest(ctx, "a@x.com", 42)
	require.NoError(t, err)
	assert.Regexp(t, hashRe, hash)
	assert.Regexp(t, codeRe, code)

	rec, err := l.LookupByHash(ctx, models.ResetAuto, hash)
	require.NoError(t, err)
	assert.Equal(t, code, rec.SecretCode)
	assert.Equal(t, int64(42), rec.UserID)
}

func TestRecord_HashesAreUnique(t *testing.T) {
	ctx := context.Background()
	l := New(memory.New())

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		hash, err := l.RecordManualRequest(ctx, "a@x.com")
		require.NoError(t, err)
		_, dup := seen[hash]
		require.False(t, dup)
		seen[hash] = struct{}{}
	}
}

func TestLookupMostRecentByIdentity(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	l := New(memory.New(), WithClock(func() time.Time { return now }))

	_, err := l.LookupMostRecentByIdentity(ctx, models.ResetManual, "a@x.com")
	require.ErrorIs(t, err, storage.ErrResetNotFound)

	_, err = l.RecordManualRequest(ctx, "a@x.com")
	require.NoError(t, err)
	second, err := l.RecordManualRequest(ctx, "a@x.com")
	require.NoError(t, err)

	rec, err := l.LookupMostRecentByIdentity(ctx, models.ResetManual, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, second, rec.Hash, "same timestamp resolves to the later insert")
}

func TestNewCode_Range(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := newCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 1)
		require.LessOrEqual(t, n, 999999)
	}
}
