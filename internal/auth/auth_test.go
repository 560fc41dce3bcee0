package auth

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"linker_auth/internal/lib/jwt"
	"linker_auth/internal/lib/password"
	"linker_auth/internal/lib/validation"
	"linker_auth/internal/models"
	"linker_auth/internal/storage"
	"linker_auth/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 24 * time.Hour
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

type fixture struct {
	auth   *Auth
	repo   *memory.Repo
	tokens *jwt.Manager
	clock  *clock
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	c := &clock{t: time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)}
	tokens, err := jwt.New("test-secret", jwt.WithClock(c.Now))
	require.NoError(t, err)

	repo := memory.New()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	return fixture{
		auth:   New(log, repo, repo, password.NewBcrypt(bcrypt.MinCost), tokens, accessTTL, refreshTTL),
		repo:   repo,
		tokens: tokens,
		clock:  c,
	}
}

func TestRegister_TokensValidateForNewIdentity(t *testing.T) {
	f := newFixture(t)

	user, pair, err := f.auth.Register(context.Background(), "alice", "alice@example.com", "Passw0rd")
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, []byte("Passw0rd"), user.PassHash)

	assert.True(t, f.tokens.Validate(pair.AccessToken, "alice", jwt.KindAccess))
	assert.True(t, f.tokens.Validate(pair.RefreshToken, "alice", jwt.KindRefresh))
}

func TestRegister_DuplicateEmailAndUsernameReportedTogether(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.auth.Register(ctx, "alice", "alice@example.com", "Passw0rd")
	require.NoError(t, err)

	_, _, err = f.auth.Register(ctx, "alice", "alice@example.com", "Other123")
	require.Error(t, err)

	errs, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{
		"email":    "Email already exists",
		"username": "Username already exists",
	}, errs.Map())
}

func TestRegister_SingleDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.auth.Register(ctx, "alice", "alice@example.com", "Passw0rd")
	require.NoError(t, err)

	_, _, err = f.auth.Register(ctx, "bobby", "alice@example.com", "Passw0rd")
	errs, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"email": "Email already exists"}, errs.Map())
}

func TestCheckAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.auth.Register(ctx, "alice", "alice@example.com", "Passw0rd")
	require.NoError(t, err)

	err = f.auth.CheckAvailability(ctx, "bobby", "alice@example.com")
	errs, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"email": "Email already exists"}, errs.Map())

	require.NoError(t, f.auth.CheckAvailability(ctx, "", "bobby@example.com"))
	require.NoError(t, f.auth.CheckAvailability(ctx, "bobby", ""))

	_, err = f.repo.UserByUsername(ctx, "bobby")
	assert.ErrorIs(t, err, storage.ErrUserNotFound, "a check never creates a user")
}

// racingSaver reports a unique violation as if another request won the insert.
type racingSaver struct{ err error }

func (s racingSaver) SaveUser(context.Context, models.User) (int64, error) { return 0, s.err }

func TestRegister_StoreConflictBecomesValidationError(t *testing.T) {
	f := newFixture(t)
	a := New(f.auth.log, racingSaver{err: storage.ErrUsernameExists}, f.repo, f.auth.hasher, f.tokens, accessTTL, refreshTTL)

	_, _, err := a.Register(context.Background(), "alice", "alice@example.com", "Passw0rd")

	errs, ok := validation.As(err)
	require.True(t, ok)
	assert.Equal(t, map[string]string{"username": "Username already exists"}, errs.Map())
}

func TestRegister_StoreFailure(t *testing.T) {
	f := newFixture(t)
	a := New(f.auth.log, racingSaver{err: errors.New("db down")}, f.repo, f.auth.hasher, f.tokens, accessTTL, refreshTTL)

	_, _, err := a.Register(context.Background(), "alice", "alice@example.com", "Passw0rd")
	require.Error(t, err)

	_, ok := validation.As(err)
	assert.False(t, ok)
}

func TestLogin_NonEnumeration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.auth.Register(ctx, "alice", "alice@example.com", "Passw0rd")
	require.NoError(t, err)

	_, wrongPass := f.auth.Login(ctx, "alice", "wrong-pass")
	_, noUser := f.auth.Login(ctx, "nobody", "Passw0rd")

	require.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	require.ErrorIs(t, noUser, ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), noUser.Error())

	pair, err := f.auth.Login(ctx, "alice", "Passw0rd")
	require.NoError(t, err)
	assert.True(t, f.tokens.Validate(pair.AccessToken, "alice", jwt.KindAccess))
}

func TestRefresh_EchoesRefreshToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.auth.Register(ctx, "alice", "alice@example.com", "Passw0rd")
	require.NoError(t, err)

	login, err := f.auth.Login(ctx, "alice", "Passw0rd")
	require.NoError(t, err)

	f.clock.t = f.clock.t.Add(time.Hour)

	pair, err := f.auth.Refresh(ctx, login.RefreshToken)
	require.NoError(t, err)

	assert.Equal(t, login.RefreshToken, pair.RefreshToken)
	assert.NotEqual(t, login.AccessToken, pair.AccessToken)
	assert.True(t, f.tokens.Validate(pair.AccessToken, "alice", jwt.KindAccess))
}

func TestRefresh_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, reg, err := f.auth.Register(ctx, "alice", "alice@example.com", "Passw0rd")
	require.NoError(t, err)

	t.Run("garbage", func(t *testing.T) {
		_, err := f.auth.Refresh(ctx, "garbage")
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("access token used as refresh token", func(t *testing.T) {
		_, err := f.auth.Refresh(ctx, reg.AccessToken)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("unknown subject", func(t *testing.T) {
		ghost, err := f.tokens.NewToken(models.User{Username: "ghost"}, jwt.KindRefresh, refreshTTL)
		require.NoError(t, err)

		_, err = f.auth.Refresh(ctx, ghost)
		require.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("expired", func(t *testing.T) {
		saved := f.clock.t
		defer func() { f.clock.t = saved }()

		f.clock.t = f.clock.t.Add(refreshTTL + time.Minute)

		_, err := f.auth.Refresh(ctx, reg.RefreshToken)
		require.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestIdentify(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, pair, err := f.auth.Register(ctx, "alice", "alice@example.com", "Passw0rd")
	require.NoError(t, err)

	user, err := f.auth.Identify(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", user.Email)

	_, err = f.auth.Identify(ctx, pair.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = f.auth.Identify(ctx, "")
	require.ErrorIs(t, err, ErrUnauthorized)
}
