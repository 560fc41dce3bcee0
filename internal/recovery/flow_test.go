package recovery_test

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"linker_auth/internal/auth"
	"linker_auth/internal/ledger"
	"linker_auth/internal/lib/jwt"
	"linker_auth/internal/lib/password"
	"linker_auth/internal/models"
	"linker_auth/internal/recovery"
	"linker_auth/internal/storage/memory"
	"linker_auth/internal/throttle"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type captured struct{ msgs []models.Message }

func (c *captured) SendMessage(_ context.Context, msg models.Message) error {
	c.msgs = append(c.msgs, msg)
	return nil
}

func TestManualResetThenLogin(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	repo := memory.New()
	hasher := password.NewBcrypt(bcrypt.MinCost)
	tokens, err := jwt.New("flow-secret")
	require.NoError(t, err)

	authSvc := auth.New(log, repo, repo, hasher, tokens, 15*time.Minute, 24*time.Hour)

	l := ledger.New(repo)
	box := &captured{}
	engine := recovery.New(log, repo, l, throttle.New(l, throttle.DefaultWindow), hasher, box,
		recovery.Config{LinkBaseURL: "https://lnk.example/api/v1/auth"})

	_, _, err = authSvc.Register(ctx, "userU", "e@x.com", "Original1")
	require.NoError(t, err)

	require.NoError(t, engine.RequestManualReset(ctx, "e@x.com"))
	require.Len(t, box.msgs, 1)

	m := regexp.MustCompile(`/manual-password-change/([0-9a-f]+)$`).FindStringSubmatch(box.msgs[0].Body)
	require.Len(t, m, 2)

	require.NoError(t, engine.CompleteManualReset(ctx, m[1], "Original1", "NewPass1"))

	_, err = authSvc.Login(ctx, "userU", "NewPass1")
	require.NoError(t, err)

	_, err = authSvc.Login(ctx, "userU", "Original1")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
}
