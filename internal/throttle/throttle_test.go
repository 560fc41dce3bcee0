package throttle

import (
	"context"
	"errors"
	"testing"
	"time"

	"linker_auth/internal/ledger"
	"linker_auth/internal/models"
	"linker_auth/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) Now() time.Time { return c.t }

func setup(t *testing.T) (*Guard, *ledger.Ledger, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	l := ledger.New(memory.New(), ledger.WithClock(c.Now))
	return New(l, DefaultWindow, WithClock(c.Now)), l, c
}

func TestCheck_FirstRequestPasses(t *testing.T) {
	g, _, _ := setup(t)

	ok, err := g.Check(context.Background(), "a@x.com", models.ResetManual)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCheck_Boundary(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    bool
	}{
		{name: "4 minutes", elapsed: 4 * time.Minute, want: false},
		{name: "4m59s", elapsed: 4*time.Minute + 59*time.Second, want: false},
		{name: "exactly 5 minutes", elapsed: 5 * time.Minute, want: true},
		{name: "later", elapsed: 30 * time.Minute, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			g, l, c := setup(t)

			_, err := l.RecordManualRequest(ctx, "a@x.com")
			require.NoError(t, err)

			c.t = c.t.Add(tt.elapsed)

			ok, err := g.Check(ctx, "a@x.com", models.ResetManual)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestCheck_FlowsAreIndependent(t *testing.T) {
	ctx := context.Background()
	g, l, c := setup(t)

	_, err := l.RecordManualRequest(ctx, "a@x.com")
	require.NoError(t, err)
	c.t = c.t.Add(time.Minute)

	ok, err := g.Check(ctx, "a@x.com", models.ResetAuto)
	require.NoError(t, err)
	assert.True(t, ok, "manual history must not throttle the automatic flow")

	ok, err = g.Check(ctx, "b@x.com", models.ResetManual)
	require.NoError(t, err)
	assert.True(t, ok, "other identities are unaffected")
}

type failingFinder struct{}

func (failingFinder) LookupMostRecentByIdentity(context.Context, models.ResetKind, string) (models.ResetRequest, error) {
	return models.ResetRequest{}, errors.New("db down")
}

func TestCheck_StoreError(t *testing.T) {
	g := New(failingFinder{}, 0)
	assert.Equal(t, DefaultWindow, g.Window())

	ok, err := g.Check(context.Background(), "a@x.com", models.ResetManual)
	require.Error(t, err)
	assert.False(t, ok)
}
