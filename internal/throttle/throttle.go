package throttle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"linker_auth/internal/models"
	"linker_auth/internal/storage"
)

const DefaultWindow = 5 * time.Minute

type LatestFinder interface {
	LookupMostRecentByIdentity(ctx context.Context, kind models.ResetKind, email string) (models.ResetRequest, error)
}

// Guard enforces a minimum spacing between reset requests per email and
// flow kind. Manual and automatic flows have separate buckets.
type Guard struct {
	ledger LatestFinder
	window time.Duration
	now    func() time.Time
}

type Option func(*Guard)

func WithClock(now func() time.Time) Option {
	return func(g *Guard) {
		g.now = now
	}
}

func New(ledger LatestFinder, window time.Duration, opts ...Option) *Guard {
	if window <= 0 {
		window = DefaultWindow
	}

	g := &Guard{
		ledger: ledger,
		window: window,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}

	return g
}

// * Check reports whether a new request may be recorded now. A first-time
// requester always passes; otherwise the request is rejected only when
// strictly less than the window has elapsed since the latest one.
func (g *Guard) Check(ctx context.Context, email string, kind models.ResetKind) (bool, error) {
	const op = "throttle.Check"

	last, err := g.ledger.LookupMostRecentByIdentity(ctx, kind, email)
	if err != nil {
		if errors.Is(err, storage.ErrResetNotFound) {
			return true, nil
		}

		return false, fmt.Errorf("%s: %w", op, err)
	}

	return last.Age(g.now()) >= g.window, nil
}

func (g *Guard) Window() time.Duration {
	return g.window
}
