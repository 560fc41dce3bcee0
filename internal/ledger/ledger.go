// Package ledger is the append-only log of password reset attempts.
//
// Rows are never updated or deleted. Every lookup resolves to the most
// recently created row for its key, ties broken by insertion order.
// Expired rows are not pruned.
package ledger

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"linker_auth/internal/models"
)

const (
	hashBytes = 32
	maxCode   = 999999
)

type Store interface {
	SaveResetRequest(ctx context.Context, rec models.ResetRequest) error
	LatestResetByHash(ctx context.Context, kind models.ResetKind, hash string) (models.ResetRequest, error)
	LatestResetByEmail(ctx context.Context, kind models.ResetKind, email string) (models.ResetRequest, error)
}

type Ledger struct {
	store Store
	now   func() time.Time
}

type Option func(*Ledger)

func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

func New(store Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	return l
}

// * RecordManualRequest appends a manual reset row and returns its hash for
// out-of-band delivery.
func (l *Ledger) RecordManualRequest(ctx context.Context, email string) (string, error) {
	const op = "ledger.RecordManualRequest"

	hash, err := newHash()
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	rec := models.ResetRequest{
		Kind:      models.ResetManual,
		Email:     email,
		Hash:      hash,
		CreatedAt: l.now(),
	}

	if err := l.store.SaveResetRequest(ctx, rec); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return hash, nil
}

// * RecordAutoRequest appends an automatic reset row bound to userID and
// returns its hash together with the one-time code.
func (l *Ledger) RecordAutoRequest(ctx context.Context, email string, userID int64) (string, string, error) {
	const op = "ledger.RecordAutoRequest"

	hash, err := newHash()
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	code, err := newCode()
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	rec := models.ResetRequest{
		Kind:       models.ResetAuto,
		Email:      email,
		Hash:       hash,
		SecretCode: code,
		UserID:     userID,
		CreatedAt:  l.now(),
	}

	if err := l.store.SaveResetRequest(ctx, rec); err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	return hash, code, nil
}

// LookupByHash returns storage.ErrResetNotFound (wrapped) for unknown hashes.
func (l *Ledger) LookupByHash(ctx context.Context, kind models.ResetKind, hash string) (models.ResetRequest, error) {
	const op = "ledger.LookupByHash"

	rec, err := l.store.LatestResetByHash(ctx, kind, hash)
	if err != nil {
		return models.ResetRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}

func (l *Ledger) LookupMostRecentByIdentity(ctx context.Context, kind models.ResetKind, email string) (models.ResetRequest, error) {
	const op = "ledger.LookupMostRecentByIdentity"

	rec, err := l.store.LatestResetByEmail(ctx, kind, email)
	if err != nil {
		return models.ResetRequest{}, fmt.Errorf("%s: %w", op, err)
	}

	return rec, nil
}

func newHash() (string, error) {
	b := make([]byte, hashBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}

	return hex.EncodeToString(b), nil
}

// newCode draws uniformly from 1..999999, so "000000" is never issued.
func newCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(maxCode))
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%06d", n.Int64()+1), nil
}
