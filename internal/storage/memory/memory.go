// Package memory is an in-process credential store and reset ledger with
// the same contract as the Postgres repository. Tests use it to exercise
// the domain packages without a database.
package memory

import (
	"context"
	"sync"

	"linker_auth/internal/models"
	"linker_auth/internal/storage"
)

type Repo struct {
	mu     sync.RWMutex
	nextID int64
	users  []models.User
	resets []models.ResetRequest
}

func New() *Repo {
	return &Repo{nextID: 1}
}

func (r *Repo) SaveUser(_ context.Context, user models.User) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return 0, storage.ErrEmailExists
		}
		if u.Username == user.Username {
			return 0, storage.ErrUsernameExists
		}
	}

	user.ID = r.nextID
	r.nextID++
	user.PassHash = append([]byte(nil), user.PassHash...)
	r.users = append(r.users, user)

	return user.ID, nil
}

func (r *Repo) UserByUsername(_ context.Context, username string) (models.User, error) {
	return r.findUser(func(u models.User) bool { return u.Username == username })
}

func (r *Repo) UserByEmail(_ context.Context, email string) (models.User, error) {
	return r.findUser(func(u models.User) bool { return u.Email == email })
}

func (r *Repo) UserByID(_ context.Context, id int64) (models.User, error) {
	return r.findUser(func(u models.User) bool { return u.ID == id })
}

func (r *Repo) UpdatePassword(_ context.Context, uid int64, passHash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.users {
		if r.users[i].ID == uid {
			r.users[i].PassHash = append([]byte(nil), passHash...)
			return nil
		}
	}

	return storage.ErrUserNotFound
}

func (r *Repo) SaveResetRequest(_ context.Context, rec models.ResetRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.resets = append(r.resets, rec)

	return nil
}

func (r *Repo) LatestResetByHash(_ context.Context, kind models.ResetKind, hash string) (models.ResetRequest, error) {
	return r.latestReset(func(rec models.ResetRequest) bool {
		return rec.Kind == kind && rec.Hash == hash
	})
}

func (r *Repo) LatestResetByEmail(_ context.Context, kind models.ResetKind, email string) (models.ResetRequest, error) {
	return r.latestReset(func(rec models.ResetRequest) bool {
		return rec.Kind == kind && rec.Email == email
	})
}

func (r *Repo) findUser(match func(models.User) bool) (models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if match(u) {
			u.PassHash = append([]byte(nil), u.PassHash...)
			return u, nil
		}
	}

	return models.User{}, storage.ErrUserNotFound
}

// latestReset orders by created_at, then by insertion; the newest wins.
func (r *Repo) latestReset(match func(models.ResetRequest) bool) (models.ResetRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found  models.ResetRequest
		exists bool
	)

	for _, rec := range r.resets {
		if !match(rec) {
			continue
		}
		if !exists || !rec.CreatedAt.Before(found.CreatedAt) {
			found = rec
			exists = true
		}
	}

	if !exists {
		return models.ResetRequest{}, storage.ErrResetNotFound
	}

	return found, nil
}
