// Package recovery implements the two password reset protocols.
//
// Manual flow: Requested -> Validated -> Completed. The user receives a
// link with a hash and submits it together with the old and new password.
//
// Automatic flow: Requested -> CodeIssued -> Verified -> Completed. The
// user receives a hash and a six digit code; on success the service sets a
// random password and mails it.
//
// Every failed check of a step is collected into one validation.Errors;
// a rejected hash is never repaired, the caller starts a new request.
package recovery

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"linker_auth/internal/lib/password"
	"linker_auth/internal/lib/validation"
	"linker_auth/internal/models"
	"linker_auth/internal/storage"

	sl "linker_auth/internal/lib/logger"

	"github.com/google/uuid"
)

const (
	DefaultHashTTL = 10 * time.Minute
	DefaultLockTTL = 30 * time.Second
)

const (
	msgEmailNotFound = "User with this email not found"
	msgRequestBusy   = "Reset request is already being processed"
	msgHashNotValid  = "Hash not valid"
	msgOldPassword   = "Password not matched"
	msgCodeMismatch  = "Code not matched"
)

type UserStore interface {
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id int64) (models.User, error)
	UpdatePassword(ctx context.Context, uid int64, passHash []byte) error
}

type Ledger interface {
	RecordManualRequest(ctx context.Context, email string) (string, error)
	RecordAutoRequest(ctx context.Context, email string, userID int64) (string, string, error)
	LookupByHash(ctx context.Context, kind models.ResetKind, hash string) (models.ResetRequest, error)
}

type Throttle interface {
	Check(ctx context.Context, email string, kind models.ResetKind) (bool, error)
	Window() time.Duration
}

// Locker serialises the check-then-insert step of a reset request per
// email and flow kind. It is optional. Acquire hands out a token and
// Release only frees a lock still held under that token.
type Locker interface {
	AcquireResetLock(ctx context.Context, kind models.ResetKind, email string, ttl time.Duration) (string, bool, error)
	ReleaseResetLock(ctx context.Context, kind models.ResetKind, email, token string) error
}

type Config struct {
	// HashTTL is how long a reset hash may be used after creation.
	HashTTL time.Duration
	// LinkBaseURL prefixes the links put into reset mails,
	// e.g. "http://localhost:8080/api/v1/auth".
	LinkBaseURL string
	LockTTL     time.Duration
}

type Engine struct {
	log       *slog.Logger
	users     UserStore
	ledger    Ledger
	throttle  Throttle
	hasher    password.Hasher
	publisher Publisher
	locker    Locker
	cfg       Config
	now       func() time.Time
}

type Option func(*Engine)

func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func WithLocker(l Locker) Option {
	return func(e *Engine) {
		e.locker = l
	}
}

func New(
	log *slog.Logger,
	users UserStore,
	ledger Ledger,
	throttle Throttle,
	hasher password.Hasher,
	publisher Publisher,
	cfg Config,
	opts ...Option,
) *Engine {
	if cfg.HashTTL <= 0 {
		cfg.HashTTL = DefaultHashTTL
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = DefaultLockTTL
	}

	e := &Engine{
		log:       log,
		users:     users,
		ledger:    ledger,
		throttle:  throttle,
		hasher:    hasher,
		publisher: publisher,
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// * RequestManualReset records a manual reset request and mails the link.
func (e *Engine) RequestManualReset(ctx context.Context, email string) error {
	const op = "recovery.RequestManualReset"

	log := e.log.With(slog.String("op", op))

	release, err := e.acquire(ctx, models.ResetManual, email)
	if err != nil {
		return err
	}
	defer release()

	if _, err := e.checkRequest(ctx, email, models.ResetManual); err != nil {
		log.Info("manual reset request rejected", sl.Err(err))
		return err
	}

	hash, err := e.ledger.RecordManualRequest(ctx, email)
	if err != nil {
		log.Error("failed to record manual reset", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	e.send(ctx, log, manualLinkMessage(e.cfg.LinkBaseURL, email, hash))

	log.Info("manual reset requested")

	return nil
}

// * CompleteManualReset replaces the password of the identity the hash was
// issued for. The reset row is not consumed; the hash stays usable until
// HashTTL lapses.
func (e *Engine) CompleteManualReset(ctx context.Context, hash, oldPassword, newPassword string) error {
	const op = "recovery.CompleteManualReset"

	log := e.log.With(slog.String("op", op))

	user, err := e.verifyManual(ctx, log, op, hash, oldPassword, true)
	if err != nil {
		return err
	}

	if err := e.setPassword(ctx, user.ID, newPassword); err != nil {
		log.Error("failed to replace password", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("password replaced", slog.Int64("uid", user.ID))

	return nil
}

// * RequestAutoReset records an automatic reset request bound to the user
// and mails the hash link together with the one-time code.
func (e *Engine) RequestAutoReset(ctx context.Context, email string) error {
	const op = "recovery.RequestAutoReset"

	log := e.log.With(slog.String("op", op))

	release, err := e.acquire(ctx, models.ResetAuto, email)
	if err != nil {
		return err
	}
	defer release()

	user, err := e.checkRequest(ctx, email, models.ResetAuto)
	if err != nil {
		log.Info("auto reset request rejected", sl.Err(err))
		return err
	}

	hash, code, err := e.ledger.RecordAutoRequest(ctx, email, user.ID)
	if err != nil {
		log.Error("failed to record auto reset", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	e.send(ctx, log, autoLinkMessage(e.cfg.LinkBaseURL, email, hash, code))

	log.Info("auto reset requested", slog.Int64("uid", user.ID))

	return nil
}

// * CompleteAutoReset verifies the code for hash, sets a generated password
// on the bound user and mails it in plain text.
func (e *Engine) CompleteAutoReset(ctx context.Context, hash, code string) error {
	const op = "recovery.CompleteAutoReset"

	log := e.log.With(slog.String("op", op))

	rec, err := e.verifyAuto(ctx, log, op, hash, code, true)
	if err != nil {
		return err
	}

	user, err := e.users.UserByID(ctx, rec.UserID)
	if err != nil {
		log.Error("failed to load bound user", slog.Int64("uid", rec.UserID), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	newPassword := uuid.NewString()

	if err := e.setPassword(ctx, user.ID, newPassword); err != nil {
		log.Error("failed to set generated password", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	e.send(ctx, log, newPasswordMessage(user.Email, newPassword))

	log.Info("password regenerated", slog.Int64("uid", user.ID))

	return nil
}

// * CheckManualRequest runs the checks of RequestManualReset without
// recording or mailing anything.
func (e *Engine) CheckManualRequest(ctx context.Context, email string) error {
	_, err := e.checkRequest(ctx, email, models.ResetManual)
	return err
}

// * CheckAutoRequest is CheckManualRequest for the automatic flow.
func (e *Engine) CheckAutoRequest(ctx context.Context, email string) error {
	_, err := e.checkRequest(ctx, email, models.ResetAuto)
	return err
}

// * CheckManualCompletion runs the hash and old password checks of
// CompleteManualReset without touching the password. An empty oldPassword
// is not compared.
func (e *Engine) CheckManualCompletion(ctx context.Context, hash, oldPassword string) error {
	const op = "recovery.CheckManualCompletion"

	log := e.log.With(slog.String("op", op))

	_, err := e.verifyManual(ctx, log, op, hash, oldPassword, oldPassword != "")
	return err
}

// * CheckAutoCompletion runs the hash and code checks of CompleteAutoReset
// without touching the password. An empty code is not compared.
func (e *Engine) CheckAutoCompletion(ctx context.Context, hash, code string) error {
	const op = "recovery.CheckAutoCompletion"

	log := e.log.With(slog.String("op", op))

	_, err := e.verifyAuto(ctx, log, op, hash, code, code != "")
	return err
}

// verifyManual resolves hash to its user and collects the expiry and old
// password failures.
func (e *Engine) verifyManual(
	ctx context.Context,
	log *slog.Logger,
	op, hash, oldPassword string,
	comparePassword bool,
) (models.User, error) {
	rec, err := e.ledger.LookupByHash(ctx, models.ResetManual, hash)
	if err != nil {
		return models.User{}, e.lookupFailed(log, op, err)
	}

	user, err := e.users.UserByEmail(ctx, rec.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("reset hash points at a missing user")
		} else {
			log.Error("failed to load user", sl.Err(err))
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	var errs validation.Errors

	if e.expired(rec) {
		errs.Add("hash", msgHashNotValid)
	}
	if comparePassword && !e.hasher.Compare(user.PassHash, oldPassword) {
		errs.Add("oldPassword", msgOldPassword)
	}

	if err := errs.Err(); err != nil {
		log.Info("manual reset rejected", sl.Err(err))
		return models.User{}, err
	}

	return user, nil
}

// verifyAuto collects the expiry and code failures for hash.
func (e *Engine) verifyAuto(
	ctx context.Context,
	log *slog.Logger,
	op, hash, code string,
	compareCode bool,
) (models.ResetRequest, error) {
	rec, err := e.ledger.LookupByHash(ctx, models.ResetAuto, hash)
	if err != nil {
		return models.ResetRequest{}, e.lookupFailed(log, op, err)
	}

	var errs validation.Errors

	if e.expired(rec) {
		errs.Add("hash", msgHashNotValid)
	}
	if compareCode && subtle.ConstantTimeCompare([]byte(rec.SecretCode), []byte(code)) != 1 {
		errs.Add("secretCode", msgCodeMismatch)
	}

	if err := errs.Err(); err != nil {
		log.Info("auto reset rejected", sl.Err(err))
		return models.ResetRequest{}, err
	}

	return rec, nil
}

// checkRequest runs the throttle and the existing-email check and returns
// both failures together.
func (e *Engine) checkRequest(ctx context.Context, email string, kind models.ResetKind) (models.User, error) {
	const op = "recovery.checkRequest"

	var errs validation.Errors

	allowed, err := e.throttle.Check(ctx, email, kind)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if !allowed {
		errs.Add("email", fmt.Sprintf("Wait %d minutes before new attempt.", int(e.throttle.Window().Minutes())))
	}

	user, err := e.users.UserByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, fmt.Errorf("%s: %w", op, err)
		}
		errs.Add("email", msgEmailNotFound)
	}

	if err := errs.Err(); err != nil {
		return models.User{}, err
	}

	return user, nil
}

// acquire takes the optional per-email lock; a busy lock is reported as a
// validation error on the email field.
func (e *Engine) acquire(ctx context.Context, kind models.ResetKind, email string) (func(), error) {
	const op = "recovery.acquire"

	if e.locker == nil {
		return func() {}, nil
	}

	token, ok, err := e.locker.AcquireResetLock(ctx, kind, email, e.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		var errs validation.Errors
		errs.Add("email", msgRequestBusy)
		return nil, errs
	}

	return func() {
		if err := e.locker.ReleaseResetLock(context.WithoutCancel(ctx), kind, email, token); err != nil {
			e.log.Warn("failed to release reset lock", slog.String("op", op), sl.Err(err))
		}
	}, nil
}

func (e *Engine) expired(rec models.ResetRequest) bool {
	return rec.Age(e.now()) > e.cfg.HashTTL
}

func (e *Engine) setPassword(ctx context.Context, uid int64, plain string) error {
	hash, err := e.hasher.Hash(plain)
	if err != nil {
		return err
	}

	return e.users.UpdatePassword(ctx, uid, hash)
}

func (e *Engine) lookupFailed(log *slog.Logger, op string, err error) error {
	if errors.Is(err, storage.ErrResetNotFound) {
		log.Info("unknown reset hash")
	} else {
		log.Error("failed to look up reset hash", sl.Err(err))
	}

	return fmt.Errorf("%s: %w", op, err)
}
