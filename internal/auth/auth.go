package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"linker_auth/internal/lib/jwt"
	"linker_auth/internal/lib/password"
	"linker_auth/internal/lib/validation"
	"linker_auth/internal/models"
	"linker_auth/internal/storage"

	sl "linker_auth/internal/lib/logger"
)

var (
	ErrInvalidCredentials = errors.New("user not found or password incorrect")
	ErrUnauthorized       = errors.New("unauthorized")
)

const (
	msgEmailExists    = "Email already exists"
	msgUsernameExists = "Username already exists"
)

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	hasher      password.Hasher
	tokens      *jwt.Manager
	tokenTTL    time.Duration
	refreshTTL  time.Duration
}

type UserSaver interface {
	SaveUser(ctx context.Context, user models.User) (uid int64, err error)
}

type UserProvider interface {
	UserByUsername(ctx context.Context, username string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	hasher password.Hasher,
	tokens *jwt.Manager,
	tokenTTL, refreshTTL time.Duration,
) *Auth {
	return &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		hasher:      hasher,
		tokens:      tokens,
		tokenTTL:    tokenTTL,
		refreshTTL:  refreshTTL,
	}
}

// * Register creates an ordinary user and issues both tokens. Duplicate
// email and duplicate username are reported together.
func (a *Auth) Register(
	ctx context.Context,
	username, email, pass string,
) (models.User, TokenPair, error) {
	const op = "auth.Register"

	log := a.log.With(
		slog.String("op", op),
	)

	log.Info("Registering new user")

	if err := a.checkAvailability(ctx, log, username, email); err != nil {
		if _, ok := validation.As(err); ok {
			log.Warn("User already exists")
			return models.User{}, TokenPair{}, err
		}
		return models.User{}, TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	passHash, err := a.hasher.Hash(pass)
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return models.User{}, TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		Email:    email,
		Username: username,
		PassHash: passHash,
		Role:     models.RoleUser,
	}

	user.ID, err = a.usrSaver.SaveUser(ctx, user)
	if err != nil {
		var errs validation.Errors

		// lost a race against a concurrent registration
		switch {
		case errors.Is(err, storage.ErrEmailExists):
			errs.Add("email", msgEmailExists)
			return models.User{}, TokenPair{}, errs
		case errors.Is(err, storage.ErrUsernameExists):
			errs.Add("username", msgUsernameExists)
			return models.User{}, TokenPair{}, errs
		}

		log.Error("Failed to save user", sl.Err(err))

		return models.User{}, TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	pair, err := a.issuePair(user)
	if err != nil {
		log.Error("failed to issue tokens", sl.Err(err))
		return models.User{}, TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.Int64("uid", user.ID))

	return user, pair, nil
}

// * CheckAvailability reports a taken email and a taken username together,
// without creating anything. Empty values are not looked up.
func (a *Auth) CheckAvailability(ctx context.Context, username, email string) error {
	const op = "auth.CheckAvailability"

	log := a.log.With(
		slog.String("op", op),
	)

	if err := a.checkAvailability(ctx, log, username, email); err != nil {
		if _, ok := validation.As(err); ok {
			return err
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (a *Auth) checkAvailability(ctx context.Context, log *slog.Logger, username, email string) error {
	var errs validation.Errors

	if email != "" {
		if _, err := a.usrProvider.UserByEmail(ctx, email); err == nil {
			errs.Add("email", msgEmailExists)
		} else if !errors.Is(err, storage.ErrUserNotFound) {
			log.Error("failed to check email", sl.Err(err))
			return err
		}
	}

	if username != "" {
		if _, err := a.usrProvider.UserByUsername(ctx, username); err == nil {
			errs.Add("username", msgUsernameExists)
		} else if !errors.Is(err, storage.ErrUserNotFound) {
			log.Error("failed to check username", sl.Err(err))
			return err
		}
	}

	return errs.Err()
}

// * Login does not tell a missing user from a wrong password.
func (a *Auth) Login(
	ctx context.Context,
	username, password string,
) (TokenPair, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("invalid credentials")
			return TokenPair{}, ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if !a.hasher.Compare(user.PassHash, password) {
		log.Info("invalid credentials")
		return TokenPair{}, ErrInvalidCredentials
	}

	pair, err := a.issuePair(user)
	if err != nil {
		log.Error("failed to issue tokens", sl.Err(err))
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user logged in successfully", slog.Int64("uid", user.ID))

	return pair, nil
}

// * Refresh mints a new access token. The refresh token is returned as is,
// it is never rotated.
func (a *Auth) Refresh(
	ctx context.Context,
	refreshToken string,
) (TokenPair, error) {
	const op = "auth.Refresh"

	log := a.log.With(
		slog.String("op", op),
	)

	username, err := a.tokens.ExtractSubject(refreshToken)
	if err != nil {
		log.Warn("unreadable refresh token", sl.Err(err))
		return TokenPair{}, ErrUnauthorized
	}

	user, err := a.usrProvider.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Warn("refresh token subject not found")
			return TokenPair{}, ErrUnauthorized
		}

		log.Error("failed to load user", sl.Err(err))
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if !a.tokens.Validate(refreshToken, user.Username, jwt.KindRefresh) {
		log.Warn("refresh token rejected")
		return TokenPair{}, ErrUnauthorized
	}

	accessToken, err := a.tokens.NewToken(user, jwt.KindAccess, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate access token", sl.Err(err))
		return TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("refresh successful", slog.Int64("uid", user.ID))

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// * Identify resolves the caller of a bearer-protected request from its
// access token. It runs once at the HTTP boundary; the result is passed on
// explicitly.
func (a *Auth) Identify(ctx context.Context, accessToken string) (models.User, error) {
	const op = "auth.Identify"

	username, err := a.tokens.ExtractSubject(accessToken)
	if err != nil {
		return models.User{}, ErrUnauthorized
	}

	user, err := a.usrProvider.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.User{}, ErrUnauthorized
		}

		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	if !a.tokens.Validate(accessToken, user.Username, jwt.KindAccess) {
		return models.User{}, ErrUnauthorized
	}

	return user, nil
}

func (a *Auth) issuePair(user models.User) (TokenPair, error) {
	accessToken, err := a.tokens.NewToken(user, jwt.KindAccess, a.tokenTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := a.tokens.NewToken(user, jwt.KindRefresh, a.refreshTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: refreshToken}, nil
}
