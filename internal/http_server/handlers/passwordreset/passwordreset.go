// Package passwordreset serves both password reset flows. Successful calls
// answer 200 with an empty body; the outcome is delivered by mail.
package passwordreset

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	resp "linker_auth/internal/lib/api/response"
	sl "linker_auth/internal/lib/logger"
	"linker_auth/internal/lib/validation"
	"linker_auth/internal/storage"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

const handlerTimeout = 5 * time.Second

type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ManualCompleteRequest struct {
	OldPassword string `json:"oldPassword" validate:"required,min=6,max=255"`
	NewPassword string `json:"newPassword" validate:"required,min=6,max=255"`
}

type AutoCompleteRequest struct {
	SecretCode string `json:"secretCode" validate:"required,numeric"`
}

// ManualResetter runs the manual flow. The Check methods run the same
// checks without side effects; they serve requests that already failed
// shape validation so every error is reported at once.
type ManualResetter interface {
	RequestManualReset(ctx context.Context, email string) error
	CompleteManualReset(ctx context.Context, hash, oldPassword, newPassword string) error
	CheckManualRequest(ctx context.Context, email string) error
	CheckManualCompletion(ctx context.Context, hash, oldPassword string) error
}

type AutoResetter interface {
	RequestAutoReset(ctx context.Context, email string) error
	CompleteAutoReset(ctx context.Context, hash, code string) error
	CheckAutoRequest(ctx context.Context, email string) error
	CheckAutoCompletion(ctx context.Context, hash, code string) error
}

// RequestManual godoc
// @Summary      Request a manual reset link
// @Tags         password
// @Accept       json
// @Param        email  body  passwordreset.EmailRequest  true  "Account email"
// @Success      200
// @Failure      400  {object}  map[string]string  "field -> message"
// @Router       /auth/manual-password-change [post]
func RequestManual(log *slog.Logger, validate *validator.Validate, resetter ManualResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.passwordreset.RequestManual"

		log := requestLogger(log, op, r)

		var req EmailRequest
		errs, ok := decode(w, r, log, validate, &req)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		var err error
		switch {
		case len(errs) == 0:
			err = resetter.RequestManualReset(ctx, req.Email)
		case req.Email != "":
			err = resetter.CheckManualRequest(ctx, req.Email)
		}

		if !respond(w, r, log, errs, err) {
			return
		}

		log.Info("Manual reset requested")

		w.WriteHeader(http.StatusOK)
	}
}

// CompleteManual godoc
// @Summary      Change the password with a manual reset link
// @Tags         password
// @Accept       json
// @Param        hash       path  string                                true  "Reset hash"
// @Param        passwords  body  passwordreset.ManualCompleteRequest  true  "Old and new password"
// @Success      200
// @Failure      400  {object}  map[string]string  "field -> message"
// @Failure      404  {object}  response.Response
// @Router       /auth/manual-password-change/{hash} [post]
func CompleteManual(log *slog.Logger, validate *validator.Validate, resetter ManualResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.passwordreset.CompleteManual"

		log := requestLogger(log, op, r)

		var req ManualCompleteRequest
		errs, ok := decode(w, r, log, validate, &req)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		hash := chi.URLParam(r, "hash")

		var err error
		if len(errs) == 0 {
			err = resetter.CompleteManualReset(ctx, hash, req.OldPassword, req.NewPassword)
		} else {
			err = resetter.CheckManualCompletion(ctx, hash, req.OldPassword)
		}

		if !respond(w, r, log, errs, err) {
			return
		}

		log.Info("Password changed by manual reset")

		w.WriteHeader(http.StatusOK)
	}
}

// RequestAuto godoc
// @Summary      Request an automatic reset code
// @Tags         password
// @Accept       json
// @Param        email  body  passwordreset.EmailRequest  true  "Account email"
// @Success      200
// @Failure      400  {object}  map[string]string  "field -> message"
// @Router       /auth/auto-reset-password [post]
func RequestAuto(log *slog.Logger, validate *validator.Validate, resetter AutoResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.passwordreset.RequestAuto"

		log := requestLogger(log, op, r)

		var req EmailRequest
		errs, ok := decode(w, r, log, validate, &req)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		var err error
		switch {
		case len(errs) == 0:
			err = resetter.RequestAutoReset(ctx, req.Email)
		case req.Email != "":
			err = resetter.CheckAutoRequest(ctx, req.Email)
		}

		if !respond(w, r, log, errs, err) {
			return
		}

		log.Info("Auto reset requested")

		w.WriteHeader(http.StatusOK)
	}
}

// CompleteAuto godoc
// @Summary      Confirm an automatic reset with the mailed code
// @Description  On success a random password is set and mailed to the user.
// @Tags         password
// @Accept       json
// @Param        hash  path  string                              true  "Reset hash"
// @Param        code  body  passwordreset.AutoCompleteRequest  true  "Six digit code"
// @Success      200
// @Failure      400  {object}  map[string]string  "field -> message"
// @Failure      404  {object}  response.Response
// @Router       /auth/auto-password-change/{hash} [post]
func CompleteAuto(log *slog.Logger, validate *validator.Validate, resetter AutoResetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.passwordreset.CompleteAuto"

		log := requestLogger(log, op, r)

		var req AutoCompleteRequest
		errs, ok := decode(w, r, log, validate, &req)
		if !ok {
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), handlerTimeout)
		defer cancel()

		hash := chi.URLParam(r, "hash")

		var err error
		if len(errs) == 0 {
			err = resetter.CompleteAutoReset(ctx, hash, req.SecretCode)
		} else {
			err = resetter.CheckAutoCompletion(ctx, hash, req.SecretCode)
		}

		if !respond(w, r, log, errs, err) {
			return
		}

		log.Info("Password changed by auto reset")

		w.WriteHeader(http.StatusOK)
	}
}

func requestLogger(log *slog.Logger, op string, r *http.Request) *slog.Logger {
	return log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
}

// decode renders malformed bodies itself and reports whether the handler
// may go on. Field errors are returned for the handler to merge with the
// outcome of the domain checks.
func decode(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
	validate *validator.Validate,
	req any,
) (validation.Errors, bool) {
	if err := render.DecodeJSON(r.Body, req); err != nil {
		log.Error("Failed to decode request body", sl.Err(err))

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp.Error("Failed to decode request"))

		return nil, false
	}

	errs, err := validation.Struct(validate, req)
	if err != nil {
		log.Error("failed to validate request", sl.Err(err))

		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, resp.Error("Internal error"))

		return nil, false
	}

	return errs, true
}

// respond merges the field errors with err and renders any failure.
// It reports whether the call succeeded.
func respond(w http.ResponseWriter, r *http.Request, log *slog.Logger, errs validation.Errors, err error) bool {
	errs, err = validation.Merge(errs, err)
	if err != nil {
		renderErr(w, r, log, err)
		return false
	}

	if len(errs) > 0 {
		log.Info("Reset rejected", sl.Err(errs))

		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, resp.Fields(errs))

		return false
	}

	return true
}

// renderErr maps failures that carry no field errors.
func renderErr(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	if errors.Is(err, storage.ErrResetNotFound) || errors.Is(err, storage.ErrUserNotFound) {
		log.Info("Reset target not found", sl.Err(err))

		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, resp.Error("Reset request not found"))

		return
	}

	log.Error("Reset failed", sl.Err(err))

	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, resp.Error("Internal error"))
}
