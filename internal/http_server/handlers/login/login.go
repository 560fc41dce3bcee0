package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"linker_auth/internal/auth"
	resp "linker_auth/internal/lib/api/response"
	sl "linker_auth/internal/lib/logger"
	"linker_auth/internal/lib/validation"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

const msgInvalidCredentials = "User not found or password incorrect"

type Request struct {
	Username string `json:"username" validate:"required"`
	Pass     string `json:"password" validate:"required"`
}

type Response struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Authenticator interface {
	Login(ctx context.Context, username, password string) (auth.TokenPair, error)
}

// New godoc
// @Summary      Log in
// @Description  A missing user and a wrong password produce the same answer.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        credentials  body      login.Request  true  "Credentials"
// @Success      200          {object}  login.Response
// @Failure      400          {object}  map[string]string  "field -> message"
// @Failure      500          {object}  response.Response
// @Router       /auth/login [post]
func New(
	log *slog.Logger,
	validate *validator.Validate,
	authenticator Authenticator,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var req Request

		err := render.DecodeJSON(r.Body, &req)
		if err != nil {
			log.Error("Failed to decode request body", sl.Err(err))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Error("Failed to decode request"))

			return
		}

		errs, err := validation.Struct(validate, req)
		if err != nil {
			log.Error("failed to validate request", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		// credentials can only be checked once both are present
		if len(errs) > 0 {
			log.Info("Invalid request", sl.Err(errs))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Fields(errs))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		pair, err := authenticator.Login(ctx, req.Username, req.Pass)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidCredentials) {
				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, map[string]string{"username": msgInvalidCredentials})

				return
			}

			log.Error("failed to login user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("User logged in successfully")

		ResponseOK(w, r, pair)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request, pair auth.TokenPair) {
	render.JSON(w, r, Response{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
