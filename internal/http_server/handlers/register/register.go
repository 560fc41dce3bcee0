package register

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"linker_auth/internal/auth"
	resp "linker_auth/internal/lib/api/response"
	sl "linker_auth/internal/lib/logger"
	"linker_auth/internal/lib/validation"
	"linker_auth/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

type Request struct {
	Username string `json:"username" validate:"required,min=5,max=255"`
	Email    string `json:"email" validate:"required,email"`
	Pass     string `json:"password" validate:"required,min=5,max=255"`
}

type Response struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Registerer interface {
	Register(ctx context.Context, username, email, pass string) (models.User, auth.TokenPair, error)
	CheckAvailability(ctx context.Context, username, email string) error
}

// New godoc
// @Summary      Register a user
// @Description  Creates an ordinary user and returns an access and a refresh token.
// @Description  Field errors and duplicate email or username are reported together.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        user  body      register.Request  true  "New user"
// @Success      200   {object}  register.Response
// @Failure      400   {object}  map[string]string  "field -> message"
// @Failure      500   {object}  response.Response
// @Router       /auth/registration [post]
func New(
	log *slog.Logger,
	validate *validator.Validate,
	registerer Registerer,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.New"

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

		log.Info("Request body decoded")

		errs, err := validation.Struct(validate, req)
		if err != nil {
			log.Error("failed to validate request", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		// a malformed request still gets the duplicate checks
		if len(errs) > 0 {
			errs, err = validation.Merge(errs, registerer.CheckAvailability(ctx, req.Username, req.Email))
			if err != nil {
				log.Error("failed to check availability", sl.Err(err))

				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, resp.Error("Internal error"))

				return
			}

			log.Info("Invalid request", sl.Err(errs))

			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, resp.Fields(errs))

			return
		}

		user, pair, err := registerer.Register(ctx, req.Username, req.Email, req.Pass)
		if err != nil {
			if errs, ok := validation.As(err); ok {
				log.Info("Registration rejected", sl.Err(err))

				render.Status(r, http.StatusBadRequest)
				render.JSON(w, r, resp.Fields(errs))

				return
			}

			log.Error("failed to register user", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("User registered", slog.Int64("id", user.ID))

		ResponseOK(w, r, pair)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request, pair auth.TokenPair) {
	render.JSON(w, r, Response{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
