package refresh

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"linker_auth/internal/auth"
	resp "linker_auth/internal/lib/api/response"
	sl "linker_auth/internal/lib/logger"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
)

type Request struct {
	RefreshToken string `json:"refreshToken"`
}

type Response struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error)
}

// New godoc
// @Summary      Refresh the access token
// @Description  The refresh token is returned unchanged.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        token  body      refresh.Request  true  "Refresh token"
// @Success      200    {object}  refresh.Response
// @Failure      401    {object}  response.Response
// @Router       /auth/refresh-token [post]
//
// New answers every rejected token with a bare 401, an empty token included.
func New(log *slog.Logger, refresher Refresher) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.refresh.New"

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

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		pair, err := refresher.Refresh(ctx, req.RefreshToken)
		if err != nil {
			if errors.Is(err, auth.ErrUnauthorized) {
				render.Status(r, http.StatusUnauthorized)
				render.JSON(w, r, resp.Error("Unauthorized"))

				return
			}

			log.Error("failed to refresh tokens", sl.Err(err))

			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, resp.Error("Internal error"))

			return
		}

		log.Info("Access token refreshed")

		ResponseOK(w, r, pair)
	}
}

func ResponseOK(w http.ResponseWriter, r *http.Request, pair auth.TokenPair) {
	render.JSON(w, r, Response{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}
