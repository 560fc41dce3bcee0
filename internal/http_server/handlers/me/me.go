package me

import (
	"net/http"

	resp "linker_auth/internal/lib/api/response"
	"linker_auth/internal/middleware/authn"
	"linker_auth/internal/models"

	"github.com/go-chi/render"
)

type Response struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     models.Role `json:"role"`
}

// New godoc
// @Summary      Current user
// @Tags         user
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  me.Response
// @Failure      401  {object}  response.Response
// @Router       /user/me [get]
//
// New must be mounted behind authn.Bearer.
func New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := authn.UserFromContext(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, resp.Error("Unauthorized"))

			return
		}

		render.JSON(w, r, Response{
			ID:       user.ID,
			Username: user.Username,
			Email:    user.Email,
			Role:     user.Role,
		})
	}
}
