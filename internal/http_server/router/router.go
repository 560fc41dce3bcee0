package router

import (
	"log/slog"

	_ "linker_auth/docs"

	"linker_auth/internal/http_server/handlers/login"
	"linker_auth/internal/http_server/handlers/me"
	"linker_auth/internal/http_server/handlers/passwordreset"
	"linker_auth/internal/http_server/handlers/refresh"
	"linker_auth/internal/http_server/handlers/register"
	"linker_auth/internal/lib/validation"
	"linker_auth/internal/middleware/authn"
	"linker_auth/internal/middleware/ratelimit"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

type AuthService interface {
	register.Registerer
	login.Authenticator
	refresh.Refresher
	authn.Identifier
}

type RecoveryService interface {
	passwordreset.ManualResetter
	passwordreset.AutoResetter
}

func New(log *slog.Logger, authService AuthService, recoveryService RecoveryService) *chi.Mux {
	validate := validation.NewValidator()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(ratelimit.Register()).Post("/registration",
				register.New(log, validate, authService),
			)
			r.With(ratelimit.Login()).Post("/login",
				login.New(log, validate, authService),
			)
			r.With(ratelimit.Refresh()).Post("/refresh-token",
				refresh.New(log, authService),
			)

			r.With(ratelimit.ResetRequest()).Post("/manual-password-change",
				passwordreset.RequestManual(log, validate, recoveryService),
			)
			r.With(ratelimit.ResetComplete()).Post("/manual-password-change/{hash}",
				passwordreset.CompleteManual(log, validate, recoveryService),
			)
			r.With(ratelimit.ResetRequest()).Post("/auto-reset-password",
				passwordreset.RequestAuto(log, validate, recoveryService),
			)
			r.With(ratelimit.ResetComplete()).Post("/auto-password-change/{hash}",
				passwordreset.CompleteAuto(log, validate, recoveryService),
			)
		})

		r.Route("/user", func(r chi.Router) {
			r.Use(authn.Bearer(log, authService))
			r.Get("/me", me.New())
		})
	})

	return r
}
