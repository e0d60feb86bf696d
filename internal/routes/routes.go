package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/kgrierson/stronghold/internal/handlers"
	"github.com/kgrierson/stronghold/internal/middleware"
)

// RegisterRoutes registers all application routes
func RegisterRoutes(
	router chi.Router,
	authHandler *handlers.AuthHandler,
	auditHandler *handlers.AuditHandler,
) {
	// Login shares the lockout policy's per-minute budget.
	loginLimit := middleware.DefaultLoginRateLimit()
	apiLimit := middleware.DefaultAPIRateLimit()

	router.With(middleware.RateLimitByIP(loginLimit)).Post("/auth/login", authHandler.Login)

	router.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitByIP(apiLimit))

		r.Post("/auth/logout", authHandler.Logout)
		r.Get("/auth/session", authHandler.Session)
		r.Post("/auth/password", authHandler.ChangePassword)
		r.Post("/auth/access", authHandler.CheckAccess)

		// Administrator-only; enforced inside the handler against the session.
		r.Get("/accounts/{id}/events", auditHandler.GetAccountTrail)
	})
}
