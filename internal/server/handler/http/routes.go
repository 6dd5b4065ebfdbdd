// Package http provides HTTP routing and middleware configuration
// for the filebox service.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/ndanilin/filebox/internal/middleware"
)

// NewRouter constructs and returns an HTTP handler that serves the filebox
// API.
//
// Routes:
//
//	POST   /api/register      → authHandler.Register
//	POST   /api/login         → authHandler.Login
//	POST   /api/logout        → authHandler.Logout   (session-gated)
//	GET    /api/files         → filesHandler.List    (session-gated)
//	POST   /api/files         → filesHandler.Upload  (session-gated)
//	GET    /api/files/{name}  → filesHandler.Download (session-gated)
//	DELETE /api/files/{name}  → filesHandler.Delete  (session-gated)
//
// The register and login endpoints only accept JSON bodies. Every protected
// route passes through the session gate before the handler body runs.
func NewRouter(
	authHandler *AuthHandler,
	filesHandler *FilesHandler,
	sessions middleware.SessionResolver,
	accounts middleware.AccountFinder,
	cookieName string,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Log each request and its metadata
	r.Use(middleware.WithRequestLogging(logger))

	// Mount API routes
	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Group(func(r chi.Router) {
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// Protected group: requires a valid session bound to an
		// activated account
		r.Group(func(r chi.Router) {
			r.Use(middleware.SessionGate(sessions, accounts, cookieName, logger))
			r.Post("/logout", authHandler.Logout)
			r.Get("/files", filesHandler.List)
			r.Post("/files", filesHandler.Upload)
			r.Get("/files/{name}", filesHandler.Download)
			r.Delete("/files/{name}", filesHandler.Delete)
		})
	})

	return r
}
