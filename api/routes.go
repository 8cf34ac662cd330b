package api

import (
	"github.com/go-chi/chi/v5"
)

// setupRoutes mounts the public intake surface and the session-gated admin
// surface.
func setupRoutes(r chi.Router, handlers *routeHandlers, session sessionMiddleware) {
	r.Route("/api", func(r chi.Router) {
		// Public endpoints
		r.Post("/register", handlers.registrationHandler.submitRegistration())
		r.Post("/admin/auth", handlers.adminHandler.authAction())
		r.Delete("/admin/auth", handlers.adminHandler.logout())

		// Admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(session.authenticate)

			r.Get("/registrations", handlers.registrationHandler.listRegistrations())
			r.Post("/registrations/bulk-status", handlers.registrationHandler.bulkUpdateStatus())
			r.Post("/registrations/bulk-delete", handlers.registrationHandler.bulkDelete())
			r.Get("/registration/{registrationID}", handlers.registrationHandler.getRegistration())
			r.Put("/registration/{registrationID}", handlers.registrationHandler.updateRegistration())
			r.Delete("/registration/{registrationID}", handlers.registrationHandler.deleteRegistration())
			r.Get("/admin/stats", handlers.registrationHandler.getStats())
		})
	})
}
