package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"github.com/higbec/project-portal-backend/models"
)

func elevatedRouter(session sessionMiddleware) chi.Router {
	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(session.authenticate)
		r.Use(session.requireRole(models.RoleSuperadmin))
		r.Get("/elevated", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
	})
	return router
}

func TestRequireRole(t *testing.T) {
	router := elevatedRouter(newSessionMiddleware(testJWTSecret))

	t.Run("superadmin passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/elevated", nil)
		req.AddCookie(cookieForRole(t, models.RoleSuperadmin))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("admin is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/elevated", nil)
		req.AddCookie(cookieForRole(t, models.RoleAdmin))

		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "Insufficient permissions", decodeBody(t, rec)["message"])
	})

	t.Run("no session is unauthorized", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/elevated", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRequireRole_WithoutSessionContext(t *testing.T) {
	// Mounted without authenticate in front, the role check cannot find any
	// claims and must refuse rather than pass through.
	session := newSessionMiddleware(testJWTSecret)
	router := chi.NewRouter()
	router.With(session.requireRole(models.RoleAdmin)).
		Get("/elevated", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})

	req := httptest.NewRequest(http.MethodGet, "/elevated", nil)
	req.AddCookie(cookieForRole(t, models.RoleAdmin))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
