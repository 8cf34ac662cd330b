package api

import (
	"github.com/higbec/project-portal-backend/database"
	"github.com/higbec/project-portal-backend/storage"
)

type routeHandlers struct {
	registrationHandler registrationHandler
	adminHandler        adminHandler
}

// HandlerConfig carries the settings handlers need beyond their collaborators.
type HandlerConfig struct {
	JWTSecret          []byte
	SecureCookies      bool
	ScreenshotRequired bool
}

// initializeHandlers creates and returns all handlers organized in a routeHandlers struct
func initializeHandlers(database database.Database, files storage.FileStore, cfg HandlerConfig) *routeHandlers {
	return &routeHandlers{
		registrationHandler: newRegistrationHandler(database.RegistrationRepo(), files, cfg.ScreenshotRequired),
		adminHandler:        newAdminHandler(database.AdminRepo(), cfg.JWTSecret, cfg.SecureCookies),
	}
}
