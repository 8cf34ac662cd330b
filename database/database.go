package database

import (
	"gorm.io/gorm"

	"github.com/higbec/project-portal-backend/models"
)

type Database struct {
	registrationRepo *RegistrationRepo
	adminRepo        *AdminRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		registrationRepo: NewRegistrationRepo(db),
		adminRepo:        NewAdminRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) RegistrationRepo() *RegistrationRepo {
	return d.registrationRepo
}

func (d Database) AdminRepo() *AdminRepo {
	return d.adminRepo
}

// Bootstrap runs the idempotent schema setup. It is called once from main
// before the server accepts traffic, never from a request path.
func (d Database) Bootstrap() error {
	return d.registrationRepo.db.AutoMigrate(
		&models.Registration{},
		&models.Admin{},
	)
}
