package database

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/higbec/project-portal-backend/models"
)

type AdminRepo struct {
	db *gorm.DB
}

func NewAdminRepo(db *gorm.DB) *AdminRepo {
	return &AdminRepo{db}
}

// FindActiveByEmail returns the active admin holding the given email, or nil.
// Deactivated accounts cannot log in.
func (r *AdminRepo) FindActiveByEmail(email string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.Where("email = ? AND is_active = ?", strings.ToLower(strings.TrimSpace(email)), true).
		First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// FindByUsernameOrEmail returns any admin matching either identifier,
// regardless of active flag. Used by the register path for duplicate checks.
func (r *AdminRepo) FindByUsernameOrEmail(username, email string) (*models.Admin, error) {
	var admin models.Admin
	err := r.db.Where("username = ? OR email = ?", username, email).First(&admin).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &admin, nil
}

// Add inserts a new admin account.
func (r *AdminRepo) Add(admin *models.Admin) error {
	return r.db.Create(admin).Error
}
