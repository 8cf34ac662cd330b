package database

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/higbec/project-portal-backend/models"
)

// Fields an admin update may touch. Anything else in the payload is dropped,
// not rejected.
var updatableFields = map[string]string{
	"status":       "status",
	"projectTitle": "project_title",
	"groupMembers": "group_members",
}

// Filters narrows a registration listing. Zero values are ignored, not
// matched against empty strings.
type Filters struct {
	Search           string
	Status           string
	BatchType        string
	RegistrationType string
	Limit            int
	Offset           int
}

type RegistrationRepo struct {
	db *gorm.DB
}

func NewRegistrationRepo(db *gorm.DB) *RegistrationRepo {
	return &RegistrationRepo{db}
}

// Create inserts a new registration and assigns its project identifier. The
// unique index on email is the authoritative duplicate guard; a violation
// surfaces as the driver's duplicate-key error.
func (r *RegistrationRepo) Create(reg *models.Registration) error {
	if reg.Status == "" {
		reg.Status = models.StatusPending
	}
	if reg.GroupMembers == nil {
		reg.GroupMembers = []models.GroupMember{}
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		// The sequential id is unknown until the insert, so write a unique
		// placeholder first and rewrite it inside the same transaction.
		reg.ProjectID = "PROJ-" + uuid.NewString()
		if err := tx.Create(reg).Error; err != nil {
			return err
		}
		reg.ProjectID = fmt.Sprintf("PROJ-%06d", reg.ID)
		// UpdateColumn keeps updated_at equal to created_at for a fresh row.
		return tx.Model(reg).UpdateColumn("project_id", reg.ProjectID).Error
	})
}

// FindByID returns a registration by its numeric id, or nil when absent.
func (r *RegistrationRepo) FindByID(id uint) (*models.Registration, error) {
	var reg models.Registration
	err := r.db.First(&reg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// FindByEmail returns the registration holding the given email (compared
// lowercased), or nil when none exists.
func (r *RegistrationRepo) FindByEmail(email string) (*models.Registration, error) {
	var reg models.Registration
	err := r.db.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&reg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// FindWithFilters returns registrations matching all supplied filters, newest
// first, with limit/offset applied after filtering.
func (r *RegistrationRepo) FindWithFilters(f Filters) ([]models.Registration, error) {
	query := applyFilters(r.db.Model(&models.Registration{}), f).Order("created_at DESC, id DESC")
	if f.Limit > 0 {
		query = query.Limit(f.Limit)
	}
	if f.Offset > 0 {
		query = query.Offset(f.Offset)
	}

	var regs []models.Registration
	if err := query.Find(&regs).Error; err != nil {
		return nil, err
	}
	return regs, nil
}

// CountWithFilters returns the total match count ignoring limit/offset.
func (r *RegistrationRepo) CountWithFilters(f Filters) (int64, error) {
	var count int64
	err := applyFilters(r.db.Model(&models.Registration{}), f).Count(&count).Error
	return count, err
}

// UpdateStatus sets the status and bumps updated_at. Returns the updated
// record, or nil when the id is absent.
func (r *RegistrationRepo) UpdateStatus(id uint, status string) (*models.Registration, error) {
	reg, err := r.FindByID(id)
	if err != nil || reg == nil {
		return nil, err
	}
	reg.Status = status
	if err := r.db.Model(reg).Update("status", status).Error; err != nil {
		return nil, err
	}
	return r.FindByID(id)
}

// UpdateFields applies an allowlisted subset of fields. Keys outside the
// allowlist are silently dropped. Returns the updated record or nil when the
// id is absent.
func (r *RegistrationRepo) UpdateFields(id uint, fields map[string]any) (*models.Registration, error) {
	reg, err := r.FindByID(id)
	if err != nil || reg == nil {
		return nil, err
	}

	updates := make(map[string]any, len(fields))
	for key, value := range fields {
		column, ok := updatableFields[key]
		if !ok {
			continue
		}
		if members, isMembers := value.([]models.GroupMember); isMembers {
			value = datatypes.JSONSlice[models.GroupMember](members)
		}
		updates[column] = value
	}
	if len(updates) > 0 {
		if err := r.db.Model(reg).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return r.FindByID(id)
}

// Delete removes a registration and returns the deleted record so the caller
// can clean up its stored file, or nil when the id is absent.
func (r *RegistrationRepo) Delete(id uint) (*models.Registration, error) {
	reg, err := r.FindByID(id)
	if err != nil || reg == nil {
		return nil, err
	}
	if err := r.db.Delete(&models.Registration{}, id).Error; err != nil {
		return nil, err
	}
	return reg, nil
}

// Stats holds the aggregate counters shown on the admin dashboard.
type Stats struct {
	Total    int64 `json:"total"`
	Pending  int64 `json:"pending"`
	Approved int64 `json:"approved"`
	Rejected int64 `json:"rejected"`
}

// GetStats counts registrations per status in a single pass.
func (r *RegistrationRepo) GetStats() (Stats, error) {
	var stats Stats
	err := r.db.Model(&models.Registration{}).
		Select(`COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0) AS pending,
			COALESCE(SUM(CASE WHEN status = 'approved' THEN 1 ELSE 0 END), 0) AS approved,
			COALESCE(SUM(CASE WHEN status = 'rejected' THEN 1 ELSE 0 END), 0) AS rejected`).
		Scan(&stats).Error
	return stats, err
}

// applyFilters translates Filters into WHERE clauses. Search is a
// case-insensitive substring match across name, email, title and college.
func applyFilters(query *gorm.DB, f Filters) *gorm.DB {
	if f.Search != "" {
		pattern := "%" + strings.ToLower(f.Search) + "%"
		query = query.Where(
			"LOWER(full_name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(project_title) LIKE ? OR LOWER(college_name) LIKE ?",
			pattern, pattern, pattern, pattern,
		)
	}
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.BatchType != "" {
		query = query.Where("batch_type = ?", f.BatchType)
	}
	if f.RegistrationType != "" {
		query = query.Where("registration_type = ?", f.RegistrationType)
	}
	return query
}
