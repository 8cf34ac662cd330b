package models

import "time"

// Admin roles, lowest to highest.
const (
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"
)

// Admin is a back-office credential holder. Accounts are created via the
// register action or the seed mode in main, never by public submission.
type Admin struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Username     string    `json:"username" gorm:"type:varchar(255);uniqueIndex;not null"`
	Email        string    `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Role         string    `json:"role" gorm:"type:varchar(50);not null;default:admin"`
	// No default tag: gorm omits zero-value fields from INSERT when one is
	// present, which would turn an explicit false into true. Every creation
	// site sets the flag itself.
	IsActive  bool      `json:"isActive" gorm:"not null"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
