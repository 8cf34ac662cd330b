package models

import (
	"time"

	"gorm.io/datatypes"
)

// Registration statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Registration types.
const (
	TypeIndividual = "Individual Project"
	TypeGroup      = "Group Project"
)

// ValidStatuses lists the accepted registration statuses. Transitions between
// them are unrestricted.
var ValidStatuses = []string{StatusPending, StatusApproved, StatusRejected}

// ValidBatchTypes lists the student batches the portal accepts.
var ValidBatchTypes = []string{"M.Tech", "B.Tech", "M.Sc.", "B.Sc.", "Polytechnic", "MCA", "Diploma"}

// ValidRegistrationTypes lists the accepted project registration types.
var ValidRegistrationTypes = []string{TypeIndividual, TypeGroup}

// GroupMember is one member of a group project, stored inside the
// registration's JSON column.
type GroupMember struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phoneNumber"`
}

// Registration is one submitted project registration.
type Registration struct {
	ID                   uint                             `json:"id" gorm:"primaryKey"`
	ProjectID            string                           `json:"projectId" gorm:"type:varchar(50);uniqueIndex;not null"`
	FullName             string                           `json:"fullName" gorm:"type:varchar(255);not null"`
	PhoneNumber          string                           `json:"phoneNumber" gorm:"type:varchar(20);not null"`
	Email                string                           `json:"email" gorm:"type:varchar(255);uniqueIndex;not null"`
	CollegeName          string                           `json:"collegeName" gorm:"type:varchar(255);not null"`
	Branch               string                           `json:"branch" gorm:"type:varchar(255);not null"`
	Semester             string                           `json:"semester" gorm:"type:varchar(50);not null"`
	BatchType            string                           `json:"batchType" gorm:"type:varchar(50);not null;index"`
	RegistrationType     string                           `json:"registrationType" gorm:"type:varchar(50);not null;index"`
	ProjectTitle         string                           `json:"projectTitle" gorm:"type:text;not null"`
	GroupMembers         datatypes.JSONSlice[GroupMember] `json:"groupMembers"`
	PaymentScreenshotURL *string                          `json:"paymentScreenshot" gorm:"type:text"`
	PaymentScreenshotKey *string                          `json:"paymentScreenshotFileName" gorm:"type:text"`
	Status               string                           `json:"status" gorm:"type:varchar(20);not null;default:pending;index"`
	CreatedAt            time.Time                        `json:"createdAt" gorm:"index"`
	UpdatedAt            time.Time                        `json:"updatedAt"`
}

// IsValidStatus reports whether s is one of the accepted statuses.
func IsValidStatus(s string) bool {
	for _, v := range ValidStatuses {
		if v == s {
			return true
		}
	}
	return false
}
