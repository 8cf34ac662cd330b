package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/higbec/project-portal-backend/errs"
	"github.com/higbec/project-portal-backend/models"
)

// MaxFileSize is the upper bound for a payment screenshot, in bytes.
const MaxFileSize = 5 * 1000 * 1000

// MaxGroupMembers bounds the member list of a group project.
const MaxGroupMembers = 5

var (
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRegex = regexp.MustCompile(`^[0-9]{10,15}$`)
	nameRegex  = regexp.MustCompile(`^[A-Za-z][A-Za-z .'-]{1,254}$`)
	digitsOnly = regexp.MustCompile(`[^0-9]`)
)

// Submission is a raw registration payload, parsed from either multipart form
// data or a JSON body.
type Submission struct {
	FullName         string               `json:"fullName"`
	PhoneNumber      string               `json:"phoneNumber"`
	Email            string               `json:"email"`
	CollegeName      string               `json:"collegeName"`
	Branch           string               `json:"branch"`
	Semester         string               `json:"semester"`
	BatchType        string               `json:"batchType"`
	RegistrationType string               `json:"registrationType"`
	ProjectTitle     string               `json:"projectTitle"`
	GroupMembers     []models.GroupMember `json:"groupMembers"`
}

// FileMeta describes an uploaded payment screenshot without holding its bytes.
type FileMeta struct {
	ContentType  string
	Size         int64
	OriginalName string
}

// ValidateSubmission checks a raw submission and returns its normalized form:
// strings trimmed, email lowercased, phone numbers reduced to digits (keeping
// a leading +). Pure over its input; email uniqueness is the caller's concern.
func ValidateSubmission(sub Submission) (Submission, *errs.ApiErr) {
	required := []struct {
		name  string
		value string
	}{
		{"fullName", sub.FullName},
		{"phoneNumber", sub.PhoneNumber},
		{"email", sub.Email},
		{"collegeName", sub.CollegeName},
		{"branch", sub.Branch},
		{"semester", sub.Semester},
		{"batchType", sub.BatchType},
		{"registrationType", sub.RegistrationType},
		{"projectTitle", sub.ProjectTitle},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return Submission{}, errs.NewMissingRequiredFieldError(f.name)
		}
	}

	email := strings.ToLower(strings.TrimSpace(sub.Email))
	if !emailRegex.MatchString(email) {
		return Submission{}, errs.NewInvalidFieldError("email", "Invalid email format")
	}

	phone, ok := normalizePhone(sub.PhoneNumber)
	if !ok {
		return Submission{}, errs.NewInvalidFieldError("phoneNumber", "Invalid phone number format")
	}

	if !contains(models.ValidBatchTypes, sub.BatchType) {
		return Submission{}, errs.NewInvalidFieldError("batchType", "Invalid batch type")
	}
	if !contains(models.ValidRegistrationTypes, sub.RegistrationType) {
		return Submission{}, errs.NewInvalidFieldError("registrationType", "Invalid registration type")
	}

	title := strings.TrimSpace(sub.ProjectTitle)
	if len(title) < 5 || len(title) > 500 {
		return Submission{}, errs.NewInvalidFieldError("projectTitle", "Project title must be between 5 and 500 characters")
	}

	members, vErr := validateGroupMembers(sub.RegistrationType, sub.GroupMembers)
	if vErr != nil {
		return Submission{}, vErr
	}

	normalized := Submission{
		FullName:         strings.TrimSpace(sub.FullName),
		PhoneNumber:      phone,
		Email:            email,
		CollegeName:      strings.TrimSpace(sub.CollegeName),
		Branch:           strings.TrimSpace(sub.Branch),
		Semester:         strings.TrimSpace(sub.Semester),
		BatchType:        sub.BatchType,
		RegistrationType: sub.RegistrationType,
		ProjectTitle:     title,
		GroupMembers:     members,
	}
	return normalized, nil
}

// ValidateFile enforces the image-only and size constraints on the payment
// screenshot. A nil meta means no file was supplied.
func ValidateFile(meta *FileMeta, required bool) *errs.ApiErr {
	if meta == nil || meta.Size == 0 {
		if required {
			return errs.NewMissingFileError()
		}
		return nil
	}
	if !strings.HasPrefix(meta.ContentType, "image/") {
		return errs.NewInvalidFileTypeError(meta.ContentType)
	}
	if meta.Size > MaxFileSize {
		return errs.NewFileTooLargeError(meta.Size, MaxFileSize)
	}
	return nil
}

func validateGroupMembers(registrationType string, members []models.GroupMember) ([]models.GroupMember, *errs.ApiErr) {
	// Individual projects carry no members regardless of what was submitted.
	if registrationType != models.TypeGroup {
		return []models.GroupMember{}, nil
	}

	if len(members) == 0 {
		return nil, errs.NewInvalidGroupMembersError("Group members are required for group projects")
	}
	if len(members) > MaxGroupMembers {
		return nil, errs.NewInvalidGroupMembersError(fmt.Sprintf("Maximum %d group members allowed", MaxGroupMembers))
	}

	normalized := make([]models.GroupMember, 0, len(members))
	for _, m := range members {
		name := strings.TrimSpace(m.Name)
		if name == "" || strings.TrimSpace(m.PhoneNumber) == "" {
			return nil, errs.NewInvalidGroupMembersError("Each group member must have a name and phone number")
		}
		if !nameRegex.MatchString(name) {
			return nil, errs.NewInvalidGroupMembersError(fmt.Sprintf("Invalid name for group member: %s", name))
		}
		phone, ok := normalizePhone(m.PhoneNumber)
		if !ok {
			return nil, errs.NewInvalidGroupMembersError(fmt.Sprintf("Invalid phone number format for group member: %s", name))
		}
		normalized = append(normalized, models.GroupMember{Name: name, PhoneNumber: phone})
	}
	return normalized, nil
}

// normalizePhone strips everything but digits, keeping a leading + when
// present, and reports whether the digit count is within 10-15.
func normalizePhone(raw string) (string, bool) {
	trimmed := strings.TrimSpace(raw)
	digits := digitsOnly.ReplaceAllString(trimmed, "")
	if !phoneRegex.MatchString(digits) {
		return "", false
	}
	if strings.HasPrefix(trimmed, "+") {
		return "+" + digits, true
	}
	return digits, true
}

func contains(valid []string, v string) bool {
	for _, s := range valid {
		if s == v {
			return true
		}
	}
	return false
}
