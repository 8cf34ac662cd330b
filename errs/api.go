package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Common error sentinel values
var (
	ErrBadRequest   = errors.New("malformed request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInternal     = errors.New("internal server error")
	ErrConflict     = errors.New("resource conflict")
)

// Intake-validation sentinels. Constructors attach these alongside the
// user-facing message so callers can branch with errors.Is.
var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidField         = errors.New("invalid field")
	ErrInvalidFileType      = errors.New("invalid file type")
	ErrFileTooLarge         = errors.New("file too large")
	ErrMissingFile          = errors.New("missing file")
	ErrInvalidGroupMembers  = errors.New("invalid group members")
	ErrDuplicateEmail       = errors.New("duplicate email")
)

type ApiErr struct {
	StatusCode int
	err        error  // user-facing message
	kind       error  // sentinel for errors.Is branching, may be nil
	Details    string // Additional details about the error
	Field      string // Field that caused the error (for validation errors)
	Cause      error  // The underlying cause of the error
}

func NewApiErr(statusCode int, message string) *ApiErr {
	return &ApiErr{
		StatusCode: statusCode,
		err:        errors.New(message),
	}
}

// implements error interface. this allows us to pass an instance of ApiErr as an argument of type `error`
func (e *ApiErr) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.err.Error(), e.Details)
	}
	return e.err.Error()
}

// Message returns the user-facing text without the internal details suffix.
func (e *ApiErr) Message() string {
	return e.err.Error()
}

// Unwrap exposes both the message error and the sentinel, so that
// errors.Is(apiErr, SomeSentinel) works without polluting the message text.
func (e *ApiErr) Unwrap() []error {
	errs := []error{e.err}
	if e.kind != nil {
		errs = append(errs, e.kind)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// Common error constructors with appropriate HTTP status codes
func NewNotFoundError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusNotFound, err: errors.New(message), kind: ErrNotFound}
}

func NewBadRequestError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusBadRequest, err: errors.New(message), kind: ErrBadRequest}
}

func NewUnauthorizedError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusUnauthorized, err: errors.New(message), kind: ErrUnauthorized}
}

func NewForbiddenError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusForbidden, err: errors.New(message)}
}

func NewInternalError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusInternalServerError, err: errors.New(message), kind: ErrInternal}
}

func NewConflictError(message string) *ApiErr {
	return &ApiErr{StatusCode: http.StatusConflict, err: errors.New(message), kind: ErrConflict}
}

// Intake-validation constructors. Messages match what the public form shows.

func NewMissingRequiredFieldError(fieldName string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        fmt.Errorf("%s is required", fieldName),
		kind:       ErrMissingRequiredField,
		Field:      fieldName,
	}
}

func NewInvalidFieldError(fieldName, message string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        errors.New(message),
		kind:       ErrInvalidField,
		Field:      fieldName,
	}
}

func NewInvalidFileTypeError(contentType string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        errors.New("Payment screenshot must be an image file"),
		kind:       ErrInvalidFileType,
		Details:    fmt.Sprintf("got content type %q", contentType),
		Field:      "paymentScreenshot",
	}
}

func NewFileTooLargeError(size, limit int64) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        errors.New("Payment screenshot must be less than 5MB"),
		kind:       ErrFileTooLarge,
		Details:    fmt.Sprintf("got %d bytes, limit %d", size, limit),
		Field:      "paymentScreenshot",
	}
}

func NewMissingFileError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        errors.New("Payment screenshot is required"),
		kind:       ErrMissingFile,
		Field:      "paymentScreenshot",
	}
}

func NewInvalidGroupMembersError(reason string) *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusBadRequest,
		err:        errors.New(reason),
		kind:       ErrInvalidGroupMembers,
		Field:      "groupMembers",
	}
}

func NewDuplicateEmailError() *ApiErr {
	return &ApiErr{
		StatusCode: http.StatusConflict,
		err:        errors.New("Email already registered. Please use a different email."),
		kind:       ErrDuplicateEmail,
		Field:      "email",
	}
}

func IsBadRequest(err error) bool {
	return errors.Is(err, ErrBadRequest)
}

func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsDuplicateEmail(err error) bool {
	return errors.Is(err, ErrDuplicateEmail)
}
