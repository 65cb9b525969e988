package services

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateReference = errors.New("reference number already exists")
	ErrDuplicateName      = errors.New("name already exists")
	ErrInvalidField       = errors.New("invalid field")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrNotFound           = errors.New("not found")

	ErrUserHasReports     = errors.New("user is referenced by reports and cannot be deleted, deactivate the account instead")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAccountInactive    = errors.New("your account has been deactivated, contact an admin")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
)

var (
	ErrReportNotFound     = fmt.Errorf("report %w", ErrNotFound)
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrFlightNotFound     = fmt.Errorf("flight %w", ErrNotFound)
	ErrSupervisorNotFound = fmt.Errorf("supervisor %w", ErrNotFound)
	ErrCommentNotFound    = fmt.Errorf("comment %w", ErrNotFound)

	ErrBootstrapProtected = fmt.Errorf("%w: the bootstrap admin cannot be deactivated or deleted", ErrPermissionDenied)
	ErrActivationRequired = fmt.Errorf("%w: updates are not activated for today, contact a data analyst", ErrPermissionDenied)
	ErrNotSubmitter       = fmt.Errorf("%w: only the submitting team lead may update this report", ErrPermissionDenied)

	ErrUsernameTaken = fmt.Errorf("username %w", ErrDuplicateName)
	ErrEmailTaken    = fmt.Errorf("email %w", ErrDuplicateName)
)

// FieldError names the request field that failed validation.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidField
}

func invalidField(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}

// denied wraps an access.Denied reason as ErrPermissionDenied.
func denied(reason string) error {
	return fmt.Errorf("%w: %s", ErrPermissionDenied, reason)
}
