package domain

import (
	"errors"
	"strings"
)

var (
	ErrUserExists         = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("invalid or expired token")
	ErrForbidden          = errors.New("access forbidden")
	ErrTooManyAttempts    = errors.New("too many failed login attempts, try again later")

	ErrDealerNotFound = errors.New("dealer not found")
	ErrDealerExists   = errors.New("dealer with this email already exists")
)

// FieldError describes one rejected input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when input is rejected before reaching a store.
type ValidationError struct {
	Fields []FieldError
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Field+" "+f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
