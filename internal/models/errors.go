package models

import (
	"errors"
	"fmt"
)

// Custom errors
var (
	ErrNotFound          = errors.New("record not found")
	ErrNoGames           = errors.New("team has no games after filtering")
	ErrNoCompletedGames  = errors.New("team has no completed games")
	ErrInvalidOdds       = errors.New("invalid american odds")
	ErrInvalidRank       = errors.New("rank outside [1, n]")
	ErrDuplicateSnapshot = errors.New("duplicate rating snapshot for team and season")
	ErrUnknownTeam       = errors.New("unknown team")
)

// Validation error codes
const (
	ValidationRequired      = "required"
	ValidationMalformed     = "malformed"
	ValidationOutOfRange    = "out_of_range"
	ValidationInconsistency = "inconsistent"
)

// ValidationError describes a canonical entity that failed boundary validation.
type ValidationError struct {
	Code    string
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Field, e.Message, e.Code)
	}
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(code, field, message string) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: message}
}

// IsValidationError reports whether err wraps a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
