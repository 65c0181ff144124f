package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrValidation            = errors.New("validation failed")
	ErrNotFound              = errors.New("not found")
	ErrInsufficientTemplates = errors.New("insufficient templates")
	ErrDuplicate             = errors.New("duplicate")
	ErrDataIntegrity         = errors.New("data integrity violation")

	// ErrAlreadyCompleted is a validation failure: completed assignments are immutable.
	ErrAlreadyCompleted = fmt.Errorf("%w: assignment already completed", ErrValidation)
)

// InsufficientTemplatesError reports the category whose pool is too small.
type InsufficientTemplatesError struct {
	Category  string
	Available int
	Required  int
}

func (e *InsufficientTemplatesError) Error() string {
	if e.Category == "" {
		return fmt.Sprintf("insufficient templates: %d available, %d required", e.Available, e.Required)
	}
	return fmt.Sprintf("insufficient templates for category %s: %d available, %d required",
		e.Category, e.Available, e.Required)
}

func (e *InsufficientTemplatesError) Unwrap() error {
	return ErrInsufficientTemplates
}

func validationErrorf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFound(entity string, id uint) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

// lookupErr turns gorm.ErrRecordNotFound into ErrNotFound.
func lookupErr(err error, entity string, id uint) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity, id)
	}
	return fmt.Errorf("failed to load %s %d: %w", entity, id, err)
}
