package analysis

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidConfiguration matches every *InvalidConfigurationError.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	// ErrFieldNotFound matches every *FieldNotFoundError.
	ErrFieldNotFound = errors.New("field not found")
)

// InvalidConfigurationError reports a bad option value or option combination.
// It is returned before any computation starts.
type InvalidConfigurationError struct {
	Param  string
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Param, e.Reason)
}

func (e *InvalidConfigurationError) Is(target error) bool { return target == ErrInvalidConfiguration }

// FieldNotFoundError indicates a referenced column is absent from the dataset.
type FieldNotFoundError struct {
	Field     string
	Available []string
}

func (e *FieldNotFoundError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("field not found: %q", e.Field)
	}
	return fmt.Sprintf("field not found: %q (available: %s)", e.Field, strings.Join(e.Available, ", "))
}

func (e *FieldNotFoundError) Is(target error) bool { return target == ErrFieldNotFound }

func invalid(param, format string, args ...any) error {
	return &InvalidConfigurationError{Param: param, Reason: fmt.Sprintf(format, args...)}
}
