package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// NotFoundError reports a reference to an entity that does not exist.
type NotFoundError struct {
	Entity EntityType
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.Key)
}

// NewNotFound creates a NotFoundError.
func NewNotFound(entity EntityType, key string) *NotFoundError {
	return &NotFoundError{Entity: entity, Key: key}
}

// IsNotFound reports whether err (or anything it wraps) is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ValidationError reports an invalid field value. Line is set for rows of an
// imported file and is zero otherwise.
type ValidationError struct {
	Field   string
	Message string
	Line    int
}

func (e *ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("Linha %d: %s", e.Line, e.Message)
	}
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NewValidation creates a ValidationError for a field.
func NewValidation(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err (or anything it wraps) is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ImportError collects the row-level failures of a packing list import.
// Warnings never make an import fail on their own.
type ImportError struct {
	Errors   []*ValidationError
	Warnings []string
}

func (e *ImportError) Error() string {
	if len(e.Errors) == 0 {
		return "import failed"
	}
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("import failed with %d error(s): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Unwrap exposes the row errors to errors.Is and errors.As.
func (e *ImportError) Unwrap() []error {
	errs := make([]error, len(e.Errors))
	for i, ve := range e.Errors {
		errs[i] = ve
	}
	return errs
}

// InconsistentTotalError reports an invoice total that does not match the sum
// of its components.
type InconsistentTotalError struct {
	Expected decimal.Decimal
	Got      decimal.Decimal
}

func (e *InconsistentTotalError) Error() string {
	return fmt.Sprintf("invoice total %s does not match components sum %s",
		e.Got.StringFixed(2), e.Expected.StringFixed(2))
}
