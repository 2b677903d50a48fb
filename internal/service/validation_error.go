package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

const (
	msgFieldRequired          = "This field is required."
	msgValidNumber            = "A valid number is required."
	msgPricePositive          = "Price must be greater than zero."
	msgCategoryMissing        = "Category does not exist."
	msgProductTypeMissing     = "Product type does not exist."
	msgCategoryTitleTaken     = "Category with this title already exists."
	msgUnsupportedImage       = "Unsupported image type: only JPEG, PNG and WebP are allowed."
	msgImageTooLarge          = "Image exceeds the maximum allowed size."
	msgStorageUnavailableItem = "Image storage is not available."
)

func msgMinLength(n int) string {
	return fmt.Sprintf("Ensure this field has at least %d characters.", n)
}

func msgMaxLength(n int) string {
	return fmt.Sprintf("Ensure this field has no more than %d characters.", n)
}

// ValidationError aggregates per-field failures in the shape the API exposes:
// field name mapped to a list of human-readable messages.
type ValidationError struct {
	Fields map[string][]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = map[string][]string{}
	}
	e.Fields[field] = append(e.Fields[field], message)
}

func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Fields[field], " ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
