package config

import (
	"fmt"
	"strings"
)

// ValidationError describes a single invalid configuration field along with
// an actionable suggestion.
type ValidationError struct {
	Field      string // Dotted field path, e.g. "commcell.serverUrl"
	Value      string // The offending value (never secret material)
	Message    string // Human-readable description of the problem
	Suggestion string // How to fix it
}

// Error implements the error interface.
func (ve ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ve.Field, ve.Message)
}

// ValidationErrors collects every invalid field found in one validation pass
// so the operator can fix them all at once.
type ValidationErrors struct {
	Errors []ValidationError
}

// Error implements the error interface for the collection.
func (ve ValidationErrors) Error() string {
	if len(ve.Errors) == 0 {
		return "no configuration errors"
	}
	if len(ve.Errors) == 1 {
		return ve.Errors[0].Error()
	}
	parts := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		parts = append(parts, e.Error())
	}
	return fmt.Sprintf("%d configuration errors: %s", len(ve.Errors), strings.Join(parts, "; "))
}

// HasErrors returns true if any errors were recorded.
func (ve *ValidationErrors) HasErrors() bool {
	return len(ve.Errors) > 0
}

// Add records a validation error.
func (ve *ValidationErrors) Add(field, value, message, suggestion string) {
	ve.Errors = append(ve.Errors, ValidationError{
		Field:      field,
		Value:      value,
		Message:    message,
		Suggestion: suggestion,
	})
}

// DetailedReport returns a multi-line report suitable for printing to the
// operator's terminal.
func (ve *ValidationErrors) DetailedReport() string {
	if len(ve.Errors) == 0 {
		return "No configuration errors"
	}
	var parts []string
	parts = append(parts, fmt.Sprintf("Configuration errors (%d):", len(ve.Errors)))
	for _, e := range ve.Errors {
		parts = append(parts, fmt.Sprintf("  - %s: %s", e.Field, e.Message))
		if e.Suggestion != "" {
			parts = append(parts, fmt.Sprintf("      suggestion: %s", e.Suggestion))
		}
	}
	return strings.Join(parts, "\n")
}
