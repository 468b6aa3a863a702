// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfiguration is the sentinel error wrapped by InvalidConfigurationError.
var ErrInvalidConfiguration = errors.New("invalid configuration")

type (
	// ValidationResult is the outcome of one validation pass over a configuration
	// section. Errors block saving; warnings are advisory and never affect OK.
	ValidationResult struct {
		// OK is true when ErrorMessages is empty.
		OK bool `json:"ok"`
		// RestartNeeded reports whether applying the configuration requires a
		// process restart.
		RestartNeeded bool `json:"restartNeeded"`
		// ErrorMessages are human-readable errors in the order they were found.
		ErrorMessages []string `json:"errorMessages"`
		// WarningMessages are human-readable warnings in the order they were found.
		WarningMessages []string `json:"warningMessages"`
	}

	// InvalidConfigurationError is returned by ValidationResult.Err when the
	// result carries errors. It wraps ErrInvalidConfiguration for errors.Is().
	InvalidConfigurationError struct {
		Messages []string
	}
)

// NewValidationResult builds a result whose OK flag is derived from errs.
// Nil slices are replaced with empty ones so the result always renders
// both message lists.
func NewValidationResult(errs, warnings []string) ValidationResult {
	if errs == nil {
		errs = []string{}
	}
	if warnings == nil {
		warnings = []string{}
	}
	return ValidationResult{
		OK:              len(errs) == 0,
		RestartNeeded:   false,
		ErrorMessages:   errs,
		WarningMessages: warnings,
	}
}

// MergeResults folds child results into own. Messages are concatenated in
// encounter order with own first, RestartNeeded is OR-ed, and OK holds only
// when every input is OK and the merged error list is empty.
func MergeResults(own ValidationResult, children ...ValidationResult) ValidationResult {
	errs := append([]string{}, own.ErrorMessages...)
	warnings := append([]string{}, own.WarningMessages...)
	ok := own.OK
	restart := own.RestartNeeded

	for _, child := range children {
		errs = append(errs, child.ErrorMessages...)
		warnings = append(warnings, child.WarningMessages...)
		ok = ok && child.OK
		restart = restart || child.RestartNeeded
	}

	merged := NewValidationResult(errs, warnings)
	merged.OK = ok && merged.OK
	merged.RestartNeeded = restart
	return merged
}

// HasWarnings reports whether the result carries any warning.
func (r ValidationResult) HasWarnings() bool {
	return len(r.WarningMessages) > 0
}

// Err returns nil for a successful result and an *InvalidConfigurationError
// listing the error messages otherwise.
func (r ValidationResult) Err() error {
	if r.OK && len(r.ErrorMessages) == 0 {
		return nil
	}
	return &InvalidConfigurationError{Messages: append([]string{}, r.ErrorMessages...)}
}

// Error implements the error interface for InvalidConfigurationError.
func (e *InvalidConfigurationError) Error() string {
	switch len(e.Messages) {
	case 0:
		return "invalid configuration"
	case 1:
		return "invalid configuration: " + e.Messages[0]
	default:
		return fmt.Sprintf("invalid configuration: %d errors: %s", len(e.Messages), strings.Join(e.Messages, "; "))
	}
}

// Unwrap returns ErrInvalidConfiguration for errors.Is() compatibility.
func (e *InvalidConfigurationError) Unwrap() error { return ErrInvalidConfiguration }
