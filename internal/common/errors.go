// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	ErrNotFound = errors.New("not found")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Dataset errors.
	ErrInvalidCSV = errors.New("invalid timeline CSV")
	ErrNoDataset  = errors.New("no dataset loaded")

	// Metric errors.
	ErrUndefinedMetric = errors.New("metric undefined")
)

// ConfigError reports a malformed or inconsistent hierarchy document.
// Field names the offending key path (e.g. "groups.necesario.prefix").
type ConfigError struct {
	Err    error
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("config: %s", e.Reason)
	}
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidConfig, e.Err}
	}
	return []error{ErrInvalidConfig}
}

// NewConfigError creates a ConfigError for a field.
func NewConfigError(field, reason string) error {
	return &ConfigError{Field: field, Reason: reason}
}

// LoadError reports a structural problem with a timeline CSV.
// Line and Column are 1-based; zero means unknown.
type LoadError struct {
	Err    error
	Header string
	Reason string
	Line   int
	Column int
}

func (e *LoadError) Error() string {
	msg := "load"
	if e.Line > 0 {
		msg += fmt.Sprintf(": line %d", e.Line)
	}
	if e.Column > 0 {
		msg += fmt.Sprintf(", column %d", e.Column)
	}
	if e.Header != "" {
		msg += fmt.Sprintf(" (%q)", e.Header)
	}
	return msg + ": " + e.Reason
}

func (e *LoadError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrInvalidCSV, e.Err}
	}
	return []error{ErrInvalidCSV}
}

// UndefinedMetricError means a metric has no meaningful value for the
// current record set (e.g. savings rate with zero income).
type UndefinedMetricError struct {
	Metric string
	Reason string
}

func (e *UndefinedMetricError) Error() string {
	return fmt.Sprintf("%s undefined: %s", e.Metric, e.Reason)
}

func (e *UndefinedMetricError) Unwrap() error {
	return ErrUndefinedMetric
}

// NewUndefinedMetric creates an UndefinedMetricError.
func NewUndefinedMetric(metric, reason string) error {
	return &UndefinedMetricError{Metric: metric, Reason: reason}
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
