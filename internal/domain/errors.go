package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for broad classification.
var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidConfig     = errors.New("invalid config")
	ErrFetch             = errors.New("fetch failed")
	ErrValidation        = errors.New("validation failed")
	ErrNoDescribedByLink = errors.New("no application/ld+json describedby link found")
	ErrEmptyCollection   = errors.New("docmaps array is empty")
	ErrSelect            = errors.New("select failed")
)

// ErrorKind is a coarse-grained categorization for errors.
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindInvalidConfig     ErrorKind = "invalid_config"
	KindFetch             ErrorKind = "fetch"
	KindValidation        ErrorKind = "validation"
	KindNoDescribedByLink ErrorKind = "no_describedby_link"
	KindEmptyCollection   ErrorKind = "empty_collection"
	KindSelect            ErrorKind = "select"
)

// OpError wraps an underlying error with operation context and a kind.
type OpError struct {
	Op    string
	Kind  ErrorKind
	Stage Stage  // Optional: pipeline stage that was running
	URI   string // Optional: resource being processed
	Path  string // Optional: relevant file path
	Err   error
}

func (e *OpError) Error() string {
	if e == nil {
		return "<nil>"
	}

	base := fmt.Sprintf("%s: %s", e.Op, e.Kind)
	if e.URI != "" {
		base += fmt.Sprintf(" (uri=%s)", e.URI)
	}
	if e.Path != "" {
		base += fmt.Sprintf(" (path=%s)", e.Path)
	}
	if e.Err != nil {
		base += fmt.Sprintf(": %v", e.Err)
	}
	return base
}

func (e *OpError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// IsKind helps callers classify errors without depending on infra packages.
func IsKind(err error, kind ErrorKind) bool {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind == kind
	}
	return false
}

// KindOf returns the kind of the outermost OpError in the chain, or "" if none.
func KindOf(err error) ErrorKind {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return ""
}

// FieldError is a single schema violation.
type FieldError struct {
	Field       string
	Description string
}

// ValidationError reports every field of a payload that did not match its schema.
type ValidationError struct {
	Subject string // e.g. "notification", "headers", "docmaps"
	Fields  []FieldError
}

// NewValidationError sorts fields so that the same payload always yields the same message.
func NewValidationError(subject string, fields []FieldError) *ValidationError {
	out := make([]FieldError, len(fields))
	copy(out, fields)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Field != out[j].Field {
			return out[i].Field < out[j].Field
		}
		return out[i].Description < out[j].Description
	})
	return &ValidationError{Subject: subject, Fields: out}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Description))
	}
	return fmt.Sprintf("invalid %s: %s", e.Subject, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// HasField reports whether the named field is among the violations.
func (e *ValidationError) HasField(field string) bool {
	if e == nil {
		return false
	}
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// StageOf returns the stage recorded on the outermost OpError, or "" if none.
func StageOf(err error) Stage {
	var oe *OpError
	if errors.As(err, &oe) {
		return oe.Stage
	}
	return ""
}
