// Package apperr defines the error kinds shared by every layer of the API.
// Stores and services wrap these sentinels so callers can classify failures
// with errors.Is without depending on the package that produced them.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrDataIncomplete  = errors.New("data incomplete")
	ErrExternalStorage = errors.New("external storage failure")
	ErrSigning         = errors.New("signing failed")
	ErrUnavailable     = errors.New("service unavailable")
)

// ValidationError reports field-level rule breaks. Keys are the wire names of the fields.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add records a violation for field, keeping the first message reported for it.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}

	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// OrNil returns e when at least one field was reported.
func (e *ValidationError) OrNil() error {
	if len(e.Fields) == 0 {
		return nil
	}

	return e
}

func Invalid(field, msg string) error {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func NotFound(entity string, id any) error {
	return fmt.Errorf("%s %v: %w", entity, id, ErrNotFound)
}

func Conflict(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrConflict)...)
}

func Incomplete(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrDataIncomplete)...)
}

func Storage(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrExternalStorage, err)
}
