package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Validation failures, detected locally before any request is issued
var (
	ErrMissingField  = errors.New("missing required field")
	ErrInvalidName   = errors.New("invalid tag name")
	ErrReservedName  = errors.New("reserved tag name")
	ErrDuplicateName = errors.New("tag already exists")
	ErrUnknownTag    = errors.New("tag does not exist")
	ErrInvalidMAC    = errors.New("invalid MAC address")
)

// ErrNotConfirmed is returned when the operator declines a confirmation
var ErrNotConfirmed = errors.New("action not confirmed")

// DefaultRequestError is used when the backend fails without a message
const DefaultRequestError = "API request failed"

// ValidationError is a local, pre-request failure
type ValidationError struct {
	Field   string
	Value   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// RequestError is a backend call that returned success:false or failed in transport
type RequestError struct {
	Endpoint string
	Message  string
	Err      error
}

func (e *RequestError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return DefaultRequestError
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// PartialRefreshError collects the resources that failed during a bulk refresh.
// Resources not listed were refreshed successfully.
type PartialRefreshError struct {
	Failures map[string]error
}

func (e *PartialRefreshError) Error() string {
	names := e.Resources()
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %v", name, e.Failures[name]))
	}
	return strings.Join(parts, "; ")
}

// Resources returns the failed resource names in sorted order
func (e *PartialRefreshError) Resources() []string {
	names := make([]string, 0, len(e.Failures))
	for name := range e.Failures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Unwrap exposes every failure to errors.Is and errors.As
func (e *PartialRefreshError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, name := range e.Resources() {
		errs = append(errs, e.Failures[name])
	}
	return errs
}
