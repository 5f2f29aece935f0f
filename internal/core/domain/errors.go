package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrAlreadyExists      = errors.New("already exists")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid email or password")

	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrUnauthorized)
	ErrTokenInvalid = fmt.Errorf("%w: token invalid", ErrUnauthorized)
)

// ResourceError ties one of the sentinel errors above to a resource type and
// a client-safe message. Match it with errors.Is against the sentinel.
type ResourceError struct {
	Err      error
	Resource string
	Message  string
}

func (e *ResourceError) Error() string { return e.Message }

func (e *ResourceError) Unwrap() error { return e.Err }

// NotFound reports that no resource of the given type has the given id.
func NotFound(resource string, id int64) error {
	return &ResourceError{
		Err:      ErrNotFound,
		Resource: resource,
		Message:  fmt.Sprintf("%s not found with id: %d", capitalize(resource), id),
	}
}

// AccessDenied names the resource type but never the owner.
func AccessDenied(resource string) error {
	return &ResourceError{
		Err:      ErrAccessDenied,
		Resource: resource,
		Message:  fmt.Sprintf("Access denied - you don't have permission to access this %s", resource),
	}
}

// AlreadyExists reports a unique key collision on resource.
func AlreadyExists(resource, message string) error {
	return &ResourceError{Err: ErrAlreadyExists, Resource: resource, Message: message}
}

// ValidationError carries field-level problems with an input.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, k := range keys {
		msgs = append(msgs, e.Fields[k])
	}
	return strings.Join(msgs, "; ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
