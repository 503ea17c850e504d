package domain

import (
	"errors"
	"fmt"
)

// Sentinels matched through errors.Is.
var (
	ErrNotFound       = errors.New("not found")
	ErrStorage        = errors.New("storage failure")
	ErrParse          = errors.New("parse failure")
	ErrNotInitialized = errors.New("not initialized")
	ErrInvalidInput   = errors.New("invalid input")
)

// StorageError is returned when a persisted payload cannot be read or written.
type StorageError struct {
	Key string
	Err error
}

func (e *StorageError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("storage: %v", e.Err)
	}
	return fmt.Sprintf("storage key %s: %v", e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is implements errors.Is support.
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// NotFoundError reports a lookup of a name that is not registered.
type NotFoundError struct {
	Resource string
	Name     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Name)
}

// Is implements errors.Is support.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewCategoryNotFound builds the error returned for unknown category names.
func NewCategoryNotFound(name string) *NotFoundError {
	return &NotFoundError{Resource: "category", Name: name}
}

// ParseError carries the source URL and the underlying fetch or decode failure.
type ParseError struct {
	URL string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse playlist %s: %v", e.URL, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is implements errors.Is support.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}
