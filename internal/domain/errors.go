package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions.
var (
	// ErrNotFound indicates that a requested entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that the input data is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAlreadyPersisted indicates an attempt to assign a second identifier to an entity.
	ErrAlreadyPersisted = errors.New("already persisted")

	// ErrNotPersisted indicates an entity without a store-assigned identifier.
	ErrNotPersisted = errors.New("not persisted")

	// ErrStoreFailure indicates a transport or store-level failure.
	ErrStoreFailure = errors.New("store failure")

	// ErrEventEmission indicates that a lifecycle event could not be published.
	ErrEventEmission = errors.New("event emission failed")

	// ErrSearchTransport indicates that a call to the search engine failed.
	ErrSearchTransport = errors.New("search transport failure")

	// ErrInternalError indicates an internal server error.
	ErrInternalError = errors.New("internal error")
)

// ValidationError represents a validation error for a specific field.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NotFoundError provides details about a not found entity.
type NotFoundError struct {
	Entity string
	ID     string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// Unwrap returns the underlying sentinel error for use with errors.Is.
func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

// StoreError wraps a failure of the authoritative store.
type StoreError struct {
	Op    string
	Cause error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Cause)
}

// Unwrap exposes both ErrStoreFailure and the cause to errors.Is / errors.As.
func (e *StoreError) Unwrap() []error {
	return []error{ErrStoreFailure, e.Cause}
}

// EventEmissionError reports a broker send that failed after a successful write.
type EventEmissionError struct {
	Topic string
	Key   string
	Cause error
}

// Error implements the error interface.
func (e *EventEmissionError) Error() string {
	return fmt.Sprintf("emit %s (key %s): %v", e.Topic, e.Key, e.Cause)
}

// Unwrap exposes both ErrEventEmission and the cause to errors.Is / errors.As.
func (e *EventEmissionError) Unwrap() []error {
	return []error{ErrEventEmission, e.Cause}
}

// SearchTransportError reports a failed call to the search engine.
type SearchTransportError struct {
	Op    string
	Index string
	Cause error
}

// Error implements the error interface.
func (e *SearchTransportError) Error() string {
	return fmt.Sprintf("search %s on %s: %v", e.Op, e.Index, e.Cause)
}

// Unwrap exposes both ErrSearchTransport and the cause to errors.Is / errors.As.
func (e *SearchTransportError) Unwrap() []error {
	return []error{ErrSearchTransport, e.Cause}
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{
		Entity: entity,
		ID:     id,
	}
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewStoreError creates a new StoreError.
func NewStoreError(op string, cause error) *StoreError {
	return &StoreError{Op: op, Cause: cause}
}

// NewEventEmissionError creates a new EventEmissionError.
func NewEventEmissionError(topic, key string, cause error) *EventEmissionError {
	return &EventEmissionError{Topic: topic, Key: key, Cause: cause}
}

// NewSearchTransportError creates a new SearchTransportError.
func NewSearchTransportError(op, index string, cause error) *SearchTransportError {
	return &SearchTransportError{Op: op, Index: index, Cause: cause}
}
