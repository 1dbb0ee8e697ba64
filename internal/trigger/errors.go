package trigger

import (
	"errors"
	"fmt"
	"net/http"
)

// ValidationError is returned when a registration is malformed.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// StatusCode implements statusCoder.
func (e *ValidationError) StatusCode() int { return http.StatusBadRequest }

// ConflictError is returned when a trigger with the same name already exists.
// Duplicates are reported as 400 like any other rejected registration.
type ConflictError struct {
	Name string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Trigger %s already registered. Please try another name", e.Name)
}

// StatusCode implements statusCoder.
func (e *ConflictError) StatusCode() int { return http.StatusBadRequest }

// NotFoundError is returned when no trigger is registered under a name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No triggers registered for %s", e.Name)
}

// StatusCode implements statusCoder.
func (e *NotFoundError) StatusCode() int { return http.StatusNotFound }

// PayloadError is returned when a notify payload is missing or lacks data a
// channel requires.
type PayloadError struct {
	Message string
}

func (e *PayloadError) Error() string { return e.Message }

// StatusCode implements statusCoder.
func (e *PayloadError) StatusCode() int { return http.StatusBadRequest }

// TransitionExhaustedError is returned when a state sequence has no next state.
type TransitionExhaustedError struct{}

func (e *TransitionExhaustedError) Error() string { return "Invalid transition. State end" }

// StatusCode implements statusCoder.
func (e *TransitionExhaustedError) StatusCode() int { return http.StatusBadRequest }

// TransportError is returned when the mail or webhook collaborator fails.
type TransportError struct {
	Message string
	Err     error
}

func (e *TransportError) Error() string { return e.Message }

func (e *TransportError) Unwrap() error { return e.Err }

// StatusCode implements statusCoder.
func (e *TransportError) StatusCode() int { return http.StatusInternalServerError }

// ProviderError is returned when a state data provider fails.
type ProviderError struct {
	State string
	Err   error
}

func (e *ProviderError) Error() string { return "Error fetching provider data" }

func (e *ProviderError) Unwrap() error { return e.Err }

// StatusCode implements statusCoder.
func (e *ProviderError) StatusCode() int { return http.StatusInternalServerError }

// AdapterContractError is returned when a registered trigger has no usable
// channel adapter.
type AdapterContractError struct {
	Name string
}

func (e *AdapterContractError) Error() string {
	return fmt.Sprintf("Trigger for %s does not show a custom trigger", e.Name)
}

// StatusCode implements statusCoder.
func (e *AdapterContractError) StatusCode() int { return http.StatusInternalServerError }

// PersistenceError is returned when the registry snapshot cannot be written.
// The in-memory registry is left unchanged.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "Unable to persist trigger registry. Please retry"
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// StatusCode implements statusCoder.
func (e *PersistenceError) StatusCode() int { return http.StatusInternalServerError }

// ErrServer is the generic failure reported for unexpected dispatch errors.
var ErrServer = errors.New("Server error") //nolint:staticcheck // message is part of the HTTP contract

type statusCoder interface {
	StatusCode() int
}

// StatusCode returns the HTTP status that represents err. Errors outside the
// taxonomy map to 500.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

// Message returns the caller-facing message for err. Errors outside the
// taxonomy collapse to ErrServer so internal details never leak.
func Message(err error) string {
	var sc statusCoder
	if errors.As(err, &sc) {
		if e, ok := sc.(error); ok {
			return e.Error()
		}
	}
	return ErrServer.Error()
}
