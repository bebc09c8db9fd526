package shared

import (
	"errors"
	"fmt"
)

// DomainError is a business rule violation identified by a stable code.
// Errors with equal codes match under errors.Is, so a detailed error built
// with Withf still matches its sentinel.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewDomainError creates a sentinel domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func (e *DomainError) Error() string {
	return e.Message
}

func (e *DomainError) Is(target error) bool {
	var t *DomainError
	return errors.As(target, &t) && t.Code == e.Code
}

// Withf returns an error with e's code and a formatted message
func (e *DomainError) Withf(format string, args ...any) *DomainError {
	return &DomainError{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

// Code returns the domain code of err, or "" when err is not a domain error
func Code(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Order was modified by another process")
	ErrInvalidTransition   = NewDomainError("INVALID_STATE_TRANSITION", "State transition is not allowed")
)
