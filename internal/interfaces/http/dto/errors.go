package dto

import (
	"net/http"
	"strings"
)

// API error codes minted by the HTTP layer or renamed from shared domain codes
const (
	ErrCodeInternal            = "ERR_INTERNAL"
	ErrCodeValidation          = "ERR_VALIDATION"
	ErrCodeBadRequest          = "ERR_BAD_REQUEST"
	ErrCodeInvalidJSON         = "ERR_INVALID_JSON"
	ErrCodeUnauthorized        = "ERR_UNAUTHORIZED"
	ErrCodeForbidden           = "ERR_FORBIDDEN"
	ErrCodeTokenExpired        = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid        = "ERR_TOKEN_INVALID"
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeLockNotAcquired     = "ERR_LOCK_NOT_ACQUIRED"
	ErrCodeInvalidTransition   = "ERR_INVALID_STATE_TRANSITION"
)

// Channel and order codes reach clients exactly as the domain raises them
const (
	ErrCodeUnknownChannelStatus = "UNKNOWN_CHANNEL_STATUS"
	ErrCodeChannelMissing       = "CHANNEL_MISSING"
	ErrCodeChannelRequired      = "CHANNEL_REQUIRED"
	ErrCodeNotCreateChannel     = "NOT_CREATE_CHANNEL"
	ErrCodeChannelNotSelectable = "CHANNEL_NOT_SELECTABLE"
	ErrCodeChannelException     = "CHANNEL_EXCEPTION"
	ErrCodeChannelNotFound      = "CHANNEL_NOT_FOUND"
	ErrCodeChannelLocked        = "CHANNEL_LOCKED"
	ErrCodeDuplicateIdentifier  = "DUPLICATE_CHANNEL_IDENTIFIER"
	ErrCodeDuplicateStatus      = "DUPLICATE_CHANNEL_STATUS"
	ErrCodeExceptionResolved    = "EXCEPTION_ALREADY_RESOLVED"
	ErrCodeOrderNotEditable     = "ORDER_NOT_EDITABLE"
	ErrCodeNoLines              = "NO_LINES"
)

// domainRenames maps shared domain codes to their ERR_ form
var domainRenames = map[string]string{
	"NOT_FOUND":                ErrCodeNotFound,
	"ALREADY_EXISTS":           ErrCodeAlreadyExists,
	"CONCURRENCY_CONFLICT":     ErrCodeConcurrencyConflict,
	"LOCK_NOT_ACQUIRED":        ErrCodeLockNotAcquired,
	"INVALID_STATE_TRANSITION": ErrCodeInvalidTransition,
}

var statusByCode = map[string]int{
	ErrCodeInternal:            http.StatusInternalServerError,
	ErrCodeValidation:          http.StatusBadRequest,
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeInvalidJSON:         http.StatusBadRequest,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeForbidden:           http.StatusForbidden,
	ErrCodeTokenExpired:        http.StatusUnauthorized,
	ErrCodeTokenInvalid:        http.StatusUnauthorized,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeLockNotAcquired:     http.StatusConflict,
	ErrCodeInvalidTransition:   http.StatusUnprocessableEntity,

	ErrCodeUnknownChannelStatus: http.StatusUnprocessableEntity,
	ErrCodeChannelMissing:       http.StatusUnprocessableEntity,
	ErrCodeChannelRequired:      http.StatusUnprocessableEntity,
	ErrCodeNotCreateChannel:     http.StatusForbidden,
	ErrCodeChannelNotSelectable: http.StatusForbidden,
	ErrCodeChannelException:     http.StatusConflict,
	ErrCodeChannelNotFound:      http.StatusNotFound,
	ErrCodeChannelLocked:        http.StatusUnprocessableEntity,
	ErrCodeDuplicateIdentifier:  http.StatusConflict,
	ErrCodeDuplicateStatus:      http.StatusConflict,
	ErrCodeExceptionResolved:    http.StatusUnprocessableEntity,
	ErrCodeOrderNotEditable:     http.StatusUnprocessableEntity,
	ErrCodeNoLines:              http.StatusUnprocessableEntity,
}

// ResolveDomainCode returns the API code and HTTP status for a domain error code.
// Unmapped INVALID_ codes are input errors; any other unmapped code is a 500.
func ResolveDomainCode(domainCode string) (string, int) {
	code := domainCode
	if renamed, ok := domainRenames[domainCode]; ok {
		code = renamed
	}
	if status, ok := statusByCode[code]; ok {
		return code, status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return code, http.StatusBadRequest
	}
	return code, http.StatusInternalServerError
}
