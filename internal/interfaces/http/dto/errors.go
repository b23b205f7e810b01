package dto

import (
	"net/http"
	"strings"
)

// Error codes produced by the HTTP layer itself
const (
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeTooLarge     = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited  = "RATE_LIMITED"
)

// errorCodeHTTPStatus maps domain error codes to HTTP status codes.
// Codes missing from the map fall back on a prefix heuristic in
// GetHTTPStatus, so new domain codes degrade to sensible statuses.
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	// Identity
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"INVALID_TOKEN":       http.StatusUnauthorized,
	"ACCOUNT_DEACTIVATED": http.StatusForbidden,
	"EMAIL_EXISTS":        http.StatusConflict,
	"CHAT_ALREADY_LINKED": http.StatusConflict,

	// Catalog and checkout
	"SKU_EXISTS":         http.StatusConflict,
	"PRODUCT_NOT_FOUND":  http.StatusUnprocessableEntity,
	"PRODUCT_INACTIVE":   http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK": http.StatusUnprocessableEntity,

	// Tuning workflow
	"INVALID_TRANSITION":   http.StatusUnprocessableEntity,
	"STATUS_UNCHANGED":     http.StatusUnprocessableEntity,
	"PAYMENT_UNCHANGED":    http.StatusUnprocessableEntity,
	"NO_MODIFIED_FILE":     http.StatusNotFound,
	"INVALID_STATE":        http.StatusUnprocessableEntity,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"FILE_TOO_LARGE":       http.StatusRequestEntityTooLarge,
	"NOTES_TOO_LONG":       http.StatusBadRequest,
}

// GetHTTPStatus returns the HTTP status code for a domain error code
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") || strings.HasPrefix(code, "EMPTY_") {
		return http.StatusBadRequest
	}
	if strings.HasSuffix(code, "_EXISTS") || strings.HasSuffix(code, "_CONFLICT") {
		return http.StatusConflict
	}
	if strings.HasPrefix(code, "ALREADY_") {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
