package dto

import (
	"net/http"
	"strings"
)

// Error codes returned by the HTTP layer itself
const (
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// domainErrorHTTPStatus maps domain error codes to HTTP status codes.
// Codes not listed fall through to the suffix rules in GetHTTPStatus.
var domainErrorHTTPStatus = map[string]int{
	// Duplicates and lost optimistic-lock races
	"ALREADY_PAID":         http.StatusConflict,
	"ALREADY_GRADED":       http.StatusConflict,
	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,

	// Business rule violations on otherwise well-formed requests
	"INSUFFICIENT_FUNDS": http.StatusUnprocessableEntity,
	"INVALID_STATE":      http.StatusUnprocessableEntity,
	"NOT_GRADED":         http.StatusUnprocessableEntity,
	"NOT_PAYABLE":        http.StatusUnprocessableEntity,
	"SELF_APPROVAL":      http.StatusUnprocessableEntity,
	"SUPPLIER_INACTIVE":  http.StatusUnprocessableEntity,

	"UNAUTHORIZED": http.StatusUnauthorized,

	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeInternal:   http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for a domain error code.
// Unmapped NOT_FOUND codes become 404 and INVALID_ codes become 400;
// anything else is treated as a server error.
func GetHTTPStatus(code string) int {
	if status, ok := domainErrorHTTPStatus[code]; ok {
		return status
	}
	if strings.HasSuffix(code, "NOT_FOUND") {
		return http.StatusNotFound
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
