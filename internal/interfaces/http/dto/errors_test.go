package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	cases := []struct {
		code string
		want int
	}{
		{"NOT_FOUND", http.StatusNotFound},
		{"UNAUTHORIZED", http.StatusUnauthorized},
		{"FORBIDDEN", http.StatusForbidden},
		{"INVALID_CREDENTIALS", http.StatusUnauthorized},
		{"EMAIL_EXISTS", http.StatusConflict},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"INVALID_TRANSITION", http.StatusUnprocessableEntity},
		{"STATUS_UNCHANGED", http.StatusUnprocessableEntity},
		{"INSUFFICIENT_STOCK", http.StatusUnprocessableEntity},
		{"NO_MODIFIED_FILE", http.StatusNotFound},
		{"FILE_TOO_LARGE", http.StatusRequestEntityTooLarge},
		{"INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, GetHTTPStatus(tc.code), tc.code)
	}
}

func TestGetHTTPStatus_Heuristics(t *testing.T) {
	// Codes not in the table fall back on prefix/suffix conventions
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatus("INVALID_PAYLOAD"))
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatus("EMPTY_CART"))
	assert.Equal(t, http.StatusConflict, GetHTTPStatus("SLUG_EXISTS"))
	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus("ALREADY_SHIPPED"))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_ODD"))
}

func TestResponseEnvelope(t *testing.T) {
	ok := NewSuccessResponse(map[string]string{"k": "v"})
	assert.True(t, ok.Success)
	assert.Nil(t, ok.Error)

	paged := NewSuccessResponseWithMeta([]int{1, 2, 3}, 7, 1, 3)
	assert.Equal(t, int64(7), paged.Meta.Total)
	assert.Equal(t, 3, paged.Meta.TotalPages)

	fail := NewErrorResponseWithRequestID("NOT_FOUND", "Resource not found", "req-1")
	assert.False(t, fail.Success)
	assert.Equal(t, "req-1", fail.Error.RequestID)
}
