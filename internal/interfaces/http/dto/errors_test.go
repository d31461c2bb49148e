package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		code string
		want int
	}{
		{"not found", ErrCodeNotFound, http.StatusNotFound},
		{"forbidden", ErrCodeForbidden, http.StatusForbidden},
		{"already exists", ErrCodeAlreadyExists, http.StatusConflict},
		{"invalid state", ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{"deadline passed", ErrCodeDeadlinePassed, http.StatusUnprocessableEntity},
		{"file too large", ErrCodeFileTooLarge, http.StatusRequestEntityTooLarge},
		{"storage unavailable", ErrCodeStorageUnavailable, http.StatusBadGateway},
		{"rate limited", ErrCodeRateLimited, http.StatusTooManyRequests},
		{"unknown code falls back to 500", "ERR_SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode("NOT_FOUND"))
	assert.Equal(t, ErrCodeDisallowedContentType, NormalizeErrorCode("DISALLOWED_CONTENT_TYPE"))
	assert.Equal(t, ErrCodeStorageUnavailable, NormalizeErrorCode("UPLOAD_URL_FAILED"))

	// already normalized codes pass through
	assert.Equal(t, ErrCodeForbidden, NormalizeErrorCode(ErrCodeForbidden))
	// unknown codes pass through untouched
	assert.Equal(t, "CUSTOM_CODE", NormalizeErrorCode("CUSTOM_CODE"))
}

func TestNewSuccessResponseWithMeta(t *testing.T) {
	resp := NewSuccessResponseWithMeta([]int{1, 2, 3}, 45, 2, 20)

	assert.True(t, resp.Success)
	assert.Equal(t, int64(45), resp.Meta.Total)
	assert.Equal(t, 3, resp.Meta.TotalPages)
}
