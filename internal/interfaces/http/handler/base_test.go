package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/bidboard/backend/internal/domain/shared"
)

func TestHandleError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	base := &BaseHandler{}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"not found", shared.ErrNotFound, http.StatusNotFound, "ERR_NOT_FOUND"},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden, "ERR_FORBIDDEN"},
		{"invalid state", shared.ErrInvalidState, http.StatusUnprocessableEntity, "ERR_INVALID_STATE"},
		{"deadline passed", shared.ErrDeadlinePassed, http.StatusUnprocessableEntity, "ERR_DEADLINE_PASSED"},
		{"wrapped domain error", fmt.Errorf("save rfp: %w", shared.ErrAlreadyExists), http.StatusConflict, "ERR_ALREADY_EXISTS"},
		{"custom domain code", shared.NewDomainError("FILE_TOO_LARGE", "too big"), http.StatusRequestEntityTooLarge, "ERR_FILE_TOO_LARGE"},
		{"plain error becomes 500", errors.New("connection refused"), http.StatusInternalServerError, "ERR_INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			base.HandleError(c, tt.err)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantCode)
		})
	}
}

func TestHandleErrorDoesNotLeakInternalDetail(t *testing.T) {
	gin.SetMode(gin.TestMode)
	base := &BaseHandler{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	base.HandleError(c, errors.New("dial tcp 10.0.0.5:5432: connection refused"))

	assert.NotContains(t, w.Body.String(), "10.0.0.5")
}
