package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/NightSight1044/legalCRM1/services"

	"github.com/stretchr/testify/assert"
)

func TestToHTTPError(t *testing.T) {
	_, c, _ := setupEcho(http.MethodGet, "/api/clients", nil)

	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", services.NewValidationError("title", "is required"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("save: %w", services.NewValidationError("title", "is required")), http.StatusBadRequest},
		{"invalid range", services.ErrInvalidTimeRange, http.StatusBadRequest},
		{"not authenticated", services.ErrNotAuthenticated, http.StatusUnauthorized},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"profile not found", services.ErrProfileNotFound, http.StatusConflict},
		{"not found", services.ErrNotFound, http.StatusNotFound},
		{"cross tenant", services.ErrCrossTenantAccess, http.StatusNotFound},
		{"unexpected", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := httpError(t, toHTTPError(c, tt.err))
			assert.Equal(t, tt.code, he.Code)
		})
	}

	t.Run("validation carries the field", func(t *testing.T) {
		he := httpError(t, toHTTPError(c, services.NewValidationError("company_name", "is required for company clients")))
		body, ok := he.Message.(map[string]string)
		assert.True(t, ok)
		assert.Equal(t, "company_name", body["field"])
	})

	t.Run("internal errors hide their text", func(t *testing.T) {
		he := httpError(t, toHTTPError(c, errors.New("disk on fire")))
		assert.Equal(t, "Internal server error", he.Message)
	})
}
