package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/NightSight1044/legalCRM1/middleware"
	"github.com/NightSight1044/legalCRM1/services"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// toHTTPError maps service errors to responses. Unknown errors are logged
// and reported as 500 without their text.
func toHTTPError(c echo.Context, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, map[string]string{
			"message": "Validation failed",
			"field":   verr.Field,
			"reason":  verr.Reason,
		})
	case errors.Is(err, services.ErrInvalidTimeRange):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrNotAuthenticated), errors.Is(err, services.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrProfileNotFound):
		return echo.NewHTTPError(http.StatusConflict, map[string]interface{}{
			"message":    "Profile is not attached to a firm yet",
			"onboarding": true,
		})
	// A foreign row answers exactly like a missing one
	case errors.Is(err, services.ErrNotFound), errors.Is(err, services.ErrCrossTenantAccess):
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}

	zap.L().Error("request failed",
		zap.String("method", c.Request().Method),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return echo.NewHTTPError(http.StatusInternalServerError, "Internal server error")
}

func tenant(c echo.Context) (*services.Tenant, error) {
	t := middleware.GetTenant(c)
	if t == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}
	return t, nil
}

func bindJSON(c echo.Context, dest interface{}) error {
	if err := c.Bind(dest); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	return nil
}

// parseDateParam reads an optional YYYY-MM-DD or RFC3339 query parameter
func parseDateParam(c echo.Context, name string) (*time.Time, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return nil, nil
	}
	if d, err := time.Parse(dateLayout, raw); err == nil {
		return &d, nil
	}
	d, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid "+name+" date")
	}
	return &d, nil
}

func intParam(c echo.Context, name string, fallback int) int {
	if v, err := strconv.Atoi(c.QueryParam(name)); err == nil {
		return v
	}
	return fallback
}
