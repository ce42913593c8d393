package handlers

import (
	"net/http"
	"time"

	"github.com/NightSight1044/legalCRM1/services"

	"github.com/labstack/echo/v4"
)

// DashboardHandler returns the firm's headline counters
// GET /api/dashboard
func DashboardHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	stats, err := services.GetDashboardStats(ctx, t, time.Now())
	if err != nil {
		return toHTTPError(c, err)
	}
	byStatus, err := services.CaseStatusCounts(ctx, t)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"stats":           stats,
		"cases_by_status": byStatus,
	})
}

// BillingSummaryHandler returns hours, revenue and outstanding amounts for
// a period. Defaults to the current month up to today.
// GET /api/reports/billing-summary?from=YYYY-MM-DD&to=YYYY-MM-DD
func BillingSummaryHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}

	fromParam, err := parseDateParam(c, "from")
	if err != nil {
		return err
	}
	toParam, err := parseDateParam(c, "to")
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := now
	if fromParam != nil {
		from = *fromParam
	}
	if toParam != nil {
		to = *toParam
	}

	summary, err := services.GetBillingSummary(c.Request().Context(), t, from, to, now)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}
