package handlers

import (
	"net/http"
	"time"

	"github.com/NightSight1044/legalCRM1/services"

	"github.com/labstack/echo/v4"
)

// GetAuditLogsHandler returns a page of the firm's audit trail (admin only)
// GET /api/audit-logs?profile_id=...&resource_type=clients&action=UPDATE&from=...&to=...&page=1
func GetAuditLogsHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}

	filters := services.AuditLogFilters{
		ProfileID:    c.QueryParam("profile_id"),
		ResourceType: c.QueryParam("resource_type"),
		Action:       c.QueryParam("action"),
		Page:         intParam(c, "page", 1),
		PageSize:     intParam(c, "page_size", 20),
	}
	from, err := parseDateParam(c, "from")
	if err != nil {
		return err
	}
	if from != nil {
		filters.DateFrom = *from
	}
	to, err := parseDateParam(c, "to")
	if err != nil {
		return err
	}
	if to != nil {
		filters.DateTo = *to
		if len(c.QueryParam("to")) == len(dateLayout) {
			// A bare date includes the whole day
			filters.DateTo = to.Add(24*time.Hour - time.Nanosecond)
		}
	}

	logs, total, err := services.ListAuditLogs(c.Request().Context(), t, filters)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"logs":  logs,
		"total": total,
		"page":  filters.Page,
	})
}

// GetResourceHistoryHandler returns the audit trail of one record
// GET /api/audit-logs/:resource_type/:resource_id
func GetResourceHistoryHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	logs, err := services.ResourceHistory(c.Request().Context(), t, c.Param("resource_type"), c.Param("resource_id"))
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, logs)
}
