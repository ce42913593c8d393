package handlers

import (
	"net/http"

	"github.com/NightSight1044/legalCRM1/services"

	"github.com/labstack/echo/v4"
)

func timeEntryFilters(c echo.Context) (services.TimeEntryFilters, error) {
	from, err := parseDateParam(c, "from")
	if err != nil {
		return services.TimeEntryFilters{}, err
	}
	to, err := parseDateParam(c, "to")
	if err != nil {
		return services.TimeEntryFilters{}, err
	}
	return services.TimeEntryFilters{
		CaseID:         c.QueryParam("case_id"),
		BillableStatus: c.QueryParam("billable_status"),
		From:           from,
		To:             to,
	}, nil
}

// ListTimeEntriesHandler lists the firm's time entries
// GET /api/time-entries?case_id=...&billable_status=billable&from=2030-01-01&to=2030-01-31
func ListTimeEntriesHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	filters, err := timeEntryFilters(c)
	if err != nil {
		return err
	}
	entries, err := services.ListTimeEntries(c.Request().Context(), t, filters)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, entries)
}

// CreateTimeEntryHandler logs work against a case
// POST /api/time-entries
func CreateTimeEntryHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	var in services.TimeEntryInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	entry, err := services.CreateTimeEntry(c.Request().Context(), t, in)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

// GetTimeEntryHandler returns a time entry
// GET /api/time-entries/:id
func GetTimeEntryHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	entry, err := services.GetTimeEntry(c.Request().Context(), t, c.Param("id"))
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

// UpdateTimeEntryHandler edits a time entry; the amount follows
// PUT /api/time-entries/:id
func UpdateTimeEntryHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	var in services.TimeEntryInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	entry, err := services.UpdateTimeEntry(c.Request().Context(), t, c.Param("id"), in)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, entry)
}

// DeleteTimeEntryHandler removes a time entry
// DELETE /api/time-entries/:id
func DeleteTimeEntryHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	if err := services.DeleteTimeEntry(c.Request().Context(), t, c.Param("id")); err != nil {
		return toHTTPError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
