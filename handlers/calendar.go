package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/NightSight1044/legalCRM1/models"
	"github.com/NightSight1044/legalCRM1/services"

	"github.com/labstack/echo/v4"
)

// ListEventsHandler returns events overlapping [start, end)
// GET /api/calendar/events?start=2030-01-01T00:00:00Z&end=2030-02-01T00:00:00Z
func ListEventsHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	start, err := parseDateParam(c, "start")
	if err != nil {
		return err
	}
	end, err := parseDateParam(c, "end")
	if err != nil {
		return err
	}
	if start == nil || end == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start and end are required")
	}

	events, err := services.ListEventsInRange(c.Request().Context(), t, *start, *end)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, events)
}

// CreateEventHandler schedules an event
// POST /api/calendar/events
func CreateEventHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	var in services.EventInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	event, err := services.CreateEvent(c.Request().Context(), t, in)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, event)
}

// GetEventHandler returns an event
// GET /api/calendar/events/:id
func GetEventHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	event, err := services.GetEvent(c.Request().Context(), t, c.Param("id"))
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, event)
}

// UpdateEventHandler replaces an event's editable fields
// PUT /api/calendar/events/:id
func UpdateEventHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	var in services.EventInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	event, err := services.UpdateEvent(c.Request().Context(), t, c.Param("id"), in)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, event)
}

// DeleteEventHandler removes an event
// DELETE /api/calendar/events/:id
func DeleteEventHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	if err := services.DeleteEvent(c.Request().Context(), t, c.Param("id")); err != nil {
		return toHTTPError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// EventICSHandler downloads an event as an iCalendar file
// GET /api/calendar/events/:id/ics
func EventICSHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	event, err := services.GetEvent(ctx, t, c.Param("id"))
	if err != nil {
		return toHTTPError(c, err)
	}
	firm, err := services.GetFirm(ctx, t)
	if err != nil {
		return toHTTPError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=event_%s.ics", event.ID))
	return c.Blob(http.StatusOK, "text/calendar; charset=utf-8", services.GenerateEventICS(event, firm))
}

// CalendarSummaryHandler returns today's, upcoming and overdue counters in
// the firm's timezone
// GET /api/calendar/summary
func CalendarSummaryHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	firm, err := services.GetFirm(ctx, t)
	if err != nil {
		return toHTTPError(c, err)
	}
	summary, err := services.GetCalendarSummary(ctx, t, time.Now(), firm.Location())
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, summary)
}

// DescribeReminderHandler renders a reminder offset as text
// GET /api/calendar/reminder-text?minutes=90
func DescribeReminderHandler(c echo.Context) error {
	minutes, err := strconv.Atoi(c.QueryParam("minutes"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "minutes must be an integer")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"minutes": minutes,
		"text":    models.DescribeReminder(minutes),
	})
}
