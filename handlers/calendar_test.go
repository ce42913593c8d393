package handlers

import (
	"net/http"
	"strings"
	"testing"

	"github.com/NightSight1044/legalCRM1/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalendarHandlers(t *testing.T) {
	setupTestDB(t)
	tn := createTenant(t, "Firm A")
	other := createTenant(t, "Firm B")

	var hearing models.CalendarEvent

	t.Run("EndBeforeStart", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodPost, "/api/calendar/events", jsonBody(t, map[string]interface{}{
			"title":      "Backwards",
			"start_time": "2030-03-01T10:00:00Z",
			"end_time":   "2030-03-01T09:00:00Z",
		}))
		withTenant(c, tn)

		he := httpError(t, CreateEventHandler(c))
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("Create", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodPost, "/api/calendar/events", jsonBody(t, map[string]interface{}{
			"title":            "Hearing, room 4",
			"event_type":       "hearing",
			"start_time":       "2030-03-01T10:00:00Z",
			"end_time":         "2030-03-01T11:00:00Z",
			"reminder_minutes": 1440,
		}))
		withTenant(c, tn)

		require.NoError(t, CreateEventHandler(c))
		assert.Equal(t, http.StatusCreated, rec.Code)
		decode(t, rec, &hearing)
		assert.Equal(t, 1440, hearing.ReminderMinutes)
	})

	t.Run("Range", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/calendar/events?start=2030-03-01&end=2030-03-02", nil)
		withTenant(c, tn)

		require.NoError(t, ListEventsHandler(c))
		var events []models.CalendarEvent
		decode(t, rec, &events)
		require.Len(t, events, 1)
		assert.Equal(t, hearing.ID, events[0].ID)
	})

	t.Run("RangeRequiresBounds", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/api/calendar/events?start=2030-03-01", nil)
		withTenant(c, tn)

		he := httpError(t, ListEventsHandler(c))
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("RangeRejectsBadDates", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/api/calendar/events?start=yesterday&end=2030-03-02", nil)
		withTenant(c, tn)

		he := httpError(t, ListEventsHandler(c))
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})

	t.Run("ICS", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/calendar/events/"+hearing.ID+"/ics", nil)
		c.SetParamNames("id")
		c.SetParamValues(hearing.ID)
		withTenant(c, tn)

		require.NoError(t, EventICSHandler(c))
		assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/calendar"))
		assert.Contains(t, rec.Body.String(), "SUMMARY:Hearing\\, room 4")
		assert.Contains(t, rec.Body.String(), "TRIGGER:-PT1440M")
	})

	t.Run("ICSOtherFirm", func(t *testing.T) {
		_, c, _ := setupEcho(http.MethodGet, "/api/calendar/events/"+hearing.ID+"/ics", nil)
		c.SetParamNames("id")
		c.SetParamValues(hearing.ID)
		withTenant(c, other)

		he := httpError(t, EventICSHandler(c))
		assert.Equal(t, http.StatusNotFound, he.Code)
	})

	t.Run("Summary", func(t *testing.T) {
		_, c, rec := setupEcho(http.MethodGet, "/api/calendar/summary", nil)
		withTenant(c, tn)

		require.NoError(t, CalendarSummaryHandler(c))
		var summary map[string]int64
		decode(t, rec, &summary)
		assert.Equal(t, int64(1), summary["total"])
	})

	t.Run("ReminderText", func(t *testing.T) {
		tests := map[string]string{
			"0":    "no reminder",
			"1":    "1 minute before",
			"45":   "45 minutes before",
			"60":   "1 hour before",
			"1440": "1 day before",
			"2880": "2 days before",
		}
		for minutes, text := range tests {
			_, c, rec := setupEcho(http.MethodGet, "/api/calendar/reminder-text?minutes="+minutes, nil)
			require.NoError(t, DescribeReminderHandler(c))
			var got map[string]interface{}
			decode(t, rec, &got)
			assert.Equal(t, text, got["text"], minutes)
		}

		_, c, _ := setupEcho(http.MethodGet, "/api/calendar/reminder-text?minutes=soon", nil)
		he := httpError(t, DescribeReminderHandler(c))
		assert.Equal(t, http.StatusBadRequest, he.Code)
	})
}
