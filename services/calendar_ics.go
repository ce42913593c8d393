package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/NightSight1044/legalCRM1/models"
)

const icsDateFormat = "20060102T150405Z"

var icsEscaper = strings.NewReplacer(`\`, `\\`, ";", `\;`, ",", `\,`, "\n", `\n`)

// GenerateEventICS renders an event as a single-event iCalendar file
func GenerateEventICS(event *models.CalendarEvent, firm *models.Firm) []byte {
	var b strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format+"\r\n", args...)
	}

	line("BEGIN:VCALENDAR")
	line("VERSION:2.0")
	line("PRODID:-//LegalCRM//Calendar//EN")
	line("CALSCALE:GREGORIAN")
	line("BEGIN:VEVENT")
	line("UID:%s", event.ID)
	line("DTSTAMP:%s", time.Now().UTC().Format(icsDateFormat))
	line("DTSTART:%s", event.StartTime.UTC().Format(icsDateFormat))
	line("DTEND:%s", event.EndTime.UTC().Format(icsDateFormat))
	line("SUMMARY:%s", icsEscaper.Replace(event.Title))
	if event.Description != "" {
		line("DESCRIPTION:%s", icsEscaper.Replace(event.Description))
	}
	if event.Location != "" {
		line("LOCATION:%s", icsEscaper.Replace(event.Location))
	}
	if firm != nil && firm.BillingEmail != "" {
		line(`ORGANIZER;CN="%s":mailto:%s`, icsEscaper.Replace(firm.Name), firm.BillingEmail)
	}
	if event.ReminderMinutes > 0 {
		line("BEGIN:VALARM")
		line("ACTION:DISPLAY")
		line("DESCRIPTION:%s", icsEscaper.Replace(event.ReminderText()))
		line("TRIGGER:-PT%dM", event.ReminderMinutes)
		line("END:VALARM")
	}
	line("END:VEVENT")
	line("END:VCALENDAR")

	return []byte(b.String())
}
