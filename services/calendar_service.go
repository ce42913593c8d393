package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NightSight1044/legalCRM1/models"
	"gorm.io/gorm"
)

// EventInput is the editable part of a calendar event. A nil
// ReminderMinutes means the default; 0 means no reminder.
type EventInput struct {
	Title           string     `json:"title" validate:"required,max=255"`
	Description     string     `json:"description"`
	Location        string     `json:"location" validate:"max=255"`
	EventType       string     `json:"event_type" validate:"omitempty,oneof=meeting hearing deadline appointment reminder other"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	CaseID          *string    `json:"case_id"`
	ClientID        *string    `json:"client_id"`
	AssignedToID    *string    `json:"assigned_to_id"`
	ReminderMinutes *int       `json:"reminder_minutes"`
}

// CalendarSummary holds the counters of the calendar page
type CalendarSummary struct {
	Today            int64 `json:"today"`
	Upcoming         int64 `json:"upcoming"`
	OverdueDeadlines int64 `json:"overdue_deadlines"`
	Total            int64 `json:"total"`
}

func (in EventInput) apply(ctx context.Context, t *Tenant, e *models.CalendarEvent) error {
	in.Title = strings.TrimSpace(in.Title)
	in.CaseID = trimmedPtr(in.CaseID)
	in.ClientID = trimmedPtr(in.ClientID)
	in.AssignedToID = trimmedPtr(in.AssignedToID)

	if err := validateInput(in); err != nil {
		return err
	}
	if in.StartTime == nil || in.StartTime.IsZero() {
		return NewValidationError("start_time", "is required")
	}
	if in.EndTime == nil || in.EndTime.IsZero() {
		return NewValidationError("end_time", "is required")
	}
	if !in.EndTime.After(*in.StartTime) {
		return ErrInvalidTimeRange
	}
	// sqlite compares stored times as text, so every row is kept in UTC
	startUTC, endUTC := in.StartTime.UTC(), in.EndTime.UTC()

	reminder := models.DefaultReminderMinutes
	if in.ReminderMinutes != nil {
		reminder = *in.ReminderMinutes
	}
	if reminder < 0 {
		return NewValidationError("reminder_minutes", "must be greater than or equal to 0")
	}

	if err := t.requireRef(ctx, &models.Case{}, in.CaseID, "case_id"); err != nil {
		return err
	}
	if err := t.requireRef(ctx, &models.Client{}, in.ClientID, "client_id"); err != nil {
		return err
	}
	if err := t.requireProfile(ctx, in.AssignedToID, "assigned_to_id"); err != nil {
		return err
	}

	// A moved start or a new offset re-arms the reminder
	if !e.StartTime.Equal(startUTC) || e.ReminderMinutes != reminder {
		e.ReminderSentAt = nil
	}

	e.Title = in.Title
	e.Description = sanitizeText(in.Description)
	e.Location = strings.TrimSpace(in.Location)
	e.EventType = in.EventType
	if e.EventType == "" {
		e.EventType = models.EventTypeOther
	}
	e.StartTime = startUTC
	e.EndTime = endUTC
	e.CaseID = in.CaseID
	e.ClientID = in.ClientID
	e.AssignedToID = in.AssignedToID
	e.ReminderMinutes = reminder
	return nil
}

// CreateEvent schedules an event. Overlaps with other events are allowed.
func CreateEvent(ctx context.Context, t *Tenant, in EventInput) (*models.CalendarEvent, error) {
	event := &models.CalendarEvent{CreatedByID: ptrIfNotEmpty(t.ProfileID)}
	if err := in.apply(ctx, t, event); err != nil {
		return nil, err
	}
	if err := t.create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateEvent replaces the editable fields of an event
func UpdateEvent(ctx context.Context, t *Tenant, id string, in EventInput) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	if err := t.first(ctx, &event, id); err != nil {
		return nil, err
	}
	if err := in.apply(ctx, t, &event); err != nil {
		return nil, err
	}
	if err := t.update(ctx, &event, models.AuditActionUpdate); err != nil {
		return nil, err
	}
	return &event, nil
}

// GetEvent returns an event with its linked case, client and assignee
func GetEvent(ctx context.Context, t *Tenant, id string) (*models.CalendarEvent, error) {
	var event models.CalendarEvent
	if err := t.first(ctx, &event, id, "Case", "Client", "AssignedTo"); err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent removes an event
func DeleteEvent(ctx context.Context, t *Tenant, id string) error {
	var event models.CalendarEvent
	if err := t.first(ctx, &event, id); err != nil {
		return err
	}
	return t.remove(ctx, &event)
}

// ListEventsInRange returns every event overlapping [start, end), ordered
// by start time
func ListEventsInRange(ctx context.Context, t *Tenant, start, end time.Time) ([]models.CalendarEvent, error) {
	if !end.After(start) {
		return nil, ErrInvalidTimeRange
	}
	return findScoped[models.CalendarEvent](ctx, t, func(q *gorm.DB) *gorm.DB {
		return q.Where("start_time < ? AND end_time > ?", end.UTC(), start.UTC()).
			Order("start_time ASC").
			Order("id ASC")
	})
}

// GetCalendarSummary counts today's events, the next seven days and
// deadlines that already passed, using loc for day boundaries
func GetCalendarSummary(ctx context.Context, t *Tenant, now time.Time, loc *time.Location) (*CalendarSummary, error) {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	localToday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	today := localToday.UTC()
	tomorrow := localToday.AddDate(0, 0, 1).UTC()
	weekAhead := localToday.AddDate(0, 0, 8).UTC()

	var summary CalendarSummary
	var err error
	model := &models.CalendarEvent{}

	if summary.Today, err = t.count(ctx, model, func(q *gorm.DB) *gorm.DB {
		return q.Where("start_time >= ? AND start_time < ?", today, tomorrow)
	}); err != nil {
		return nil, err
	}
	if summary.Upcoming, err = t.count(ctx, model, func(q *gorm.DB) *gorm.DB {
		return q.Where("start_time >= ? AND start_time < ?", tomorrow, weekAhead)
	}); err != nil {
		return nil, err
	}
	if summary.OverdueDeadlines, err = t.count(ctx, model, func(q *gorm.DB) *gorm.DB {
		return q.Where("event_type = ? AND start_time < ?", models.EventTypeDeadline, today)
	}); err != nil {
		return nil, err
	}
	if summary.Total, err = t.count(ctx, model, nil); err != nil {
		return nil, err
	}
	return &summary, nil
}

// DueReminders returns future events whose reminder time has arrived and
// that have not been reminded yet
func DueReminders(ctx context.Context, t *Tenant, now time.Time) ([]models.CalendarEvent, error) {
	events, err := findScoped[models.CalendarEvent](ctx, t, func(q *gorm.DB) *gorm.DB {
		return q.Preload("AssignedTo").
			Where("reminder_minutes > 0 AND reminder_sent_at IS NULL AND start_time > ?", now.UTC()).
			Order("start_time ASC")
	})
	if err != nil {
		return nil, err
	}

	due := events[:0]
	for _, e := range events {
		if at := e.ReminderAt(); at != nil && !at.After(now) {
			due = append(due, e)
		}
	}
	return due, nil
}

// MarkReminderSent records that the reminder for an event went out
func MarkReminderSent(ctx context.Context, t *Tenant, eventID string, at time.Time) error {
	res := t.query(ctx, &models.CalendarEvent{}).
		Where("id = ?", eventID).
		Update("reminder_sent_at", at.UTC())
	if res.Error != nil {
		return fmt.Errorf("failed to mark reminder sent: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
