package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Event type constants
const (
	EventTypeMeeting     = "meeting"
	EventTypeHearing     = "hearing"
	EventTypeDeadline    = "deadline"
	EventTypeAppointment = "appointment"
	EventTypeReminder    = "reminder"
	EventTypeOther       = "other"
)

// DefaultReminderMinutes applies when an event is created without a reminder
const DefaultReminderMinutes = 30

// CalendarEvent is a dated entry on the firm calendar. Overlapping events
// are allowed.
type CalendarEvent struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FirmID string `gorm:"type:uuid;not null;index:idx_event_firm_start" json:"firm_id"`

	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	EventType   string `gorm:"not null;default:other" json:"event_type"`

	StartTime time.Time `gorm:"not null;index:idx_event_firm_start" json:"start_time"`
	EndTime   time.Time `gorm:"not null" json:"end_time"`

	CaseID *string `gorm:"type:uuid;index" json:"case_id,omitempty"`
	Case   *Case   `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	ClientID *string `gorm:"type:uuid;index" json:"client_id,omitempty"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	AssignedToID *string  `gorm:"type:uuid;index" json:"assigned_to_id,omitempty"`
	AssignedTo   *Profile `gorm:"foreignKey:AssignedToID" json:"assigned_to,omitempty"`

	// 0 means no reminder. No column default: gorm would overwrite an explicit 0.
	ReminderMinutes int        `gorm:"not null" json:"reminder_minutes"`
	ReminderSentAt  *time.Time `json:"reminder_sent_at,omitempty"`

	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
}

// BeforeCreate hook to generate UUID
func (e *CalendarEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for CalendarEvent model
func (CalendarEvent) TableName() string {
	return "calendar_events"
}

// ReminderAt returns when the reminder is due, or nil when there is none
func (e *CalendarEvent) ReminderAt() *time.Time {
	if e.ReminderMinutes <= 0 {
		return nil
	}
	at := e.StartTime.Add(-time.Duration(e.ReminderMinutes) * time.Minute)
	return &at
}

// ReminderText is DescribeReminder for this event
func (e *CalendarEvent) ReminderText() string {
	return DescribeReminder(e.ReminderMinutes)
}

// IsValidEventType checks if the event type is valid
func IsValidEventType(t string) bool {
	switch t {
	case EventTypeMeeting, EventTypeHearing, EventTypeDeadline,
		EventTypeAppointment, EventTypeReminder, EventTypeOther:
		return true
	}
	return false
}

// DescribeReminder renders a reminder offset in the largest whole unit:
// minutes below an hour, hours below a day, days otherwise.
func DescribeReminder(minutes int) string {
	switch {
	case minutes <= 0:
		return "no reminder"
	case minutes < 60:
		return plural(minutes, "minute") + " before"
	case minutes < 1440:
		return plural(minutes/60, "hour") + " before"
	default:
		return plural(minutes/1440, "day") + " before"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
