package models

import (
	"encoding/json"
	"time"

	"github.com/NightSight1044/legalCRM1/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Billable status constants
const (
	BillableStatusBillable    = "billable"
	BillableStatusNonBillable = "non-billable"
	BillableStatusProBono     = "pro-bono"
)

// Activity type constants
const (
	ActivityConsultation = "consultation"
	ActivityResearch     = "research"
	ActivityDrafting     = "drafting"
	ActivityCourt        = "court"
	ActivityNegotiation  = "negotiation"
	ActivityReview       = "review"
	ActivityTravel       = "travel"
	ActivityOther        = "other"
)

// TimeEntry is a unit of work logged against a case. There is no amount
// column; Amount() always recomputes hours × rate.
type TimeEntry struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FirmID string `gorm:"type:uuid;not null;index:idx_time_entry_firm_date" json:"firm_id"`

	CaseID string `gorm:"type:uuid;not null;index" json:"case_id"`
	Case   *Case  `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	Date           time.Time       `gorm:"type:date;not null;index:idx_time_entry_firm_date" json:"date"`
	Hours          decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"hours"`
	Rate           decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"rate"`
	Description    string          `gorm:"type:text" json:"description"`
	ActivityType   string          `gorm:"not null;default:other" json:"activity_type"`
	BillableStatus string          `gorm:"not null;default:billable" json:"billable_status"`

	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
}

// BeforeCreate hook to generate UUID
func (t *TimeEntry) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for TimeEntry model
func (TimeEntry) TableName() string {
	return "time_entries"
}

// Amount returns hours × rate
func (t *TimeEntry) Amount() decimal.Decimal {
	return t.Hours.Mul(t.Rate)
}

// IsBillable checks if the entry counts toward hourly revenue
func (t *TimeEntry) IsBillable() bool {
	return t.BillableStatus == BillableStatusBillable
}

// WorkUnit projects the entry onto what the billing engine needs
func (t *TimeEntry) WorkUnit() billing.WorkUnit {
	return billing.WorkUnit{
		Description: t.Description,
		Hours:       t.Hours,
		Rate:        t.Rate,
		Billable:    t.IsBillable(),
	}
}

// MarshalJSON adds the derived amount to the serialized entry
func (t TimeEntry) MarshalJSON() ([]byte, error) {
	type alias TimeEntry
	return json.Marshal(struct {
		alias
		Amount decimal.Decimal `json:"amount"`
	}{alias: alias(t), Amount: t.Amount()})
}

// IsValidBillableStatus checks if the billable status is valid
func IsValidBillableStatus(status string) bool {
	switch status {
	case BillableStatusBillable, BillableStatusNonBillable, BillableStatusProBono:
		return true
	}
	return false
}

// IsValidActivityType checks if the activity type is valid
func IsValidActivityType(activity string) bool {
	switch activity {
	case ActivityConsultation, ActivityResearch, ActivityDrafting, ActivityCourt,
		ActivityNegotiation, ActivityReview, ActivityTravel, ActivityOther:
		return true
	}
	return false
}
