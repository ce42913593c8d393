package models

import (
	"time"

	"github.com/NightSight1044/legalCRM1/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Case status constants
const (
	CaseStatusPending  = "pending"
	CaseStatusActive   = "active"
	CaseStatusClosed   = "closed"
	CaseStatusArchived = "archived"
)

// Case priority constants
const (
	CasePriorityLow    = "low"
	CasePriorityMedium = "medium"
	CasePriorityHigh   = "high"
	CasePriorityUrgent = "urgent"
)

// Case represents a legal matter owned by one client
type Case struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FirmID string `gorm:"type:uuid;not null;index:idx_case_firm_status;index:idx_case_firm_number" json:"firm_id"`

	ClientID string  `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	AssignedLawyerID *string  `gorm:"type:uuid;index" json:"assigned_lawyer_id,omitempty"`
	AssignedLawyer   *Profile `gorm:"foreignKey:AssignedLawyerID" json:"assigned_lawyer,omitempty"`

	// Not unique: user-supplied numbers may collide and are reported, not rejected
	CaseNumber   string `gorm:"not null;index:idx_case_firm_number" json:"case_number"`
	Title        string `gorm:"not null" json:"title"`
	Description  string `gorm:"type:text" json:"description,omitempty"`
	Status       string `gorm:"not null;default:pending;index:idx_case_firm_status" json:"status"`
	Priority     string `gorm:"not null;default:medium" json:"priority"`
	PracticeArea string `json:"practice_area,omitempty"`

	// Billing columns. Only the one matching BillingType is ever non-null;
	// read them through Terms().
	BillingType           string           `gorm:"not null;default:hourly" json:"billing_type"`
	HourlyRate            *decimal.Decimal `gorm:"type:decimal(12,2)" json:"hourly_rate,omitempty"`
	FixedFee              *decimal.Decimal `gorm:"type:decimal(12,2)" json:"fixed_fee,omitempty"`
	ContingencyPercentage *decimal.Decimal `gorm:"type:decimal(5,2)" json:"contingency_percentage,omitempty"`

	StartDate       *time.Time `json:"start_date,omitempty"`
	ExpectedEndDate *time.Time `json:"expected_end_date,omitempty"`

	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`

	// Data-quality notes produced while saving, e.g. a duplicated case number
	Warnings []string `gorm:"-" json:"warnings,omitempty"`
}

// BeforeCreate hook to generate UUID
func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Case model
func (Case) TableName() string {
	return "cases"
}

// Terms returns the active billing variant. Columns belonging to other
// modes are never consulted. Returns nil for an unknown billing type.
func (c *Case) Terms() billing.Terms {
	switch billing.Mode(c.BillingType) {
	case billing.ModeHourly:
		return billing.Hourly{Rate: valueOrZero(c.HourlyRate)}
	case billing.ModeFixed:
		return billing.Fixed{Fee: valueOrZero(c.FixedFee)}
	case billing.ModeContingency:
		return billing.Contingency{Percentage: valueOrZero(c.ContingencyPercentage)}
	}
	return nil
}

// SetTerms stores a billing variant and clears the columns of the other two
func (c *Case) SetTerms(t billing.Terms) {
	c.HourlyRate, c.FixedFee, c.ContingencyPercentage = nil, nil, nil
	switch v := t.(type) {
	case billing.Hourly:
		c.BillingType = string(billing.ModeHourly)
		c.HourlyRate = &v.Rate
	case billing.Fixed:
		c.BillingType = string(billing.ModeFixed)
		c.FixedFee = &v.Fee
	case billing.Contingency:
		c.BillingType = string(billing.ModeContingency)
		c.ContingencyPercentage = &v.Percentage
	}
}

// IsActive checks if the case is active
func (c *Case) IsActive() bool {
	return c.Status == CaseStatusActive
}

// IsValidCaseStatus checks if the status is valid
func IsValidCaseStatus(status string) bool {
	switch status {
	case CaseStatusPending, CaseStatusActive, CaseStatusClosed, CaseStatusArchived:
		return true
	}
	return false
}

// IsValidCasePriority checks if the priority is valid
func IsValidCasePriority(priority string) bool {
	switch priority {
	case CasePriorityLow, CasePriorityMedium, CasePriorityHigh, CasePriorityUrgent:
		return true
	}
	return false
}

func valueOrZero(v *decimal.Decimal) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return *v
}
