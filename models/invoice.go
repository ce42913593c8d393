package models

import (
	"encoding/json"
	"time"

	"github.com/NightSight1044/legalCRM1/billing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice status constants
const (
	InvoiceStatusDraft   = "draft"
	InvoiceStatusSent    = "sent"
	InvoiceStatusPaid    = "paid"
	InvoiceStatusOverdue = "overdue"
)

// DefaultInvoiceTermDays is the gap between issue and due date
const DefaultInvoiceTermDays = 15

// Invoice groups line items billed to one client. Subtotal, tax and total
// are not stored; Totals() recomputes them from the lines on every read.
type Invoice struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	FirmID string `gorm:"type:uuid;not null;index:idx_invoice_firm_status" json:"firm_id"`

	Number string `gorm:"not null;index" json:"number"`

	ClientID string  `gorm:"type:uuid;not null;index" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	CaseID *string `gorm:"type:uuid;index" json:"case_id,omitempty"`
	Case   *Case   `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	IssueDate time.Time `gorm:"type:date;not null" json:"issue_date"`
	DueDate   time.Time `gorm:"type:date;not null" json:"due_date"`
	Status    string    `gorm:"not null;default:draft;index:idx_invoice_firm_status" json:"status"`
	Notes     string    `gorm:"type:text" json:"notes,omitempty"`

	CreatedByID *string `gorm:"type:uuid" json:"created_by_id,omitempty"`

	LineItems []InvoiceLineItem `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"line_items"`
}

// BeforeCreate hook to generate UUID
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for Invoice model
func (Invoice) TableName() string {
	return "invoices"
}

// BillingLines converts stored lines, in position order, for the billing engine
func (i *Invoice) BillingLines() []billing.LineItem {
	items := make([]billing.LineItem, len(i.LineItems))
	for idx, li := range i.LineItems {
		items[idx] = li.BillingLine()
	}
	return items
}

// Totals recomputes subtotal, tax and total from the current line items
func (i *Invoice) Totals() billing.Totals {
	return billing.ComputeInvoiceTotals(i.BillingLines())
}

// OverdueCutoff is the due date before which a sent invoice counts as
// overdue at now. The due day itself is still payable.
func OverdueCutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -1).UTC()
}

// EffectiveStatus reports a sent invoice past its due date as overdue
func (i *Invoice) EffectiveStatus(now time.Time) string {
	if i.Status == InvoiceStatusSent && i.DueDate.Before(OverdueCutoff(now)) {
		return InvoiceStatusOverdue
	}
	return i.Status
}

// MarshalJSON adds the computed totals
func (i Invoice) MarshalJSON() ([]byte, error) {
	type alias Invoice
	return json.Marshal(struct {
		alias
		billing.Totals
	}{alias: alias(i), Totals: i.Totals()})
}

// IsValidInvoiceStatus checks if the invoice status is valid
func IsValidInvoiceStatus(status string) bool {
	switch status {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusOverdue:
		return true
	}
	return false
}

// InvoiceLineItem is one row of an invoice
type InvoiceLineItem struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"-"`

	FirmID    string `gorm:"type:uuid;not null;index" json:"-"`
	InvoiceID string `gorm:"type:uuid;not null;index" json:"invoice_id"`
	Position  int    `gorm:"not null" json:"position"`

	Description string          `gorm:"type:text" json:"description"`
	Hours       decimal.Decimal `gorm:"type:decimal(8,2);not null" json:"hours"`
	Rate        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"rate"`
}

// BeforeCreate hook to generate UUID
func (l *InvoiceLineItem) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name for InvoiceLineItem model
func (InvoiceLineItem) TableName() string {
	return "invoice_line_items"
}

// BillingLine converts the stored row for the billing engine
func (l *InvoiceLineItem) BillingLine() billing.LineItem {
	return billing.LineItem{Description: l.Description, Hours: l.Hours, Rate: l.Rate}
}

// MarshalJSON adds the derived amount
func (l InvoiceLineItem) MarshalJSON() ([]byte, error) {
	type alias InvoiceLineItem
	return json.Marshal(struct {
		alias
		Amount decimal.Decimal `json:"amount"`
	}{alias: alias(l), Amount: l.BillingLine().Amount()})
}
