package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/NightSight1044/legalCRM1/billing"
	"github.com/NightSight1044/legalCRM1/metrics"
	"github.com/NightSight1044/legalCRM1/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InvoiceInput is the editable part of an invoice. LineItems replace the
// stored lines wholesale, in the order given.
type InvoiceInput struct {
	ClientID  string          `json:"client_id" validate:"required"`
	CaseID    *string         `json:"case_id"`
	IssueDate *time.Time      `json:"issue_date"`
	DueDate   *time.Time      `json:"due_date"`
	Notes     string          `json:"notes"`
	LineItems []LineItemInput `json:"line_items" validate:"dive"`
}

// LineItemInput is one requested invoice line
type LineItemInput struct {
	Description string          `json:"description" validate:"required,max=500"`
	Hours       decimal.Decimal `json:"hours" validate:"gte=0"`
	Rate        decimal.Decimal `json:"rate" validate:"gte=0"`
}

// InvoiceFilters narrows ListInvoices. Status "overdue" also matches sent
// invoices past their due date.
type InvoiceFilters struct {
	Status   string
	ClientID string
	CaseID   string
}

// DraftOptions bounds the time entries pulled into a drafted invoice
type DraftOptions struct {
	From      *time.Time
	To        *time.Time
	IssueDate *time.Time
}

func (in InvoiceInput) apply(ctx context.Context, t *Tenant, inv *models.Invoice) error {
	in.ClientID = strings.TrimSpace(in.ClientID)
	in.CaseID = trimmedPtr(in.CaseID)

	if err := validateInput(in); err != nil {
		return err
	}
	if err := t.requireRef(ctx, &models.Client{}, &in.ClientID, "client_id"); err != nil {
		return err
	}
	if in.CaseID != nil {
		var c models.Case
		if err := t.first(ctx, &c, *in.CaseID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return NewValidationError("case_id", "does not reference a record in this firm")
			}
			return err
		}
		if c.ClientID != in.ClientID {
			return NewValidationError("case_id", "belongs to a different client")
		}
	}

	issue := time.Now()
	if in.IssueDate != nil && !in.IssueDate.IsZero() {
		issue = *in.IssueDate
	} else if !inv.IssueDate.IsZero() {
		issue = inv.IssueDate
	}
	issue = truncateToDay(issue)

	due := issue.AddDate(0, 0, models.DefaultInvoiceTermDays)
	if in.DueDate != nil && !in.DueDate.IsZero() {
		due = truncateToDay(*in.DueDate)
	}
	if due.Before(issue) {
		return NewValidationError("due_date", "must not be before issue_date")
	}

	inv.ClientID = in.ClientID
	inv.CaseID = in.CaseID
	inv.IssueDate = issue
	inv.DueDate = due
	inv.Notes = sanitizeText(in.Notes)

	lines := make([]models.InvoiceLineItem, len(in.LineItems))
	for i, li := range in.LineItems {
		lines[i] = models.InvoiceLineItem{
			InvoiceID:   inv.ID,
			Position:    i + 1,
			Description: sanitizeText(li.Description),
			Hours:       li.Hours,
			Rate:        li.Rate,
		}
	}
	inv.LineItems = lines
	return nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CreateInvoice issues a draft invoice numbered from the firm's yearly
// sequence
func CreateInvoice(ctx context.Context, t *Tenant, in InvoiceInput) (*models.Invoice, error) {
	inv := &models.Invoice{
		Status:      models.InvoiceStatusDraft,
		CreatedByID: ptrIfNotEmpty(t.ProfileID),
	}
	if err := in.apply(ctx, t, inv); err != nil {
		return nil, err
	}

	number, err := GenerateInvoiceNumber(ctx, t, inv.IssueDate.Year())
	if err != nil {
		return nil, err
	}
	inv.Number = number

	if err := t.create(ctx, inv); err != nil {
		return nil, err
	}

	total, _ := inv.Totals().Total.Float64()
	metrics.InvoiceTotals.Observe(total)
	return inv, nil
}

// UpdateInvoice replaces the invoice fields and its line items in one
// transaction
func UpdateInvoice(ctx context.Context, t *Tenant, id string, in InvoiceInput) (*models.Invoice, error) {
	var inv models.Invoice
	if err := t.first(ctx, &inv, id); err != nil {
		return nil, err
	}
	if err := in.apply(ctx, t, &inv); err != nil {
		return nil, err
	}
	inv.AssignTenant(t.FirmID)

	err := t.Transaction(ctx, func(tx *Tenant) error {
		if err := tx.db.Where(tx.firmClause()).
			Where("invoice_id = ?", inv.ID).
			Delete(&models.InvoiceLineItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete invoice lines: %w", err)
		}
		if len(inv.LineItems) > 0 {
			if err := tx.db.Create(&inv.LineItems).Error; err != nil {
				return fmt.Errorf("failed to create invoice lines: %w", err)
			}
		}
		return tx.update(ctx, &inv, models.AuditActionUpdate)
	})
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// GetInvoice returns an invoice with its client, case and ordered lines
func GetInvoice(ctx context.Context, t *Tenant, id string) (*models.Invoice, error) {
	var inv models.Invoice
	if err := t.first(ctx, &inv, id, "Client", "Case"); err != nil {
		return nil, err
	}
	lines, err := findScoped[models.InvoiceLineItem](ctx, t, func(q *gorm.DB) *gorm.DB {
		return q.Where("invoice_id = ?", inv.ID).Order("position ASC")
	})
	if err != nil {
		return nil, err
	}
	inv.LineItems = lines
	return &inv, nil
}

// ListInvoices returns the firm's invoices, most recently issued first
func ListInvoices(ctx context.Context, t *Tenant, filters InvoiceFilters) ([]models.Invoice, error) {
	invoices, err := findScoped[models.Invoice](ctx, t, func(q *gorm.DB) *gorm.DB {
		switch filters.Status {
		case "":
		case models.InvoiceStatusOverdue:
			q = q.Where("status = ? OR (status = ? AND due_date < ?)",
				models.InvoiceStatusOverdue, models.InvoiceStatusSent, models.OverdueCutoff(time.Now()))
		default:
			q = q.Where("status = ?", filters.Status)
		}
		if filters.ClientID != "" {
			q = q.Where("client_id = ?", filters.ClientID)
		}
		if filters.CaseID != "" {
			q = q.Where("case_id = ?", filters.CaseID)
		}
		return q.Preload("Client").
			Preload("LineItems", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
			Order("issue_date DESC").
			Order("created_at DESC")
	})
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		for j := range invoices[i].LineItems {
			if err := t.ensureOwned(&invoices[i].LineItems[j]); err != nil {
				return nil, err
			}
		}
	}
	return invoices, nil
}

// SetInvoiceStatus moves an invoice to status. Any transition is allowed.
func SetInvoiceStatus(ctx context.Context, t *Tenant, id, status string) (*models.Invoice, error) {
	if !models.IsValidInvoiceStatus(status) {
		return nil, NewValidationError("status", "must be one of: draft sent paid overdue")
	}
	inv, err := GetInvoice(ctx, t, id)
	if err != nil {
		return nil, err
	}
	inv.Status = status
	if err := t.update(ctx, inv, models.AuditActionStatusChange); err != nil {
		return nil, err
	}
	return inv, nil
}

// DeleteInvoice removes a draft invoice. Issued invoices are kept.
func DeleteInvoice(ctx context.Context, t *Tenant, id string) error {
	var inv models.Invoice
	if err := t.first(ctx, &inv, id); err != nil {
		return err
	}
	if inv.Status != models.InvoiceStatusDraft {
		return NewValidationError("status", "only draft invoices can be deleted")
	}
	return t.remove(ctx, &inv)
}

// DraftInvoiceFromCase creates a draft invoice for a case's client with
// lines derived from the case's billing terms
func DraftInvoiceFromCase(ctx context.Context, t *Tenant, caseID string, opts DraftOptions) (*models.Invoice, error) {
	var c models.Case
	if err := t.first(ctx, &c, caseID); err != nil {
		return nil, err
	}

	entries, err := ListTimeEntries(ctx, t, TimeEntryFilters{
		CaseID:         c.ID,
		BillableStatus: models.BillableStatusBillable,
		From:           opts.From,
		To:             opts.To,
	})
	if err != nil {
		return nil, err
	}

	// Oldest work first on the invoice
	units := make([]billing.WorkUnit, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		units = append(units, entries[i].WorkUnit())
	}

	items, err := billing.DraftLineItems(c.Terms(), units)
	if errors.Is(err, billing.ErrRevenueUndetermined) {
		return nil, NewValidationError("billing_type", "contingency cases cannot be invoiced before settlement")
	}
	if err != nil {
		return nil, termsValidationError(err)
	}
	if len(items) == 0 {
		return nil, NewValidationError("case_id", "has no billable time entries")
	}

	in := InvoiceInput{
		ClientID:  c.ClientID,
		CaseID:    &c.ID,
		IssueDate: opts.IssueDate,
		Notes:     fmt.Sprintf("%s - %s", c.CaseNumber, c.Title),
		LineItems: make([]LineItemInput, len(items)),
	}
	for i, item := range items {
		description := item.Description
		if description == "" {
			description = c.Title
		}
		in.LineItems[i] = LineItemInput{Description: description, Hours: item.Hours, Rate: item.Rate}
	}
	return CreateInvoice(ctx, t, in)
}
