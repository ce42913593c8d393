package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/NightSight1044/legalCRM1/billing"
	"github.com/NightSight1044/legalCRM1/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DefaultHourlyRate applies to entries logged without a rate against a case
// that is not billed hourly
var DefaultHourlyRate = decimal.NewFromInt(300)

// TimeEntryInput is the editable part of a time entry
type TimeEntryInput struct {
	CaseID         string           `json:"case_id" validate:"required"`
	Date           time.Time        `json:"date" validate:"required"`
	Hours          decimal.Decimal  `json:"hours" validate:"gte=0"`
	Rate           *decimal.Decimal `json:"rate" validate:"omitempty,gte=0"`
	Description    string           `json:"description" validate:"max=2000"`
	ActivityType   string           `json:"activity_type" validate:"omitempty,oneof=consultation research drafting court negotiation review travel other"`
	BillableStatus string           `json:"billable_status" validate:"omitempty,oneof=billable non-billable pro-bono"`
}

// TimeEntryFilters narrows ListTimeEntries
type TimeEntryFilters struct {
	CaseID         string
	BillableStatus string
	From           *time.Time
	To             *time.Time
}

func (in TimeEntryInput) apply(ctx context.Context, t *Tenant, e *models.TimeEntry) error {
	in.CaseID = strings.TrimSpace(in.CaseID)
	if err := validateInput(in); err != nil {
		return err
	}

	var c models.Case
	if err := t.first(ctx, &c, in.CaseID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return NewValidationError("case_id", "does not reference a record in this firm")
		}
		return err
	}

	rate := DefaultHourlyRate
	if in.Rate != nil {
		rate = *in.Rate
	} else if hourly, ok := c.Terms().(billing.Hourly); ok {
		rate = hourly.Rate
	}

	e.CaseID = c.ID
	e.Date = truncateToDay(in.Date)
	e.Hours = in.Hours
	e.Rate = rate
	e.Description = sanitizeText(in.Description)
	e.ActivityType = in.ActivityType
	if e.ActivityType == "" {
		e.ActivityType = models.ActivityOther
	}
	e.BillableStatus = in.BillableStatus
	if e.BillableStatus == "" {
		e.BillableStatus = models.BillableStatusBillable
	}
	return nil
}

// CreateTimeEntry logs work against a case of the firm. Without a rate the
// case's hourly rate is used.
func CreateTimeEntry(ctx context.Context, t *Tenant, in TimeEntryInput) (*models.TimeEntry, error) {
	entry := &models.TimeEntry{CreatedByID: ptrIfNotEmpty(t.ProfileID)}
	if err := in.apply(ctx, t, entry); err != nil {
		return nil, err
	}
	if err := t.create(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateTimeEntry replaces the editable fields of an entry
func UpdateTimeEntry(ctx context.Context, t *Tenant, id string, in TimeEntryInput) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := t.first(ctx, &entry, id); err != nil {
		return nil, err
	}
	if err := in.apply(ctx, t, &entry); err != nil {
		return nil, err
	}
	if err := t.update(ctx, &entry, models.AuditActionUpdate); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteTimeEntry removes an entry
func DeleteTimeEntry(ctx context.Context, t *Tenant, id string) error {
	var entry models.TimeEntry
	if err := t.first(ctx, &entry, id); err != nil {
		return err
	}
	return t.remove(ctx, &entry)
}

// GetTimeEntry returns a single entry
func GetTimeEntry(ctx context.Context, t *Tenant, id string) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	if err := t.first(ctx, &entry, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListTimeEntriesByCase returns a case's entries, most recent work first
func ListTimeEntriesByCase(ctx context.Context, t *Tenant, caseID string) ([]models.TimeEntry, error) {
	ok, err := t.exists(ctx, &models.Case{}, caseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return ListTimeEntries(ctx, t, TimeEntryFilters{CaseID: caseID})
}

// ListTimeEntries returns the firm's entries matching filters, most recent first
func ListTimeEntries(ctx context.Context, t *Tenant, filters TimeEntryFilters) ([]models.TimeEntry, error) {
	return findScoped[models.TimeEntry](ctx, t, func(q *gorm.DB) *gorm.DB {
		if filters.CaseID != "" {
			q = q.Where("case_id = ?", filters.CaseID)
		}
		if filters.BillableStatus != "" {
			q = q.Where("billable_status = ?", filters.BillableStatus)
		}
		if filters.From != nil {
			q = q.Where("date >= ?", filters.From.UTC())
		}
		if filters.To != nil {
			q = q.Where("date <= ?", filters.To.UTC())
		}
		return q.Order("date DESC").Order("created_at DESC")
	})
}
