package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/NightSight1044/legalCRM1/billing"
	"github.com/NightSight1044/legalCRM1/metrics"
	"github.com/NightSight1044/legalCRM1/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// CaseInput is the editable part of a case. Only the rate field matching
// BillingType is read; the other two are ignored.
type CaseInput struct {
	ClientID              string           `json:"client_id" validate:"required"`
	AssignedLawyerID      *string          `json:"assigned_lawyer_id"`
	CaseNumber            string           `json:"case_number" validate:"max=50"`
	Title                 string           `json:"title" validate:"required,max=255"`
	Description           string           `json:"description"`
	Status                string           `json:"status" validate:"omitempty,oneof=pending active closed archived"`
	Priority              string           `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
	PracticeArea          string           `json:"practice_area" validate:"max=100"`
	BillingType           string           `json:"billing_type" validate:"omitempty,oneof=hourly fixed contingency"`
	HourlyRate            *decimal.Decimal `json:"hourly_rate"`
	FixedFee              *decimal.Decimal `json:"fixed_fee"`
	ContingencyPercentage *decimal.Decimal `json:"contingency_percentage"`
	StartDate             *time.Time       `json:"start_date"`
	ExpectedEndDate       *time.Time       `json:"expected_end_date"`
}

// CaseFilters narrows ListCases
type CaseFilters struct {
	Status           string
	Priority         string
	ClientID         string
	AssignedLawyerID string
	Keyword          string
	Page             int
	PageSize         int
}

// CaseStatistics is a case with the aggregates shown on its detail page
type CaseStatistics struct {
	Case           models.Case          `json:"case"`
	DocumentCount  int64                `json:"document_count"`
	TimeEntryCount int64                `json:"time_entry_count"`
	TotalHours     decimal.Decimal      `json:"total_hours"`
	Revenue        billing.RevenueBasis `json:"revenue"`
}

// Terms builds the billing variant selected by BillingType
func (in CaseInput) Terms() (billing.Terms, error) {
	mode := billing.Mode(in.BillingType)
	if mode == "" {
		mode = billing.ModeHourly
	}

	var terms billing.Terms
	switch mode {
	case billing.ModeHourly:
		if in.HourlyRate == nil {
			return nil, NewValidationError("hourly_rate", "is required for hourly billing")
		}
		terms = billing.Hourly{Rate: *in.HourlyRate}
	case billing.ModeFixed:
		if in.FixedFee == nil {
			return nil, NewValidationError("fixed_fee", "is required for fixed billing")
		}
		terms = billing.Fixed{Fee: *in.FixedFee}
	case billing.ModeContingency:
		if in.ContingencyPercentage == nil {
			return nil, NewValidationError("contingency_percentage", "is required for contingency billing")
		}
		terms = billing.Contingency{Percentage: *in.ContingencyPercentage}
	default:
		return nil, NewValidationError("billing_type", "must be one of: hourly fixed contingency")
	}

	if err := billing.ValidateTerms(terms); err != nil {
		return nil, termsValidationError(err)
	}
	return terms, nil
}

// apply validates the input and copies it onto c. References are checked
// by the caller.
func (in CaseInput) apply(c *models.Case) error {
	in.Title = strings.TrimSpace(in.Title)
	in.ClientID = strings.TrimSpace(in.ClientID)
	in.CaseNumber = strings.TrimSpace(in.CaseNumber)
	in.AssignedLawyerID = trimmedPtr(in.AssignedLawyerID)

	if err := validateInput(in); err != nil {
		return err
	}
	if in.StartDate != nil && in.ExpectedEndDate != nil && in.ExpectedEndDate.Before(*in.StartDate) {
		return NewValidationError("expected_end_date", "must not be before start_date")
	}

	terms, err := in.Terms()
	if err != nil {
		return err
	}

	c.ClientID = in.ClientID
	c.AssignedLawyerID = in.AssignedLawyerID
	if in.CaseNumber != "" {
		c.CaseNumber = in.CaseNumber
	}
	c.Title = in.Title
	c.Description = sanitizeText(in.Description)
	c.PracticeArea = strings.TrimSpace(in.PracticeArea)
	c.StartDate = in.StartDate
	c.ExpectedEndDate = in.ExpectedEndDate
	c.SetTerms(terms)

	if in.Status != "" {
		c.Status = in.Status
	} else if c.Status == "" {
		c.Status = models.CaseStatusPending
	}
	if in.Priority != "" {
		c.Priority = in.Priority
	} else if c.Priority == "" {
		c.Priority = models.CasePriorityMedium
	}
	return nil
}

func checkCaseRefs(ctx context.Context, t *Tenant, c *models.Case) error {
	if err := t.requireRef(ctx, &models.Client{}, &c.ClientID, "client_id"); err != nil {
		return err
	}
	return t.requireProfile(ctx, c.AssignedLawyerID, "assigned_lawyer_id")
}

// CreateCase opens a case. Without a case number one is generated from the
// firm's yearly sequence.
func CreateCase(ctx context.Context, t *Tenant, in CaseInput) (*models.Case, error) {
	c := &models.Case{CreatedByID: ptrIfNotEmpty(t.ProfileID)}
	if err := in.apply(c); err != nil {
		return nil, err
	}
	if err := checkCaseRefs(ctx, t, c); err != nil {
		return nil, err
	}

	if c.CaseNumber == "" {
		number, err := GenerateCaseNumber(ctx, t, time.Now().Year())
		if err != nil {
			return nil, err
		}
		c.CaseNumber = number
	} else if err := flagDuplicateCaseNumber(ctx, t, c); err != nil {
		return nil, err
	}

	if err := t.create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCase replaces the editable fields of a case. Any status transition
// is allowed. An empty case number keeps the current one.
func UpdateCase(ctx context.Context, t *Tenant, id string, in CaseInput) (*models.Case, error) {
	var c models.Case
	if err := t.first(ctx, &c, id); err != nil {
		return nil, err
	}
	previousNumber := c.CaseNumber

	if err := in.apply(&c); err != nil {
		return nil, err
	}
	if err := checkCaseRefs(ctx, t, &c); err != nil {
		return nil, err
	}
	if c.CaseNumber != previousNumber {
		if err := flagDuplicateCaseNumber(ctx, t, &c); err != nil {
			return nil, err
		}
	}

	if err := t.update(ctx, &c, models.AuditActionUpdate); err != nil {
		return nil, err
	}
	return &c, nil
}

// flagDuplicateCaseNumber attaches a warning when another case of the firm
// already uses c's number. The save still goes through.
func flagDuplicateCaseNumber(ctx context.Context, t *Tenant, c *models.Case) error {
	n, err := t.count(ctx, &models.Case{}, func(q *gorm.DB) *gorm.DB {
		q = q.Where("case_number = ?", c.CaseNumber)
		if c.ID != "" {
			q = q.Where("id <> ?", c.ID)
		}
		return q
	})
	if err != nil {
		return err
	}
	if n > 0 {
		metrics.DuplicateCaseNumbers.Inc()
		t.log.Warn("duplicate case number", zap.String("case_number", c.CaseNumber), zap.Int64("existing", n))
		c.Warnings = append(c.Warnings, fmt.Sprintf("case number %s is already used by another case in this firm", c.CaseNumber))
	}
	return nil
}

// GetCase returns a case with its client and assigned lawyer
func GetCase(ctx context.Context, t *Tenant, id string) (*models.Case, error) {
	var c models.Case
	if err := t.first(ctx, &c, id, "Client", "AssignedLawyer"); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCaseWithStatistics returns a case with document and time entry counts,
// the sum of all logged hours and the revenue basis under its terms
func GetCaseWithStatistics(ctx context.Context, t *Tenant, id string) (*CaseStatistics, error) {
	c, err := GetCase(ctx, t, id)
	if err != nil {
		return nil, err
	}

	docs, err := t.count(ctx, &models.Document{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("case_id = ?", c.ID)
	})
	if err != nil {
		return nil, err
	}

	entries, err := findScoped[models.TimeEntry](ctx, t, func(q *gorm.DB) *gorm.DB {
		return q.Where("case_id = ?", c.ID)
	})
	if err != nil {
		return nil, err
	}

	totalHours := decimal.Zero
	units := make([]billing.WorkUnit, 0, len(entries))
	for i := range entries {
		totalHours = totalHours.Add(entries[i].Hours)
		units = append(units, entries[i].WorkUnit())
	}

	return &CaseStatistics{
		Case:           *c,
		DocumentCount:  docs,
		TimeEntryCount: int64(len(entries)),
		TotalHours:     totalHours,
		Revenue:        billing.Revenue(c.Terms(), units),
	}, nil
}

// ListCases returns a page of the firm's cases, newest first, and the
// total number of matches
func ListCases(ctx context.Context, t *Tenant, filters CaseFilters) ([]models.Case, int64, error) {
	where := func(q *gorm.DB) *gorm.DB {
		if filters.Status != "" {
			q = q.Where("status = ?", filters.Status)
		}
		if filters.Priority != "" {
			q = q.Where("priority = ?", filters.Priority)
		}
		if filters.ClientID != "" {
			q = q.Where("client_id = ?", filters.ClientID)
		}
		if filters.AssignedLawyerID != "" {
			q = q.Where("assigned_lawyer_id = ?", filters.AssignedLawyerID)
		}
		if kw := strings.TrimSpace(filters.Keyword); kw != "" {
			pattern := "%" + escapeLike(kw) + "%"
			q = q.Where("case_number LIKE ? ESCAPE '\\' OR title LIKE ? ESCAPE '\\' OR description LIKE ? ESCAPE '\\'", pattern, pattern, pattern)
		}
		return q
	}

	total, err := t.count(ctx, &models.Case{}, where)
	if err != nil {
		return nil, 0, err
	}

	page, size := normalizePage(filters.Page, filters.PageSize)
	cases, err := findScoped[models.Case](ctx, t, func(q *gorm.DB) *gorm.DB {
		return where(q).Preload("Client").
			Order("created_at DESC").
			Offset((page - 1) * size).
			Limit(size)
	})
	if err != nil {
		return nil, 0, err
	}
	return cases, total, nil
}

// DuplicateCaseNumbers lists case numbers used by more than one case
func DuplicateCaseNumbers(ctx context.Context, t *Tenant) ([]string, error) {
	var numbers []string
	err := t.query(ctx, &models.Case{}).
		Group("case_number").
		Having("COUNT(*) > 1").
		Order("case_number").
		Pluck("case_number", &numbers).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find duplicate case numbers: %w", err)
	}
	return numbers, nil
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 || size > maxPageSize {
		size = defaultPageSize
	}
	return page, size
}
