package services

import (
	"context"
	"time"

	"github.com/NightSight1044/legalCRM1/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MonthRevenue is the invoiced total of one calendar month, keyed YYYY-MM
type MonthRevenue struct {
	Month    string          `json:"month"`
	Invoiced decimal.Decimal `json:"invoiced"`
	Invoices int             `json:"invoices"`
}

// BillingSummary holds the money figures of the billing and reports pages
// for the days From..To inclusive
type BillingSummary struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	TotalHours     decimal.Decimal `json:"total_hours"`
	BillableHours  decimal.Decimal `json:"billable_hours"`
	BillableAmount decimal.Decimal `json:"billable_amount"`
	AverageRate    decimal.Decimal `json:"average_rate"`

	InvoicedRevenue decimal.Decimal `json:"invoiced_revenue"`
	PaidRevenue     decimal.Decimal `json:"paid_revenue"`

	// Outstanding figures cover every unpaid sent invoice, not only the period
	PendingInvoices int64           `json:"pending_invoices"`
	PendingAmount   decimal.Decimal `json:"pending_amount"`
	OverdueInvoices int64           `json:"overdue_invoices"`

	RevenueByMonth []MonthRevenue `json:"revenue_by_month"`
}

// GetBillingSummary totals logged work and issued invoices between from and
// to. Drafts are never counted as revenue.
func GetBillingSummary(ctx context.Context, t *Tenant, from, to, now time.Time) (*BillingSummary, error) {
	from, to = truncateToDay(from), truncateToDay(to)
	if to.Before(from) {
		return nil, ErrInvalidTimeRange
	}

	summary := &BillingSummary{
		From:            from,
		To:              to,
		TotalHours:      decimal.Zero,
		BillableHours:   decimal.Zero,
		BillableAmount:  decimal.Zero,
		AverageRate:     decimal.Zero,
		InvoicedRevenue: decimal.Zero,
		PaidRevenue:     decimal.Zero,
		PendingAmount:   decimal.Zero,
	}

	entries, err := ListTimeEntries(ctx, t, TimeEntryFilters{From: &from, To: &to})
	if err != nil {
		return nil, err
	}
	for i := range entries {
		summary.TotalHours = summary.TotalHours.Add(entries[i].Hours)
		if entries[i].IsBillable() {
			summary.BillableHours = summary.BillableHours.Add(entries[i].Hours)
			summary.BillableAmount = summary.BillableAmount.Add(entries[i].Amount())
		}
	}
	if summary.BillableHours.IsPositive() {
		summary.AverageRate = summary.BillableAmount.Div(summary.BillableHours).Round(2)
	}

	issued, err := findScoped[models.Invoice](ctx, t, func(q *gorm.DB) *gorm.DB {
		return q.Preload("LineItems").
			Where("status <> ?", models.InvoiceStatusDraft).
			Where("issue_date >= ? AND issue_date <= ?", from, to).
			Order("issue_date ASC")
	})
	if err != nil {
		return nil, err
	}

	months := monthsBetween(from, to)
	index := make(map[string]int, len(months))
	for i := range months {
		index[months[i].Month] = i
	}
	for i := range issued {
		total := issued[i].Totals().Total
		summary.InvoicedRevenue = summary.InvoicedRevenue.Add(total)
		if issued[i].Status == models.InvoiceStatusPaid {
			summary.PaidRevenue = summary.PaidRevenue.Add(total)
		}
		if m, ok := index[issued[i].IssueDate.Format("2006-01")]; ok {
			months[m].Invoiced = months[m].Invoiced.Add(total)
			months[m].Invoices++
		}
	}
	summary.RevenueByMonth = months

	pending, err := findScoped[models.Invoice](ctx, t, func(q *gorm.DB) *gorm.DB {
		return q.Preload("LineItems").
			Where("status IN ?", []string{models.InvoiceStatusSent, models.InvoiceStatusOverdue})
	})
	if err != nil {
		return nil, err
	}
	for i := range pending {
		summary.PendingInvoices++
		summary.PendingAmount = summary.PendingAmount.Add(pending[i].Totals().Total)
		if pending[i].EffectiveStatus(now) == models.InvoiceStatusOverdue {
			summary.OverdueInvoices++
		}
	}
	return summary, nil
}

func monthsBetween(from, to time.Time) []MonthRevenue {
	var months []MonthRevenue
	cur := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(to) {
		months = append(months, MonthRevenue{Month: cur.Format("2006-01"), Invoiced: decimal.Zero})
		cur = cur.AddDate(0, 1, 0)
	}
	return months
}
