package services

import (
	"context"
	"fmt"
	"time"

	"github.com/NightSight1044/legalCRM1/models"
	"gorm.io/gorm"
)

// DashboardStats are the headline counters of a firm
type DashboardStats struct {
	Clients        int64 `json:"clients"`
	Cases          int64 `json:"cases"`
	ActiveCases    int64 `json:"active_cases"`
	UpcomingEvents int64 `json:"upcoming_events"`
	OpenInvoices   int64 `json:"open_invoices"`
}

// GetDashboardStats counts clients, cases and the events of the next seven days
func GetDashboardStats(ctx context.Context, t *Tenant, now time.Time) (*DashboardStats, error) {
	var stats DashboardStats
	var err error

	if stats.Clients, err = t.count(ctx, &models.Client{}, nil); err != nil {
		return nil, err
	}
	if stats.Cases, err = t.count(ctx, &models.Case{}, nil); err != nil {
		return nil, err
	}
	if stats.ActiveCases, err = t.count(ctx, &models.Case{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("status = ?", models.CaseStatusActive)
	}); err != nil {
		return nil, err
	}
	if stats.UpcomingEvents, err = t.count(ctx, &models.CalendarEvent{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("start_time >= ? AND start_time < ?", now.UTC(), now.AddDate(0, 0, 7).UTC())
	}); err != nil {
		return nil, err
	}
	if stats.OpenInvoices, err = t.count(ctx, &models.Invoice{}, func(q *gorm.DB) *gorm.DB {
		return q.Where("status IN ?", []string{models.InvoiceStatusSent, models.InvoiceStatusOverdue})
	}); err != nil {
		return nil, err
	}
	return &stats, nil
}

// CaseStatusCounts returns the number of cases per status. Every known
// status is present, zero when unused.
func CaseStatusCounts(ctx context.Context, t *Tenant) (map[string]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := t.query(ctx, &models.Case{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count cases by status: %w", err)
	}

	counts := map[string]int64{
		models.CaseStatusPending:  0,
		models.CaseStatusActive:   0,
		models.CaseStatusClosed:   0,
		models.CaseStatusArchived: 0,
	}
	for _, r := range rows {
		counts[r.Status] = r.Total
	}
	return counts, nil
}
