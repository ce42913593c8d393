package services

import (
	"context"
	"time"

	"github.com/NightSight1044/legalCRM1/models"
	"gorm.io/gorm"
)

// AuditLogFilters contains filter options for audit log queries
type AuditLogFilters struct {
	ProfileID    string
	ResourceType string
	Action       string
	DateFrom     time.Time
	DateTo       time.Time
	Page         int
	PageSize     int
}

// ListAuditLogs returns a page of the firm's audit trail, newest first
func ListAuditLogs(ctx context.Context, t *Tenant, filters AuditLogFilters) ([]models.AuditLog, int64, error) {
	where := func(q *gorm.DB) *gorm.DB {
		if filters.ProfileID != "" {
			q = q.Where("profile_id = ?", filters.ProfileID)
		}
		if filters.ResourceType != "" {
			q = q.Where("resource_type = ?", filters.ResourceType)
		}
		if filters.Action != "" {
			q = q.Where("action = ?", filters.Action)
		}
		if !filters.DateFrom.IsZero() {
			q = q.Where("created_at >= ?", filters.DateFrom.UTC())
		}
		if !filters.DateTo.IsZero() {
			q = q.Where("created_at <= ?", filters.DateTo.UTC())
		}
		return q
	}

	total, err := t.count(ctx, &models.AuditLog{}, where)
	if err != nil {
		return nil, 0, err
	}

	page, size := normalizePage(filters.Page, filters.PageSize)
	logs, err := findScoped[models.AuditLog](ctx, t, func(q *gorm.DB) *gorm.DB {
		return where(q).
			Order("created_at DESC").
			Offset((page - 1) * size).
			Limit(size)
	})
	if err != nil {
		return nil, 0, err
	}
	return logs, total, nil
}

// ResourceHistory returns every audit row of one record, oldest first
func ResourceHistory(ctx context.Context, t *Tenant, resourceType, resourceID string) ([]models.AuditLog, error) {
	return findScoped[models.AuditLog](ctx, t, func(q *gorm.DB) *gorm.DB {
		return q.Where("resource_type = ? AND resource_id = ?", resourceType, resourceID).
			Order("created_at ASC")
	})
}
