package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/NightSight1044/legalCRM1/config"
	"github.com/NightSight1044/legalCRM1/metrics"
	"github.com/NightSight1044/legalCRM1/models"
	"github.com/NightSight1044/legalCRM1/services"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Reminder outcomes reported to metrics
const (
	outcomeSent        = "sent"
	outcomeFailed      = "failed"
	outcomeNoRecipient = "no_recipient"
)

// systemRole marks audit rows written by background jobs
const systemRole = "system"

// SendFunc delivers one email. Tests swap it out.
type SendFunc func(cfg *config.Config, email *services.Email) error

// SendEventReminders emails the assignee of every event whose reminder is
// due at now, firm by firm. Failed sends are retried on the next run.
func SendEventReminders(ctx context.Context, database *gorm.DB, cfg *config.Config, now time.Time, send SendFunc) (int, error) {
	if send == nil {
		send = services.SendEmail
	}

	var firms []models.Firm
	if err := database.WithContext(ctx).Find(&firms).Error; err != nil {
		return 0, fmt.Errorf("failed to list firms: %w", err)
	}

	sent := 0
	for i := range firms {
		firm := &firms[i]
		t := services.NewTenant(database, firm.ID, "", systemRole)

		due, err := services.DueReminders(ctx, t, now)
		if err != nil {
			zap.L().Error("failed to load due reminders", zap.String("firm_id", firm.ID), zap.Error(err))
			continue
		}

		for j := range due {
			event := &due[j]
			log := zap.L().With(zap.String("firm_id", firm.ID), zap.String("event_id", event.ID))

			to, name := recipient(firm, event)
			if to == "" {
				// Nobody to tell; do not look at it again
				metrics.RemindersSent.WithLabelValues(outcomeNoRecipient).Inc()
				if err := services.MarkReminderSent(ctx, t, event.ID, now); err != nil {
					log.Error("failed to mark reminder", zap.Error(err))
				}
				continue
			}

			email, err := services.BuildEventReminderEmail(to, name, firm, event, cfg.AppURL)
			if err != nil {
				log.Error("failed to build reminder email", zap.Error(err))
				metrics.RemindersSent.WithLabelValues(outcomeFailed).Inc()
				continue
			}
			if err := send(cfg, email); err != nil {
				log.Warn("failed to send reminder", zap.Error(err))
				metrics.RemindersSent.WithLabelValues(outcomeFailed).Inc()
				continue
			}
			if err := services.MarkReminderSent(ctx, t, event.ID, now); err != nil {
				log.Error("failed to mark reminder", zap.Error(err))
				continue
			}

			metrics.RemindersSent.WithLabelValues(outcomeSent).Inc()
			sent++
		}
	}

	zap.L().Info("reminder run completed", zap.Int("sent", sent), zap.Int("firms", len(firms)))
	return sent, nil
}

// recipient prefers the assignee and falls back to the firm's billing address
func recipient(firm *models.Firm, event *models.CalendarEvent) (string, string) {
	if event.AssignedTo != nil && event.AssignedTo.Email != "" {
		return event.AssignedTo.Email, event.AssignedTo.FullName
	}
	return firm.BillingEmail, firm.Name
}
