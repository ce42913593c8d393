package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/NightSight1044/legalCRM1/config"
	"github.com/NightSight1044/legalCRM1/services"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionCleanupSpec = "0 3 * * *"

// StartScheduler registers the background jobs and starts the cron runner.
// The caller stops it on shutdown.
func StartScheduler(database *gorm.DB, cfg *config.Config) (*cron.Cron, error) {
	c := cron.New(cron.WithLocation(time.UTC), cron.WithChain(cron.Recover(cron.DefaultLogger)))

	if cfg.RemindersEnabled {
		_, err := c.AddFunc(cfg.ReminderCron, func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
			defer cancel()
			if _, err := SendEventReminders(ctx, database, cfg, time.Now().UTC(), nil); err != nil {
				zap.L().Error("reminder job failed", zap.Error(err))
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to schedule reminders %q: %w", cfg.ReminderCron, err)
		}
	}

	_, err := c.AddFunc(sessionCleanupSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := services.CleanupExpiredSessions(ctx, database); err != nil {
			zap.L().Error("session cleanup failed", zap.Error(err))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule session cleanup: %w", err)
	}

	c.Start()
	zap.L().Info("scheduler started",
		zap.Bool("reminders", cfg.RemindersEnabled),
		zap.String("reminder_cron", cfg.ReminderCron),
		zap.Int("jobs", len(c.Entries())),
	)
	return c, nil
}
