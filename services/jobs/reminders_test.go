package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NightSight1044/legalCRM1/config"
	appdb "github.com/NightSight1044/legalCRM1/db"
	"github.com/NightSight1044/legalCRM1/models"
	"github.com/NightSight1044/legalCRM1/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupRemindersTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(appdb.Models()...))
	return db
}

type outbox struct {
	sent []*services.Email
	fail bool
}

func (o *outbox) send(_ *config.Config, email *services.Email) error {
	if o.fail {
		return errors.New("smtp down")
	}
	o.sent = append(o.sent, email)
	return nil
}

func TestSendEventReminders(t *testing.T) {
	db := setupRemindersTestDB(t)
	ctx := context.Background()
	cfg := &config.Config{AppURL: "http://test.example", EmailTestMode: true}
	now := time.Date(2030, 1, 10, 12, 0, 0, 0, time.UTC)

	firm := &models.Firm{Name: "Test Firm", Timezone: "UTC"}
	require.NoError(t, db.Create(firm).Error)
	lawyer := &models.Profile{FullName: "Jane Lawyer", Email: "jane@firm.example", PasswordHash: "x", FirmID: &firm.ID, Role: models.RoleLawyer}
	require.NoError(t, db.Create(lawyer).Error)
	tn := services.NewTenant(db, firm.ID, lawyer.ID, lawyer.Role)

	event := func(title string, startIn time.Duration, assignee *string) *models.CalendarEvent {
		start := now.Add(startIn)
		end := start.Add(time.Hour)
		e, err := services.CreateEvent(ctx, tn, services.EventInput{Title: title, StartTime: &start, EndTime: &end, AssignedToID: assignee})
		require.NoError(t, err)
		return e
	}

	assigned := event("Hearing", 20*time.Minute, &lawyer.ID)
	unassigned := event("Filing", 10*time.Minute, nil)
	event("Later", 3*time.Hour, &lawyer.ID)

	t.Run("failed sends stay due", func(t *testing.T) {
		box := &outbox{fail: true}
		sent, err := SendEventReminders(ctx, db, cfg, now, box.send)
		require.NoError(t, err)
		assert.Zero(t, sent)

		due, err := services.DueReminders(ctx, tn, now)
		require.NoError(t, err)
		assert.Len(t, due, 1)
		assert.Equal(t, assigned.ID, due[0].ID)
	})

	t.Run("sends to the assignee once", func(t *testing.T) {
		box := &outbox{}
		sent, err := SendEventReminders(ctx, db, cfg, now, box.send)
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		require.Len(t, box.sent, 1)
		assert.Equal(t, []string{"jane@firm.example"}, box.sent[0].To)
		assert.Equal(t, "Reminder: Hearing", box.sent[0].Subject)

		sent, err = SendEventReminders(ctx, db, cfg, now, box.send)
		require.NoError(t, err)
		assert.Zero(t, sent)
		assert.Len(t, box.sent, 1)
	})

	t.Run("unassigned events without a firm address are closed", func(t *testing.T) {
		stored, err := services.GetEvent(ctx, tn, unassigned.ID)
		require.NoError(t, err)
		assert.NotNil(t, stored.ReminderSentAt)
	})

	t.Run("firm billing address is the fallback", func(t *testing.T) {
		require.NoError(t, db.Model(firm).Update("billing_email", "office@firm.example").Error)
		event("Call", 5*time.Minute, nil)

		box := &outbox{}
		sent, err := SendEventReminders(ctx, db, cfg, now, box.send)
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
		require.Len(t, box.sent, 1)
		assert.Equal(t, []string{"office@firm.example"}, box.sent[0].To)
	})

	t.Run("default sender logs in test mode", func(t *testing.T) {
		event("Meeting", 15*time.Minute, &lawyer.ID)
		sent, err := SendEventReminders(ctx, db, cfg, now, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, sent)
	})
}

func TestStartScheduler(t *testing.T) {
	db := setupRemindersTestDB(t)

	c, err := StartScheduler(db, &config.Config{RemindersEnabled: true, ReminderCron: "*/5 * * * *"})
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 2)

	_, err = StartScheduler(db, &config.Config{RemindersEnabled: true, ReminderCron: "not a cron"})
	assert.Error(t, err)
}
