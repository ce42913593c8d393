package services

import (
	"context"
	"testing"

	appdb "github.com/NightSight1044/legalCRM1/db"
	"github.com/NightSight1044/legalCRM1/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ctx = context.Background()

// setupTestDB opens a private in-memory database with the full schema
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(appdb.Models()...))
	return database
}

// createFirm adds a firm with one admin and returns the admin's tenant
func createFirm(t *testing.T, database *gorm.DB, name string) *Tenant {
	t.Helper()
	firm := &models.Firm{Name: name, Timezone: "UTC"}
	require.NoError(t, database.Create(firm).Error)

	profile := &models.Profile{
		FullName:     name + " Admin",
		Email:        firm.Slug + "@example.com",
		PasswordHash: "x",
		FirmID:       &firm.ID,
		Role:         models.RoleAdmin,
		IsActive:     true,
	}
	require.NoError(t, database.Create(profile).Error)

	return NewTenant(database, firm.ID, profile.ID, profile.Role)
}

func createTestClient(t *testing.T, tn *Tenant, name string) *models.Client {
	t.Helper()
	client, err := CreateClient(ctx, tn, ClientInput{Type: models.ClientTypeIndividual, FullName: name})
	require.NoError(t, err)
	return client
}

func createHourlyCase(t *testing.T, tn *Tenant, clientID string, rate int64) *models.Case {
	t.Helper()
	r := decimal.NewFromInt(rate)
	c, err := CreateCase(ctx, tn, CaseInput{
		ClientID:    clientID,
		Title:       "Contract dispute",
		BillingType: "hourly",
		HourlyRate:  &r,
	})
	require.NoError(t, err)
	return c
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func strPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal) {
	t.Helper()
	assert.True(t, dec(expected).Equal(actual), "expected %s, got %s", expected, actual.String())
}

func assertValidationField(t *testing.T, err error, field string) {
	t.Helper()
	require.ErrorIs(t, err, ErrValidation)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, field, vErr.Field)
}
