package services

import (
	"testing"
	"time"

	"github.com/NightSight1044/legalCRM1/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateTimeEntry(t *testing.T) {
	database := setupTestDB(t)
	tn := createFirm(t, database, "Firm A")
	client := createTestClient(t, tn, "Ana")
	hourly := createHourlyCase(t, tn, client.ID, 300)

	t.Run("inherits the case rate", func(t *testing.T) {
		entry, err := CreateTimeEntry(ctx, tn, TimeEntryInput{CaseID: hourly.ID, Date: time.Now(), Hours: dec("3.5"), Description: "Drafting"})
		require.NoError(t, err)
		assertDecimal(t, "300", entry.Rate)
		assertDecimal(t, "1050", entry.Amount())
		assert.Equal(t, models.BillableStatusBillable, entry.BillableStatus)
		assert.Equal(t, models.ActivityOther, entry.ActivityType)
	})

	t.Run("explicit rate wins", func(t *testing.T) {
		entry, err := CreateTimeEntry(ctx, tn, TimeEntryInput{CaseID: hourly.ID, Date: time.Now(), Hours: dec("2"), Rate: decPtr("350")})
		require.NoError(t, err)
		assertDecimal(t, "700", entry.Amount())
	})

	t.Run("non hourly case falls back to the default rate", func(t *testing.T) {
		fixed, err := CreateCase(ctx, tn, CaseInput{ClientID: client.ID, Title: "Fixed", BillingType: "fixed", FixedFee: decPtr("1000")})
		require.NoError(t, err)

		entry, err := CreateTimeEntry(ctx, tn, TimeEntryInput{CaseID: fixed.ID, Date: time.Now(), Hours: dec("1")})
		require.NoError(t, err)
		assert.True(t, DefaultHourlyRate.Equal(entry.Rate))
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := CreateTimeEntry(ctx, tn, TimeEntryInput{CaseID: hourly.ID, Date: time.Now(), Hours: dec("-1")})
		assertValidationField(t, err, "hours")

		_, err = CreateTimeEntry(ctx, tn, TimeEntryInput{CaseID: hourly.ID, Date: time.Now(), Hours: dec("1"), Rate: decPtr("-5")})
		assertValidationField(t, err, "rate")

		_, err = CreateTimeEntry(ctx, tn, TimeEntryInput{CaseID: hourly.ID, Date: time.Now(), Hours: dec("1"), BillableStatus: "maybe"})
		assertValidationField(t, err, "billable_status")

		_, err = CreateTimeEntry(ctx, tn, TimeEntryInput{CaseID: "missing", Date: time.Now(), Hours: dec("1")})
		assertValidationField(t, err, "case_id")
	})
}

func TestUpdateAndListTimeEntries(t *testing.T) {
	database := setupTestDB(t)
	tn := createFirm(t, database, "Firm A")
	client := createTestClient(t, tn, "Ana")
	c := createHourlyCase(t, tn, client.ID, 300)

	day := func(d int) time.Time { return time.Date(2030, 3, d, 0, 0, 0, 0, time.UTC) }

	entry, err := CreateTimeEntry(ctx, tn, TimeEntryInput{CaseID: c.ID, Date: day(1), Hours: dec("1")})
	require.NoError(t, err)
	_, err = CreateTimeEntry(ctx, tn, TimeEntryInput{CaseID: c.ID, Date: day(5), Hours: dec("2"), BillableStatus: models.BillableStatusNonBillable})
	require.NoError(t, err)

	t.Run("amount follows edits", func(t *testing.T) {
		updated, err := UpdateTimeEntry(ctx, tn, entry.ID, TimeEntryInput{CaseID: c.ID, Date: day(1), Hours: dec("4"), Rate: decPtr("250")})
		require.NoError(t, err)
		assertDecimal(t, "1000", updated.Amount())

		stored, err := GetTimeEntry(ctx, tn, entry.ID)
		require.NoError(t, err)
		assertDecimal(t, "1000", stored.Amount())
	})

	t.Run("lists by case, newest work first", func(t *testing.T) {
		entries, err := ListTimeEntriesByCase(ctx, tn, c.ID)
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.True(t, entries[0].Date.After(entries[1].Date))
	})

	t.Run("filters by status and date", func(t *testing.T) {
		billable, err := ListTimeEntries(ctx, tn, TimeEntryFilters{BillableStatus: models.BillableStatusBillable})
		require.NoError(t, err)
		assert.Len(t, billable, 1)

		from := day(3)
		later, err := ListTimeEntries(ctx, tn, TimeEntryFilters{From: &from})
		require.NoError(t, err)
		assert.Len(t, later, 1)
	})

	t.Run("unknown case lists as not found", func(t *testing.T) {
		_, err := ListTimeEntriesByCase(ctx, tn, "missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, DeleteTimeEntry(ctx, tn, entry.ID))
		_, err := GetTimeEntry(ctx, tn, entry.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
