package services

import (
	"testing"
	"time"

	"github.com/NightSight1044/legalCRM1/billing"
	"github.com/NightSight1044/legalCRM1/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestCreateInvoice(t *testing.T) {
	database := setupTestDB(t)
	tn := createFirm(t, database, "Firm A")
	client := createTestClient(t, tn, "Ana")

	lines := []LineItemInput{
		{Description: "Research", Hours: dec("3.5"), Rate: dec("300")},
		{Description: "Hearing", Hours: dec("2"), Rate: dec("350")},
	}

	t.Run("totals, number and due date", func(t *testing.T) {
		inv, err := CreateInvoice(ctx, tn, InvoiceInput{ClientID: client.ID, IssueDate: date(2030, 2, 1), LineItems: lines})
		require.NoError(t, err)

		assert.Equal(t, "FAC-2030-001", inv.Number)
		assert.Equal(t, models.InvoiceStatusDraft, inv.Status)
		assert.True(t, inv.DueDate.Equal(*date(2030, 2, 16)))

		stored, err := GetInvoice(ctx, tn, inv.ID)
		require.NoError(t, err)
		require.Len(t, stored.LineItems, 2)
		assert.Equal(t, "Research", stored.LineItems[0].Description)
		assert.Equal(t, 1, stored.LineItems[0].Position)

		totals := stored.Totals()
		assertDecimal(t, "1750", totals.Subtotal)
		assertDecimal(t, "280", totals.Tax)
		assertDecimal(t, "2030", totals.Total)
	})

	t.Run("numbers keep counting within the year", func(t *testing.T) {
		inv, err := CreateInvoice(ctx, tn, InvoiceInput{ClientID: client.ID, IssueDate: date(2030, 3, 1)})
		require.NoError(t, err)
		assert.Equal(t, "FAC-2030-002", inv.Number)
		assertDecimal(t, "0", inv.Totals().Total)
	})

	t.Run("explicit due date", func(t *testing.T) {
		inv, err := CreateInvoice(ctx, tn, InvoiceInput{ClientID: client.ID, IssueDate: date(2030, 2, 1), DueDate: date(2030, 3, 3)})
		require.NoError(t, err)
		assert.True(t, inv.DueDate.Equal(*date(2030, 3, 3)))

		_, err = CreateInvoice(ctx, tn, InvoiceInput{ClientID: client.ID, IssueDate: date(2030, 2, 1), DueDate: date(2030, 1, 1)})
		assertValidationField(t, err, "due_date")
	})

	t.Run("case must belong to the client", func(t *testing.T) {
		other := createTestClient(t, tn, "Bruno")
		c := createHourlyCase(t, tn, other.ID, 100)
		_, err := CreateInvoice(ctx, tn, InvoiceInput{ClientID: client.ID, CaseID: &c.ID})
		assertValidationField(t, err, "case_id")
	})

	t.Run("line items are validated", func(t *testing.T) {
		_, err := CreateInvoice(ctx, tn, InvoiceInput{ClientID: client.ID, LineItems: []LineItemInput{{Description: "", Hours: dec("1"), Rate: dec("1")}}})
		assertValidationField(t, err, "description")

		_, err = CreateInvoice(ctx, tn, InvoiceInput{ClientID: client.ID, LineItems: []LineItemInput{{Description: "x", Hours: dec("-1"), Rate: dec("1")}}})
		assertValidationField(t, err, "hours")
	})

	t.Run("client of another firm is rejected", func(t *testing.T) {
		other := createFirm(t, database, "Firm B")
		_, err := CreateInvoice(ctx, other, InvoiceInput{ClientID: client.ID})
		assertValidationField(t, err, "client_id")
	})
}

func TestUpdateInvoice(t *testing.T) {
	database := setupTestDB(t)
	tn := createFirm(t, database, "Firm A")
	client := createTestClient(t, tn, "Ana")

	inv, err := CreateInvoice(ctx, tn, InvoiceInput{
		ClientID:  client.ID,
		IssueDate: date(2030, 2, 1),
		LineItems: []LineItemInput{{Description: "Old", Hours: dec("1"), Rate: dec("100")}},
	})
	require.NoError(t, err)

	updated, err := UpdateInvoice(ctx, tn, inv.ID, InvoiceInput{
		ClientID:  client.ID,
		IssueDate: date(2030, 2, 1),
		LineItems: []LineItemInput{
			{Description: "New A", Hours: dec("1"), Rate: dec("10")},
			{Description: "New B", Hours: dec("2"), Rate: dec("10")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, inv.Number, updated.Number)

	stored, err := GetInvoice(ctx, tn, inv.ID)
	require.NoError(t, err)
	require.Len(t, stored.LineItems, 2)
	assert.Equal(t, "New A", stored.LineItems[0].Description)
	assertDecimal(t, "30", stored.Totals().Subtotal)
	assertDecimal(t, "4.8", stored.Totals().Tax)
	assertDecimal(t, "34.8", stored.Totals().Total)
}

func TestInvoiceStatus(t *testing.T) {
	database := setupTestDB(t)
	tn := createFirm(t, database, "Firm A")
	client := createTestClient(t, tn, "Ana")

	inv, err := CreateInvoice(ctx, tn, InvoiceInput{ClientID: client.ID, IssueDate: date(2020, 1, 1)})
	require.NoError(t, err)

	t.Run("rejects unknown status", func(t *testing.T) {
		_, err := SetInvoiceStatus(ctx, tn, inv.ID, "lost")
		assertValidationField(t, err, "status")
	})

	t.Run("sent past due reads as overdue", func(t *testing.T) {
		sent, err := SetInvoiceStatus(ctx, tn, inv.ID, models.InvoiceStatusSent)
		require.NoError(t, err)
		assert.Equal(t, models.InvoiceStatusOverdue, sent.EffectiveStatus(time.Now()))

		overdue, err := ListInvoices(ctx, tn, InvoiceFilters{Status: models.InvoiceStatusOverdue})
		require.NoError(t, err)
		require.Len(t, overdue, 1)
		assert.Equal(t, inv.ID, overdue[0].ID)
	})

	t.Run("only drafts can be deleted", func(t *testing.T) {
		err := DeleteInvoice(ctx, tn, inv.ID)
		assertValidationField(t, err, "status")

		_, err = SetInvoiceStatus(ctx, tn, inv.ID, models.InvoiceStatusDraft)
		require.NoError(t, err)
		require.NoError(t, DeleteInvoice(ctx, tn, inv.ID))
		_, err = GetInvoice(ctx, tn, inv.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestOverdueBoundary(t *testing.T) {
	database := setupTestDB(t)
	tn := createFirm(t, database, "Firm A")
	client := createTestClient(t, tn, "Ana")

	now := time.Now()
	yesterday := now.AddDate(0, 0, -1)
	issued := now.AddDate(0, 0, -30)

	dueYesterday, err := CreateInvoice(ctx, tn, InvoiceInput{ClientID: client.ID, IssueDate: &issued, DueDate: &yesterday})
	require.NoError(t, err)
	dueToday, err := CreateInvoice(ctx, tn, InvoiceInput{ClientID: client.ID, IssueDate: &issued, DueDate: &now})
	require.NoError(t, err)

	for _, id := range []string{dueYesterday.ID, dueToday.ID} {
		_, err := SetInvoiceStatus(ctx, tn, id, models.InvoiceStatusSent)
		require.NoError(t, err)
	}

	stored, err := GetInvoice(ctx, tn, dueYesterday.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusOverdue, stored.EffectiveStatus(time.Now()))

	stored, err = GetInvoice(ctx, tn, dueToday.ID)
	require.NoError(t, err)
	assert.Equal(t, models.InvoiceStatusSent, stored.EffectiveStatus(time.Now()))

	overdue, err := ListInvoices(ctx, tn, InvoiceFilters{Status: models.InvoiceStatusOverdue})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, dueYesterday.ID, overdue[0].ID)
}

func TestDraftInvoiceFromCase(t *testing.T) {
	database := setupTestDB(t)
	tn := createFirm(t, database, "Firm A")
	client := createTestClient(t, tn, "Ana")

	t.Run("hourly case bills billable entries oldest first", func(t *testing.T) {
		c := createHourlyCase(t, tn, client.ID, 300)
		for _, e := range []TimeEntryInput{
			{CaseID: c.ID, Date: *date(2030, 1, 5), Hours: dec("2"), Rate: decPtr("350"), Description: "Hearing"},
			{CaseID: c.ID, Date: *date(2030, 1, 2), Hours: dec("3.5"), Description: "Research"},
			{CaseID: c.ID, Date: *date(2030, 1, 3), Hours: dec("4"), Description: "Pro bono", BillableStatus: models.BillableStatusProBono},
		} {
			_, err := CreateTimeEntry(ctx, tn, e)
			require.NoError(t, err)
		}

		inv, err := DraftInvoiceFromCase(ctx, tn, c.ID, DraftOptions{IssueDate: date(2030, 2, 1)})
		require.NoError(t, err)
		require.Len(t, inv.LineItems, 2)
		assert.Equal(t, "Research", inv.LineItems[0].Description)
		assert.Equal(t, "Hearing", inv.LineItems[1].Description)
		assert.Equal(t, c.ID, *inv.CaseID)
		assert.Contains(t, inv.Notes, c.CaseNumber)
		assertDecimal(t, "2030", inv.Totals().Total)
	})

	t.Run("fixed case bills the fee once", func(t *testing.T) {
		c, err := CreateCase(ctx, tn, CaseInput{ClientID: client.ID, Title: "Incorporation", BillingType: "fixed", FixedFee: decPtr("5000")})
		require.NoError(t, err)

		inv, err := DraftInvoiceFromCase(ctx, tn, c.ID, DraftOptions{})
		require.NoError(t, err)
		require.Len(t, inv.LineItems, 1)
		assert.Equal(t, billing.FixedFeeDescription, inv.LineItems[0].Description)
		assertDecimal(t, "5800", inv.Totals().Total)
	})

	t.Run("contingency case cannot be drafted", func(t *testing.T) {
		c, err := CreateCase(ctx, tn, CaseInput{ClientID: client.ID, Title: "Injury claim", BillingType: "contingency", ContingencyPercentage: decPtr("30")})
		require.NoError(t, err)

		_, err = DraftInvoiceFromCase(ctx, tn, c.ID, DraftOptions{})
		assertValidationField(t, err, "billing_type")
	})

	t.Run("hourly case without billable work", func(t *testing.T) {
		c := createHourlyCase(t, tn, client.ID, 300)
		_, err := DraftInvoiceFromCase(ctx, tn, c.ID, DraftOptions{})
		assertValidationField(t, err, "case_id")
	})

	t.Run("unknown case", func(t *testing.T) {
		_, err := DraftInvoiceFromCase(ctx, tn, "missing", DraftOptions{})
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
