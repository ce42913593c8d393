package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/NightSight1044/legalCRM1/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func openWorkbook(t *testing.T, buf *bytes.Buffer) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestExportTimeEntries(t *testing.T) {
	database := setupTestDB(t)
	tn := createFirm(t, database, "Firm A")
	client := createTestClient(t, tn, "Ana")
	c := createHourlyCase(t, tn, client.ID, 300)

	_, err := CreateTimeEntry(ctx, tn, TimeEntryInput{CaseID: c.ID, Date: time.Date(2030, 1, 2, 0, 0, 0, 0, time.UTC), Hours: dec("3.5"), Description: "Research"})
	require.NoError(t, err)

	buf, err := ExportTimeEntries(ctx, tn, TimeEntryFilters{})
	require.NoError(t, err)

	rows, err := openWorkbook(t, buf).GetRows(sheetTimeEntries)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Date", rows[0][0])
	assert.Equal(t, "2030-01-02", rows[1][0])
	assert.Equal(t, "Research", rows[1][3])
	assert.Equal(t, "1050", rows[1][6])
}

func TestExportInvoices(t *testing.T) {
	database := setupTestDB(t)
	tn := createFirm(t, database, "Firm A")
	client := createTestClient(t, tn, "Ana")

	_, err := CreateInvoice(ctx, tn, InvoiceInput{
		ClientID:  client.ID,
		IssueDate: date(2030, 2, 1),
		LineItems: []LineItemInput{{Description: "Advice", Hours: dec("1"), Rate: dec("100")}},
	})
	require.NoError(t, err)

	buf, err := ExportInvoices(ctx, tn, InvoiceFilters{})
	require.NoError(t, err)

	rows, err := openWorkbook(t, buf).GetRows(sheetInvoices)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "FAC-2030-001", rows[1][0])
	assert.Equal(t, "Ana", rows[1][1])
	assert.Equal(t, models.InvoiceStatusDraft, rows[1][4])
	assert.Equal(t, "116", rows[1][7])
}

func TestImportClients(t *testing.T) {
	database := setupTestDB(t)
	tn := createFirm(t, database, "Firm A")

	t.Run("template imports its example row", func(t *testing.T) {
		buf, err := GenerateClientImportTemplate()
		require.NoError(t, err)

		result, err := ImportClients(ctx, tn, buf)
		require.NoError(t, err)
		assert.Equal(t, 1, result.Created)
		assert.Zero(t, result.Failed)
	})

	t.Run("bad rows are reported and skipped", func(t *testing.T) {
		f := excelize.NewFile()
		defer f.Close()
		require.NoError(t, writeHeader(f, "Sheet1", clientSheetHeaders))
		require.NoError(t, writeRow(f, "Sheet1", 2, "individual", "Carlos Ruiz", "", "carlos@example.com"))
		require.NoError(t, writeRow(f, "Sheet1", 3, "company", "", "", "no-company@example.com"))
		require.NoError(t, writeRow(f, "Sheet1", 5, "", "Defaults To Individual"))
		require.NoError(t, writeRow(f, "Sheet1", 6, "individual", "Bad Email", "", "not-an-email"))
		buf, err := f.WriteToBuffer()
		require.NoError(t, err)

		result, err := ImportClients(ctx, tn, buf)
		require.NoError(t, err)
		assert.Equal(t, 2, result.Created)
		assert.Equal(t, 2, result.Failed)
		require.Len(t, result.Errors, 2)
		assert.Contains(t, result.Errors[0], "row 3")
		assert.Contains(t, result.Errors[1], "row 6")

		clients, err := ListClients(ctx, tn, ClientFilters{Type: models.ClientTypeIndividual})
		require.NoError(t, err)
		assert.Len(t, clients, 2)
	})

	t.Run("not a workbook", func(t *testing.T) {
		_, err := ImportClients(ctx, tn, bytes.NewBufferString("name,email"))
		assertValidationField(t, err, "file")
	})
}
