package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/NightSight1044/legalCRM1/models"
	"github.com/xuri/excelize/v2"
)

const (
	sheetTimeEntries = "Time entries"
	sheetInvoices    = "Invoices"
	sheetClients     = "Clients"
	exportDateFormat = "2006-01-02"
)

var clientSheetHeaders = []string{"Type", "Full name", "Company name", "Email", "Phone", "Address", "Tax ID", "Notes"}

// ImportResult summarizes a bulk import. Row numbers in Errors are 1-based
// spreadsheet rows.
type ImportResult struct {
	Created int      `json:"created"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors"`
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	for i, header := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(headers), 1)
	style, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(f *excelize.File, sheet string, row int, values ...interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// ExportTimeEntries renders the entries matching filters as an xlsx workbook
func ExportTimeEntries(ctx context.Context, t *Tenant, filters TimeEntryFilters) (*bytes.Buffer, error) {
	entries, err := ListTimeEntries(ctx, t, filters)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetTimeEntries); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeHeader(f, sheetTimeEntries, []string{"Date", "Case", "Activity", "Description", "Hours", "Rate", "Amount", "Billable"}); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, e := range entries {
		hours, _ := e.Hours.Float64()
		rate, _ := e.Rate.Float64()
		amount, _ := e.Amount().Float64()
		if err := writeRow(f, sheetTimeEntries, i+2,
			e.Date.Format(exportDateFormat), e.CaseID, e.ActivityType, e.Description,
			hours, rate, amount, e.BillableStatus,
		); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}
	f.SetColWidth(sheetTimeEntries, "A", "H", 18)
	f.SetColWidth(sheetTimeEntries, "D", "D", 50)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

// ExportInvoices renders the invoices matching filters with their computed
// totals as an xlsx workbook
func ExportInvoices(ctx context.Context, t *Tenant, filters InvoiceFilters) (*bytes.Buffer, error) {
	invoices, err := ListInvoices(ctx, t, filters)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetInvoices); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeHeader(f, sheetInvoices, []string{"Number", "Client", "Issue date", "Due date", "Status", "Subtotal", "Tax", "Total"}); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	now := time.Now()
	for i, inv := range invoices {
		totals := inv.Totals()
		subtotal, _ := totals.Subtotal.Float64()
		tax, _ := totals.Tax.Float64()
		total, _ := totals.Total.Float64()
		client := ""
		if inv.Client != nil {
			client = inv.Client.DisplayName()
		}
		if err := writeRow(f, sheetInvoices, i+2,
			inv.Number, client, inv.IssueDate.Format(exportDateFormat), inv.DueDate.Format(exportDateFormat),
			inv.EffectiveStatus(now), subtotal, tax, total,
		); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}
	f.SetColWidth(sheetInvoices, "A", "H", 18)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

// GenerateClientImportTemplate returns an empty workbook with the client
// import columns and one example row
func GenerateClientImportTemplate() (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", sheetClients); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := writeHeader(f, sheetClients, clientSheetHeaders); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := writeRow(f, sheetClients, 2,
		models.ClientTypeCompany, "Jane Doe", "Acme S.A.", "legal@acme.example", "+52 55 5555 5555", "", "ACM010101AAA", "",
	); err != nil {
		return nil, fmt.Errorf("failed to write example row: %w", err)
	}
	f.SetColWidth(sheetClients, "A", "H", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write excel buffer: %w", err)
	}
	return buf, nil
}

// ImportClients creates one client per row of the first sheet. Rows that
// fail validation are reported and skipped; the rest are kept.
func ImportClients(ctx context.Context, t *Tenant, file io.Reader) (*ImportResult, error) {
	f, err := excelize.OpenReader(file)
	if err != nil {
		return nil, NewValidationError("file", "is not a valid xlsx workbook")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, NewValidationError("file", "has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read clients sheet: %w", err)
	}

	result := &ImportResult{Errors: []string{}}
	for i, row := range rows {
		if i == 0 || isBlankRow(row) {
			continue
		}

		cell := func(col int) string {
			if col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}
		in := ClientInput{
			Type:     strings.ToLower(cell(0)),
			FullName: cell(1),
			Email:    cell(3),
			Phone:    cell(4),
			Address:  cell(5),
			TaxID:    cell(6),
			Notes:    cell(7),
		}
		if company := cell(2); company != "" {
			in.CompanyName = &company
		}
		if in.Type == "" {
			in.Type = models.ClientTypeIndividual
		}

		if _, err := CreateClient(ctx, t, in); err != nil {
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				return result, err
			}
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("row %d: %s", i+1, vErr.Error()))
			continue
		}
		result.Created++
	}
	return result, nil
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
