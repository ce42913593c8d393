package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/NightSight1044/legalCRM1/services"

	"github.com/labstack/echo/v4"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func sendWorkbook(c echo.Context, name string, buf *bytes.Buffer) error {
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%s_%s.xlsx", name, time.Now().Format("20060102_150405")))
	return c.Blob(http.StatusOK, xlsxMIME, buf.Bytes())
}

// ExportTimeEntriesHandler downloads time entries as a workbook
// GET /api/reports/time-entries.xlsx?case_id=...&from=...&to=...
func ExportTimeEntriesHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	filters, err := timeEntryFilters(c)
	if err != nil {
		return err
	}
	buf, err := services.ExportTimeEntries(c.Request().Context(), t, filters)
	if err != nil {
		return toHTTPError(c, err)
	}
	return sendWorkbook(c, "time_entries", buf)
}

// ExportInvoicesHandler downloads invoices as a workbook
// GET /api/reports/invoices.xlsx?status=sent&client_id=...
func ExportInvoicesHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	buf, err := services.ExportInvoices(c.Request().Context(), t, services.InvoiceFilters{
		Status:   c.QueryParam("status"),
		ClientID: c.QueryParam("client_id"),
		CaseID:   c.QueryParam("case_id"),
	})
	if err != nil {
		return toHTTPError(c, err)
	}
	return sendWorkbook(c, "invoices", buf)
}

// ClientImportTemplateHandler downloads the client import template
// GET /api/clients/import/template
func ClientImportTemplateHandler(c echo.Context) error {
	buf, err := services.GenerateClientImportTemplate()
	if err != nil {
		return toHTTPError(c, err)
	}
	return sendWorkbook(c, "client_import_template", buf)
}

// ImportClientsHandler bulk-creates clients from an uploaded workbook
// POST /api/clients/import (multipart, field "file")
func ImportClientsHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded")
	}
	if file.Size > services.MaxUploadSize {
		return echo.NewHTTPError(http.StatusBadRequest, "File too large")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read upload")
	}
	defer src.Close()

	result, err := services.ImportClients(c.Request().Context(), t, src)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
