package handlers

import (
	"net/http"
	"time"

	"github.com/NightSight1044/legalCRM1/billing"
	"github.com/NightSight1044/legalCRM1/models"
	"github.com/NightSight1044/legalCRM1/services"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// InvoiceResponse is an invoice with its status as of now. The invoice is
// not embedded because its MarshalJSON would hide EffectiveStatus.
type InvoiceResponse struct {
	Invoice         *models.Invoice `json:"invoice"`
	EffectiveStatus string          `json:"effective_status"`
}

func invoiceResponse(inv *models.Invoice, now time.Time) InvoiceResponse {
	return InvoiceResponse{Invoice: inv, EffectiveStatus: inv.EffectiveStatus(now)}
}

// ListInvoicesHandler lists the firm's invoices
// GET /api/invoices?status=overdue&client_id=...&case_id=...
func ListInvoicesHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	invoices, err := services.ListInvoices(c.Request().Context(), t, services.InvoiceFilters{
		Status:   c.QueryParam("status"),
		ClientID: c.QueryParam("client_id"),
		CaseID:   c.QueryParam("case_id"),
	})
	if err != nil {
		return toHTTPError(c, err)
	}

	now := time.Now()
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = invoiceResponse(&invoices[i], now)
	}
	return c.JSON(http.StatusOK, out)
}

// CreateInvoiceHandler issues an invoice with the next number
// POST /api/invoices
func CreateInvoiceHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	var in services.InvoiceInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	inv, err := services.CreateInvoice(c.Request().Context(), t, in)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, invoiceResponse(inv, time.Now()))
}

// GetInvoiceHandler returns an invoice with its lines and totals
// GET /api/invoices/:id
func GetInvoiceHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	inv, err := services.GetInvoice(c.Request().Context(), t, c.Param("id"))
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, invoiceResponse(inv, time.Now()))
}

// UpdateInvoiceHandler replaces an invoice's fields and lines
// PUT /api/invoices/:id
func UpdateInvoiceHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	var in services.InvoiceInput
	if err := bindJSON(c, &in); err != nil {
		return err
	}
	inv, err := services.UpdateInvoice(c.Request().Context(), t, c.Param("id"), in)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, invoiceResponse(inv, time.Now()))
}

// SetInvoiceStatusHandler moves an invoice to another status
// PATCH /api/invoices/:id/status
func SetInvoiceStatusHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	inv, err := services.SetInvoiceStatus(c.Request().Context(), t, c.Param("id"), req.Status)
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusOK, invoiceResponse(inv, time.Now()))
}

// DeleteInvoiceHandler removes a draft invoice
// DELETE /api/invoices/:id
func DeleteInvoiceHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	if err := services.DeleteInvoice(c.Request().Context(), t, c.Param("id")); err != nil {
		return toHTTPError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// DraftInvoiceHandler drafts an invoice from a case's billing terms
// POST /api/cases/:id/invoices/draft?from=2030-01-01&to=2030-01-31
func DraftInvoiceHandler(c echo.Context) error {
	t, err := tenant(c)
	if err != nil {
		return err
	}
	from, err := parseDateParam(c, "from")
	if err != nil {
		return err
	}
	to, err := parseDateParam(c, "to")
	if err != nil {
		return err
	}
	inv, err := services.DraftInvoiceFromCase(c.Request().Context(), t, c.Param("id"), services.DraftOptions{From: from, To: to})
	if err != nil {
		return toHTTPError(c, err)
	}
	return c.JSON(http.StatusCreated, invoiceResponse(inv, time.Now()))
}

// ComputeTotalsHandler prices line items without storing anything
// POST /api/invoices/compute
func ComputeTotalsHandler(c echo.Context) error {
	var req struct {
		LineItems []services.LineItemInput `json:"line_items"`
	}
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	items := make([]billing.LineItem, 0, len(req.LineItems))
	for _, li := range req.LineItems {
		if li.Hours.IsNegative() || li.Rate.IsNegative() {
			return toHTTPError(c, services.NewValidationError("line_items", "hours and rate must be non-negative"))
		}
		items = append(items, billing.LineItem{Description: li.Description, Hours: li.Hours, Rate: li.Rate})
	}

	totals := billing.ComputeInvoiceTotals(items)
	amounts := make([]decimal.Decimal, len(items))
	for i, item := range items {
		amounts[i] = item.Amount()
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"amounts":  amounts,
		"subtotal": totals.Subtotal,
		"tax":      totals.Tax,
		"total":    totals.Total,
	})
}
