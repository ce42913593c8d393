// Package billing holds the pure arithmetic behind case billing and invoices.
// Nothing here touches the database; callers pass in stored inputs and get
// derived values back.
package billing

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// TaxRate is the IVA rate applied to every invoice subtotal.
var TaxRate = decimal.RequireFromString("0.16")

// Mode identifies which billing arrangement governs a case.
type Mode string

const (
	ModeHourly      Mode = "hourly"
	ModeFixed       Mode = "fixed"
	ModeContingency Mode = "contingency"
)

// ErrRevenueUndetermined is returned when a contingency case is asked for a
// concrete amount. The percentage applies to a settlement figure that lives
// outside this system.
var ErrRevenueUndetermined = errors.New("contingency revenue is undetermined until settlement")

// IsValidMode checks if the mode is one of the known billing modes
func IsValidMode(mode string) bool {
	switch Mode(mode) {
	case ModeHourly, ModeFixed, ModeContingency:
		return true
	}
	return false
}

// Terms is the billing configuration of a case. Exactly one variant is
// active at a time, so there is no way to carry a stale rate alongside a fee.
type Terms interface {
	Mode() Mode
	validate() error
}

// Hourly bills logged billable hours at the case rate.
type Hourly struct {
	Rate decimal.Decimal `json:"rate"`
}

// Fixed bills a flat fee regardless of hours logged.
type Fixed struct {
	Fee decimal.Decimal `json:"fee"`
}

// Contingency bills a percentage of an eventual settlement.
type Contingency struct {
	Percentage decimal.Decimal `json:"percentage"`
}

func (Hourly) Mode() Mode      { return ModeHourly }
func (Fixed) Mode() Mode       { return ModeFixed }
func (Contingency) Mode() Mode { return ModeContingency }

// TermsError reports which billing field is out of range.
type TermsError struct {
	Field  string
	Reason string
}

func (e *TermsError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (h Hourly) validate() error {
	if h.Rate.IsNegative() {
		return &TermsError{Field: "hourly_rate", Reason: "must be greater than or equal to 0"}
	}
	return nil
}

func (f Fixed) validate() error {
	if f.Fee.IsNegative() {
		return &TermsError{Field: "fixed_fee", Reason: "must be greater than or equal to 0"}
	}
	return nil
}

func (c Contingency) validate() error {
	if c.Percentage.IsNegative() || c.Percentage.GreaterThan(decimal.NewFromInt(100)) {
		return &TermsError{Field: "contingency_percentage", Reason: "must be between 0 and 100"}
	}
	return nil
}

// ValidateTerms checks the active variant's value. A nil Terms is rejected.
func ValidateTerms(t Terms) error {
	if t == nil {
		return &TermsError{Field: "billing_type", Reason: "is required"}
	}
	return t.validate()
}

// LineItem is one billable row on an invoice.
type LineItem struct {
	Description string          `json:"description"`
	Hours       decimal.Decimal `json:"hours"`
	Rate        decimal.Decimal `json:"rate"`
}

// Amount is always hours × rate; it is never read from storage.
func (l LineItem) Amount() decimal.Decimal {
	return l.Hours.Mul(l.Rate)
}

// Totals are the derived figures of an invoice.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
}

// ComputeInvoiceTotals sums line amounts, applies TaxRate and rounds the tax
// to cents, half away from zero. Total is subtotal plus the rounded tax.
func ComputeInvoiceTotals(items []LineItem) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount())
	}
	tax := subtotal.Mul(TaxRate).Round(2)
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Total:    subtotal.Add(tax),
	}
}

// WorkUnit is the slice of a time entry the billing engine cares about.
type WorkUnit struct {
	Description string
	Hours       decimal.Decimal
	Rate        decimal.Decimal
	Billable    bool
}

// Amount is hours × rate for the unit.
func (w WorkUnit) Amount() decimal.Decimal {
	return w.Hours.Mul(w.Rate)
}

// RevenueBasis is what a case can bill right now. Determined is false for
// contingency cases, in which case Amount is zero and Percentage is set.
type RevenueBasis struct {
	Mode       Mode             `json:"mode"`
	Determined bool             `json:"determined"`
	Amount     decimal.Decimal  `json:"amount"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

// Revenue computes the billable amount for a case under its terms.
// Hourly sums hours × rate over billable units only; fixed returns the fee
// regardless of hours; contingency is left undetermined.
func Revenue(terms Terms, units []WorkUnit) RevenueBasis {
	switch t := terms.(type) {
	case Hourly:
		amount := decimal.Zero
		for _, u := range units {
			if u.Billable {
				amount = amount.Add(u.Amount())
			}
		}
		return RevenueBasis{Mode: ModeHourly, Determined: true, Amount: amount}
	case Fixed:
		return RevenueBasis{Mode: ModeFixed, Determined: true, Amount: t.Fee}
	case Contingency:
		pct := t.Percentage
		return RevenueBasis{Mode: ModeContingency, Amount: decimal.Zero, Percentage: &pct}
	}
	return RevenueBasis{Amount: decimal.Zero}
}

// FixedFeeDescription labels the single line drafted for fixed-fee cases.
const FixedFeeDescription = "Fixed fee"

// DraftLineItems derives invoice lines from case terms. Hourly cases get one
// line per billable unit at the unit's own rate; fixed cases get a single
// line of one unit at the fee. Contingency cases cannot be drafted.
func DraftLineItems(terms Terms, units []WorkUnit) ([]LineItem, error) {
	switch t := terms.(type) {
	case Hourly:
		items := make([]LineItem, 0, len(units))
		for _, u := range units {
			if !u.Billable {
				continue
			}
			items = append(items, LineItem{Description: u.Description, Hours: u.Hours, Rate: u.Rate})
		}
		return items, nil
	case Fixed:
		return []LineItem{{Description: FixedFeeDescription, Hours: decimal.NewFromInt(1), Rate: t.Fee}}, nil
	case Contingency:
		return nil, ErrRevenueUndetermined
	}
	return nil, &TermsError{Field: "billing_type", Reason: "is required"}
}
