package billing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestComputeInvoiceTotals(t *testing.T) {
	t.Run("two lines", func(t *testing.T) {
		totals := ComputeInvoiceTotals([]LineItem{
			{Description: "Research", Hours: d("3.5"), Rate: d("300")},
			{Description: "Hearing", Hours: d("2"), Rate: d("350")},
		})

		assert.True(t, totals.Subtotal.Equal(d("1750")), "subtotal %s", totals.Subtotal)
		assert.True(t, totals.Tax.Equal(d("280")), "tax %s", totals.Tax)
		assert.True(t, totals.Total.Equal(d("2030")), "total %s", totals.Total)
	})

	t.Run("empty invoice", func(t *testing.T) {
		totals := ComputeInvoiceTotals(nil)
		assert.True(t, totals.Subtotal.IsZero())
		assert.True(t, totals.Tax.IsZero())
		assert.True(t, totals.Total.IsZero())
	})

	t.Run("tax rounds to cents", func(t *testing.T) {
		// 0.25 × 100.03 = 25.0075 → tax 4.0012 → 4.00
		totals := ComputeInvoiceTotals([]LineItem{{Hours: d("0.25"), Rate: d("100.03")}})
		assert.True(t, totals.Tax.Equal(d("4")), "tax %s", totals.Tax)

		// 1 × 0.5 = 0.5 → tax 0.08 exactly
		totals = ComputeInvoiceTotals([]LineItem{{Hours: d("1"), Rate: d("0.5")}})
		assert.True(t, totals.Tax.Equal(d("0.08")), "tax %s", totals.Tax)

		// 1 × 0.03125 → tax 0.005 → 0.01 (half away from zero)
		totals = ComputeInvoiceTotals([]LineItem{{Hours: d("1"), Rate: d("0.03125")}})
		assert.True(t, totals.Tax.Equal(d("0.01")), "tax %s", totals.Tax)
	})

	t.Run("total is always subtotal plus tax", func(t *testing.T) {
		cases := [][]LineItem{
			{{Hours: d("0.75"), Rate: d("333.33")}},
			{{Hours: d("1.25"), Rate: d("299.99")}, {Hours: d("7"), Rate: d("12.5")}},
			{{Hours: d("0"), Rate: d("500")}},
		}
		for _, items := range cases {
			totals := ComputeInvoiceTotals(items)
			assert.True(t, totals.Total.Equal(totals.Subtotal.Add(totals.Tax)))
			assert.True(t, totals.Tax.Equal(totals.Subtotal.Mul(TaxRate).Round(2)))
		}
	})
}

func TestLineItemAmount(t *testing.T) {
	item := LineItem{Hours: d("3.5"), Rate: d("300")}
	assert.True(t, item.Amount().Equal(d("1050")))

	item.Hours = d("4")
	assert.True(t, item.Amount().Equal(d("1200")))
}

func TestRevenue(t *testing.T) {
	units := []WorkUnit{
		{Hours: d("3.5"), Rate: d("300"), Billable: true},
		{Hours: d("2"), Rate: d("300"), Billable: false},
	}

	t.Run("hourly sums billable units", func(t *testing.T) {
		basis := Revenue(Hourly{Rate: d("300")}, units)
		assert.Equal(t, ModeHourly, basis.Mode)
		assert.True(t, basis.Determined)
		assert.True(t, basis.Amount.Equal(d("1050")), "amount %s", basis.Amount)
	})

	t.Run("fixed ignores hours", func(t *testing.T) {
		basis := Revenue(Fixed{Fee: d("5000")}, units)
		assert.True(t, basis.Determined)
		assert.True(t, basis.Amount.Equal(d("5000")))
	})

	t.Run("contingency is undetermined", func(t *testing.T) {
		basis := Revenue(Contingency{Percentage: d("30")}, units)
		assert.False(t, basis.Determined)
		assert.True(t, basis.Amount.IsZero())
		require.NotNil(t, basis.Percentage)
		assert.True(t, basis.Percentage.Equal(d("30")))
	})
}

func TestValidateTerms(t *testing.T) {
	assert.NoError(t, ValidateTerms(Hourly{Rate: d("0")}))
	assert.NoError(t, ValidateTerms(Contingency{Percentage: d("100")}))

	var termsErr *TermsError
	err := ValidateTerms(Hourly{Rate: d("-1")})
	require.ErrorAs(t, err, &termsErr)
	assert.Equal(t, "hourly_rate", termsErr.Field)

	err = ValidateTerms(Contingency{Percentage: d("101")})
	require.ErrorAs(t, err, &termsErr)
	assert.Equal(t, "contingency_percentage", termsErr.Field)

	err = ValidateTerms(nil)
	require.ErrorAs(t, err, &termsErr)
	assert.Equal(t, "billing_type", termsErr.Field)
}

func TestDraftLineItems(t *testing.T) {
	units := []WorkUnit{
		{Description: "Draft contract", Hours: d("2"), Rate: d("300"), Billable: true},
		{Description: "Internal call", Hours: d("1"), Rate: d("300"), Billable: false},
	}

	items, err := DraftLineItems(Hourly{Rate: d("300")}, units)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Draft contract", items[0].Description)

	items, err = DraftLineItems(Fixed{Fee: d("1500")}, units)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Amount().Equal(d("1500")))

	_, err = DraftLineItems(Contingency{Percentage: d("20")}, units)
	assert.ErrorIs(t, err, ErrRevenueUndetermined)
}
