package models

import (
	"testing"

	"github.com/NightSight1044/legalCRM1/billing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaseTerms(t *testing.T) {
	t.Run("set terms clears inactive columns", func(t *testing.T) {
		c := Case{}
		c.SetTerms(billing.Hourly{Rate: decimal.NewFromInt(300)})
		require.NotNil(t, c.HourlyRate)

		c.SetTerms(billing.Fixed{Fee: decimal.NewFromInt(5000)})
		assert.Equal(t, "fixed", c.BillingType)
		assert.Nil(t, c.HourlyRate)
		assert.Nil(t, c.ContingencyPercentage)
		require.NotNil(t, c.FixedFee)
		assert.True(t, c.FixedFee.Equal(decimal.NewFromInt(5000)))
	})

	t.Run("terms ignore stale columns", func(t *testing.T) {
		rate := decimal.NewFromInt(300)
		pct := decimal.NewFromInt(25)
		c := Case{BillingType: "contingency", HourlyRate: &rate, ContingencyPercentage: &pct}

		terms, ok := c.Terms().(billing.Contingency)
		require.True(t, ok)
		assert.True(t, terms.Percentage.Equal(pct))
	})

	t.Run("unknown billing type", func(t *testing.T) {
		c := Case{BillingType: "retainer"}
		assert.Nil(t, c.Terms())
	})
}

func TestTimeEntryAmount(t *testing.T) {
	entry := TimeEntry{Hours: decimal.RequireFromString("3.5"), Rate: decimal.NewFromInt(300)}
	assert.True(t, entry.Amount().Equal(decimal.NewFromInt(1050)))

	entry.Rate = decimal.NewFromInt(200)
	assert.True(t, entry.Amount().Equal(decimal.NewFromInt(700)))
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "garcia-asociados", Slugify("  Garcia & Asociados "))
	assert.Equal(t, "firm", Slugify("!!!"))
}
