package kpi

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"asistente/internal/period"
	"asistente/pkg/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func null(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(dec(s))
}

func october(t *testing.T) period.Window {
	t.Helper()
	w, err := period.NewResolver(time.UTC).Month("2025-10")
	require.NoError(t, err)
	return w
}

func day(d int) time.Time {
	return time.Date(2025, time.October, d, 0, 0, 0, 0, time.UTC)
}

func TestTurnoverDays(t *testing.T) {
	start := day(1)

	assert.Equal(t, 30, TurnoverDays(start, time.Date(2025, time.October, 31, 23, 59, 59, 0, time.UTC)))
	assert.Equal(t, 6, TurnoverDays(start, day(7)))
	assert.Equal(t, DefaultTurnoverDays, TurnoverDays(start, start))
	assert.Equal(t, DefaultTurnoverDays, TurnoverDays(start, start.Add(12*time.Hour)))
	assert.Equal(t, DefaultTurnoverDays, TurnoverDays(day(7), start))
}

func TestDSO(t *testing.T) {
	w := october(t)

	invoices := []models.Invoice{
		// issued in window, half paid
		{ID: "1", GrossAmount: dec("1000"), PaidAmount: dec("500"), IssueDate: day(5)},
		// issued in window, open
		{ID: "2", GrossAmount: dec("500"), IssueDate: day(31)},
		// issued before the window, still counts toward the balance
		{ID: "3", GrossAmount: dec("300"), IssueDate: time.Date(2025, time.August, 10, 0, 0, 0, 0, time.UTC)},
		// no issue date: balance only
		{ID: "4", GrossAmount: dec("200")},
	}

	// balance 500+500+300+200 = 1500, flow 1500, days 30
	got := DSO(invoices, w)
	require.True(t, got.Valid)
	assert.True(t, got.Decimal.Equal(dec("30")), got.Decimal.String())
}

func TestDPO_Rounding(t *testing.T) {
	w := october(t)

	invoices := []models.Invoice{
		{ID: "1", GrossAmount: dec("300"), IssueDate: day(2)},
		{ID: "2", GrossAmount: dec("100"), IssueDate: day(1)},
		{ID: "3", GrossAmount: dec("333")},
	}

	// 733 * 30 / 400 = 54.975 -> 54.98
	got := DPO(invoices, w)
	require.True(t, got.Valid)
	assert.Equal(t, "54.98", got.Decimal.StringFixed(2))
}

func TestDSO_NullWithoutFlow(t *testing.T) {
	w := october(t)

	invoices := []models.Invoice{
		{ID: "1", GrossAmount: dec("1000"), IssueDate: time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC)},
	}

	assert.False(t, DSO(invoices, w).Valid)
	assert.False(t, DSO(nil, w).Valid)
}

func TestCCC(t *testing.T) {
	tests := []struct {
		name     string
		dso      decimal.NullDecimal
		dpo      decimal.NullDecimal
		dio      decimal.NullDecimal
		expected decimal.NullDecimal
	}{
		{"without inventory", null("52.5"), null("40"), decimal.NullDecimal{}, null("12.5")},
		{"with inventory", null("52.5"), null("40"), null("10"), null("22.5")},
		{"negative cycle", null("20"), null("45.25"), decimal.NullDecimal{}, null("-25.25")},
		{"null dso", decimal.NullDecimal{}, null("40"), null("10"), decimal.NullDecimal{}},
		{"null dpo", null("52.5"), decimal.NullDecimal{}, decimal.NullDecimal{}, decimal.NullDecimal{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := CCC(tc.dso, tc.dpo, tc.dio)
			assert.Equal(t, tc.expected.Valid, got.Valid)
			if tc.expected.Valid {
				assert.True(t, tc.expected.Decimal.Equal(got.Decimal), got.Decimal.String())
			}
		})
	}
}

func TestSet_JSONNulls(t *testing.T) {
	s := NewSet(null("35.5"), decimal.NullDecimal{}, decimal.NullDecimal{})

	raw, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{"DSO":"35.5","DPO":null,"DIO":null,"CCC":null}`, string(raw))
}
