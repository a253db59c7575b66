package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoice_Outstanding(t *testing.T) {
	tests := []struct {
		name     string
		gross    string
		paid     string
		expected string
	}{
		{"unpaid", "100.00", "0", "100"},
		{"partially paid", "100.00", "40.25", "59.75"},
		{"fully paid", "50", "50", "0"},
		{"overpaid clamps to zero", "50", "75.10", "0"},
		{"zero invoice", "0", "0", "0"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			inv := Invoice{
				GrossAmount: decimal.RequireFromString(tc.gross),
				PaidAmount:  decimal.RequireFromString(tc.paid),
			}
			out := inv.Outstanding()
			assert.True(t, out.Equal(decimal.RequireFromString(tc.expected)), "got %s", out)
			assert.False(t, out.IsNegative())
		})
	}
}

func TestInvoice_IsOpen(t *testing.T) {
	open := Invoice{GrossAmount: decimal.NewFromInt(10)}
	closed := Invoice{GrossAmount: decimal.NewFromInt(10), PaidAmount: decimal.NewFromInt(10)}

	assert.True(t, open.IsOpen())
	assert.False(t, closed.IsOpen())
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		input    string
		expected Kind
	}{
		{"receivable", KindReceivable},
		{"AR", KindReceivable},
		{" cxc ", KindReceivable},
		{"PAYABLE", KindPayable},
		{"ap", KindPayable},
		{"CxP", KindPayable},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			k, err := ParseKind(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, k)
			assert.True(t, k.Valid())
		})
	}

	_, err := ParseKind("inventory")
	assert.Error(t, err)
	assert.False(t, Kind("inventory").Valid())
}

func TestKind_Label(t *testing.T) {
	assert.Equal(t, "CxC", KindReceivable.Label())
	assert.Equal(t, "CxP", KindPayable.Label())
}
