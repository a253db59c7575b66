package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"asistente/internal/source"
	"asistente/pkg/models"
)

type mockRangeReader struct {
	mock.Mock
}

func (m *mockRangeReader) ReadRange(ctx context.Context, rangeSpec string) ([][]interface{}, error) {
	args := m.Called(ctx, rangeSpec)
	values, _ := args.Get(0).([][]interface{})
	return values, args.Error(1)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestReader_Snapshot(t *testing.T) {
	ranges := &mockRangeReader{}
	ranges.On("ReadRange", mock.Anything, "CxC!A:Z").Return([][]interface{}{
		{"invoice_id", "customer", "issue_date", "due_date", "total_amount", "paid_amount", "currency"},
		{"FC-1", "Cliente Uno", "2025-09-01", "01/10/2025", 1500.5, 500.0, "₡"},
		{"FC-2", "Cliente Dos", "2025-09-15", "", "1.234,56", "", "usd"},
		{"", "", "", "", "", "", ""},
		{"FC-3", "Cliente Tres", "no es fecha", "2025-10-30", nil},
	}, nil)
	ranges.On("ReadRange", mock.Anything, "CxP!A:Z").Return([][]interface{}{
		{"Invoice ID", "Supplier", "Issue Date", "Due Date", "Base Amount", "Tax", "Paid Amount", "Payment Date"},
		{"FP-9", "Proveedor SA", "2025-08-01", "2025-08-31", "1,000.00", "130", "1130", "2025-09-02"},
		{"FP-10", "Proveedor SA", "2025-08-05", "2025-09-05", "200", "", 0.0},
	}, nil)

	reader := NewReader(ranges, "", "")
	snap, err := reader.Snapshot(context.Background())
	require.NoError(t, err)
	ranges.AssertExpectations(t)

	require.Len(t, snap.Receivables, 3)

	first := snap.Receivables[0]
	assert.Equal(t, "FC-1", first.ID)
	assert.Equal(t, models.KindReceivable, first.Kind)
	assert.Equal(t, "Cliente Uno", first.Counterparty)
	assert.Equal(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC), first.DueDate)
	assert.True(t, first.Outstanding().Equal(dec("1000.5")))
	assert.Equal(t, "CRC", first.Currency)

	second := snap.Receivables[1]
	assert.True(t, second.GrossAmount.Equal(dec("1234.56")))
	assert.False(t, second.HasDueDate())
	assert.Equal(t, "USD", second.Currency)

	third := snap.Receivables[2]
	assert.False(t, third.HasIssueDate())
	assert.True(t, third.GrossAmount.IsZero())

	require.Len(t, snap.Payables, 2)
	assert.True(t, snap.Payables[0].GrossAmount.Equal(dec("1130")))
	assert.False(t, snap.Payables[0].IsOpen())
	assert.Equal(t, 2, snap.Payables[0].PaymentDate.Day())
	assert.True(t, snap.Payables[1].GrossAmount.Equal(dec("200")))

	// FC-2 paid, FC-3 total and paid
	assert.Equal(t, 2, snap.DefaultedCount(models.KindReceivable))
	assert.Equal(t, 0, snap.DefaultedCount(models.KindPayable))
	assert.Len(t, snap.Missing, 3)
}

func TestReader_MissingColumns(t *testing.T) {
	ranges := &mockRangeReader{}
	ranges.On("ReadRange", mock.Anything, "Clientes!A:Z").Return([][]interface{}{
		{"customer", "issue_date"},
	}, nil)

	reader := NewReader(ranges, "Clientes", "")
	_, err := reader.ReadInvoices(context.Background(), models.KindReceivable, &source.Snapshot{})

	require.Error(t, err)
	assert.ErrorIs(t, err, source.ErrDataAccess)
	assert.Contains(t, err.Error(), "invoice_id")
	assert.Contains(t, err.Error(), "due_date")
}

func TestReader_ReadFails(t *testing.T) {
	ranges := &mockRangeReader{}
	ranges.On("ReadRange", mock.Anything, "CxC!A:Z").Return(nil, errors.New("403 forbidden"))

	_, err := NewReader(ranges, "", "").Snapshot(context.Background())

	var daErr *source.DataAccessError
	require.True(t, errors.As(err, &daErr))
	assert.Equal(t, "sheets", daErr.Backend)
	assert.Equal(t, "CxC", daErr.Details)
}

func TestReader_EmptySheet(t *testing.T) {
	ranges := &mockRangeReader{}
	ranges.On("ReadRange", mock.Anything, "CxC!A:Z").Return([][]interface{}{}, nil)

	invoices, err := NewReader(ranges, "", "").ReadInvoices(context.Background(), models.KindReceivable, &source.Snapshot{})
	require.NoError(t, err)
	assert.Empty(t, invoices)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"1234", "1234"},
		{"1.234,56", "1234.56"},
		{"1,234.56", "1234.56"},
		{"1234,5", "1234.5"},
		{"1234.50", "1234.5"},
		{"1.234", "1234"},
		{"1,234,567", "1234567"},
		{"₡ 25.000", "25000"},
		{"$12.30", "12.3"},
		{"-50,00", "-50"},
		{"(75.25)", "-75.25"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			got, err := parseAmount(tc.input)
			require.NoError(t, err)
			assert.True(t, got.Equal(dec(tc.expected)), "got %s", got)
		})
	}

	_, err := parseAmount("doce")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	expected := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)
	for _, input := range []string{"2025-03-07", "07/03/2025", "7/3/2025", "07.03.2025", "2025-03-07 10:00:00"} {
		got, err := parseDate(input)
		require.NoError(t, err, input)
		assert.Equal(t, expected, got, input)
	}

	_, err := parseDate("March 7")
	assert.Error(t, err)
}

func TestExtractSpreadsheetID(t *testing.T) {
	id, err := extractSpreadsheetID("https://docs.google.com/spreadsheets/d/1AbC-dEf_123/edit#gid=0")
	require.NoError(t, err)
	assert.Equal(t, "1AbC-dEf_123", id)

	id, err = extractSpreadsheetID("1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms")
	require.NoError(t, err)
	assert.Equal(t, "1BxiMVs0XRA5nFMdKvBdBZjgmUUqptlbs74OgvE2upms", id)

	_, err = extractSpreadsheetID("https://example.com/sheet")
	assert.Error(t, err)
}
