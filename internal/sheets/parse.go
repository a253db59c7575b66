package sheets

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"asistente/pkg/models"
)

var dateFormats = []string{
	"2006-01-02",          // ISO
	"2006-01-02 15:04:05", // ISO with time
	"02/01/2006",          // DD/MM/YYYY
	"2/1/2006",            // D/M/YYYY
	"02.01.2006",          // DD.MM.YYYY
	"2.1.2006",            // D.M.YYYY
	"02-01-2006",          // DD-MM-YYYY
}

// dateCell parses a date cell. Unparsable dates are logged and read as absent.
func (r *Reader) dateCell(value, column string, rowNum int) time.Time {
	if value == "" {
		return time.Time{}
	}
	date, err := parseDate(value)
	if err != nil {
		r.log.Warn().
			Str("value", value).
			Str("column", column).
			Int("row", rowNum).
			Msg("Invalid date, treating as absent")
		return time.Time{}
	}
	return date
}

// amountCell parses a monetary cell. ok is false when the cell is empty or not a
// number; the amount is then zero.
func (r *Reader) amountCell(value interface{}, column string, rowNum int) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, false
	case float64:
		return decimal.NewFromFloat(v), true
	case int:
		return decimal.NewFromInt(int64(v)), true
	case int64:
		return decimal.NewFromInt(v), true
	}

	s := strings.TrimSpace(fmt.Sprintf("%v", value))
	if s == "" {
		return decimal.Zero, false
	}
	amount, err := parseAmount(s)
	if err != nil {
		r.log.Warn().
			Str("value", s).
			Str("column", column).
			Int("row", rowNum).
			Msg("Invalid amount, using 0")
		return decimal.Zero, false
	}
	return amount, true
}

// parseDate reads a calendar date in one of the accepted layouts.
func parseDate(s string) (time.Time, error) {
	cleaned := strings.TrimSpace(s)
	for _, format := range dateFormats {
		if date, err := time.Parse(format, cleaned); err == nil {
			y, m, d := date.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// parseAmount reads amounts written either way round: "1.234,56" and
// "1,234.56" are both 1234.56. The separator that comes last is the decimal
// one. A lone separator followed by exactly three digits is a thousands mark.
func parseAmount(s string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(s)

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = strings.Trim(cleaned, "()")
	}

	for _, symbol := range []string{"₡", "$", "€", "CRC", "USD", "EUR", " ", " "} {
		cleaned = strings.ReplaceAll(cleaned, symbol, "")
	}
	if strings.HasPrefix(cleaned, "-") {
		negative = !negative
		cleaned = strings.TrimPrefix(cleaned, "-")
	}

	lastDot := strings.LastIndex(cleaned, ".")
	lastComma := strings.LastIndex(cleaned, ",")

	switch {
	case lastDot >= 0 && lastComma >= 0:
		if lastComma > lastDot {
			cleaned = strings.ReplaceAll(cleaned, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			cleaned = strings.ReplaceAll(cleaned, ",", "")
		}
	case lastComma >= 0:
		cleaned = normalizeSingleSeparator(cleaned, ",")
	case lastDot >= 0:
		cleaned = normalizeSingleSeparator(cleaned, ".")
	}

	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unable to parse amount: %s (cleaned: %s)", s, cleaned)
	}
	if negative {
		amount = amount.Neg()
	}
	return amount, nil
}

func normalizeSingleSeparator(s, sep string) string {
	parts := strings.Split(s, sep)
	if len(parts) > 2 || (len(parts) == 2 && len(parts[1]) == 3) {
		// thousands separators only
		return strings.ReplaceAll(s, sep, "")
	}
	return strings.Replace(s, sep, ".", 1)
}

// normalizeCurrency standardizes currency codes to consistent format
func normalizeCurrency(currency string) string {
	normalized := strings.ToUpper(strings.TrimSpace(currency))

	switch normalized {
	case "":
		return models.DefaultCurrency
	case "₡", "COLON", "COLONES", "CRC":
		return "CRC"
	case "$", "US$", "DOLAR", "DOLARES", "DÓLARES", "USD":
		return "USD"
	case "€", "EURO", "EUROS", "EUR":
		return "EUR"
	default:
		if len(normalized) == 3 {
			return normalized
		}
		return models.DefaultCurrency
	}
}

// getString safely extracts a string value from a row slice
func getString(row []interface{}, index int) string {
	if index >= len(row) || row[index] == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%v", row[index]))
}

func isBlank(row []interface{}) bool {
	for i := range row {
		if getString(row, i) != "" {
			return false
		}
	}
	return true
}
