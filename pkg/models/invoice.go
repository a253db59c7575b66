package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Kind tells which side of the ledger an invoice belongs to
type Kind string

const (
	KindReceivable Kind = "RECEIVABLE" // customer invoice (CxC)
	KindPayable    Kind = "PAYABLE"    // supplier invoice (CxP)
)

// DefaultCurrency is used when a source does not carry a currency column
const DefaultCurrency = "CRC"

type Invoice struct {
	// Core identifiers
	ID   string // Invoice number as printed on the document
	Kind Kind   // RECEIVABLE or PAYABLE

	// Parties
	Counterparty   string // Customer legal name (receivable) or supplier legal name (payable)
	CounterpartyID string // Entity identifier in the source, may be empty

	// Dates (zero value means the source had no date)
	IssueDate   time.Time // Date invoice was issued
	DueDate     time.Time // Payment due date
	PaymentDate time.Time // Last payment date, informational only

	// Amounts
	GrossAmount decimal.Decimal // Total invoiced (base + tax when the source splits them)
	PaidAmount  decimal.Decimal // Cumulative amount paid so far
	Currency    string          // Currency code (CRC, USD, ...)
}

// Outstanding returns the unpaid remainder of the invoice. Overpayments clamp to zero.
func (inv *Invoice) Outstanding() decimal.Decimal {
	residual := inv.GrossAmount.Sub(inv.PaidAmount)
	if residual.IsNegative() {
		return decimal.Zero
	}
	return residual
}

// IsOpen reports whether anything is left to collect or pay
func (inv *Invoice) IsOpen() bool {
	return inv.Outstanding().IsPositive()
}

func (inv *Invoice) HasDueDate() bool {
	return !inv.DueDate.IsZero()
}

func (inv *Invoice) HasIssueDate() bool {
	return !inv.IssueDate.IsZero()
}

// Valid reports whether k is one of the known ledger sides
func (k Kind) Valid() bool {
	return k == KindReceivable || k == KindPayable
}

// Label returns the short Spanish ledger name used in reports
func (k Kind) Label() string {
	if k == KindPayable {
		return "CxP"
	}
	return "CxC"
}

// ParseKind accepts the canonical names plus the usual accounting shorthands.
func ParseKind(s string) (Kind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RECEIVABLE", "RECEIVABLES", "AR", "CXC":
		return KindReceivable, nil
	case "PAYABLE", "PAYABLES", "AP", "CXP":
		return KindPayable, nil
	default:
		return "", fmt.Errorf("unknown invoice kind %q (expected receivable or payable)", s)
	}
}
