// Package kpi computes turnover-day indicators (DSO, DPO) and the cash
// conversion cycle from invoice sets and a reporting window.
//
// A KPI whose denominator is zero is undefined and reported as a null
// decimal, never as zero.
package kpi

import (
	"time"

	"github.com/shopspring/decimal"

	"asistente/internal/period"
	"asistente/pkg/models"
)

// DefaultTurnoverDays replaces a window length of zero days or less.
const DefaultTurnoverDays = 30

const roundPlaces = 2

// Set is the KPI block of a report
type Set struct {
	DSO decimal.NullDecimal `json:"DSO"`
	DPO decimal.NullDecimal `json:"DPO"`
	DIO decimal.NullDecimal `json:"DIO"`
	CCC decimal.NullDecimal `json:"CCC"`
}

// NewSet fills CCC from the other three
func NewSet(dso, dpo, dio decimal.NullDecimal) Set {
	return Set{
		DSO: dso,
		DPO: dpo,
		DIO: dio,
		CCC: CCC(dso, dpo, dio),
	}
}

// TurnoverDays is the number of whole days between start and end, or
// DefaultTurnoverDays when that is not positive.
func TurnoverDays(start, end time.Time) int {
	days := int(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return DefaultTurnoverDays
	}
	return days
}

// DSO is days sales outstanding over receivables.
func DSO(receivables []models.Invoice, w period.Window) decimal.NullDecimal {
	return turnover(receivables, w)
}

// DPO is days payable outstanding over payables.
func DPO(payables []models.Invoice, w period.Window) decimal.NullDecimal {
	return turnover(payables, w)
}

// turnover divides everything still outstanding by the gross amount issued inside
// the window, scaled to the window length. The balance is not windowed.
func turnover(invoices []models.Invoice, w period.Window) decimal.NullDecimal {
	balance := decimal.Zero
	flow := decimal.Zero

	for i := range invoices {
		inv := &invoices[i]
		balance = balance.Add(inv.Outstanding())
		if inv.HasIssueDate() && w.ContainsDate(inv.IssueDate) {
			flow = flow.Add(inv.GrossAmount)
		}
	}

	if !flow.IsPositive() {
		return decimal.NullDecimal{}
	}

	days := decimal.NewFromInt(int64(TurnoverDays(w.Start, w.End)))
	return decimal.NewNullDecimal(balance.Mul(days).DivRound(flow, roundPlaces))
}

// CCC is DSO - DPO, plus DIO when it is known. A null DSO or DPO gives null.
func CCC(dso, dpo, dio decimal.NullDecimal) decimal.NullDecimal {
	if !dso.Valid || !dpo.Valid {
		return decimal.NullDecimal{}
	}
	ccc := dso.Decimal.Sub(dpo.Decimal)
	if dio.Valid {
		ccc = ccc.Add(dio.Decimal)
	}
	return decimal.NewNullDecimal(ccc.Round(roundPlaces))
}
