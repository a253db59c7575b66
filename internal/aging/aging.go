// Package aging partitions outstanding invoice balances into overdue buckets and
// builds the ranked list views (top overdue, counterparty balance, open items,
// due soon) over one invoice set and one reference date.
//
// Every function here is pure: invoices are read, never mutated, and nothing is
// retained between calls.
package aging

import (
	"time"

	"github.com/shopspring/decimal"

	"asistente/pkg/models"
)

// Bucket names as they appear in reports
const (
	Bucket0to30  = "0_30"
	Bucket31to60 = "31_60"
	Bucket61to90 = "61_90"
	Bucket90Plus = "90_plus"
)

const (
	maxDays0to30  = 30
	maxDays31to60 = 60
	maxDays61to90 = 90

	dateLayout  = "2006-01-02"
	hoursPerDay = 24
)

// Buckets holds summed outstanding amounts of strictly overdue invoices.
type Buckets struct {
	Days0to30  decimal.Decimal `json:"0_30"`
	Days31to60 decimal.Decimal `json:"31_60"`
	Days61to90 decimal.Decimal `json:"61_90"`
	Days90Plus decimal.Decimal `json:"90_plus"`
}

// Sum returns the total of all four buckets
func (b Buckets) Sum() decimal.Decimal {
	return b.Days0to30.Add(b.Days31to60).Add(b.Days61to90).Add(b.Days90Plus)
}

// slot points at the bucket field for a report name, nil for unknown names.
func (b *Buckets) slot(name string) *decimal.Decimal {
	switch name {
	case Bucket0to30:
		return &b.Days0to30
	case Bucket31to60:
		return &b.Days31to60
	case Bucket61to90:
		return &b.Days61to90
	case Bucket90Plus:
		return &b.Days90Plus
	}
	return nil
}

func (b *Buckets) add(days int, amount decimal.Decimal) {
	if s := b.slot(BucketFor(days)); s != nil {
		*s = s.Add(amount)
	}
}

// BucketFor names the bucket for a positive days-overdue value. Upper edges are
// inclusive. It returns "" for days <= 0, which are not overdue.
func BucketFor(days int) string {
	switch {
	case days <= 0:
		return ""
	case days <= maxDays0to30:
		return Bucket0to30
	case days <= maxDays31to60:
		return Bucket31to60
	case days <= maxDays61to90:
		return Bucket61to90
	default:
		return Bucket90Plus
	}
}

// Totals summarises the open invoice set.
//
// NotYetDue = Current + NoDueDate, and TotalOutstanding = NotYetDue + Buckets.Sum().
type Totals struct {
	TotalOutstanding decimal.Decimal `json:"total_outstanding"`
	NotYetDue        decimal.Decimal `json:"not_yet_due"`
	Current          decimal.Decimal `json:"current"`
	NoDueDate        decimal.Decimal `json:"no_due_date"`
	OpenCount        int             `json:"open_count"`
}

// Snapshot is the result of one aging computation
type Snapshot struct {
	Aging  Buckets `json:"aging"`
	Totals Totals  `json:"totals"`
}

// Compute ages invoices against ref.
//
// Fully paid invoices are skipped. Invoices without a due date, and those due on
// or after ref, count as not yet due. Everything else lands in exactly one bucket.
func Compute(invoices []models.Invoice, ref time.Time) Snapshot {
	var snap Snapshot

	for i := range invoices {
		inv := &invoices[i]
		outstanding := inv.Outstanding()
		if !outstanding.IsPositive() {
			continue
		}
		snap.Totals.OpenCount++

		days, ok := DaysOverdue(inv, ref)
		switch {
		case !ok:
			snap.Totals.NoDueDate = snap.Totals.NoDueDate.Add(outstanding)
		case days <= 0:
			snap.Totals.Current = snap.Totals.Current.Add(outstanding)
		default:
			snap.Aging.add(days, outstanding)
		}
	}

	snap.Totals.NotYetDue = snap.Totals.Current.Add(snap.Totals.NoDueDate)
	snap.Totals.TotalOutstanding = snap.Totals.NotYetDue.Add(snap.Aging.Sum())
	return snap
}

// DaysOverdue returns ref minus the invoice due date in whole calendar days.
// Positive means overdue, zero means due on ref and negative means due in the
// future. ok is false when there is no due date.
func DaysOverdue(inv *models.Invoice, ref time.Time) (days int, ok bool) {
	if !inv.HasDueDate() {
		return 0, false
	}
	return daysBetween(inv.DueDate, ref), true
}

// daysBetween counts calendar days from a to b. Each side keeps the calendar date
// it carries in its own zone; a due date stored as UTC midnight must not slide to
// the previous day when ref is in a western zone.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	from := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	to := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / hoursPerDay)
}
