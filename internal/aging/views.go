package aging

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"asistente/pkg/models"
)

// Item statuses used by the open-items view
const (
	StatusOpenOnTime = "open_on_time"
	StatusOverdue    = "overdue"
)

const (
	DefaultTopN        = 10
	DefaultDueSoonDays = 7
)

// Row is one invoice line in a list view. Dates are YYYY-MM-DD, empty when absent.
type Row struct {
	InvoiceID    string          `json:"invoice_id"`
	Counterparty string          `json:"counterparty"`
	IssueDate    string          `json:"issue_date"`
	DueDate      string          `json:"due_date"`
	Status       string          `json:"status"`
	DaysOverdue  int             `json:"days_overdue"`
	DaysToDue    *int            `json:"days_to_due"`
	Outstanding  decimal.Decimal `json:"outstanding"`
}

// Balance is the open position with a single customer or supplier
type Balance struct {
	Query        string          `json:"query"`
	Counterparty string          `json:"counterparty"`
	Total        decimal.Decimal `json:"total"`
	Items        []Row           `json:"items"`
}

func newRow(inv *models.Invoice, ref time.Time) Row {
	r := Row{
		InvoiceID:    inv.ID,
		Counterparty: inv.Counterparty,
		IssueDate:    formatDate(inv.IssueDate),
		DueDate:      formatDate(inv.DueDate),
		Status:       StatusOpenOnTime,
		Outstanding:  inv.Outstanding(),
	}

	if days, ok := DaysOverdue(inv, ref); ok {
		toDue := -days
		r.DaysToDue = &toDue
		if days > 0 {
			r.DaysOverdue = days
			r.Status = StatusOverdue
		}
	}
	return r
}

// TopOverdue returns the n most overdue open invoices, oldest first with the
// larger balance breaking ties. n <= 0 means DefaultTopN. The sort is stable and
// happens before truncation, so a smaller n always yields a prefix of a larger one.
func TopOverdue(invoices []models.Invoice, ref time.Time, n int) []Row {
	if n <= 0 {
		n = DefaultTopN
	}

	out := []Row{}
	for i := range invoices {
		if !invoices[i].IsOpen() {
			continue
		}
		r := newRow(&invoices[i], ref)
		if r.DaysOverdue > 0 {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.DaysOverdue != b.DaysOverdue {
			return a.DaysOverdue > b.DaysOverdue
		}
		return a.Outstanding.GreaterThan(b.Outstanding)
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// CounterpartyBalance sums the open invoices of one counterparty, matched by
// trimmed case-insensitive name or by exact id. Items show days overdue clamped
// at zero.
func CounterpartyBalance(invoices []models.Invoice, ref time.Time, nameOrID string) (Balance, error) {
	query := strings.TrimSpace(nameOrID)
	if query == "" {
		return Balance{}, ErrMissingCounterparty
	}

	bal := Balance{
		Query: query,
		Total: decimal.Zero,
		Items: []Row{},
	}
	for i := range invoices {
		inv := &invoices[i]
		if !matchesCounterparty(inv, query) || !inv.IsOpen() {
			continue
		}
		if bal.Counterparty == "" {
			bal.Counterparty = inv.Counterparty
		}
		r := newRow(inv, ref)
		bal.Items = append(bal.Items, r)
		bal.Total = bal.Total.Add(r.Outstanding)
	}

	return bal, nil
}

func matchesCounterparty(inv *models.Invoice, query string) bool {
	if inv.CounterpartyID != "" && inv.CounterpartyID == query {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(inv.Counterparty), query)
}

// OpenItems lists every open invoice tagged open_on_time or overdue, ordered by
// status, then days overdue descending, then outstanding descending. On-time
// rows all carry zero days overdue, so that group is ordered by balance alone.
func OpenItems(invoices []models.Invoice, ref time.Time) []Row {
	out := []Row{}
	for i := range invoices {
		if invoices[i].IsOpen() {
			out = append(out, newRow(&invoices[i], ref))
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Status != b.Status {
			return a.Status < b.Status
		}
		if a.DaysOverdue != b.DaysOverdue {
			return a.DaysOverdue > b.DaysOverdue
		}
		return a.Outstanding.GreaterThan(b.Outstanding)
	})

	return out
}

// DueSoon lists open invoices falling due within the next days days, today
// included, nearest first. days <= 0 means DefaultDueSoonDays.
func DueSoon(invoices []models.Invoice, ref time.Time, days int) []Row {
	if days <= 0 {
		days = DefaultDueSoonDays
	}

	out := []Row{}
	for i := range invoices {
		inv := &invoices[i]
		if !inv.IsOpen() || !inv.HasDueDate() {
			continue
		}
		r := newRow(inv, ref)
		if toDue := *r.DaysToDue; toDue >= 0 && toDue <= days {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if *a.DaysToDue != *b.DaysToDue {
			return *a.DaysToDue < *b.DaysToDue
		}
		return a.Outstanding.GreaterThan(b.Outstanding)
	})

	return out
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
