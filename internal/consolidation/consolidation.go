// Package consolidation merges the receivables and payables ledgers of one
// period into an accounting pack: the KPI block with the cash conversion
// cycle, outstanding balances and a net working capital proxy.
package consolidation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"asistente/internal/aging"
	"asistente/internal/kpi"
	"asistente/internal/period"
	"asistente/pkg/models"
)

// ErrNothingToConsolidate is returned when neither ledger is available.
var ErrNothingToConsolidate = errors.New("receivables and payables are both missing, nothing to consolidate")

// Ledger is the computed view of one side of the books for a period.
type Ledger struct {
	Kind             models.Kind   `json:"kind"`
	Period           period.Window `json:"period"`
	Aging            aging.Buckets `json:"aging"`
	Totals           aging.Totals  `json:"totals"`
	KPI              kpi.Set       `json:"kpi"`
	DefaultedRecords int           `json:"defaulted_records"`
}

// Turnover returns DSO for receivables and DPO for payables
func (l *Ledger) Turnover() decimal.NullDecimal {
	if l.Kind == models.KindPayable {
		return l.KPI.DPO
	}
	return l.KPI.DSO
}

// Input carries what consolidation needs. Either ledger may be nil.
type Input struct {
	Period      string
	Receivables *Ledger
	Payables    *Ledger
	DIO         decimal.NullDecimal
}

// Balances are outstanding positions at the end of the period
type Balances struct {
	AROutstanding decimal.NullDecimal `json:"AR_outstanding"`
	APOutstanding decimal.NullDecimal `json:"AP_outstanding"`
	NWCProxy      decimal.NullDecimal `json:"NWC_proxy"`
}

// Pack is the consolidated accounting view
type Pack struct {
	Period   string   `json:"period"`
	KPI      kpi.Set  `json:"kpi"`
	Balances Balances `json:"balances"`
	Checks   []string `json:"checks"`
	Summary  string   `json:"summary"`
}

// Consolidate builds the pack. The period label comes from receivables, then
// payables, then the input.
func Consolidate(in Input) (Pack, error) {
	if in.Receivables == nil && in.Payables == nil {
		return Pack{}, ErrNothingToConsolidate
	}

	pack := Pack{Period: in.Period}

	var dso, dpo decimal.NullDecimal
	if in.Payables != nil {
		dpo = in.Payables.Turnover()
		pack.Balances.APOutstanding = decimal.NewNullDecimal(in.Payables.Totals.TotalOutstanding)
		if in.Payables.Period.Text != "" {
			pack.Period = in.Payables.Period.Text
		}
	}
	if in.Receivables != nil {
		dso = in.Receivables.Turnover()
		pack.Balances.AROutstanding = decimal.NewNullDecimal(in.Receivables.Totals.TotalOutstanding)
		if in.Receivables.Period.Text != "" {
			pack.Period = in.Receivables.Period.Text
		}
	}

	pack.KPI = kpi.NewSet(dso, dpo, in.DIO)

	if pack.Balances.AROutstanding.Valid && pack.Balances.APOutstanding.Valid {
		pack.Balances.NWCProxy = decimal.NewNullDecimal(
			pack.Balances.AROutstanding.Decimal.Sub(pack.Balances.APOutstanding.Decimal))
	}

	pack.Checks = checks(in)
	pack.Summary = summary(pack.KPI)
	return pack, nil
}

func checks(in Input) []string {
	out := []string{"Base contable consolidada a partir de CxC/CxP"}
	if in.Receivables == nil {
		out = append(out, "Sin datos de CxC: DSO, CCC y NWC_proxy no disponibles")
	}
	if in.Payables == nil {
		out = append(out, "Sin datos de CxP: DPO, CCC y NWC_proxy no disponibles")
	}
	for _, l := range []*Ledger{in.Receivables, in.Payables} {
		if l != nil && l.DefaultedRecords > 0 {
			out = append(out, fmt.Sprintf("%s: %d registros con montos faltantes tratados como 0", l.Kind.Label(), l.DefaultedRecords))
		}
	}
	return out
}

func summary(set kpi.Set) string {
	var parts []string
	for _, k := range []struct {
		name  string
		value decimal.NullDecimal
	}{
		{"DSO", set.DSO},
		{"DPO", set.DPO},
		{"CCC", set.CCC},
	} {
		if k.value.Valid {
			parts = append(parts, fmt.Sprintf("%s=%sd", k.name, k.value.Decimal.StringFixed(1)))
		}
	}
	if len(parts) == 0 {
		parts = append(parts, "sin KPIs")
	}
	return "Pack contable consolidado (" + strings.Join(parts, ", ") + ")"
}
