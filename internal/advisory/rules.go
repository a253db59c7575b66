// Package advisory turns consolidated KPIs and aging into management findings,
// action orders, causal hypotheses and a fuzzy liquidity-risk estimate. All of
// it is rule based; thresholds live in Rules.
package advisory

import (
	"time"

	"github.com/shopspring/decimal"

	"asistente/internal/consolidation"
)

// Rules holds the thresholds the advisory checks compare against
type Rules struct {
	DSOHigh     decimal.Decimal // days
	DPOLow      decimal.Decimal // days
	CCCHigh     decimal.Decimal // days
	DSODPOGap   decimal.Decimal // days DSO may exceed DPO
	LongTailMin decimal.Decimal // share of overdue AR at 61 days or more
	NearDueMin  decimal.Decimal // share of overdue AP in the 0_30 bucket
}

// DefaultRules returns the standard thresholds
func DefaultRules() Rules {
	return Rules{
		DSOHigh:     decimal.NewFromInt(45),
		DPOLow:      decimal.NewFromInt(40),
		CCCHigh:     decimal.NewFromInt(20),
		DSODPOGap:   decimal.NewFromInt(10),
		LongTailMin: decimal.RequireFromString("0.30"),
		NearDueMin:  decimal.RequireFromString("0.40"),
	}
}

// Findings and the orders they raise
const (
	FindingDSOHigh = "DSO alto: intensificar cobranza"
	FindingDPOLow  = "DPO bajo: negociar plazos con proveedores"
)

// Order is an action assigned to a team with a deadline
type Order struct {
	Title string `json:"title"`
	Owner string `json:"owner"`
	KPI   string `json:"kpi"`
	Due   string `json:"due"`
}

// Assessment is the administrative reading of a pack
type Assessment struct {
	Findings []string `json:"hallazgos"`
	Orders   []Order  `json:"orders"`
}

// Assess compares the pack KPIs with rules. Undefined KPIs raise nothing. Every
// order is due on due, normally the last day of the period.
func Assess(pack consolidation.Pack, rules Rules, due time.Time) Assessment {
	a := Assessment{
		Findings: []string{},
		Orders:   []Order{},
	}
	dueDate := due.Format("2006-01-02")

	if pack.KPI.DSO.Valid && pack.KPI.DSO.Decimal.GreaterThan(rules.DSOHigh) {
		a.Findings = append(a.Findings, FindingDSOHigh)
		a.Orders = append(a.Orders, Order{
			Title: "Campaña dunning top-10 clientes",
			Owner: "CxC",
			KPI:   "DSO",
			Due:   dueDate,
		})
	}

	if pack.KPI.DPO.Valid && pack.KPI.DPO.Decimal.LessThan(rules.DPOLow) {
		a.Findings = append(a.Findings, FindingDPOLow)
		a.Orders = append(a.Orders, Order{
			Title: "Renegociar 3 proveedores clave",
			Owner: "CxP",
			KPI:   "DPO",
			Due:   dueDate,
		})
	}

	return a
}
