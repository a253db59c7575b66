package advisory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"asistente/internal/aging"
	"asistente/internal/kpi"
)

// HypothesisInsufficientData is returned alone when no rule fires.
const HypothesisInsufficientData = "Datos insuficientes o sin señales claras; revisar detalle de aging y KPIs para concluir causas."

var hundred = decimal.NewFromInt(100)

// Hypotheses lists likely causes behind the KPIs and aging, in a fixed rule
// order and without duplicates. Either aging may be nil.
func Hypotheses(set kpi.Set, ar, ap *aging.Buckets, rules Rules) []string {
	var causes []string

	if set.DSO.Valid && set.DSO.Decimal.GreaterThan(rules.DSOHigh) {
		causes = append(causes, fmt.Sprintf("DSO elevado (%sd > %sd) sugiere lentitud en cobranza / crédito laxo.",
			set.DSO.Decimal.StringFixed(1), rules.DSOHigh.String()))
	}

	if set.DPO.Valid && set.DPO.Decimal.LessThan(rules.DPOLow) {
		causes = append(causes, fmt.Sprintf("DPO bajo (%sd < %sd) sugiere poca negociación con proveedores y salidas de caja tempranas.",
			set.DPO.Decimal.StringFixed(1), rules.DPOLow.String()))
	}

	if set.CCC.Valid && set.CCC.Decimal.GreaterThan(rules.CCCHigh) {
		causes = append(causes, fmt.Sprintf("CCC positivo y alto (%sd > %sd) indica presión de ciclo de caja.",
			set.CCC.Decimal.StringFixed(1), rules.CCCHigh.String()))
	}

	if share, ok := LongTailShare(ar); ok && share.GreaterThanOrEqual(rules.LongTailMin) {
		causes = append(causes, fmt.Sprintf("Concentración de cartera vencida en cola larga (≥60d ~%s%%) presiona el DSO y la liquidez.",
			percent(share)))
	}

	if share, ok := NearDueShare(ap); ok && share.GreaterThanOrEqual(rules.NearDueMin) {
		causes = append(causes, fmt.Sprintf("Alta proporción de CxP próximos a vencer (~%s%%) podría tensionar pagos si no se renegocia.",
			percent(share)))
	}

	if set.DSO.Valid && set.DPO.Valid && set.DSO.Decimal.Sub(set.DPO.Decimal).GreaterThan(rules.DSODPOGap) {
		causes = append(causes, "Desbalance entre DSO y DPO (cobras más tarde de lo que pagas) impacta el capital de trabajo.")
	}

	if len(causes) == 0 {
		return []string{HypothesisInsufficientData}
	}
	return dedupe(causes)
}

// LongTailShare is the part of overdue receivables in the 61_90 and 90_plus
// buckets. ok is false when nothing is overdue.
func LongTailShare(b *aging.Buckets) (decimal.Decimal, bool) {
	if b == nil {
		return decimal.Zero, false
	}
	return share(b.Days61to90.Add(b.Days90Plus), b.Sum())
}

// NearDueShare is the part of overdue payables in the 0_30 bucket.
func NearDueShare(b *aging.Buckets) (decimal.Decimal, bool) {
	if b == nil {
		return decimal.Zero, false
	}
	return share(b.Days0to30, b.Sum())
}

func share(part, total decimal.Decimal) (decimal.Decimal, bool) {
	if !total.IsPositive() {
		return decimal.Zero, false
	}
	return part.Div(total), true
}

func percent(share decimal.Decimal) string {
	return share.Mul(hundred).Round(0).String()
}

func dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
