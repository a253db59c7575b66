package advisory

import (
	"math"

	"github.com/shopspring/decimal"
)

// Risk is a normalised fuzzy liquidity-risk reading; the three degrees sum to 1.
type Risk struct {
	Low    float64 `json:"low"`
	Medium float64 `json:"medium"`
	High   float64 `json:"high"`
}

// fuzzySet holds the membership degrees of one KPI
type fuzzySet struct {
	low, mid, high float64
}

type triangle struct {
	a, b, c float64
}

// triangular membership, zero outside (a, c) and one at b
func (t triangle) degree(x float64) float64 {
	switch {
	case x <= t.a || x >= t.c:
		return 0
	case x == t.b:
		return 1
	case x < t.b:
		return (x - t.a) / (t.b - t.a)
	default:
		return (t.c - x) / (t.c - t.b)
	}
}

type partition struct {
	low, mid, high triangle
}

func (p partition) fuzzify(x float64) fuzzySet {
	return fuzzySet{
		low:  p.low.degree(x),
		mid:  p.mid.degree(x),
		high: p.high.degree(x),
	}
}

var (
	turnoverPartition = partition{
		low:  triangle{0, 25, 40},
		mid:  triangle{30, 45, 60},
		high: triangle{50, 70, 100},
	}
	// a negative cycle is comfortable for cash
	cyclePartition = partition{
		low:  triangle{-60, -30, 0},
		mid:  triangle{-10, 10, 30},
		high: triangle{20, 45, 90},
	}
)

// LiquidityRisk combines DSO, DPO and CCC:
//   - high when DSO is high and CCC is high
//   - medium when DSO is medium and DPO is not high, or CCC is medium
//   - low when CCC is low, or DPO is high with DSO low or medium
//
// ok is false when any input is undefined or no rule fires at all.
func LiquidityRisk(dso, dpo, ccc decimal.NullDecimal) (Risk, bool) {
	if !dso.Valid || !dpo.Valid || !ccc.Valid {
		return Risk{}, false
	}

	d := turnoverPartition.fuzzify(dso.Decimal.InexactFloat64())
	p := turnoverPartition.fuzzify(dpo.Decimal.InexactFloat64())
	c := cyclePartition.fuzzify(ccc.Decimal.InexactFloat64())

	high := math.Min(d.high, c.high)
	medium := math.Max(math.Min(d.mid, 1-p.high), c.mid)
	low := math.Max(c.low, math.Min(p.high, math.Max(d.low, d.mid)))

	sum := high + medium + low
	if sum == 0 {
		return Risk{}, false
	}
	return Risk{
		Low:    low / sum,
		Medium: medium / sum,
		High:   high / sum,
	}, true
}
