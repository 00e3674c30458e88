package factors

import (
	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/internal/stats"
)

// Value measures cheapness: price multiples (favor-low) and enterprise
// earnings yield (favor-high). Ratios whose denominators can turn
// meaningless when non-positive (earnings, book value, operating cash
// flow) go missing instead of producing a negative multiple.
type Value struct{}

// NewValue creates the value factor.
func NewValue() *Value {
	return &Value{}
}

func (v *Value) Name() string {
	return "value"
}

func (v *Value) FactorNames() []string {
	return []string{"per", "pbr", "psr", "pcr", "earnings_yield"}
}

func (v *Value) AscendingMap() map[string]bool {
	return map[string]bool{
		"per":            true,
		"pbr":            true,
		"psr":            true,
		"pcr":            true,
		"earnings_yield": false,
	}
}

func (v *Value) Calculate(t *dataset.Table) (*dataset.Table, error) {
	out := t.Copy()
	addRatio(out, "per", ColMarketCap, ColNetIncome, stats.SafeDivPositive)
	addRatio(out, "pbr", ColMarketCap, ColBookValue, stats.SafeDivPositive)
	addRatio(out, "psr", ColMarketCap, ColRevenue, stats.SafeDiv)
	addRatio(out, "pcr", ColMarketCap, ColOperatingCashFlow, stats.SafeDivPositive)
	addEarningsYield(out)
	return out, nil
}

// addEarningsYield adds operating_income / (market_cap + net_debt), the
// enterprise-value variant used by the Magic Formula.
func addEarningsYield(t *dataset.Table) {
	oi, okOI := t.Numeric(ColOperatingIncome)
	mc, okMC := t.Numeric(ColMarketCap)
	nd, okND := t.Numeric(ColNetDebt)
	if !okOI || !okMC || !okND {
		return
	}
	col := make([]float64, t.Len())
	for i := range col {
		if dataset.IsMissing(mc[i]) || dataset.IsMissing(nd[i]) {
			col[i] = dataset.Missing()
			continue
		}
		col[i] = stats.SafeDiv(oi[i], mc[i]+nd[i])
	}
	_ = t.SetNumeric("earnings_yield", col)
}
