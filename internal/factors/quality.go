package factors

import (
	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/internal/stats"
)

// Input column names shared across factors.
const (
	ColNetIncome         = "net_income"
	ColEquity            = "equity"
	ColGrossProfit       = "gross_profit"
	ColTotalAssets       = "total_assets"
	ColOperatingCashFlow = "operating_cash_flow"
	ColOperatingIncome   = "operating_income"
	ColMarketCap         = "market_cap"
	ColBookValue         = "book_value"
	ColRevenue           = "revenue"
	ColNetDebt           = "net_debt"
	ColInvestedCapital   = "invested_capital"
)

// Quality measures profitability: ROE, gross profit to assets, and the
// operating cash flow ratio. All favorable-high.
type Quality struct{}

// NewQuality creates the quality factor.
func NewQuality() *Quality {
	return &Quality{}
}

func (q *Quality) Name() string {
	return "quality"
}

func (q *Quality) FactorNames() []string {
	return []string{"roe", "gross_profit_to_assets", "ocf_ratio"}
}

func (q *Quality) AscendingMap() map[string]bool {
	return map[string]bool{
		"roe":                    false,
		"gross_profit_to_assets": false,
		"ocf_ratio":              false,
	}
}

// Calculate adds each quality column whose inputs are present. Division
// by zero or an undefined denominator yields missing, never infinity.
func (q *Quality) Calculate(t *dataset.Table) (*dataset.Table, error) {
	out := t.Copy()
	addRatio(out, "roe", ColNetIncome, ColEquity, stats.SafeDiv)
	addRatio(out, "gross_profit_to_assets", ColGrossProfit, ColTotalAssets, stats.SafeDiv)
	addRatio(out, "ocf_ratio", ColOperatingCashFlow, ColTotalAssets, stats.SafeDiv)
	return out, nil
}

// addRatio adds name = div(num, den) when both inputs exist.
func addRatio(t *dataset.Table, name, numCol, denCol string, div func(num, den float64) float64) {
	num, okNum := t.Numeric(numCol)
	den, okDen := t.Numeric(denCol)
	if !okNum || !okDen {
		return
	}
	col := make([]float64, t.Len())
	for i := range col {
		col[i] = div(num[i], den[i])
	}
	_ = t.SetNumeric(name, col)
}
