package selection

import (
	"fmt"

	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/internal/factors"
	"github.com/wonny/factorlab/internal/stats"
)

// MagicFormula combines earnings yield and return on capital, each
// independently ranked and z-scored, summed equally: cheap AND good.
// When enterprise-value inputs are unavailable it falls back to the
// simplified legs, P/E (favor-low) and ROE (favor-high).
type MagicFormula struct {
	simplified bool
}

// NewMagicFormula creates the strategy. simplified forces the P/E + ROE
// legs even when enterprise-value inputs exist.
func NewMagicFormula(simplified bool) *MagicFormula {
	return &MagicFormula{simplified: simplified}
}

func (m *MagicFormula) Name() string {
	return "magic_formula"
}

// Score builds both legs, masks non-positive values (the premise needs
// both legs economically meaningful) and sums the z-scored ranks.
func (m *MagicFormula) Score(t *dataset.Table) ([]float64, error) {
	legA, legB, ascA, ascB, err := m.legs(t)
	if err != nil {
		return nil, err
	}
	tmp := dataset.New(t.Codes())
	_ = tmp.SetNumeric("leg_a", maskNonPositive(legA))
	_ = tmp.SetNumeric("leg_b", maskNonPositive(legB))
	scores := stats.CombineFactors(tmp,
		[]string{"leg_a", "leg_b"},
		nil,
		map[string]bool{"leg_a": ascA, "leg_b": ascB},
	)
	return scores, nil
}

// LegCorrelation returns the Spearman correlation between the two legs'
// normalized scores. Typically negative: cheapness and quality pull
// apart, which is exactly why names scoring well on both are scarce.
func (m *MagicFormula) LegCorrelation(t *dataset.Table) (float64, error) {
	legA, legB, ascA, ascB, err := m.legs(t.Copy())
	if err != nil {
		return dataset.Missing(), err
	}
	za := stats.ZScoreRank(maskNonPositive(legA), ascA)
	zb := stats.ZScoreRank(maskNonPositive(legB), ascB)
	return stats.SpearmanCorr(za, zb), nil
}

// legs computes (earnings_yield, return_on_capital) or the simplified
// (per, roe) pair, with each leg's ascending direction.
func (m *MagicFormula) legs(t *dataset.Table) (legA, legB []float64, ascA, ascB bool, err error) {
	if !m.simplified && m.hasFullInputs(t) {
		legA = enterpriseEarningsYield(t)
		legB = returnOnCapital(t)
		return legA, legB, false, false, nil
	}
	if m.hasSimplifiedInputs(t) {
		legA = columnRatio(t, factors.ColMarketCap, factors.ColNetIncome, stats.SafeDivPositive)
		legB = columnRatio(t, factors.ColNetIncome, factors.ColEquity, stats.SafeDiv)
		return legA, legB, true, false, nil
	}
	return nil, nil, false, false, fmt.Errorf("magic formula inputs missing: %w", ErrNoFactorInputs)
}

func (m *MagicFormula) hasFullInputs(t *dataset.Table) bool {
	return t.HasNumeric(factors.ColOperatingIncome) &&
		t.HasNumeric(factors.ColMarketCap) &&
		t.HasNumeric(factors.ColNetDebt) &&
		t.HasNumeric(factors.ColInvestedCapital)
}

func (m *MagicFormula) hasSimplifiedInputs(t *dataset.Table) bool {
	return t.HasNumeric(factors.ColMarketCap) &&
		t.HasNumeric(factors.ColNetIncome) &&
		t.HasNumeric(factors.ColEquity)
}

func enterpriseEarningsYield(t *dataset.Table) []float64 {
	oi, _ := t.Numeric(factors.ColOperatingIncome)
	mc, _ := t.Numeric(factors.ColMarketCap)
	nd, _ := t.Numeric(factors.ColNetDebt)
	out := make([]float64, t.Len())
	for i := range out {
		if dataset.IsMissing(mc[i]) || dataset.IsMissing(nd[i]) {
			out[i] = dataset.Missing()
			continue
		}
		out[i] = stats.SafeDiv(oi[i], mc[i]+nd[i])
	}
	return out
}

func returnOnCapital(t *dataset.Table) []float64 {
	return columnRatio(t, factors.ColOperatingIncome, factors.ColInvestedCapital, stats.SafeDivPositive)
}

func columnRatio(t *dataset.Table, numCol, denCol string, div func(num, den float64) float64) []float64 {
	num, _ := t.Numeric(numCol)
	den, _ := t.Numeric(denCol)
	out := make([]float64, t.Len())
	for i := range out {
		out[i] = div(num[i], den[i])
	}
	return out
}

// maskNonPositive replaces values <= 0 with missing.
func maskNonPositive(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if dataset.IsMissing(v) || v <= 0 {
			out[i] = dataset.Missing()
			continue
		}
		out[i] = v
	}
	return out
}
