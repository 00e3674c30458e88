package selection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/internal/factors"
	"github.com/wonny/factorlab/internal/stats"
)

func magicTable() *dataset.Table {
	tbl := dataset.New([]string{"a", "b", "c", "d"})
	_ = tbl.SetNumeric(factors.ColOperatingIncome, []float64{100, 200, 300, -50})
	_ = tbl.SetNumeric(factors.ColMarketCap, []float64{1000, 1000, 1000, 1000})
	_ = tbl.SetNumeric(factors.ColNetDebt, []float64{0, 0, 0, 0})
	_ = tbl.SetNumeric(factors.ColInvestedCapital, []float64{500, 2000, 1000, 500})
	return tbl
}

func TestMagicFormula_Score(t *testing.T) {
	m := NewMagicFormula(false)
	scores, err := m.Score(magicTable())
	require.NoError(t, err)
	require.Len(t, scores, 4)

	// yield: a=0.1 b=0.2 c=0.3 → z [-1,0,1]; roc: a=0.2 b=0.1 c=0.3 → z [0,-1,1]
	// equal weights halve each
	assert.InDelta(t, -0.5, scores[0], 1e-12)
	assert.InDelta(t, -0.5, scores[1], 1e-12)
	assert.InDelta(t, 1.0, scores[2], 1e-12)

	// Negative operating income masks both legs: no score at all
	assert.True(t, dataset.IsMissing(scores[3]))
}

func TestMagicFormula_SimplifiedFallback(t *testing.T) {
	tbl := dataset.New([]string{"a", "b", "c"})
	_ = tbl.SetNumeric(factors.ColMarketCap, []float64{1000, 1000, 1000})
	_ = tbl.SetNumeric(factors.ColNetIncome, []float64{100, 200, 50})
	_ = tbl.SetNumeric(factors.ColEquity, []float64{500, 2000, 250})

	// No enterprise-value inputs: falls back without being asked
	m := NewMagicFormula(false)
	scores, err := m.Score(tbl)
	require.NoError(t, err)

	// per: a=10 b=5 c=20 (favor-low → z [0, 1, -1])
	// roe: a=0.2 b=0.1 c=0.2 (tie shares the low rank → z [0.5774, -1.1547, 0.5774])
	assert.InDelta(t, 0.5*0+0.5*0.5774, scores[0], 1e-4)
	assert.InDelta(t, 0.5*1+0.5*(-1.1547), scores[1], 1e-4)
	assert.InDelta(t, 0.5*(-1)+0.5*0.5774, scores[2], 1e-4)
}

func TestMagicFormula_ForcedSimplified(t *testing.T) {
	tbl := magicTable()
	_ = tbl.SetNumeric(factors.ColNetIncome, []float64{80, 160, 240, -40})
	_ = tbl.SetNumeric(factors.ColEquity, []float64{400, 800, 800, 400})

	full, err := NewMagicFormula(false).Score(tbl)
	require.NoError(t, err)
	simplified, err := NewMagicFormula(true).Score(tbl)
	require.NoError(t, err)

	// The forced variant must ignore the enterprise-value inputs entirely:
	// full mode masks d via operating income, simplified via net income.
	assert.True(t, dataset.IsMissing(full[3]))
	assert.True(t, dataset.IsMissing(simplified[3]))

	// Different legs, different scores
	assert.InDelta(t, -0.5, full[0], 1e-4)
	assert.InDelta(t, -0.7887, simplified[0], 1e-4)
}

func TestMagicFormula_NoInputs(t *testing.T) {
	tbl := dataset.New([]string{"a"})
	_ = tbl.SetNumeric("unrelated", []float64{1})

	_, err := NewMagicFormula(false).Score(tbl)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoFactorInputs))
}

func TestMagicFormula_ScoresDependOnlyOnRanks(t *testing.T) {
	// Stretching a leg monotonically must not move any score: the combine
	// step ranks before scaling.
	base := magicTable()
	stretched := magicTable()
	oi, _ := stretched.Numeric(factors.ColOperatingIncome)
	scaled := make([]float64, len(oi))
	for i, v := range oi {
		scaled[i] = v * v * v / 10000 // strictly monotone on the positive values
	}
	_ = stretched.SetNumeric(factors.ColOperatingIncome, scaled)
	// keep return-on-capital ordering intact too
	_ = stretched.SetNumeric(factors.ColInvestedCapital, []float64{1, 1, 1, 1})
	_ = base.SetNumeric(factors.ColInvestedCapital, []float64{1, 1, 1, 1})

	m := NewMagicFormula(false)
	baseScores, err := m.Score(base)
	require.NoError(t, err)
	stretchedScores, err := m.Score(stretched)
	require.NoError(t, err)

	for i := range baseScores {
		if dataset.IsMissing(baseScores[i]) {
			assert.True(t, dataset.IsMissing(stretchedScores[i]), "index %d", i)
			continue
		}
		assert.InDelta(t, baseScores[i], stretchedScores[i], 1e-12, "index %d", i)
	}
}

func TestMagicFormula_RankIdenticalLegs(t *testing.T) {
	// When both legs rank every security identically, the combined ranking
	// collapses to either leg's ranking alone.
	tbl := dataset.New([]string{"a", "b", "c", "d"})
	_ = tbl.SetNumeric(factors.ColOperatingIncome, []float64{100, 400, 200, 300})
	_ = tbl.SetNumeric(factors.ColMarketCap, []float64{1000, 1000, 1000, 1000})
	_ = tbl.SetNumeric(factors.ColNetDebt, []float64{0, 0, 0, 0})
	_ = tbl.SetNumeric(factors.ColInvestedCapital, []float64{1000, 1000, 1000, 1000})

	m := NewMagicFormula(false)

	// Both legs reduce to operating income over a shared constant:
	// identical ranks by construction.
	corr, err := m.LegCorrelation(tbl)
	require.NoError(t, err)
	require.InDelta(t, 1.0, corr, 1e-12)

	scores, err := m.Score(tbl)
	require.NoError(t, err)

	// Combined ordering = single-leg ordering = operating income descending
	assert.Equal(t, []int{1, 3, 2, 0}, stats.SelectTopN(scores, 4))
}

func TestMagicFormula_LegCorrelation(t *testing.T) {
	// Construct legs that rank exactly opposite: cheapest is least
	// profitable.
	tbl := dataset.New([]string{"a", "b", "c"})
	_ = tbl.SetNumeric(factors.ColOperatingIncome, []float64{100, 200, 300})
	_ = tbl.SetNumeric(factors.ColMarketCap, []float64{1000, 1000, 1000})
	_ = tbl.SetNumeric(factors.ColNetDebt, []float64{0, 0, 0})
	_ = tbl.SetNumeric(factors.ColInvestedCapital, []float64{200, 1000, 3000})

	corr, err := NewMagicFormula(false).LegCorrelation(tbl)
	require.NoError(t, err)
	// yield ranks a<b<c, roc ranks c<b<a
	assert.InDelta(t, -1.0, corr, 1e-12)
}
