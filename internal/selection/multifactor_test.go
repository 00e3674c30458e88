package selection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/internal/factors"
)

func TestMultifactor_LostWeightNotRedistributed(t *testing.T) {
	// Only quality inputs: value and momentum contribute nothing and their
	// weight is gone, not re-spread.
	tbl := dataset.New([]string{"a", "b", "c"})
	_ = tbl.SetNumeric(factors.ColNetIncome, []float64{10, 20, 30})
	_ = tbl.SetNumeric(factors.ColEquity, []float64{100, 100, 100})

	cfg := MultifactorConfig{QualityWeight: 0.5, ValueWeight: 0.3, MomentumWeight: 0.2}
	m := NewMultifactor(cfg, nil)

	scores, err := m.Score(tbl)
	require.NoError(t, err)

	// roe z [-1, 0, 1] scaled by the quality weight alone
	assert.InDelta(t, -0.5, scores[0], 1e-12)
	assert.InDelta(t, 0.0, scores[1], 1e-12)
	assert.InDelta(t, 0.5, scores[2], 1e-12)
}

func TestMultifactor_NoGroups(t *testing.T) {
	tbl := dataset.New([]string{"a"})
	_ = tbl.SetNumeric("unrelated", []float64{1})

	_, err := NewMultifactor(DefaultMultifactorConfig(), nil).Score(tbl)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoFactorInputs))
}

func TestMultifactor_MissingRowStaysMissing(t *testing.T) {
	tbl := dataset.New([]string{"a", "b", "c"})
	_ = tbl.SetNumeric(factors.ColNetIncome, []float64{10, 20, dataset.Missing()})
	_ = tbl.SetNumeric(factors.ColEquity, []float64{100, 100, 100})

	scores, err := NewMultifactor(DefaultMultifactorConfig(), nil).Score(tbl)
	require.NoError(t, err)
	assert.True(t, dataset.IsMissing(scores[2]), "no contributing group → missing, not zero")
	assert.False(t, dataset.IsMissing(scores[0]))
}

func TestSectorNeutralMultifactor(t *testing.T) {
	tbl := dataset.New([]string{"a1", "a2", "b1", "b2"})
	_ = tbl.SetNumeric(factors.ColNetIncome, []float64{10, 20, 1000, 2000})
	_ = tbl.SetNumeric(factors.ColEquity, []float64{100, 100, 100, 100})
	_ = tbl.SetString("sector", []string{"A", "A", "B", "B"})

	m := NewSectorNeutralMultifactor(DefaultMultifactorConfig(), nil)
	require.Equal(t, "sector_neutral_multifactor", m.Name())

	scores, err := m.Score(tbl)
	require.NoError(t, err)

	// Each sector's winner scores identically despite wildly different
	// raw ROE levels.
	assert.InDelta(t, scores[1], scores[3], 1e-12)
	assert.InDelta(t, scores[0], scores[2], 1e-12)
	assert.Greater(t, scores[1], scores[0])
}

func TestSectorNeutralMultifactor_NeedsSectorColumn(t *testing.T) {
	tbl := dataset.New([]string{"a", "b"})
	_ = tbl.SetNumeric(factors.ColNetIncome, []float64{10, 20})
	_ = tbl.SetNumeric(factors.ColEquity, []float64{100, 100})

	_, err := NewSectorNeutralMultifactor(DefaultMultifactorConfig(), nil).Score(tbl)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoFactorInputs))
}

func TestMultifactor_ScoreDeterministic(t *testing.T) {
	// Same table, same config: bit-identical scores on every call. Group
	// contributions must accumulate in a fixed order, or near-tied rows
	// could flip rank between runs.
	tbl := dataset.New([]string{"a", "b", "c", "d"})
	_ = tbl.SetNumeric(factors.ColNetIncome, []float64{10, 20, 30, 40})
	_ = tbl.SetNumeric(factors.ColEquity, []float64{100, 110, 120, 130})
	_ = tbl.SetNumeric(factors.ColMarketCap, []float64{300, 200, 100, 400})
	_ = tbl.SetNumeric(factors.ColBookValue, []float64{90, 105, 70, 260})

	m := NewMultifactor(DefaultMultifactorConfig(), nil)
	first, err := m.Score(tbl)
	require.NoError(t, err)

	for run := 0; run < 100; run++ {
		again, err := m.Score(tbl)
		require.NoError(t, err)
		for i := range first {
			assert.Equal(t, first[i], again[i], "run %d row %d", run, i)
		}
	}
}

func TestMultifactor_GroupCorrelations(t *testing.T) {
	// Quality and value constructed rank-opposed: the most profitable name
	// is the most expensive.
	tbl := dataset.New([]string{"a", "b", "c"})
	_ = tbl.SetNumeric(factors.ColNetIncome, []float64{10, 20, 30})
	_ = tbl.SetNumeric(factors.ColEquity, []float64{100, 100, 100})
	_ = tbl.SetNumeric(factors.ColMarketCap, []float64{100, 200, 300})
	_ = tbl.SetNumeric(factors.ColBookValue, []float64{100, 100, 100})

	m := NewMultifactor(DefaultMultifactorConfig(), nil)
	corrs, err := m.GroupCorrelations(tbl)
	require.NoError(t, err)

	corr, ok := corrs["quality_value"]
	require.True(t, ok)
	assert.InDelta(t, -1.0, corr, 1e-12)

	// Momentum has no inputs here: no momentum pair is reported
	_, hasQM := corrs["quality_momentum"]
	assert.False(t, hasQM)
}

func TestMultifactor_GroupAverages(t *testing.T) {
	tbl := dataset.New([]string{"a", "b"})
	_ = tbl.SetNumeric(factors.ColNetIncome, []float64{10, 30})
	_ = tbl.SetNumeric(factors.ColEquity, []float64{100, 100})

	avgs := NewMultifactor(DefaultMultifactorConfig(), nil).GroupAverages(tbl)
	require.Contains(t, avgs, "quality")
	assert.InDelta(t, 0.2, avgs["quality"]["roe"], 1e-12)
}
