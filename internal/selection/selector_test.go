package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/factorlab/internal/dataset"
)

// stubStrategy scores straight from a named column.
type stubStrategy struct {
	column string
}

func (s *stubStrategy) Name() string { return "stub" }

func (s *stubStrategy) Score(t *dataset.Table) ([]float64, error) {
	col, ok := t.Numeric(s.column)
	if !ok {
		return nil, ErrNoFactorInputs
	}
	return col, nil
}

func TestSelector_Select(t *testing.T) {
	tbl := dataset.New([]string{"a", "b", "c", "d"})
	_ = tbl.SetNumeric("x", []float64{3, 1, dataset.Missing(), 2})

	sel := NewSelector(Config{TopN: 2}, nil)
	result, err := sel.Select(&stubStrategy{column: "x"}, tbl)
	require.NoError(t, err)

	assert.Equal(t, "stub", result.Strategy)
	assert.Equal(t, 4, result.CandidateCount)
	require.Equal(t, 2, result.SelectedCount)
	assert.Equal(t, []string{"a", "d"}, result.Table.Codes())

	scores, _ := result.Table.Numeric("score")
	ranks, _ := result.Table.Numeric("rank")
	assert.Equal(t, []float64{3, 2}, scores)
	assert.Equal(t, []float64{1, 2}, ranks)
}

func TestSelector_TopNZeroSelectsAllValid(t *testing.T) {
	tbl := dataset.New([]string{"a", "b", "c"})
	_ = tbl.SetNumeric("x", []float64{1, dataset.Missing(), 2})

	result, err := NewSelector(Config{TopN: 0}, nil).Select(&stubStrategy{column: "x"}, tbl)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SelectedCount, "missing scores stay out even with no cap")
}

func TestSelector_Filters(t *testing.T) {
	tbl := dataset.New([]string{"big", "small", "nomc", "holding", "halted"})
	_ = tbl.SetNumeric("market_cap", []float64{500, 50, dataset.Missing(), 500, 500})
	_ = tbl.SetString("sector", []string{"IT", "IT", "IT", "지주회사", "IT"})
	_ = tbl.SetString("status", []string{"normal", "normal", "", "normal", "halted"})
	_ = tbl.SetNumeric("x", []float64{1, 2, 3, 4, 5})

	cfg := Config{
		TopN:                10,
		MinMarketCap:        100,
		ExcludeSectors:      []string{"지주"},
		RequireNormalStatus: true,
	}
	result, err := NewSelector(cfg, nil).Select(&stubStrategy{column: "x"}, tbl)
	require.NoError(t, err)

	// small: below cap. nomc: missing cap fails a positive cap filter.
	// holding: sector substring match. halted: non-normal status.
	assert.Equal(t, 1, result.CandidateCount)
	assert.Equal(t, []string{"big"}, result.Table.Codes())
}

func TestSelector_FiltersSkippedWithoutColumns(t *testing.T) {
	tbl := dataset.New([]string{"a", "b"})
	_ = tbl.SetNumeric("x", []float64{1, 2})

	cfg := Config{TopN: 10, MinMarketCap: 100, RequireNormalStatus: true}
	result, err := NewSelector(cfg, nil).Select(&stubStrategy{column: "x"}, tbl)
	require.NoError(t, err)
	assert.Equal(t, 2, result.CandidateCount, "filters without backing columns are inactive")
}

func TestSelector_InputUntouched(t *testing.T) {
	tbl := dataset.New([]string{"a", "b"})
	_ = tbl.SetNumeric("x", []float64{1, 2})

	_, err := NewSelector(Config{TopN: 1}, nil).Select(&stubStrategy{column: "x"}, tbl)
	require.NoError(t, err)

	assert.False(t, tbl.HasNumeric("score"))
	assert.False(t, tbl.HasNumeric("rank"))
	assert.Equal(t, 2, tbl.Len())
}

type badLengthStrategy struct{}

func (badLengthStrategy) Name() string { return "bad" }
func (badLengthStrategy) Score(t *dataset.Table) ([]float64, error) {
	return []float64{1}, nil
}

func TestSelector_ScoreLengthMismatch(t *testing.T) {
	tbl := dataset.New([]string{"a", "b"})
	_, err := NewSelector(DefaultConfig(), nil).Select(badLengthStrategy{}, tbl)
	assert.Error(t, err)
}

func TestSelector_SectorNeutralEndToEnd(t *testing.T) {
	tbl := dataset.New([]string{"a1", "a2", "a3", "b1", "b2"})
	_ = tbl.SetNumeric("f", []float64{0.5, 0.2, 0.9, -0.1, 0.05})
	_ = tbl.SetString("sector", []string{"A", "A", "A", "B", "B"})

	strategy := NewSectorNeutral(SectorNeutralConfig{
		FactorColumn:    "f",
		StocksPerSector: 1,
	})
	result, err := NewSelector(Config{TopN: 2}, nil).Select(strategy, tbl)
	require.NoError(t, err)

	// Sector A winner (z=+1) then sector B winner (z=+0.7071)
	require.Equal(t, 2, result.SelectedCount)
	assert.Equal(t, []string{"a3", "b2"}, result.Table.Codes())

	scores, _ := result.Table.Numeric("score")
	assert.InDelta(t, 1.0, scores[0], 1e-4)
	assert.InDelta(t, 0.7071, scores[1], 1e-4)
}
