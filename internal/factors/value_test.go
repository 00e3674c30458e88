package factors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/factorlab/internal/dataset"
)

func TestValue_Calculate(t *testing.T) {
	tbl := dataset.New([]string{"a", "b", "c"})
	_ = tbl.SetNumeric(ColMarketCap, []float64{1000, 2000, 3000})
	_ = tbl.SetNumeric(ColNetIncome, []float64{100, -50, 300})
	_ = tbl.SetNumeric(ColBookValue, []float64{500, 1000, 0})
	_ = tbl.SetNumeric(ColRevenue, []float64{2000, 4000, 6000})
	_ = tbl.SetNumeric(ColOperatingCashFlow, []float64{200, 400, 600})

	out, err := NewValue().Calculate(tbl)
	require.NoError(t, err)

	per, _ := out.Numeric("per")
	assert.InDelta(t, 10.0, per[0], 1e-12)
	assert.True(t, dataset.IsMissing(per[1]), "negative earnings make PER meaningless")
	assert.InDelta(t, 10.0, per[2], 1e-12)

	pbr, _ := out.Numeric("pbr")
	assert.InDelta(t, 2.0, pbr[0], 1e-12)
	assert.True(t, dataset.IsMissing(pbr[2]), "zero book value")

	psr, _ := out.Numeric("psr")
	assert.InDelta(t, 0.5, psr[0], 1e-12)

	pcr, _ := out.Numeric("pcr")
	assert.InDelta(t, 5.0, pcr[0], 1e-12)
}

func TestValue_EarningsYield(t *testing.T) {
	tbl := dataset.New([]string{"a", "b", "c"})
	_ = tbl.SetNumeric(ColOperatingIncome, []float64{100, 100, 100})
	_ = tbl.SetNumeric(ColMarketCap, []float64{900, 500, dataset.Missing()})
	_ = tbl.SetNumeric(ColNetDebt, []float64{100, -500, 100})

	out, err := NewValue().Calculate(tbl)
	require.NoError(t, err)

	ey, ok := out.Numeric("earnings_yield")
	require.True(t, ok)
	assert.InDelta(t, 0.1, ey[0], 1e-12)
	assert.True(t, dataset.IsMissing(ey[1]), "zero enterprise value")
	assert.True(t, dataset.IsMissing(ey[2]))
}

func TestValue_EarningsYield_RequiresNetDebt(t *testing.T) {
	tbl := dataset.New([]string{"a"})
	_ = tbl.SetNumeric(ColOperatingIncome, []float64{100})
	_ = tbl.SetNumeric(ColMarketCap, []float64{1000})

	out, err := NewValue().Calculate(tbl)
	require.NoError(t, err)
	assert.False(t, out.HasNumeric("earnings_yield"))
}

func TestValue_Direction(t *testing.T) {
	asc := NewValue().AscendingMap()
	assert.True(t, asc["per"])
	assert.True(t, asc["pbr"])
	assert.True(t, asc["psr"])
	assert.True(t, asc["pcr"])
	assert.False(t, asc["earnings_yield"])
}
