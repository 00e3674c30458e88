package factors

import (
	"fmt"
	"sort"

	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/internal/stats"
)

// MomentumConfig controls the horizons and variants of the momentum
// factor. Horizons are months; one month is PeriodsPerMonth trading days.
type MomentumConfig struct {
	HorizonsMonths  []int
	PeriodsPerMonth int
	// SkipRecentMonth adds the "12-minus-1" column: momentum over the
	// longest horizon excluding the most recent month, which avoids
	// short-term reversal contamination.
	SkipRecentMonth bool
	// Acceleration adds shortest-horizon minus longest-horizon momentum.
	Acceleration bool
	// Benchmark, when set, adds relative strength over the longest
	// horizon versus this price series (oldest first).
	Benchmark []float64
}

// DefaultMomentumConfig returns 3/6/12 month trailing returns at 21
// trading days per month.
func DefaultMomentumConfig() MomentumConfig {
	return MomentumConfig{
		HorizonsMonths:  []int{3, 6, 12},
		PeriodsPerMonth: 21,
	}
}

// Momentum computes trailing total returns per security. Two modes:
// with a price history (code → series, oldest first) returns come from
// the series; without one, Calculate reads cross-sectional "close" and
// "close_lag_<periods>" columns prepared by the data layer. All columns
// favorable-high.
type Momentum struct {
	cfg     MomentumConfig
	history map[string][]float64
}

// NewMomentum creates the momentum factor. history may be nil for the
// cross-sectional column mode.
func NewMomentum(cfg MomentumConfig, history map[string][]float64) *Momentum {
	if len(cfg.HorizonsMonths) == 0 {
		cfg.HorizonsMonths = DefaultMomentumConfig().HorizonsMonths
	}
	if cfg.PeriodsPerMonth <= 0 {
		cfg.PeriodsPerMonth = DefaultMomentumConfig().PeriodsPerMonth
	}
	horizons := make([]int, len(cfg.HorizonsMonths))
	copy(horizons, cfg.HorizonsMonths)
	sort.Ints(horizons)
	cfg.HorizonsMonths = horizons
	return &Momentum{cfg: cfg, history: history}
}

func (m *Momentum) Name() string {
	return "momentum"
}

func (m *Momentum) FactorNames() []string {
	names := make([]string, 0, len(m.cfg.HorizonsMonths)+3)
	for _, h := range m.cfg.HorizonsMonths {
		names = append(names, momentumColumn(h))
	}
	if m.cfg.SkipRecentMonth {
		names = append(names, m.skipColumn())
	}
	if m.cfg.Benchmark != nil {
		names = append(names, "relative_strength")
	}
	if m.cfg.Acceleration && len(m.cfg.HorizonsMonths) >= 2 {
		names = append(names, "acceleration")
	}
	return names
}

func (m *Momentum) AscendingMap() map[string]bool {
	asc := make(map[string]bool, len(m.FactorNames()))
	for _, name := range m.FactorNames() {
		asc[name] = false
	}
	return asc
}

func momentumColumn(months int) string {
	return fmt.Sprintf("momentum_%dm", months)
}

func (m *Momentum) skipColumn() string {
	longest := m.cfg.HorizonsMonths[len(m.cfg.HorizonsMonths)-1]
	return fmt.Sprintf("momentum_%d_1", longest)
}

func (m *Momentum) Calculate(t *dataset.Table) (*dataset.Table, error) {
	out := t.Copy()
	if m.history != nil {
		m.calculateFromHistory(out)
	} else {
		m.calculateFromColumns(out)
	}
	m.addAcceleration(out)
	return out, nil
}

func (m *Momentum) calculateFromHistory(t *dataset.Table) {
	ppm := m.cfg.PeriodsPerMonth
	longest := m.cfg.HorizonsMonths[len(m.cfg.HorizonsMonths)-1]
	for _, h := range m.cfg.HorizonsMonths {
		col := make([]float64, t.Len())
		for i := 0; i < t.Len(); i++ {
			col[i] = TrailingReturn(m.history[t.Code(i)], h*ppm)
		}
		_ = t.SetNumeric(momentumColumn(h), col)
	}
	if m.cfg.SkipRecentMonth {
		col := make([]float64, t.Len())
		for i := 0; i < t.Len(); i++ {
			col[i] = TrailingReturnSkip(m.history[t.Code(i)], (longest-1)*ppm, ppm)
		}
		_ = t.SetNumeric(m.skipColumn(), col)
	}
	if m.cfg.Benchmark != nil {
		col := make([]float64, t.Len())
		for i := 0; i < t.Len(); i++ {
			col[i] = RelativeStrength(m.history[t.Code(i)], m.cfg.Benchmark, longest*ppm)
		}
		_ = t.SetNumeric("relative_strength", col)
	}
}

func (m *Momentum) calculateFromColumns(t *dataset.Table) {
	ppm := m.cfg.PeriodsPerMonth
	longest := m.cfg.HorizonsMonths[len(m.cfg.HorizonsMonths)-1]
	close_, ok := t.Numeric("close")
	if !ok {
		return
	}
	for _, h := range m.cfg.HorizonsMonths {
		lag, okLag := t.Numeric(fmt.Sprintf("close_lag_%d", h*ppm))
		if !okLag {
			continue
		}
		_ = t.SetNumeric(momentumColumn(h), lagReturns(close_, lag))
	}
	if m.cfg.SkipRecentMonth {
		recent, okRecent := t.Numeric(fmt.Sprintf("close_lag_%d", ppm))
		far, okFar := t.Numeric(fmt.Sprintf("close_lag_%d", longest*ppm))
		if okRecent && okFar {
			_ = t.SetNumeric(m.skipColumn(), lagReturns(recent, far))
		}
	}
	if m.cfg.Benchmark != nil {
		bench := TrailingReturn(m.cfg.Benchmark, longest*ppm)
		lag, okLag := t.Numeric(fmt.Sprintf("close_lag_%d", longest*ppm))
		if okLag && !dataset.IsMissing(bench) {
			rets := lagReturns(close_, lag)
			for i, r := range rets {
				if !dataset.IsMissing(r) {
					rets[i] = r - bench
				}
			}
			_ = t.SetNumeric("relative_strength", rets)
		}
	}
}

func (m *Momentum) addAcceleration(t *dataset.Table) {
	if !m.cfg.Acceleration || len(m.cfg.HorizonsMonths) < 2 {
		return
	}
	short, okS := t.Numeric(momentumColumn(m.cfg.HorizonsMonths[0]))
	long, okL := t.Numeric(momentumColumn(m.cfg.HorizonsMonths[len(m.cfg.HorizonsMonths)-1]))
	if !okS || !okL {
		return
	}
	col := make([]float64, t.Len())
	for i := range col {
		if dataset.IsMissing(short[i]) || dataset.IsMissing(long[i]) {
			col[i] = dataset.Missing()
			continue
		}
		col[i] = short[i] - long[i]
	}
	_ = t.SetNumeric("acceleration", col)
}

// lagReturns computes current/lagged - 1 element-wise.
func lagReturns(current, lagged []float64) []float64 {
	out := make([]float64, len(current))
	for i := range out {
		r := stats.SafeDivPositive(current[i], lagged[i])
		if dataset.IsMissing(r) {
			out[i] = dataset.Missing()
			continue
		}
		out[i] = r - 1
	}
	return out
}

// TrailingReturn computes the total return over the last periods entries
// of a price series (oldest first). Insufficient history yields missing.
func TrailingReturn(prices []float64, periods int) float64 {
	return TrailingReturnSkip(prices, periods, 0)
}

// TrailingReturnSkip computes the return over a window of length periods
// ending skip entries before the latest price. skip > 0 implements
// 12-minus-1 style momentum.
func TrailingReturnSkip(prices []float64, periods, skip int) float64 {
	if periods <= 0 || skip < 0 {
		return dataset.Missing()
	}
	end := len(prices) - 1 - skip
	start := end - periods
	if start < 0 || end < 0 {
		return dataset.Missing()
	}
	r := stats.SafeDivPositive(prices[end], prices[start])
	if dataset.IsMissing(r) {
		return dataset.Missing()
	}
	return r - 1
}

// RelativeStrength is the security's trailing return minus the
// benchmark's over the same window.
func RelativeStrength(prices, benchmark []float64, periods int) float64 {
	sec := TrailingReturn(prices, periods)
	bench := TrailingReturn(benchmark, periods)
	if dataset.IsMissing(sec) || dataset.IsMissing(bench) {
		return dataset.Missing()
	}
	return sec - bench
}
