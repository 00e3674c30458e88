package selection

import (
	"fmt"

	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/internal/factors"
	"github.com/wonny/factorlab/internal/stats"
)

// MultifactorConfig holds the top-level group weights.
type MultifactorConfig struct {
	QualityWeight  float64
	ValueWeight    float64
	MomentumWeight float64
	// SectorNeutral normalizes every sub-factor within its sector before
	// combination, so no factor compares a security against peers outside
	// its own sector.
	SectorNeutral bool
}

// DefaultMultifactorConfig returns the ~equal default split.
func DefaultMultifactorConfig() MultifactorConfig {
	return MultifactorConfig{
		QualityWeight:  0.33,
		ValueWeight:    0.33,
		MomentumWeight: 0.34,
	}
}

// Multifactor combines the quality, value and momentum groups. Each group
// is equal-weighted internally over its available sub-factors; the group
// scores are then combined with the configured top-level weights.
//
// A group with zero available columns contributes 0 and its weight is NOT
// redistributed; the configured weight is simply lost. Deliberate; see
// the pinning test.
type Multifactor struct {
	cfg    MultifactorConfig
	groups []factors.Factor
}

// NewMultifactor creates the strategy. momentum may be nil, which uses
// the cross-sectional column mode with default horizons.
func NewMultifactor(cfg MultifactorConfig, momentum *factors.Momentum) *Multifactor {
	if momentum == nil {
		momentum = factors.NewMomentum(factors.DefaultMomentumConfig(), nil)
	}
	return &Multifactor{
		cfg:    cfg,
		groups: []factors.Factor{factors.NewQuality(), factors.NewValue(), momentum},
	}
}

// NewSectorNeutralMultifactor is the sector-neutral variant.
func NewSectorNeutralMultifactor(cfg MultifactorConfig, momentum *factors.Momentum) *Multifactor {
	cfg.SectorNeutral = true
	return NewMultifactor(cfg, momentum)
}

func (m *Multifactor) Name() string {
	if m.cfg.SectorNeutral {
		return "sector_neutral_multifactor"
	}
	return "multifactor"
}

func (m *Multifactor) weight(group string) float64 {
	switch group {
	case "quality":
		return m.cfg.QualityWeight
	case "value":
		return m.cfg.ValueWeight
	case "momentum":
		return m.cfg.MomentumWeight
	}
	return 0
}

// Score computes the weighted combination of the available group scores.
// A row with no contributing group is missing, not zero.
func (m *Multifactor) Score(t *dataset.Table) ([]float64, error) {
	groupScores, err := m.groupScores(t)
	if err != nil {
		return nil, err
	}
	out := make([]float64, t.Len())
	for i := range out {
		out[i] = dataset.Missing()
	}
	// Fixed group order: float accumulation order must not depend on map
	// iteration, or equal inputs could produce bit-different scores.
	for _, f := range m.groups {
		scores, ok := groupScores[f.Name()]
		if !ok {
			continue
		}
		w := m.weight(f.Name())
		for i, s := range scores {
			if dataset.IsMissing(s) {
				continue
			}
			if dataset.IsMissing(out[i]) {
				out[i] = 0
			}
			out[i] += w * s
		}
	}
	return out, nil
}

// groupScores computes one normalized score column per available group.
func (m *Multifactor) groupScores(t *dataset.Table) (map[string][]float64, error) {
	working := t.Copy()
	var sectors []string
	if m.cfg.SectorNeutral {
		sec, ok := working.Strings("sector")
		if !ok {
			return nil, fmt.Errorf("sector-neutral multifactor needs a sector column: %w", ErrNoFactorInputs)
		}
		sectors = sec
	}

	out := make(map[string][]float64, len(m.groups))
	for _, f := range m.groups {
		calculated, err := f.Calculate(working)
		if err != nil {
			return nil, err
		}
		working = calculated
		available := factors.Available(working, f)
		if len(available) == 0 {
			continue
		}
		if m.cfg.SectorNeutral {
			out[f.Name()] = sectorNeutralGroupScore(working, available, f.AscendingMap(), sectors)
		} else {
			out[f.Name()] = factors.CombinedScore(working, f, nil)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("multifactor: no factor group has any inputs: %w", ErrNoFactorInputs)
	}
	return out, nil
}

// sectorNeutralGroupScore equal-weights the sector-neutral z-scores of a
// group's available columns. A row with no valid column stays missing.
func sectorNeutralGroupScore(t *dataset.Table, columns []string, ascending map[string]bool, sectors []string) []float64 {
	out := make([]float64, t.Len())
	for i := range out {
		out[i] = dataset.Missing()
	}
	w := 1.0 / float64(len(columns))
	for _, name := range columns {
		col, _ := t.Numeric(name)
		scores := stats.SectorNeutralZScore(col, sectors, ascending[name])
		for i, s := range scores {
			if dataset.IsMissing(s) {
				continue
			}
			if dataset.IsMissing(out[i]) {
				out[i] = 0
			}
			out[i] += w * s
		}
	}
	return out
}

// GroupCorrelations returns the pairwise Spearman correlations between
// the available group scores, keyed "quality_value" etc. Diagnostic for
// the diversification rationale.
func (m *Multifactor) GroupCorrelations(t *dataset.Table) (map[string]float64, error) {
	groupScores, err := m.groupScores(t.Copy())
	if err != nil {
		return nil, err
	}
	order := []string{"quality", "value", "momentum"}
	out := make(map[string]float64)
	for i := 0; i < len(order); i++ {
		for j := i + 1; j < len(order); j++ {
			a, okA := groupScores[order[i]]
			b, okB := groupScores[order[j]]
			if !okA || !okB {
				continue
			}
			out[order[i]+"_"+order[j]] = stats.SpearmanCorr(a, b)
		}
	}
	return out, nil
}

// GroupAverages returns per-group average raw factor values over the
// given (typically selected) table. Reporting only.
func (m *Multifactor) GroupAverages(t *dataset.Table) map[string]map[string]float64 {
	working := t.Copy()
	out := make(map[string]map[string]float64)
	for _, f := range m.groups {
		calculated, err := f.Calculate(working)
		if err != nil {
			continue
		}
		working = calculated
		available := factors.Available(working, f)
		if len(available) == 0 {
			continue
		}
		avgs := make(map[string]float64, len(available))
		for _, name := range available {
			col, _ := working.Numeric(name)
			avgs[name] = stats.Mean(col)
		}
		out[f.Name()] = avgs
	}
	return out
}
