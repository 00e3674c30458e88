// Package selection is the strategy layer of the engine: it orchestrates
// filter → outlier-handle → score → rank → select-top-N over a security
// table and produces an immutable Result. Strategies are capability
// values; optional behavior (preprocessing, custom allocation) is
// expressed through optional interfaces, not inheritance.
package selection

import (
	"errors"

	"github.com/wonny/factorlab/internal/dataset"
)

// ErrNoFactorInputs is returned when none of a strategy's required input
// columns are present at all. This is caller misconfiguration; sparse
// data never raises, it propagates missing values instead.
var ErrNoFactorInputs = errors.New("selection: no usable factor inputs")

// Strategy scores a security table. Score returns one value per row,
// missing where no score can be computed.
type Strategy interface {
	Name() string
	Score(t *dataset.Table) ([]float64, error)
}

// Preprocessor is the overridable outlier-handling hook. Strategies that
// implement it run between filtering and scoring; the default is a no-op.
type Preprocessor interface {
	Preprocess(t *dataset.Table) (*dataset.Table, error)
}

// Allocator replaces the default global top-N pick. Sector-neutral
// strategies allocate per sector instead of over the whole universe.
type Allocator interface {
	Allocate(t *dataset.Table, scores []float64, topN int) []int
}

// Config holds the shared selection parameters. An explicit value passed
// into each run, never a module-level singleton, keeps every evaluation
// pure and safely parallelizable.
type Config struct {
	TopN                int
	MinMarketCap        float64
	ExcludeSectors      []string // substring patterns against the sector column
	RequireNormalStatus bool
	Date                string // evaluation date, YYYY-MM-DD
}

// DefaultConfig returns the shared defaults.
func DefaultConfig() Config {
	return Config{
		TopN:                20,
		RequireNormalStatus: true,
	}
}

// Result is an immutable selection snapshot. Table contains only the
// selected rows, augmented with "score" and "rank" columns.
type Result struct {
	Strategy       string
	Date           string
	Table          *dataset.Table
	CandidateCount int
	SelectedCount  int
	Config         Config
}
