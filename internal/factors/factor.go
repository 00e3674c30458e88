// Package factors contains the financial-math layer of the engine: pure
// transforms that add named factor columns to a security table, each with
// a declared direction (favorable-low vs favorable-high). Factors are
// capability values implementing the Factor interface: composition, not
// inheritance.
package factors

import (
	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/internal/stats"
)

// Factor is the capability every concrete factor implements.
type Factor interface {
	// Name identifies the factor family ("quality", "value", "momentum").
	Name() string
	// FactorNames lists the columns Calculate can add.
	FactorNames() []string
	// AscendingMap declares per column whether low values are favorable
	// (true) or high values are favorable (false).
	AscendingMap() map[string]bool
	// Calculate returns a copy of t with whichever factor columns its
	// inputs allow. Absent input columns skip the affected factor,
	// never an error; structural failures are the selection layer's
	// concern.
	Calculate(t *dataset.Table) (*dataset.Table, error)
}

// Available returns the factor's columns actually present in t.
func Available(t *dataset.Table, f Factor) []string {
	out := make([]string, 0, len(f.FactorNames()))
	for _, name := range f.FactorNames() {
		if t.HasNumeric(name) {
			out = append(out, name)
		}
	}
	return out
}

// Preprocess applies one outlier method over the factor's own columns.
func Preprocess(t *dataset.Table, f Factor, method stats.OutlierMethod, params stats.OutlierParams) (*dataset.Table, error) {
	return stats.ProcessTable(t, method, params, f.FactorNames())
}

// RankFactors adds a "<col>_rank" column for each of the factor's
// available columns, ranked with that column's declared direction.
func RankFactors(t *dataset.Table, f Factor) *dataset.Table {
	out := t.Copy()
	asc := f.AscendingMap()
	for _, name := range Available(out, f) {
		col, _ := out.Numeric(name)
		_ = out.SetNumeric(name+"_rank", stats.Rank(col, asc[name]))
	}
	return out
}

// ZScoreFactors adds a "<col>_zscore" column for each available column,
// using the canonical rank-then-zscore transform.
func ZScoreFactors(t *dataset.Table, f Factor) *dataset.Table {
	out := t.Copy()
	asc := f.AscendingMap()
	for _, name := range Available(out, f) {
		col, _ := out.Numeric(name)
		_ = out.SetNumeric(name+"_zscore", stats.ZScoreRank(col, asc[name]))
	}
	return out
}

// CombinedScore weights the factor's available sub-factors into one score
// per row. Nil weights split equally across the available columns.
func CombinedScore(t *dataset.Table, f Factor, weights map[string]float64) []float64 {
	return stats.CombineFactors(t, f.FactorNames(), weights, f.AscendingMap())
}
