package stats

import (
	"math"
	"sort"

	"github.com/wonny/factorlab/internal/dataset"
)

// Rank converts values into ordinal ranks 1..N_valid. ascending=true
// gives the smallest value rank 1 (favorable-low); ascending=false gives
// the largest value rank 1 (favorable-high). Ties share the lowest rank
// of their block; missing never receives a rank.
func Rank(values []float64, ascending bool) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = dataset.Missing()
	}
	idx := make([]int, 0, len(values))
	for i, v := range values {
		if !dataset.IsMissing(v) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := values[idx[a]], values[idx[b]]
		if va == vb {
			return idx[a] < idx[b]
		}
		if ascending {
			return va < vb
		}
		return va > vb
	})
	for pos, i := range idx {
		if pos > 0 && values[i] == values[idx[pos-1]] {
			out[i] = out[idx[pos-1]]
			continue
		}
		out[i] = float64(pos + 1)
	}
	return out
}

// PercentileRank maps ranks onto [0,1] as (rank-1)/(N_valid-1). With one
// or zero valid entries the percentile is undefined and stays missing.
func PercentileRank(values []float64, ascending bool) []float64 {
	ranks := Rank(values, ascending)
	n := CountValid(values)
	out := make([]float64, len(values))
	for i, r := range ranks {
		if dataset.IsMissing(r) || n <= 1 {
			out[i] = dataset.Missing()
			continue
		}
		out[i] = (r - 1) / float64(n-1)
	}
	return out
}

// ZScore standardizes values to mean 0, std 1 over the valid entries.
// Zero or undefined std means the column carries no discriminating
// signal: every valid entry becomes 0 rather than exploding.
func ZScore(values []float64) []float64 {
	out := make([]float64, len(values))
	mean := Mean(values)
	std := Std(values)
	degenerate := dataset.IsMissing(std) || std == 0
	for i, v := range values {
		if dataset.IsMissing(v) {
			out[i] = dataset.Missing()
			continue
		}
		if degenerate {
			out[i] = 0
			continue
		}
		out[i] = (v - mean) / std
	}
	return out
}

// ZScoreRank is the canonical transform of this engine: rank first, then
// z-score the ranks. Ranking before scaling compresses outlier influence,
// so one extreme fundamental cannot dominate a combined score. Normalized
// scores are higher-is-better regardless of the column's direction: the
// scoring rank runs opposite to the display rank, where the most
// favorable value is rank 1.
func ZScoreRank(values []float64, ascending bool) []float64 {
	return ZScore(Rank(values, !ascending))
}

// SectorNeutralZScore computes ZScoreRank independently within each
// sector group, so a security is only ever compared against its own
// sector peers. A singleton sector yields z-score 0.
func SectorNeutralZScore(values []float64, sectors []string, ascending bool) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = dataset.Missing()
	}
	groups := make(map[string][]int)
	var order []string
	for i, sec := range sectors {
		if i >= len(values) {
			break
		}
		if _, seen := groups[sec]; !seen {
			order = append(order, sec)
		}
		groups[sec] = append(groups[sec], i)
	}
	for _, sec := range order {
		rows := groups[sec]
		sub := make([]float64, len(rows))
		for j, r := range rows {
			sub[j] = values[r]
		}
		scores := ZScoreRank(sub, ascending)
		for j, r := range rows {
			out[r] = scores[j]
		}
	}
	return out
}

// CombineFactors builds a combined score: each column is ZScoreRank'd
// using its declared direction, weighted, and summed row-wise. Nil or
// empty weights split equally; columns absent from the table contribute
// nothing. A row with no valid contributing column is missing, not zero.
func CombineFactors(t *dataset.Table, columns []string, weights map[string]float64, ascending map[string]bool) []float64 {
	present := make([]string, 0, len(columns))
	for _, name := range columns {
		if t.HasNumeric(name) {
			present = append(present, name)
		}
	}
	out := make([]float64, t.Len())
	for i := range out {
		out[i] = dataset.Missing()
	}
	if len(present) == 0 {
		return out
	}
	equal := 1.0 / float64(len(present))
	for _, name := range present {
		col, _ := t.Numeric(name)
		w := equal
		if len(weights) > 0 {
			w = weights[name]
		}
		scores := ZScoreRank(col, ascending[name])
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

// SelectTopN returns the row indices of the n largest scores, ordered by
// score descending (ties by row order). Missing scores are never
// selected.
func SelectTopN(scores []float64, n int) []int {
	idx := make([]int, 0, len(scores))
	for i, v := range scores {
		if !dataset.IsMissing(v) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(a, b int) bool {
		va, vb := scores[idx[a]], scores[idx[b]]
		if va == vb {
			return idx[a] < idx[b]
		}
		return va > vb
	})
	if n < 0 {
		n = 0
	}
	if n > len(idx) {
		n = len(idx)
	}
	return idx[:n]
}

// SpearmanCorr returns the rank correlation between a and b over rows
// valid in both; missing with fewer than two common observations or zero
// rank variance.
func SpearmanCorr(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	maskedA := make([]float64, n)
	maskedB := make([]float64, n)
	for i := 0; i < n; i++ {
		if dataset.IsMissing(a[i]) || dataset.IsMissing(b[i]) {
			maskedA[i] = dataset.Missing()
			maskedB[i] = dataset.Missing()
			continue
		}
		maskedA[i] = a[i]
		maskedB[i] = b[i]
	}
	ra := Rank(maskedA, true)
	rb := Rank(maskedB, true)
	meanA, meanB := Mean(ra), Mean(rb)
	if dataset.IsMissing(meanA) || dataset.IsMissing(meanB) {
		return dataset.Missing()
	}
	var cov, varA, varB float64
	count := 0
	for i := 0; i < n; i++ {
		if dataset.IsMissing(ra[i]) || dataset.IsMissing(rb[i]) {
			continue
		}
		da := ra[i] - meanA
		db := rb[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
		count++
	}
	if count < 2 || varA == 0 || varB == 0 {
		return dataset.Missing()
	}
	return cov / math.Sqrt(varA*varB)
}
