// Package stats contains the two leaf utilities of the screening engine:
// the ranking calculator and the outlier handler, plus the shared numeric
// kernels both are built on. Everything here is a pure function over
// float64 slices where NaN marks a missing observation. Data-quality
// problems (sparse columns, zero variance) never produce errors; they
// produce missing or neutral values so a thin universe cannot halt a
// pipeline.
package stats

import (
	"math"
	"sort"

	"github.com/wonny/factorlab/internal/dataset"
)

// SafeDiv divides num by den, returning missing when the denominator is
// zero or either operand is missing. Shared by every quality/value ratio
// so divide-by-zero handling exists in exactly one place.
func SafeDiv(num, den float64) float64 {
	if dataset.IsMissing(num) || dataset.IsMissing(den) || den == 0 {
		return dataset.Missing()
	}
	return num / den
}

// SafeDivPositive is SafeDiv restricted to strictly positive denominators.
// Used for ratios that are economically meaningless otherwise (P/E with
// negative earnings).
func SafeDivPositive(num, den float64) float64 {
	if dataset.IsMissing(den) || den <= 0 {
		return dataset.Missing()
	}
	return SafeDiv(num, den)
}

// validValues returns the non-missing entries of values.
func validValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !dataset.IsMissing(v) {
			out = append(out, v)
		}
	}
	return out
}

// CountValid returns the number of non-missing entries.
func CountValid(values []float64) int {
	n := 0
	for _, v := range values {
		if !dataset.IsMissing(v) {
			n++
		}
	}
	return n
}

// Mean returns the mean over valid entries; missing if none.
func Mean(values []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range values {
		if !dataset.IsMissing(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return dataset.Missing()
	}
	return sum / float64(n)
}

// Std returns the sample standard deviation over valid entries; missing
// with fewer than two.
func Std(values []float64) float64 {
	mean := Mean(values)
	if dataset.IsMissing(mean) {
		return dataset.Missing()
	}
	sumSq, n := 0.0, 0
	for _, v := range values {
		if !dataset.IsMissing(v) {
			d := v - mean
			sumSq += d * d
			n++
		}
	}
	if n < 2 {
		return dataset.Missing()
	}
	return math.Sqrt(sumSq / float64(n-1))
}

// Quantile returns the p-quantile (0..1) over valid entries using linear
// interpolation; missing if no valid entries.
func Quantile(values []float64, p float64) float64 {
	valid := validValues(values)
	if len(valid) == 0 {
		return dataset.Missing()
	}
	sort.Float64s(valid)
	if p <= 0 {
		return valid[0]
	}
	if p >= 1 {
		return valid[len(valid)-1]
	}
	pos := p * float64(len(valid)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return valid[lo]
	}
	frac := pos - float64(lo)
	return valid[lo]*(1-frac) + valid[hi]*frac
}

// Median returns the 0.5 quantile.
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// MAD returns the median absolute deviation from the median.
func MAD(values []float64) float64 {
	med := Median(values)
	if dataset.IsMissing(med) {
		return dataset.Missing()
	}
	devs := make([]float64, 0, len(values))
	for _, v := range values {
		if !dataset.IsMissing(v) {
			devs = append(devs, math.Abs(v-med))
		}
	}
	return Median(devs)
}

// Skewness returns the sample skewness; missing with fewer than three
// valid entries or zero variance.
func Skewness(values []float64) float64 {
	mean := Mean(values)
	std := Std(values)
	if dataset.IsMissing(mean) || dataset.IsMissing(std) || std == 0 {
		return dataset.Missing()
	}
	sum, n := 0.0, 0
	for _, v := range values {
		if !dataset.IsMissing(v) {
			z := (v - mean) / std
			sum += z * z * z
			n++
		}
	}
	if n < 3 {
		return dataset.Missing()
	}
	fn := float64(n)
	return fn / ((fn - 1) * (fn - 2)) * sum
}

// Kurtosis returns the sample excess kurtosis; missing with fewer than
// four valid entries or zero variance.
func Kurtosis(values []float64) float64 {
	mean := Mean(values)
	std := Std(values)
	if dataset.IsMissing(mean) || dataset.IsMissing(std) || std == 0 {
		return dataset.Missing()
	}
	sum, n := 0.0, 0
	for _, v := range values {
		if !dataset.IsMissing(v) {
			z := (v - mean) / std
			sum += z * z * z * z
			n++
		}
	}
	if n < 4 {
		return dataset.Missing()
	}
	fn := float64(n)
	return fn*(fn+1)/((fn-1)*(fn-2)*(fn-3))*sum - 3*(fn-1)*(fn-1)/((fn-2)*(fn-3))
}
