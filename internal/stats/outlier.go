package stats

import (
	"fmt"
	"math"

	"github.com/wonny/factorlab/internal/dataset"
)

// OutlierMethod selects how ProcessTable bounds extreme values.
type OutlierMethod string

const (
	MethodWinsorize OutlierMethod = "winsorize"
	MethodTrim      OutlierMethod = "trim"
	MethodZScore    OutlierMethod = "zscore"
	MethodIQR       OutlierMethod = "iqr"
	MethodMAD       OutlierMethod = "mad"
)

// madConstant converts a MAD into a modified z-score denominator.
const madConstant = 0.6745

// OutlierParams carries the thresholds for each method. Zero values fall
// back to the defaults below.
type OutlierParams struct {
	LowerPct  float64 // winsorize/trim lower quantile (0..1)
	UpperPct  float64 // winsorize/trim upper quantile (0..1)
	Threshold float64 // zscore/mad cutoff
	IQRMult   float64 // Tukey fence multiplier
}

// DefaultOutlierParams returns the shared defaults (1%/99% winsorization,
// 3-sigma cutoff, 1.5 IQR fences).
func DefaultOutlierParams() OutlierParams {
	return OutlierParams{
		LowerPct:  0.01,
		UpperPct:  0.99,
		Threshold: 3.0,
		IQRMult:   1.5,
	}
}

func (p OutlierParams) withDefaults() OutlierParams {
	d := DefaultOutlierParams()
	if p.LowerPct == 0 && p.UpperPct == 0 {
		p.LowerPct, p.UpperPct = d.LowerPct, d.UpperPct
	}
	if p.Threshold == 0 {
		p.Threshold = d.Threshold
	}
	if p.IQRMult == 0 {
		p.IQRMult = d.IQRMult
	}
	return p
}

// Winsorize clips values below the lowerPct quantile and above the
// upperPct quantile. Count and order are preserved; missing stays missing.
// Fewer than two valid points → input returned unchanged (copied).
func Winsorize(values []float64, lowerPct, upperPct float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	if CountValid(values) < 2 {
		return out
	}
	lo := Quantile(values, lowerPct)
	hi := Quantile(values, upperPct)
	for i, v := range out {
		if dataset.IsMissing(v) {
			continue
		}
		if v < lo {
			out[i] = lo
		} else if v > hi {
			out[i] = hi
		}
	}
	return out
}

// Trim marks values outside the [lowerPct, upperPct] quantile band as
// missing instead of clipping them. In-band values pass through exactly.
func Trim(values []float64, lowerPct, upperPct float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	if CountValid(values) < 2 {
		return out
	}
	lo := Quantile(values, lowerPct)
	hi := Quantile(values, upperPct)
	for i, v := range out {
		if dataset.IsMissing(v) {
			continue
		}
		if v < lo || v > hi {
			out[i] = dataset.Missing()
		}
	}
	return out
}

// ZScoreFilter marks values whose |z-score| exceeds threshold as missing.
func ZScoreFilter(values []float64, threshold float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	mean := Mean(values)
	std := Std(values)
	if dataset.IsMissing(std) || std == 0 {
		return out
	}
	for i, v := range out {
		if dataset.IsMissing(v) {
			continue
		}
		if math.Abs((v-mean)/std) > threshold {
			out[i] = dataset.Missing()
		}
	}
	return out
}

// IQRFilter applies Tukey fences Q1-k*IQR / Q3+k*IQR; outside → missing.
func IQRFilter(values []float64, k float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	if CountValid(values) < 2 {
		return out
	}
	q1 := Quantile(values, 0.25)
	q3 := Quantile(values, 0.75)
	iqr := q3 - q1
	lo := q1 - k*iqr
	hi := q3 + k*iqr
	for i, v := range out {
		if dataset.IsMissing(v) {
			continue
		}
		if v < lo || v > hi {
			out[i] = dataset.Missing()
		}
	}
	return out
}

// MADFilter marks values whose modified z-score exceeds threshold as
// missing. More robust than ZScoreFilter when the input already contains
// extremes, since median and MAD are unaffected by them.
func MADFilter(values []float64, threshold float64) []float64 {
	out := make([]float64, len(values))
	copy(out, values)
	med := Median(values)
	mad := MAD(values)
	if dataset.IsMissing(mad) || mad == 0 {
		return out
	}
	for i, v := range out {
		if dataset.IsMissing(v) {
			continue
		}
		if math.Abs(madConstant*(v-med)/mad) > threshold {
			out[i] = dataset.Missing()
		}
	}
	return out
}

// ProcessTable applies one outlier method column-wise and returns a new
// table. Columns not listed are untouched; listed columns absent from the
// table are skipped. Only an unknown method is an error; sparse columns
// are routine and never fail.
func ProcessTable(t *dataset.Table, method OutlierMethod, params OutlierParams, columns []string) (*dataset.Table, error) {
	params = params.withDefaults()
	out := t.Copy()
	for _, name := range columns {
		col, ok := out.Numeric(name)
		if !ok {
			continue
		}
		var processed []float64
		switch method {
		case MethodWinsorize:
			processed = Winsorize(col, params.LowerPct, params.UpperPct)
		case MethodTrim:
			processed = Trim(col, params.LowerPct, params.UpperPct)
		case MethodZScore:
			processed = ZScoreFilter(col, params.Threshold)
		case MethodIQR:
			processed = IQRFilter(col, params.IQRMult)
		case MethodMAD:
			processed = MADFilter(col, params.Threshold)
		default:
			return nil, fmt.Errorf("stats: unknown outlier method %q", method)
		}
		if err := out.SetNumeric(name, processed); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// OutlierStats is a descriptive snapshot of one column, used by tests and
// reporting.
type OutlierStats struct {
	Count       int     `json:"count"`
	Mean        float64 `json:"mean"`
	Std         float64 `json:"std"`
	Min         float64 `json:"min"`
	Q1          float64 `json:"q1"`
	Median      float64 `json:"median"`
	Q3          float64 `json:"q3"`
	Max         float64 `json:"max"`
	IQR         float64 `json:"iqr"`
	LowerFence  float64 `json:"lower_fence"`
	UpperFence  float64 `json:"upper_fence"`
	Skew        float64 `json:"skew"`
	Kurtosis    float64 `json:"kurtosis"`
	IQROutliers int     `json:"iqr_outliers"`
}

// Describe computes OutlierStats over the valid entries of values.
func Describe(values []float64) OutlierStats {
	s := OutlierStats{
		Count:    CountValid(values),
		Mean:     Mean(values),
		Std:      Std(values),
		Min:      Quantile(values, 0),
		Q1:       Quantile(values, 0.25),
		Median:   Median(values),
		Q3:       Quantile(values, 0.75),
		Max:      Quantile(values, 1),
		Skew:     Skewness(values),
		Kurtosis: Kurtosis(values),
	}
	s.IQR = s.Q3 - s.Q1
	s.LowerFence = s.Q1 - 1.5*s.IQR
	s.UpperFence = s.Q3 + 1.5*s.IQR
	for _, v := range values {
		if dataset.IsMissing(v) {
			continue
		}
		if v < s.LowerFence || v > s.UpperFence {
			s.IQROutliers++
		}
	}
	return s
}
