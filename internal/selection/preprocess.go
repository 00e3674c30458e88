package selection

import (
	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/internal/stats"
)

// WithOutlierHandling wraps a strategy so the selector runs the given
// outlier method over columns before scoring. The default pipeline has no
// preprocessing; this is the overridable hook.
func WithOutlierHandling(s Strategy, method stats.OutlierMethod, params stats.OutlierParams, columns []string) Strategy {
	base := outlierStrategy{inner: s, method: method, params: params, columns: columns}
	if _, ok := s.(Allocator); ok {
		return &outlierAllocatorStrategy{outlierStrategy: base}
	}
	return &base
}

type outlierStrategy struct {
	inner   Strategy
	method  stats.OutlierMethod
	params  stats.OutlierParams
	columns []string
}

func (o *outlierStrategy) Name() string {
	return o.inner.Name()
}

func (o *outlierStrategy) Score(t *dataset.Table) ([]float64, error) {
	return o.inner.Score(t)
}

func (o *outlierStrategy) Preprocess(t *dataset.Table) (*dataset.Table, error) {
	return stats.ProcessTable(t, o.method, o.params, o.columns)
}

// outlierAllocatorStrategy keeps the wrapped strategy's custom allocation
// visible through the wrapper.
type outlierAllocatorStrategy struct {
	outlierStrategy
}

func (o *outlierAllocatorStrategy) Allocate(t *dataset.Table, scores []float64, topN int) []int {
	return o.inner.(Allocator).Allocate(t, scores, topN)
}
