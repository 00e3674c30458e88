package selection

import (
	"fmt"
	"strings"

	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/internal/stats"
	"github.com/wonny/factorlab/pkg/logger"
)

// Selector runs the shared selection pipeline for any strategy.
// ⭐ SSOT: 종목 선정 파이프라인은 여기서만
type Selector struct {
	cfg    Config
	logger *logger.Logger
}

// NewSelector creates a selector. A nil logger is replaced by a no-op.
func NewSelector(cfg Config, log *logger.Logger) *Selector {
	if log == nil {
		log = logger.Nop()
	}
	return &Selector{cfg: cfg, logger: log}
}

// Select screens the universe, scores it with the strategy, and returns
// the ranked top-N snapshot. Zero selected rows is a valid result, not an
// error.
func (s *Selector) Select(strategy Strategy, t *dataset.Table) (*Result, error) {
	working := s.applyFilters(t.Copy())
	candidates := working.Len()

	if pp, ok := strategy.(Preprocessor); ok {
		processed, err := pp.Preprocess(working)
		if err != nil {
			return nil, fmt.Errorf("strategy %s preprocess: %w", strategy.Name(), err)
		}
		working = processed
	}

	scores, err := strategy.Score(working)
	if err != nil {
		return nil, fmt.Errorf("strategy %s score: %w", strategy.Name(), err)
	}
	if len(scores) != working.Len() {
		return nil, fmt.Errorf("strategy %s returned %d scores for %d rows", strategy.Name(), len(scores), working.Len())
	}

	var rows []int
	if alloc, ok := strategy.(Allocator); ok {
		rows = alloc.Allocate(working, scores, s.cfg.TopN)
	} else {
		n := s.cfg.TopN
		if n <= 0 {
			n = stats.CountValid(scores)
		}
		rows = stats.SelectTopN(scores, n)
	}

	selected := working.Select(rows)
	scoreCol := make([]float64, len(rows))
	rankCol := make([]float64, len(rows))
	for i, r := range rows {
		scoreCol[i] = scores[r]
		rankCol[i] = float64(i + 1)
	}
	if err := selected.SetNumeric("score", scoreCol); err != nil {
		return nil, err
	}
	if err := selected.SetNumeric("rank", rankCol); err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{
		"strategy":   strategy.Name(),
		"date":       s.cfg.Date,
		"universe":   t.Len(),
		"candidates": candidates,
		"selected":   len(rows),
	}).Info("Selection completed")

	return &Result{
		Strategy:       strategy.Name(),
		Date:           s.cfg.Date,
		Table:          selected,
		CandidateCount: candidates,
		SelectedCount:  len(rows),
		Config:         s.cfg,
	}, nil
}

// applyFilters drops rows failing the universe filters. Filters whose
// backing column is absent are skipped.
func (s *Selector) applyFilters(t *dataset.Table) *dataset.Table {
	keep := make([]int, 0, t.Len())
	marketCap, hasMC := t.Numeric("market_cap")
	sectors, hasSector := t.Strings("sector")
	status, hasStatus := t.Strings("status")

	for i := 0; i < t.Len(); i++ {
		if s.cfg.MinMarketCap > 0 && hasMC {
			if dataset.IsMissing(marketCap[i]) || marketCap[i] < s.cfg.MinMarketCap {
				continue
			}
		}
		if len(s.cfg.ExcludeSectors) > 0 && hasSector {
			if matchesAny(sectors[i], s.cfg.ExcludeSectors) {
				continue
			}
		}
		if s.cfg.RequireNormalStatus && hasStatus {
			if status[i] != "" && status[i] != "normal" {
				continue
			}
		}
		keep = append(keep, i)
	}
	return t.Select(keep)
}

func matchesAny(sector string, patterns []string) bool {
	for _, p := range patterns {
		if p != "" && strings.Contains(sector, p) {
			return true
		}
	}
	return false
}
