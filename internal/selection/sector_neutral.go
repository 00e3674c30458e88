package selection

import (
	"fmt"
	"sort"

	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/internal/factors"
	"github.com/wonny/factorlab/internal/stats"
)

// SectorNeutralConfig configures the single-factor sector-neutral
// strategy.
type SectorNeutralConfig struct {
	// FactorColumn is the column to normalize within each sector.
	FactorColumn string
	// Ascending declares the column's direction (favorable-low = true).
	Ascending bool
	// StocksPerSector > 0 selects a fixed count per sector; otherwise the
	// selector's top-N is allocated proportionally to sector sizes.
	StocksPerSector int
	// Factor, when set, is calculated first so FactorColumn may be a
	// derived column rather than a raw input.
	Factor factors.Factor
}

// SectorNeutral scores one factor relative to sector peers only, then
// selects per sector instead of over the whole universe.
type SectorNeutral struct {
	cfg SectorNeutralConfig
}

// NewSectorNeutral creates the strategy.
func NewSectorNeutral(cfg SectorNeutralConfig) *SectorNeutral {
	return &SectorNeutral{cfg: cfg}
}

func (s *SectorNeutral) Name() string {
	return "sector_neutral"
}

// Score returns the sector-neutral z-score of the configured column.
// Missing column or missing sector labels are structural failures.
func (s *SectorNeutral) Score(t *dataset.Table) ([]float64, error) {
	working := t.Copy()
	if s.cfg.Factor != nil {
		calculated, err := s.cfg.Factor.Calculate(working)
		if err != nil {
			return nil, err
		}
		working = calculated
	}
	col, ok := working.Numeric(s.cfg.FactorColumn)
	if !ok {
		return nil, fmt.Errorf("sector-neutral factor column %q absent: %w", s.cfg.FactorColumn, ErrNoFactorInputs)
	}
	sectors, ok := working.Strings("sector")
	if !ok {
		return nil, fmt.Errorf("sector-neutral needs a sector column: %w", ErrNoFactorInputs)
	}
	return stats.SectorNeutralZScore(col, sectors, s.cfg.Ascending), nil
}

// Allocate picks rows per sector: a fixed count per sector, or the total
// topN split proportionally by sector share of the universe with the
// rounding remainder absorbed by the single largest sector. Returned rows
// are ordered by score descending.
func (s *SectorNeutral) Allocate(t *dataset.Table, scores []float64, topN int) []int {
	sectors, ok := t.Strings("sector")
	if !ok {
		return stats.SelectTopN(scores, topN)
	}

	groups := make(map[string][]int)
	var order []string
	for i := 0; i < t.Len(); i++ {
		sec := sectors[i]
		if _, seen := groups[sec]; !seen {
			order = append(order, sec)
		}
		groups[sec] = append(groups[sec], i)
	}

	counts := s.sectorCounts(groups, order, topN)

	var picked []int
	for _, sec := range order {
		rows := groups[sec]
		sub := make([]float64, len(rows))
		for j, r := range rows {
			sub[j] = scores[r]
		}
		for _, j := range stats.SelectTopN(sub, counts[sec]) {
			picked = append(picked, rows[j])
		}
	}

	sort.SliceStable(picked, func(a, b int) bool {
		va, vb := scores[picked[a]], scores[picked[b]]
		if va == vb {
			return picked[a] < picked[b]
		}
		return va > vb
	})
	return picked
}

// sectorCounts decides how many rows each sector may contribute.
func (s *SectorNeutral) sectorCounts(groups map[string][]int, order []string, topN int) map[string]int {
	counts := make(map[string]int, len(groups))
	if s.cfg.StocksPerSector > 0 {
		for _, sec := range order {
			counts[sec] = s.cfg.StocksPerSector
		}
		return counts
	}

	total := 0
	for _, rows := range groups {
		total += len(rows)
	}
	if total == 0 || topN <= 0 {
		return counts
	}

	allocated := 0
	largest := order[0]
	for _, sec := range order {
		if len(groups[sec]) > len(groups[largest]) {
			largest = sec
		}
		n := topN * len(groups[sec]) / total // floor
		counts[sec] = n
		allocated += n
	}
	// 나머지는 최대 섹터가 흡수
	counts[largest] += topN - allocated
	return counts
}

// SelectionProfile summarizes sector concentration of one selection.
type SelectionProfile struct {
	Selected        int     `json:"selected"`
	DistinctSectors int     `json:"distinct_sectors"`
	MaxSectorWeight float64 `json:"max_sector_weight"`
}

// Comparison contrasts sector-neutral selection against naive
// whole-universe top-N over the same factor.
type Comparison struct {
	SectorNeutral SelectionProfile `json:"sector_neutral"`
	Naive         SelectionProfile `json:"naive"`
}

// CompareWithNaive runs both selections over t and profiles each.
func (s *SectorNeutral) CompareWithNaive(t *dataset.Table, topN int) (Comparison, error) {
	working := t.Copy()
	if s.cfg.Factor != nil {
		calculated, err := s.cfg.Factor.Calculate(working)
		if err != nil {
			return Comparison{}, err
		}
		working = calculated
	}
	col, ok := working.Numeric(s.cfg.FactorColumn)
	if !ok {
		return Comparison{}, fmt.Errorf("sector-neutral factor column %q absent: %w", s.cfg.FactorColumn, ErrNoFactorInputs)
	}
	sectors, ok := working.Strings("sector")
	if !ok {
		return Comparison{}, fmt.Errorf("sector-neutral needs a sector column: %w", ErrNoFactorInputs)
	}

	scores := stats.SectorNeutralZScore(col, sectors, s.cfg.Ascending)
	neutralRows := s.Allocate(working, scores, topN)

	naiveScores := stats.ZScoreRank(col, s.cfg.Ascending)
	naiveRows := stats.SelectTopN(naiveScores, len(neutralRows))

	return Comparison{
		SectorNeutral: profileSelection(neutralRows, sectors),
		Naive:         profileSelection(naiveRows, sectors),
	}, nil
}

func profileSelection(rows []int, sectors []string) SelectionProfile {
	p := SelectionProfile{Selected: len(rows)}
	if len(rows) == 0 || sectors == nil {
		return p
	}
	counts := make(map[string]int)
	for _, r := range rows {
		counts[sectors[r]]++
	}
	p.DistinctSectors = len(counts)
	max := 0
	for _, n := range counts {
		if n > max {
			max = n
		}
	}
	p.MaxSectorWeight = float64(max) / float64(len(rows))
	return p
}
