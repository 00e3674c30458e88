package config

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// StrategyFile is the full parameter set of one screening strategy run.
// 재현성: 동일 파일 → 동일 해시 → 동일 선정 결과
type StrategyFile struct {
	Meta      Meta      `yaml:"meta" json:"meta"`
	Universe  Universe  `yaml:"universe" json:"universe"`
	Outliers  Outliers  `yaml:"outliers" json:"outliers"`
	Selection Selection `yaml:"selection" json:"selection"`
	Weights   Weights   `yaml:"weights" json:"weights"`
	Momentum  Momentum  `yaml:"momentum" json:"momentum"`
}

// Meta identifies the strategy configuration.
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Universe holds the pre-scoring filters.
type Universe struct {
	MinMarketCap        float64  `yaml:"min_market_cap" json:"min_market_cap"`
	ExcludeSectors      []string `yaml:"exclude_sectors" json:"exclude_sectors"`
	RequireNormalStatus bool     `yaml:"require_normal_status" json:"require_normal_status"`
}

// Outliers selects the preprocessing method and its thresholds.
type Outliers struct {
	Method    string  `yaml:"method" json:"method"` // winsorize|trim|zscore|iqr|mad
	LowerPct  float64 `yaml:"lower_pct" json:"lower_pct"`
	UpperPct  float64 `yaml:"upper_pct" json:"upper_pct"`
	Threshold float64 `yaml:"threshold" json:"threshold"`
	IQRMult   float64 `yaml:"iqr_mult" json:"iqr_mult"`
}

// Selection holds the final selection parameters.
type Selection struct {
	TopN            int    `yaml:"top_n" json:"top_n"`
	StocksPerSector int    `yaml:"stocks_per_sector" json:"stocks_per_sector"`
	FactorColumn    string `yaml:"factor_column" json:"factor_column"` // sector-neutral single-factor mode
}

// Weights are the top-level multifactor group weights. 합 = 1.0
type Weights struct {
	Quality  float64 `yaml:"quality" json:"quality"`
	Value    float64 `yaml:"value" json:"value"`
	Momentum float64 `yaml:"momentum" json:"momentum"`
}

// Sum returns the total of the group weights.
func (w Weights) Sum() float64 {
	return w.Quality + w.Value + w.Momentum
}

// Momentum holds the momentum factor horizons.
type Momentum struct {
	HorizonsMonths  []int `yaml:"horizons_months" json:"horizons_months"`
	PeriodsPerMonth int   `yaml:"periods_per_month" json:"periods_per_month"`
	SkipRecentMonth bool  `yaml:"skip_recent_month" json:"skip_recent_month"`
	Acceleration    bool  `yaml:"acceleration" json:"acceleration"`
}

// DefaultStrategyFile returns the shared defaults: 1%/99% winsorization,
// top 20, equal-ish group weights.
func DefaultStrategyFile() *StrategyFile {
	return &StrategyFile{
		Meta: Meta{StrategyID: "default", Version: "1"},
		Universe: Universe{
			MinMarketCap:        0,
			RequireNormalStatus: true,
		},
		Outliers: Outliers{
			Method:    "winsorize",
			LowerPct:  0.01,
			UpperPct:  0.99,
			Threshold: 3.0,
			IQRMult:   1.5,
		},
		Selection: Selection{TopN: 20},
		Weights:   Weights{Quality: 0.33, Value: 0.33, Momentum: 0.34},
		Momentum: Momentum{
			HorizonsMonths:  []int{3, 6, 12},
			PeriodsPerMonth: 21,
		},
	}
}

// LoadStrategy reads a YAML strategy file. Unknown fields fail
// immediately so a typo cannot silently fall back to a default.
func LoadStrategy(path string) (*StrategyFile, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}

	cfg := DefaultStrategyFile()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, nil, fmt.Errorf("strategy config decode failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, data, err
	}

	return cfg, data, nil
}

// Validate checks structural sanity of the parameters.
func (s *StrategyFile) Validate() error {
	switch s.Outliers.Method {
	case "winsorize", "trim", "zscore", "iqr", "mad":
	default:
		return fmt.Errorf("unknown outlier method %q", s.Outliers.Method)
	}
	if s.Outliers.LowerPct < 0 || s.Outliers.UpperPct > 1 || s.Outliers.LowerPct >= s.Outliers.UpperPct {
		return fmt.Errorf("outlier percentiles must satisfy 0 <= lower < upper <= 1")
	}
	if s.Selection.TopN < 0 {
		return fmt.Errorf("top_n must be >= 0")
	}
	if s.Weights.Sum() > 0 && math.Abs(s.Weights.Sum()-1.0) > 0.01 {
		return fmt.Errorf("group weights sum to %.4f, expected ~1.0", s.Weights.Sum())
	}
	for _, h := range s.Momentum.HorizonsMonths {
		if h <= 0 {
			return fmt.Errorf("momentum horizon must be positive, got %d", h)
		}
	}
	return nil
}

// Hash generates a SHA-256 hash of the canonical JSON form.
// 주의: map 대신 struct 사용으로 해시 재현성 보장
func (s *StrategyFile) Hash() (string, error) {
	jsonBytes, err := json.Marshal(s)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
