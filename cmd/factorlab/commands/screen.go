package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/wonny/factorlab/internal/dataset"
	"github.com/wonny/factorlab/internal/factors"
	"github.com/wonny/factorlab/internal/loader"
	"github.com/wonny/factorlab/internal/selection"
	"github.com/wonny/factorlab/internal/stats"
	"github.com/wonny/factorlab/pkg/config"
	"github.com/wonny/factorlab/pkg/logger"
)

var (
	strategyName string
	screenDate   string
	topN         int
	factorColumn string
)

var screenCmd = &cobra.Command{
	Use:   "screen <snapshot.csv>",
	Short: "스냅샷 CSV에 대해 전략을 실행하고 선정 결과 출력",
	Args:  cobra.ExactArgs(1),
	RunE:  runScreen,
}

func init() {
	screenCmd.Flags().StringVar(&strategyName, "strategy", "multifactor",
		"strategy (magic-formula|multifactor|sector-neutral|sector-neutral-multifactor)")
	screenCmd.Flags().StringVar(&screenDate, "date", "", "evaluation date (YYYY-MM-DD)")
	screenCmd.Flags().IntVar(&topN, "top", 0, "override top-N from config")
	screenCmd.Flags().StringVar(&factorColumn, "factor", "momentum_12m",
		"factor column for sector-neutral strategy")
	rootCmd.AddCommand(screenCmd)
}

func runScreen(cmd *cobra.Command, args []string) error {
	envCfg, err := config.Load()
	if err != nil {
		return err
	}
	level := envCfg.LogLevel
	if verbose {
		level = "debug"
	}
	log := logger.New(level, envCfg.LogFormat, envCfg.Env)

	strat := config.DefaultStrategyFile()
	if strategyFile != "" {
		loaded, _, loadErr := config.LoadStrategy(strategyFile)
		if loadErr != nil {
			return loadErr
		}
		strat = loaded
		hash, hashErr := strat.Hash()
		if hashErr == nil {
			log.WithFields(map[string]interface{}{
				"strategy_id": strat.Meta.StrategyID,
				"config_hash": hash,
			}).Info("Strategy config loaded")
		}
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	table, err := loader.ReadCSV(f)
	if err != nil {
		return err
	}
	log.WithFields(map[string]interface{}{
		"rows":    table.Len(),
		"columns": len(table.NumericNames()),
	}).Info("Snapshot loaded")

	selCfg := selection.Config{
		TopN:                strat.Selection.TopN,
		MinMarketCap:        strat.Universe.MinMarketCap,
		ExcludeSectors:      strat.Universe.ExcludeSectors,
		RequireNormalStatus: strat.Universe.RequireNormalStatus,
		Date:                screenDate,
	}
	if topN > 0 {
		selCfg.TopN = topN
	}

	strategy, err := buildStrategy(strat)
	if err != nil {
		return err
	}

	result, err := selection.NewSelector(selCfg, log).Select(strategy, table)
	if err != nil {
		return err
	}

	printResult(result)
	return nil
}

func buildStrategy(strat *config.StrategyFile) (selection.Strategy, error) {
	momentum := factors.NewMomentum(factors.MomentumConfig{
		HorizonsMonths:  strat.Momentum.HorizonsMonths,
		PeriodsPerMonth: strat.Momentum.PeriodsPerMonth,
		SkipRecentMonth: strat.Momentum.SkipRecentMonth,
		Acceleration:    strat.Momentum.Acceleration,
	}, nil)

	mfCfg := selection.MultifactorConfig{
		QualityWeight:  strat.Weights.Quality,
		ValueWeight:    strat.Weights.Value,
		MomentumWeight: strat.Weights.Momentum,
	}

	var s selection.Strategy
	switch strategyName {
	case "magic-formula":
		s = selection.NewMagicFormula(false)
	case "multifactor":
		s = selection.NewMultifactor(mfCfg, momentum)
	case "sector-neutral-multifactor":
		s = selection.NewSectorNeutralMultifactor(mfCfg, momentum)
	case "sector-neutral":
		s = selection.NewSectorNeutral(selection.SectorNeutralConfig{
			FactorColumn:    factorColumn,
			StocksPerSector: strat.Selection.StocksPerSector,
			Factor:          momentum,
		})
	default:
		return nil, fmt.Errorf("unknown strategy %q", strategyName)
	}

	// Bound the raw fundamentals before scoring; ratio outliers are then
	// compressed again by the rank-based transform.
	preprocessColumns := []string{
		factors.ColNetIncome,
		factors.ColEquity,
		factors.ColGrossProfit,
		factors.ColTotalAssets,
		factors.ColOperatingCashFlow,
		factors.ColOperatingIncome,
		factors.ColBookValue,
		factors.ColRevenue,
		factors.ColNetDebt,
		factors.ColInvestedCapital,
	}
	return selection.WithOutlierHandling(s,
		stats.OutlierMethod(strat.Outliers.Method),
		stats.OutlierParams{
			LowerPct:  strat.Outliers.LowerPct,
			UpperPct:  strat.Outliers.UpperPct,
			Threshold: strat.Outliers.Threshold,
			IQRMult:   strat.Outliers.IQRMult,
		},
		preprocessColumns,
	), nil
}

func printResult(result *selection.Result) {
	fmt.Printf("strategy=%s date=%s candidates=%d selected=%d\n",
		result.Strategy, result.Date, result.CandidateCount, result.SelectedCount)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RANK\tCODE\tSECTOR\tSCORE")
	sectors, hasSector := result.Table.Strings("sector")
	scores, _ := result.Table.Numeric("score")
	ranks, _ := result.Table.Numeric("rank")
	for i := 0; i < result.Table.Len(); i++ {
		sector := "-"
		if hasSector {
			sector = sectors[i]
		}
		score := "-"
		if !dataset.IsMissing(scores[i]) {
			score = fmt.Sprintf("%.4f", scores[i])
		}
		fmt.Fprintf(w, "%.0f\t%s\t%s\t%s\n", ranks[i], result.Table.Code(i), sector, score)
	}
	w.Flush()
}
