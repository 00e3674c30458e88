package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	strategyFile string
	verbose      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "factorlab",
	Short: "factorlab - 크로스섹션 팩터 스크리닝 엔진",
	Long: `factorlab CLI

퀄리티/가치/모멘텀 팩터 모델로 종목을 스크리닝하고 랭킹합니다.

Usage:
  go run ./cmd/factorlab [command]

Examples:
  go run ./cmd/factorlab screen universe.csv --strategy multifactor --top 20
  go run ./cmd/factorlab screen universe.csv --strategy magic-formula --date 2026-08-25`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&strategyFile, "config", "", "strategy YAML file (default: built-in defaults)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
