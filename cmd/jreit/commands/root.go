package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "jreit",
	Short: "J-REIT Finder - J-REIT 銘柄選定ツール",
	Long: `J-REIT Finder CLI

japan-reit.com のランキング表を取得し、5つの評価指標
(分配金利回り, NAV倍率, ポートフォリオ質, 財務健全性, 市場ポジション)
の加重スコアで上位銘柄を選定します。

Usage:
  go run ./cmd/jreit [command]

Examples:
  go run ./cmd/jreit select --top 10
  go run ./cmd/jreit select --weights-file profiles/income.yaml
  go run ./cmd/jreit fetch --save
  go run ./cmd/jreit api
  go run ./cmd/jreit scheduler start`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}
