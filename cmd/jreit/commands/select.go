package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wonny/jreit-finder/internal/contracts"
	"github.com/wonny/jreit-finder/internal/presenter"
	"github.com/wonny/jreit-finder/internal/selection"
	"github.com/wonny/jreit-finder/internal/weightconfig"
)

// selectCmd represents the select command
var selectCmd = &cobra.Command{
	Use:   "select",
	Short: "加重スコアで上位銘柄を選定",
	Long: `J-REIT 一覧を取得し、重み付けした総合スコアで上位銘柄を表示します。

重みは既定値 (0.25/0.20/0.15/0.20/0.20) から始まり、
--weights-file の YAML プロファイル、各 --w-* フラグの順に上書きされます。
重みの合計は 1.0 (許容誤差 1e-4) でなければなりません。

Example:
  go run ./cmd/jreit select
  go run ./cmd/jreit select --top 10 --w-yield 0.4 --w-nav 0.05
  go run ./cmd/jreit select --weights-file profiles/income.yaml
  go run ./cmd/jreit select --snapshot latest
  go run ./cmd/jreit select --snapshot 2026-10-16 --json`,
	RunE: runSelect,
}

var (
	selectTop         int
	selectWeightsFile string
	selectSnapshot    string
	selectJSON        bool

	selectWeights selection.ScoringWeights
)

func init() {
	rootCmd.AddCommand(selectCmd)

	d := selection.DefaultWeights()
	f := selectCmd.Flags()
	f.IntVar(&selectTop, "top", 0, "表示する銘柄数 (default: DEFAULT_TOP_N)")
	f.StringVar(&selectWeightsFile, "weights-file", "", "YAML weight profile")
	f.StringVar(&selectSnapshot, "snapshot", "", "use a stored snapshot instead of scraping (latest | YYYY-MM-DD)")
	f.BoolVar(&selectJSON, "json", false, "print the ranking as JSON")
	f.Float64Var(&selectWeights.DistributionYield, "w-yield", d.DistributionYield, "分配金利回りの重み")
	f.Float64Var(&selectWeights.NAVRatio, "w-nav", d.NAVRatio, "NAV倍率の重み")
	f.Float64Var(&selectWeights.PortfolioQuality, "w-portfolio", d.PortfolioQuality, "ポートフォリオ質の重み")
	f.Float64Var(&selectWeights.FinancialHealth, "w-financial", d.FinancialHealth, "財務健全性の重み")
	f.Float64Var(&selectWeights.MarketPosition, "w-market", d.MarketPosition, "市場ポジションの重み")
}

// resolveWeights layers defaults, the optional profile and explicitly set flags
func resolveWeights(flags *pflag.FlagSet, file string, fromFlags selection.ScoringWeights) (selection.ScoringWeights, error) {
	w := selection.DefaultWeights()

	if file != "" {
		loaded, _, err := weightconfig.Load(file)
		if err != nil {
			return w, err
		}
		w = loaded
	}

	overrides := []struct {
		flag string
		dst  *float64
		src  float64
	}{
		{"w-yield", &w.DistributionYield, fromFlags.DistributionYield},
		{"w-nav", &w.NAVRatio, fromFlags.NAVRatio},
		{"w-portfolio", &w.PortfolioQuality, fromFlags.PortfolioQuality},
		{"w-financial", &w.FinancialHealth, fromFlags.FinancialHealth},
		{"w-market", &w.MarketPosition, fromFlags.MarketPosition},
	}
	for _, o := range overrides {
		if flags.Changed(o.flag) {
			*o.dst = o.src
		}
	}

	if err := weightconfig.Validate(w); err != nil {
		return w, err
	}
	return w, nil
}

func runSelect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	weights, err := resolveWeights(cmd.Flags(), selectWeightsFile, selectWeights)
	if err != nil {
		return fmt.Errorf("resolve weights: %w", err)
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	topN := selectTop
	if topN == 0 {
		topN = a.cfg.DefaultTopN
	}

	table, source, err := loadTable(ctx, a, selectSnapshot)
	if err != nil {
		return err
	}

	selector := selection.NewSelector(weights, a.log)
	ranked, err := selector.Select(table, topN)
	if err != nil {
		return fmt.Errorf("select: %w", err)
	}

	out := cmd.OutOrStdout()
	if selectJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(ranked)
	}

	printSelection(out, source, len(table), weights, ranked)
	return nil
}

// loadTable reads the live table or, with --snapshot, a stored one
func loadTable(ctx context.Context, a *app, snapshotArg string) ([]contracts.Entity, string, error) {
	if snapshotArg == "" {
		table, err := a.provider.Entities(ctx)
		if err != nil {
			return nil, "", err
		}
		return table, a.cfg.Source.URL, nil
	}

	if a.snapshots == nil {
		return nil, "", fmt.Errorf("--snapshot requires DATABASE_URL")
	}

	if snapshotArg == "latest" {
		date, table, err := a.snapshots.Latest(ctx)
		if err != nil {
			return nil, "", fmt.Errorf("load latest snapshot: %w", err)
		}
		return table, "snapshot " + date.Format("2006-01-02"), nil
	}

	date, err := time.Parse("2006-01-02", snapshotArg)
	if err != nil {
		return nil, "", fmt.Errorf("invalid --snapshot %q (expected latest or YYYY-MM-DD)", snapshotArg)
	}
	table, err := a.snapshots.At(ctx, date)
	if err != nil {
		return nil, "", fmt.Errorf("load snapshot %s: %w", snapshotArg, err)
	}
	return table, "snapshot " + snapshotArg, nil
}

func printSelection(w io.Writer, source string, rows int, weights selection.ScoringWeights, ranked []contracts.ScoredEntity) {
	PrintHeader(w, "J-REIT 銘柄選定結果")
	fmt.Fprintf(w, "  Source    : %s (%d 銘柄)\n", source, rows)
	fmt.Fprintf(w, "  Weights   : 分配金利回り %.2f / NAV倍率 %.2f / ポートフォリオ質 %.2f / 財務健全性 %.2f / 市場ポジション %.2f\n",
		weights.DistributionYield, weights.NAVRatio, weights.PortfolioQuality,
		weights.FinancialHealth, weights.MarketPosition)

	if len(ranked) == 0 {
		PrintWarning(w, "選定対象の銘柄がありません")
		return
	}

	PrintTable(w, presenter.BasicRows(ranked))
	PrintTable(w, presenter.ScoreRows(ranked))
	fmt.Fprintln(w)
}
