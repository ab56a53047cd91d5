package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/jreit-finder/internal/contracts"
	"github.com/wonny/jreit-finder/internal/presenter"
)

// fetchCmd represents the fetch command
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "ランキング表を取得",
	Long: `japan-reit.com のランキング表をキャッシュを無視して再取得します。

--save を付けると当日の日付でスナップショットを保存します (DATABASE_URL 必須)。

Example:
  go run ./cmd/jreit fetch
  go run ./cmd/jreit fetch --save`,
	RunE: runFetch,
}

var fetchSave bool

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().BoolVar(&fetchSave, "save", false, "save the table as today's snapshot")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	PrintHeader(out, "J-REIT ランキング表の取得")
	start := time.Now()

	table, err := a.provider.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("fetch: %w", err)
	}
	if err := contracts.ValidateTable(table); err != nil {
		return fmt.Errorf("validate: %w", err)
	}

	PrintTable(out, entityTable(table))
	fmt.Fprintln(out)
	PrintSuccess(out, fmt.Sprintf("%d 銘柄を取得しました (%.2fs)", len(table), time.Since(start).Seconds()))

	if !fetchSave {
		return nil
	}
	if a.snapshots == nil {
		PrintWarning(out, "DATABASE_URL が未設定のためスナップショットは保存されません")
		return nil
	}

	now := time.Now()
	date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if err := a.snapshots.Save(ctx, date, table); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	PrintSuccess(out, fmt.Sprintf("スナップショットを保存しました (%s)", date.Format("2006-01-02")))

	return nil
}

// entityTable lists the raw scraped values
func entityTable(table []contracts.Entity) presenter.Table {
	t := presenter.Table{
		Title: "J-REIT 一覧",
		Headers: []string{
			"証券コード", "投資法人名", "運用資産", "分配金利回り", "NAV倍率",
			"棟数", "平均築年数", "有利子負債比率", "ROE", "時価総額(円)",
		},
	}
	for _, e := range table {
		t.Rows = append(t.Rows, []string{
			e.Code,
			e.Name,
			e.Category.Label(),
			presenter.FormatPercent(e.DistributionYield),
			presenter.FormatRatio(e.NAVRatio),
			fmt.Sprintf("%d", e.BuildingCount),
			fmt.Sprintf("%.1f", e.AverageBuildingAge),
			presenter.FormatPercent(e.LeverageRatio),
			presenter.FormatPercent(e.ROE),
			presenter.FormatYen(e.MarketCap),
		})
	}
	return t
}
