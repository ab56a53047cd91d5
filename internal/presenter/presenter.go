package presenter

import (
	"fmt"
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/wonny/jreit-finder/internal/contracts"
)

// Table is a titled grid of preformatted cells
type Table struct {
	Title   string     `json:"title"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

var printer = message.NewPrinter(language.Japanese)

// FormatYen renders a yen amount as a grouped integer: 1234567.8 -> "1,234,568"
func FormatYen(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}

// FormatPercent renders a fraction with one decimal: 0.0412 -> "4.1%"
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

// FormatScore renders a score with three decimals
func FormatScore(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

// FormatRatio renders a multiple with two decimals
func FormatRatio(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// BasicRows builds the overview of the selected J-REITs
func BasicRows(ranked []contracts.ScoredEntity) Table {
	t := Table{
		Title: fmt.Sprintf("上位%d銘柄の基本情報", len(ranked)),
		Headers: []string{
			"順位", "証券コード", "投資法人名", "運用資産", "総合スコア",
			"分配金利回り", "NAV倍率", "有利子負債比率", "時価総額(円)", "資産規模(円)",
		},
		Rows: make([][]string, 0, len(ranked)),
	}

	for _, r := range ranked {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", r.Rank),
			r.Code,
			r.Name,
			r.Category.Label(),
			FormatScore(r.TotalScore),
			FormatPercent(r.DistributionYield),
			FormatRatio(r.NAVRatio),
			FormatPercent(r.LeverageRatio),
			FormatYen(r.MarketCap),
			FormatYen(r.AssetSize),
		})
	}

	return t
}

// ScoreRows builds the per-criterion score breakdown
func ScoreRows(ranked []contracts.ScoredEntity) Table {
	t := Table{
		Title: "スコアの詳細",
		Headers: []string{
			"順位", "証券コード", "投資法人名",
			"分配金利回りスコア", "NAV倍率スコア", "ポートフォリオ質スコア",
			"財務健全性スコア", "市場ポジションスコア", "総合スコア",
		},
		Rows: make([][]string, 0, len(ranked)),
	}

	for _, r := range ranked {
		t.Rows = append(t.Rows, []string{
			fmt.Sprintf("%d", r.Rank),
			r.Code,
			r.Name,
			FormatScore(r.Scores.DistributionYield),
			FormatScore(r.Scores.NAVRatio),
			FormatScore(r.Scores.PortfolioQuality),
			FormatScore(r.Scores.FinancialHealth),
			FormatScore(r.Scores.MarketPosition),
			FormatScore(r.TotalScore),
		})
	}

	return t
}
