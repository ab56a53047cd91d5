package commands

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/width"

	"github.com/wonny/jreit-finder/internal/presenter"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

// PrintHeader prints a titled banner
func PrintHeader(w io.Writer, title string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, "═══════════════════════════════════════════════════════════")
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, "───────────────────────────────────────────────────────────")
}

// PrintWarning prints a warning message
func PrintWarning(w io.Writer, message string) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "⚠️  %s\n", message)
	fmt.Fprintln(w)
}

// PrintSuccess prints a success message
func PrintSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// PrintInfo prints an info message
func PrintInfo(w io.Writer, message string) {
	fmt.Fprintf(w, "ℹ️  %s\n", message)
}

// displayWidth counts East Asian wide and fullwidth runes as two columns
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// pad right-pads s with spaces to the given display width
func pad(s string, cols int) string {
	if gap := cols - displayWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// PrintTable prints a presenter table with columns aligned for Japanese text
func PrintTable(w io.Writer, t presenter.Table) {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = displayWidth(h)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(widths) && displayWidth(cell) > widths[i] {
				widths[i] = displayWidth(cell)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "■ %s\n", t.Title)
	printTableRow(w, t.Headers, widths)

	total := 0
	for i, cw := range widths {
		total += cw
		if i < len(widths)-1 {
			total += 2 // spacing
		}
	}
	fmt.Fprintln(w, strings.Repeat("─", total))

	for _, row := range t.Rows {
		printTableRow(w, row, widths)
	}
}

func printTableRow(w io.Writer, values []string, widths []int) {
	cells := make([]string, 0, len(values))
	for i, v := range values {
		if i == len(values)-1 {
			cells = append(cells, v)
			continue
		}
		cells = append(cells, pad(v, widths[i]))
	}
	fmt.Fprintln(w, strings.Join(cells, "  "))
}
