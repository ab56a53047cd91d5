package japanreit

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/width"

	"github.com/wonny/jreit-finder/internal/contracts"
)

type valueKind int

const (
	kindText valueKind = iota
	kindNumber
	kindPercent
	kindCategory
)

// column maps one header of the ranking tables to an Entity field
type column struct {
	header     string
	field      string // schema name used in SchemaError
	kind       valueKind
	multiplier float64
	assign     func(e *contracts.Entity, text string, num float64)
}

// columns lists every header the selector needs, as printed on the site
var columns = []column{
	{header: "投資法人名", field: "name", kind: kindText,
		assign: func(e *contracts.Entity, s string, _ float64) { e.Name = s }},
	{header: "運用資産", field: "category", kind: kindCategory},
	{header: "分配金利回り", field: "distribution_yield", kind: kindPercent,
		assign: func(e *contracts.Entity, _ string, v float64) { e.DistributionYield = v }},
	{header: "NAV倍率", field: "nav_ratio", kind: kindNumber, multiplier: 1,
		assign: func(e *contracts.Entity, _ string, v float64) { e.NAVRatio = v }},
	{header: "時価総額(百万円)", field: "market_cap", kind: kindNumber, multiplier: 1e6,
		assign: func(e *contracts.Entity, _ string, v float64) { e.MarketCap = v }},
	{header: "資産規模(億円)", field: "asset_size", kind: kindNumber, multiplier: 1e8,
		assign: func(e *contracts.Entity, _ string, v float64) { e.AssetSize = v }},
	{header: "棟数", field: "building_count", kind: kindNumber, multiplier: 1,
		assign: func(e *contracts.Entity, _ string, v float64) { e.BuildingCount = int(v) }},
	{header: "平均築年数", field: "average_building_age", kind: kindNumber, multiplier: 1,
		assign: func(e *contracts.Entity, _ string, v float64) { e.AverageBuildingAge = v }},
	{header: "NOI利回り", field: "noi_yield", kind: kindPercent,
		assign: func(e *contracts.Entity, _ string, v float64) { e.NOIYield = v }},
	{header: "含み損益率", field: "unrealized_gain_ratio", kind: kindPercent,
		assign: func(e *contracts.Entity, _ string, v float64) { e.UnrealizedGainRatio = v }},
	{header: "年額分配金(円)", field: "annual_distribution", kind: kindNumber, multiplier: 1,
		assign: func(e *contracts.Entity, _ string, v float64) { e.AnnualDistribution = v }},
	{header: "自己資本利益率（ROE）", field: "roe", kind: kindPercent,
		assign: func(e *contracts.Entity, _ string, v float64) { e.ROE = v }},
	{header: "有利子負債比率", field: "leverage_ratio", kind: kindPercent,
		assign: func(e *contracts.Entity, _ string, v float64) { e.LeverageRatio = v }},
}

const codeHeader = "証券コード"

// normalizeHeader folds full-width ASCII and drops whitespace so
// "自己資本利益率（ROE）" and "自己資本利益率 (ROE)" compare equal
func normalizeHeader(s string) string {
	return strings.Join(strings.Fields(width.Fold.String(s)), "")
}

// ParseTables reads every <table> of an already-decoded page, joins rows on
// 証券コード and converts them to entities in first-seen order.
func ParseTables(r io.Reader) ([]contracts.Entity, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	records := make(map[string]map[string]string)
	var order []string
	seenHeaders := make(map[string]bool)
	codeKey := normalizeHeader(codeHeader)

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		headers := tableHeaders(table)
		codeIdx := -1
		for i, h := range headers {
			if h == codeKey {
				codeIdx = i
			}
		}
		if codeIdx < 0 {
			return
		}
		for _, h := range headers {
			seenHeaders[h] = true
		}

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if cells.Length() == 0 || cells.Length() <= codeIdx {
				return
			}

			code := strings.TrimSpace(cells.Eq(codeIdx).Text())
			if code == "" {
				return
			}

			rec, ok := records[code]
			if !ok {
				rec = make(map[string]string)
				records[code] = rec
				order = append(order, code)
			}

			cells.Each(func(i int, cell *goquery.Selection) {
				if i < len(headers) {
					rec[headers[i]] = strings.TrimSpace(cell.Text())
				}
			})
		})
	})

	if len(order) == 0 {
		return nil, &contracts.SchemaError{Field: "id", Reason: "no table with a " + codeHeader + " column"}
	}

	for _, col := range columns {
		if !seenHeaders[normalizeHeader(col.header)] {
			return nil, &contracts.SchemaError{Field: col.field, Reason: "column " + col.header + " not found"}
		}
	}

	entities := make([]contracts.Entity, 0, len(order))
	for _, code := range order {
		e, err := toEntity(code, records[code])
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}

	return entities, nil
}

// tableHeaders returns the normalized header texts of a table
func tableHeaders(table *goquery.Selection) []string {
	var headers []string
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		ths := row.Find("th")
		if ths.Length() == 0 {
			return true
		}
		ths.Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, normalizeHeader(th.Text()))
		})
		return false
	})
	return headers
}

func toEntity(code string, rec map[string]string) (contracts.Entity, error) {
	e := contracts.Entity{Code: code}

	for _, col := range columns {
		raw, ok := rec[normalizeHeader(col.header)]
		if !ok {
			return e, &contracts.SchemaError{Field: col.field, Code: code, Reason: "missing cell"}
		}

		switch col.kind {
		case kindText:
			col.assign(&e, raw, 0)

		case kindCategory:
			category, err := parseCategory(raw)
			if err != nil {
				return e, &contracts.SchemaError{Field: col.field, Code: code, Reason: err.Error()}
			}
			e.Category = category

		case kindNumber, kindPercent:
			v, err := parseNumber(raw)
			if err != nil {
				return e, &contracts.SchemaError{Field: col.field, Code: code, Reason: err.Error()}
			}
			if col.kind == kindPercent {
				v *= 0.01
			} else {
				v *= col.multiplier
			}
			col.assign(&e, raw, v)
		}
	}

	return e, nil
}

// parseNumber parses "1,234.5", "4.52%", "1.05倍" and similar cells
func parseNumber(s string) (float64, error) {
	cleaned := width.Fold.String(strings.TrimSpace(s))
	for _, unit := range []string{",", "%", "倍", "円", "年", "棟"} {
		cleaned = strings.ReplaceAll(cleaned, unit, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, fmt.Errorf("non-numeric value %q", s)
	}
	// ParseFloat accepts "NaN" and "Inf"
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite value %q", s)
	}
	return v, nil
}

// parseCategory accepts the numeric asset-type code or its Japanese label
func parseCategory(s string) (contracts.Category, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if c, ok := contracts.CategoryFromCode(n); ok {
			return c, nil
		}
		return "", fmt.Errorf("unknown asset type code %d", n)
	}
	if c, ok := contracts.CategoryFromLabel(s); ok {
		return c, nil
	}
	return "", fmt.Errorf("unknown asset type %q", s)
}
