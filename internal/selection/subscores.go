package selection

import (
	"math"

	"github.com/wonny/jreit-finder/internal/contracts"
)

// idealNAVRatio is the "fair value" NAV ratio
const idealNAVRatio = 1.0

// DistributionYieldScores: higher yield scores higher
func DistributionYieldScores(table []contracts.Entity) []float64 {
	return NormalizeColumn(table, distributionYield)
}

// NAVRatioScores rewards proximity to a NAV ratio of 1.0:
// 1 - |nav - 1| / max(nav). The result is not clamped and can leave [0,1].
// Equal ratios across several rows still use the formula; only a single
// row (or a non-positive max) scores NeutralScore.
func NAVRatioScores(table []contracts.Entity) []float64 {
	values := columnValues(table, navRatio)
	r := newColumnRange(values)

	out := make([]float64, len(values))
	for i, v := range values {
		if len(values) == 1 || r.max <= 0 {
			out[i] = NeutralScore
			continue
		}
		out[i] = 1 - math.Abs(v-idealNAVRatio)/r.max
	}
	return out
}

// PortfolioQualityScores averages younger buildings and more buildings
func PortfolioQualityScores(table []contracts.Entity) []float64 {
	age := NormalizeColumn(table, averageBuildingAge)
	count := NormalizeColumn(table, buildingCount)

	out := make([]float64, len(table))
	for i := range out {
		out[i] = ((1 - age[i]) + count[i]) / 2
	}
	return out
}

// FinancialHealthScores averages lower leverage and higher ROE
func FinancialHealthScores(table []contracts.Entity) []float64 {
	leverage := NormalizeColumn(table, leverageRatio)
	equity := NormalizeColumn(table, roe)

	out := make([]float64, len(table))
	for i := range out {
		out[i] = ((1 - leverage[i]) + equity[i]) / 2
	}
	return out
}

// MarketPositionScores averages market cap and asset size
func MarketPositionScores(table []contracts.Entity) []float64 {
	capScore := NormalizeColumn(table, marketCap)
	size := NormalizeColumn(table, assetSize)

	out := make([]float64, len(table))
	for i := range out {
		out[i] = (capScore[i] + size[i]) / 2
	}
	return out
}

// ScoreTable computes the five sub-scores for every row, in input order
func ScoreTable(table []contracts.Entity) []contracts.ScoreDetail {
	yield := DistributionYieldScores(table)
	nav := NAVRatioScores(table)
	quality := PortfolioQualityScores(table)
	health := FinancialHealthScores(table)
	position := MarketPositionScores(table)

	out := make([]contracts.ScoreDetail, len(table))
	for i := range out {
		out[i] = contracts.ScoreDetail{
			DistributionYield: yield[i],
			NAVRatio:          nav[i],
			PortfolioQuality:  quality[i],
			FinancialHealth:   health[i],
			MarketPosition:    position[i],
		}
	}
	return out
}
