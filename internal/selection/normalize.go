package selection

import (
	"github.com/montanaflynn/stats"

	"github.com/wonny/jreit-finder/internal/contracts"
)

// NeutralScore is assigned to every row when a column has no spread (max == min),
// which includes single-row tables.
const NeutralScore = 0.5

// columnRange holds the min/max of one column over the whole input table
type columnRange struct {
	min float64
	max float64
}

func newColumnRange(values []float64) columnRange {
	// stats only errors on empty input, in which case there is nothing to normalize
	lo, err := stats.Min(values)
	if err != nil {
		return columnRange{}
	}
	hi, _ := stats.Max(values)
	return columnRange{min: lo, max: hi}
}

func (r columnRange) degenerate() bool {
	return r.max == r.min
}

// normalize maps v to [0,1] ascending. Higher raw value scores higher;
// callers wanting "lower is better" use 1 - normalize.
func (r columnRange) normalize(v float64) float64 {
	if r.degenerate() {
		return NeutralScore
	}
	return (v - r.min) / (r.max - r.min)
}

// NormalizeColumn normalizes one column of the table, selected by extract
func NormalizeColumn(table []contracts.Entity, extract func(*contracts.Entity) float64) []float64 {
	values := columnValues(table, extract)
	r := newColumnRange(values)

	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = r.normalize(v)
	}
	return out
}

func columnValues(table []contracts.Entity, extract func(*contracts.Entity) float64) []float64 {
	values := make([]float64, len(table))
	for i := range table {
		values[i] = extract(&table[i])
	}
	return values
}

// Column extractors
func distributionYield(e *contracts.Entity) float64  { return e.DistributionYield }
func navRatio(e *contracts.Entity) float64           { return e.NAVRatio }
func averageBuildingAge(e *contracts.Entity) float64 { return e.AverageBuildingAge }
func buildingCount(e *contracts.Entity) float64      { return float64(e.BuildingCount) }
func leverageRatio(e *contracts.Entity) float64      { return e.LeverageRatio }
func roe(e *contracts.Entity) float64                { return e.ROE }
func marketCap(e *contracts.Entity) float64          { return e.MarketCap }
func assetSize(e *contracts.Entity) float64          { return e.AssetSize }
