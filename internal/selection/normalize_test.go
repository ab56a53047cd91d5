package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/jreit-finder/internal/contracts"
)

func yieldTable(yields ...float64) []contracts.Entity {
	table := make([]contracts.Entity, len(yields))
	for i, y := range yields {
		table[i] = contracts.Entity{Code: string(rune('A' + i)), DistributionYield: y, NAVRatio: 1}
	}
	return table
}

func TestNormalizeColumn_Range(t *testing.T) {
	table := yieldTable(0.031, 0.052, 0.044, 0.039, 0.061)

	got := NormalizeColumn(table, distributionYield)
	require.Len(t, got, 5)

	for _, v := range got {
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	assert.InDelta(t, 0.0, got[0], eps) // min
	assert.InDelta(t, 1.0, got[4], eps) // max
	assert.InDelta(t, (0.044-0.031)/(0.061-0.031), got[2], eps)
}

func TestNormalizeColumn_Degenerate(t *testing.T) {
	tests := []struct {
		name  string
		table []contracts.Entity
	}{
		{"single row", yieldTable(0.04)},
		{"identical values", yieldTable(0.04, 0.04, 0.04)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, v := range NormalizeColumn(tt.table, distributionYield) {
				assert.Equal(t, NeutralScore, v)
			}
		})
	}
}

func TestNormalizeColumn_Empty(t *testing.T) {
	assert.Empty(t, NormalizeColumn(nil, distributionYield))
}

func TestNormalizeColumn_UsesWholeTable(t *testing.T) {
	// the same row scores differently depending on the rest of the table
	narrow := NormalizeColumn(yieldTable(0.03, 0.04), distributionYield)
	wide := NormalizeColumn(yieldTable(0.03, 0.04, 0.05), distributionYield)

	assert.InDelta(t, 1.0, narrow[1], eps)
	assert.InDelta(t, 0.5, wide[1], eps)
}

func TestNAVRatioScores_NotClamped(t *testing.T) {
	table := []contracts.Entity{
		{Code: "low", NAVRatio: 0.1},
		{Code: "high", NAVRatio: 0.5},
	}

	got := NAVRatioScores(table)

	// 1 - |0.1-1|/0.5 and 1 - |0.5-1|/0.5
	assert.InDelta(t, -0.8, got[0], eps)
	assert.InDelta(t, 0.0, got[1], eps)
}

func TestNAVRatioScores_ProximityToOne(t *testing.T) {
	table := []contracts.Entity{
		{Code: "fair", NAVRatio: 1.0},
		{Code: "discount", NAVRatio: 0.8},
		{Code: "premium", NAVRatio: 1.6},
	}

	got := NAVRatioScores(table)

	assert.InDelta(t, 1.0, got[0], eps)
	assert.InDelta(t, 1-0.2/1.6, got[1], eps)
	assert.InDelta(t, 1-0.6/1.6, got[2], eps)
	assert.Greater(t, got[0], got[1])
	assert.Greater(t, got[1], got[2])
}

func TestNAVRatioScores_EqualRatiosUseFormula(t *testing.T) {
	table := []contracts.Entity{{Code: "a", NAVRatio: 1.2}, {Code: "b", NAVRatio: 1.2}}

	got := NAVRatioScores(table)

	require.Len(t, got, 2)
	for _, v := range got {
		assert.InDelta(t, 1-0.2/1.2, v, eps)
	}
}

func TestNAVRatioScores_SingleRowIsNeutral(t *testing.T) {
	got := NAVRatioScores([]contracts.Entity{{Code: "a", NAVRatio: 1.2}})
	assert.Equal(t, []float64{NeutralScore}, got)
}

func TestPortfolioQualityScores_Direction(t *testing.T) {
	table := []contracts.Entity{
		{Code: "young-large", AverageBuildingAge: 5, BuildingCount: 100},
		{Code: "old-small", AverageBuildingAge: 30, BuildingCount: 10},
		{Code: "young-small", AverageBuildingAge: 5, BuildingCount: 10},
	}

	got := PortfolioQualityScores(table)

	assert.InDelta(t, 1.0, got[0], eps)
	assert.InDelta(t, 0.0, got[1], eps)
	assert.InDelta(t, 0.5, got[2], eps)
}

func TestFinancialHealthScores_Direction(t *testing.T) {
	table := []contracts.Entity{
		{Code: "safe", LeverageRatio: 0.35, ROE: 0.07},
		{Code: "levered", LeverageRatio: 0.55, ROE: 0.03},
	}

	got := FinancialHealthScores(table)

	assert.InDelta(t, 1.0, got[0], eps)
	assert.InDelta(t, 0.0, got[1], eps)
}

func TestMarketPositionScores_Average(t *testing.T) {
	table := []contracts.Entity{
		{Code: "big-cap", MarketCap: 3e11, AssetSize: 1e11},
		{Code: "big-assets", MarketCap: 1e11, AssetSize: 5e11},
	}

	got := MarketPositionScores(table)

	assert.InDelta(t, 0.5, got[0], eps)
	assert.InDelta(t, 0.5, got[1], eps)
}
