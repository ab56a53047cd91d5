package weightconfig

import (
	"fmt"
	"math"

	"github.com/wonny/jreit-finder/internal/selection"
)

// SumTolerance is the allowed deviation of the weight sum from 1.0
const SumTolerance = 1e-4

// WeightSumError is returned when the five weights do not sum to 1.0
type WeightSumError struct {
	Sum float64
}

func (e *WeightSumError) Error() string {
	return fmt.Sprintf("weights must sum to 1.0 (±%g), got %.4f", SumTolerance, e.Sum)
}

// NegativeWeightError is returned when a weight is below zero
type NegativeWeightError struct {
	Field string
	Value float64
}

func (e *NegativeWeightError) Error() string {
	return fmt.Sprintf("%s: weight must be >= 0, got %g", e.Field, e.Value)
}

// Validate checks the weights before they reach the selection engine
func Validate(w selection.ScoringWeights) error {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"distribution_yield", w.DistributionYield},
		{"nav_ratio", w.NAVRatio},
		{"portfolio_quality", w.PortfolioQuality},
		{"financial_health", w.FinancialHealth},
		{"market_position", w.MarketPosition},
	} {
		if f.value < 0 || math.IsNaN(f.value) {
			return &NegativeWeightError{Field: f.name, Value: f.value}
		}
	}

	sum := w.Sum()
	if math.Abs(sum-1.0) > SumTolerance {
		return &WeightSumError{Sum: sum}
	}

	return nil
}
