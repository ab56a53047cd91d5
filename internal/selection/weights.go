package selection

import "github.com/wonny/jreit-finder/internal/contracts"

// ScoringWeights defines the weight of each sub-score in the composite.
// It is a plain value: the sum-to-one contract is checked by whoever builds it
// from operator input (see internal/weightconfig).
type ScoringWeights struct {
	DistributionYield float64 `json:"distribution_yield" yaml:"distribution_yield"` // 分配金利回り
	NAVRatio          float64 `json:"nav_ratio" yaml:"nav_ratio"`                   // NAV倍率
	PortfolioQuality  float64 `json:"portfolio_quality" yaml:"portfolio_quality"`   // 築年数, 棟数
	FinancialHealth   float64 `json:"financial_health" yaml:"financial_health"`     // LTV, ROE
	MarketPosition    float64 `json:"market_position" yaml:"market_position"`       // 時価総額, 資産規模
}

// DefaultWeights returns the default weighting (sums to 1.0)
func DefaultWeights() ScoringWeights {
	return ScoringWeights{
		DistributionYield: 0.25,
		NAVRatio:          0.20,
		PortfolioQuality:  0.15,
		FinancialHealth:   0.20,
		MarketPosition:    0.20,
	}
}

// Sum returns the total of the five weights
func (w ScoringWeights) Sum() float64 {
	return w.DistributionYield + w.NAVRatio + w.PortfolioQuality + w.FinancialHealth + w.MarketPosition
}

// Composite returns the weighted sum of the sub-scores; weights are not re-normalized
func (w ScoringWeights) Composite(s contracts.ScoreDetail) float64 {
	return s.DistributionYield*w.DistributionYield +
		s.NAVRatio*w.NAVRatio +
		s.PortfolioQuality*w.PortfolioQuality +
		s.FinancialHealth*w.FinancialHealth +
		s.MarketPosition*w.MarketPosition
}
