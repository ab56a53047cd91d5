package contracts

// ScoredEntity is an entity with its sub-scores, composite score and rank
// ⭐ SSOT: Selection → Presentation 랭킹 결과 전달
type ScoredEntity struct {
	Entity
	Rank       int         `json:"rank"`        // 1-based ranking
	TotalScore float64     `json:"total_score"` // Composite score
	Scores     ScoreDetail `json:"scores"`      // Individual scores
}

// ScoreDetail contains the five sub-scores
type ScoreDetail struct {
	DistributionYield float64 `json:"distribution_yield"` // 分配金利回り
	NAVRatio          float64 `json:"nav_ratio"`          // NAV倍率, not clamped to [0,1]
	PortfolioQuality  float64 `json:"portfolio_quality"`  // 築年数 + 棟数
	FinancialHealth   float64 `json:"financial_health"`   // LTV + ROE
	MarketPosition    float64 `json:"market_position"`    // 時価総額 + 資産規模
}

