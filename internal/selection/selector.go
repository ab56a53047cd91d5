package selection

import (
	"sort"

	"github.com/wonny/jreit-finder/internal/contracts"
	"github.com/wonny/jreit-finder/pkg/logger"
)

// Selector scores and ranks J-REITs with fixed weights
// ⭐ SSOT: 銘柄選定 로직은 여기서만
type Selector struct {
	weights ScoringWeights
	logger  *logger.Logger
}

// NewSelector creates a new selector
func NewSelector(weights ScoringWeights, log *logger.Logger) *Selector {
	if log == nil {
		log = logger.Nop()
	}
	return &Selector{
		weights: weights,
		logger:  log.WithComponent("selector"),
	}
}

// Weights returns the selector's weights
func (s *Selector) Weights() ScoringWeights {
	return s.weights
}

// Select ranks the table and returns the top N rows
func (s *Selector) Select(table []contracts.Entity, topN int) ([]contracts.ScoredEntity, error) {
	ranked, err := Select(table, s.weights, topN)
	if err != nil {
		s.logger.WithError(err).WithField("rows", len(table)).Warn("Selection rejected")
		return nil, err
	}

	fields := map[string]interface{}{
		"rows":     len(table),
		"top_n":    topN,
		"selected": len(ranked),
	}
	if len(ranked) > 0 {
		fields["top_code"] = ranked[0].Code
		fields["top_score"] = ranked[0].TotalScore
	}
	s.logger.WithFields(fields).Info("Selection completed")

	return ranked, nil
}

// Select scores every row against the whole table, sorts by composite score
// descending (ties keep input order) and truncates to topN.
// The input table is not modified.
func Select(table []contracts.Entity, weights ScoringWeights, topN int) ([]contracts.ScoredEntity, error) {
	if topN < 1 {
		return nil, &contracts.InvalidTopNError{TopN: topN}
	}

	if err := contracts.ValidateTable(table); err != nil {
		return nil, err
	}

	scores := ScoreTable(table)

	ranked := make([]contracts.ScoredEntity, len(table))
	for i := range table {
		ranked[i] = contracts.ScoredEntity{
			Entity:     table[i],
			TotalScore: weights.Composite(scores[i]),
			Scores:     scores[i],
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})

	if topN < len(ranked) {
		ranked = ranked[:topN]
	}

	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	return ranked, nil
}
