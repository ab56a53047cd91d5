package weightconfig

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/wonny/jreit-finder/internal/selection"
)

// Profile is a named weight set stored as YAML
//
//	name: income
//	weights:
//	  distribution_yield: 0.40
//	  nav_ratio: 0.15
//	  portfolio_quality: 0.15
//	  financial_health: 0.15
//	  market_position: 0.15
type Profile struct {
	Name    string        `yaml:"name"`
	Weights profileWeight `yaml:"weights"`
}

// profileWeight uses pointers so omitted keys fall back to the defaults
type profileWeight struct {
	DistributionYield *float64 `yaml:"distribution_yield"`
	NAVRatio          *float64 `yaml:"nav_ratio"`
	PortfolioQuality  *float64 `yaml:"portfolio_quality"`
	FinancialHealth   *float64 `yaml:"financial_health"`
	MarketPosition    *float64 `yaml:"market_position"`
}

// Load reads a YAML weight profile, fills omitted weights from the defaults and validates.
// Unknown keys are rejected so typos fail loudly.
func Load(path string) (selection.ScoringWeights, *Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return selection.ScoringWeights{}, nil, fmt.Errorf("read weight profile: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML weight profile
func Parse(data []byte) (selection.ScoringWeights, *Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return selection.ScoringWeights{}, nil, fmt.Errorf("decode weight profile: %w", err)
	}

	w := selection.DefaultWeights()
	apply(&w.DistributionYield, p.Weights.DistributionYield)
	apply(&w.NAVRatio, p.Weights.NAVRatio)
	apply(&w.PortfolioQuality, p.Weights.PortfolioQuality)
	apply(&w.FinancialHealth, p.Weights.FinancialHealth)
	apply(&w.MarketPosition, p.Weights.MarketPosition)

	if err := Validate(w); err != nil {
		return w, &p, err
	}

	return w, &p, nil
}

func apply(dst *float64, v *float64) {
	if v != nil {
		*dst = *v
	}
}

// QueryError reports an unparseable weight query parameter
type QueryError struct {
	Param string
	Value string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("invalid value %q for %s", e.Value, e.Param)
}

// FromQuery builds weights from URL query parameters named after the weight fields.
// Missing parameters keep their default.
func FromQuery(q url.Values) (selection.ScoringWeights, error) {
	w := selection.DefaultWeights()

	params := []struct {
		name string
		dst  *float64
	}{
		{"distribution_yield", &w.DistributionYield},
		{"nav_ratio", &w.NAVRatio},
		{"portfolio_quality", &w.PortfolioQuality},
		{"financial_health", &w.FinancialHealth},
		{"market_position", &w.MarketPosition},
	}

	for _, p := range params {
		raw := q.Get(p.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return w, &QueryError{Param: p.name, Value: raw}
		}
		*p.dst = v
	}

	if err := Validate(w); err != nil {
		return w, err
	}

	return w, nil
}
