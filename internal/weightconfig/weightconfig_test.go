package weightconfig

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/jreit-finder/internal/selection"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		weights selection.ScoringWeights
		wantErr interface{}
	}{
		{"defaults", selection.DefaultWeights(), nil},
		{"slider rounding within tolerance", selection.ScoringWeights{DistributionYield: 0.25, NAVRatio: 0.2, PortfolioQuality: 0.15, FinancialHealth: 0.2, MarketPosition: 0.20005}, nil},
		{"sum too high", selection.ScoringWeights{DistributionYield: 0.3, NAVRatio: 0.2, PortfolioQuality: 0.15, FinancialHealth: 0.2, MarketPosition: 0.2}, &WeightSumError{}},
		{"sum too low", selection.ScoringWeights{DistributionYield: 0.2, NAVRatio: 0.2, PortfolioQuality: 0.15, FinancialHealth: 0.2, MarketPosition: 0.2}, &WeightSumError{}},
		{"negative weight", selection.ScoringWeights{DistributionYield: -0.1, NAVRatio: 0.3, PortfolioQuality: 0.2, FinancialHealth: 0.3, MarketPosition: 0.3}, &NegativeWeightError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.weights)
			switch tt.wantErr.(type) {
			case nil:
				assert.NoError(t, err)
			case *WeightSumError:
				var sumErr *WeightSumError
				require.True(t, errors.As(err, &sumErr), "got %v", err)
				assert.InDelta(t, tt.weights.Sum(), sumErr.Sum, 1e-12)
			case *NegativeWeightError:
				var negErr *NegativeWeightError
				require.True(t, errors.As(err, &negErr), "got %v", err)
				assert.Equal(t, "distribution_yield", negErr.Field)
			}
		})
	}
}

func TestParse_FillsDefaults(t *testing.T) {
	data := []byte(`
name: income
weights:
  distribution_yield: 0.45
  market_position: 0.0
`)

	w, p, err := Parse(data)
	require.NoError(t, err)

	assert.Equal(t, "income", p.Name)
	assert.Equal(t, 0.45, w.DistributionYield)
	assert.Equal(t, 0.0, w.MarketPosition)
	assert.Equal(t, selection.DefaultWeights().NAVRatio, w.NAVRatio)
	assert.InDelta(t, 1.0, w.Sum(), 1e-12)
}

func TestParse_RejectsUnknownField(t *testing.T) {
	_, _, err := Parse([]byte("weights:\n  distribution_yeild: 0.25\n"))
	assert.Error(t, err)
}

func TestParse_RejectsBadSum(t *testing.T) {
	_, _, err := Parse([]byte("weights:\n  distribution_yield: 0.9\n"))

	var sumErr *WeightSumError
	assert.True(t, errors.As(err, &sumErr))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "balanced.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
name: balanced
weights:
  distribution_yield: 0.2
  nav_ratio: 0.2
  portfolio_quality: 0.2
  financial_health: 0.2
  market_position: 0.2
`), 0o644))

	w, p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "balanced", p.Name)
	assert.Equal(t, selection.ScoringWeights{DistributionYield: 0.2, NAVRatio: 0.2, PortfolioQuality: 0.2, FinancialHealth: 0.2, MarketPosition: 0.2}, w)

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestFromQuery(t *testing.T) {
	t.Run("empty query gives defaults", func(t *testing.T) {
		w, err := FromQuery(url.Values{})
		require.NoError(t, err)
		assert.Equal(t, selection.DefaultWeights(), w)
	})

	t.Run("full override", func(t *testing.T) {
		q := url.Values{}
		q.Set("distribution_yield", "0.4")
		q.Set("nav_ratio", "0.1")
		q.Set("portfolio_quality", "0.1")
		q.Set("financial_health", "0.2")
		q.Set("market_position", "0.2")

		w, err := FromQuery(q)
		require.NoError(t, err)
		assert.Equal(t, 0.4, w.DistributionYield)
		assert.Equal(t, 0.1, w.NAVRatio)
	})

	t.Run("partial override breaks sum", func(t *testing.T) {
		q := url.Values{}
		q.Set("nav_ratio", "0.5")

		_, err := FromQuery(q)
		var sumErr *WeightSumError
		assert.True(t, errors.As(err, &sumErr))
	})

	t.Run("unparseable value", func(t *testing.T) {
		q := url.Values{}
		q.Set("roe", "ignored")
		q.Set("financial_health", "abc")

		_, err := FromQuery(q)
		var qErr *QueryError
		require.True(t, errors.As(err, &qErr))
		assert.Equal(t, "financial_health", qErr.Param)
	})
}

func TestShippedProfiles(t *testing.T) {
	paths, err := filepath.Glob(filepath.Join("..", "..", "profiles", "*.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, paths)

	for _, path := range paths {
		t.Run(filepath.Base(path), func(t *testing.T) {
			w, p, err := Load(path)
			require.NoError(t, err)
			assert.NotEmpty(t, p.Name)
			assert.InDelta(t, 1.0, w.Sum(), SumTolerance)
		})
	}
}
