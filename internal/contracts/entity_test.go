package contracts

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEntity(code string) Entity {
	return Entity{
		Code:               code,
		Name:               "日本ビルファンド投資法人",
		Category:           CategoryOffice,
		DistributionYield:  0.04,
		NAVRatio:           1.0,
		MarketCap:          1e11,
		AssetSize:          2e11,
		BuildingCount:      10,
		AverageBuildingAge: 12,
		LeverageRatio:      0.45,
		ROE:                0.06,
	}
}

func TestCategoryFromCode(t *testing.T) {
	tests := []struct {
		code int
		want Category
		ok   bool
	}{
		{1, CategoryOffice, true},
		{5, CategoryLogistics, true},
		{9, CategoryHealthcare, true},
		{6, "", false},
		{0, "", false},
	}

	for _, tt := range tests {
		got, ok := CategoryFromCode(tt.code)
		assert.Equal(t, tt.ok, ok, "code %d", tt.code)
		assert.Equal(t, tt.want, got, "code %d", tt.code)
	}

	assert.Equal(t, "物流施設主体型", CategoryLogistics.Label())
	assert.Equal(t, "unknown", Category("unknown").Label())
}

func TestEntityValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(e *Entity)
		wantField string
	}{
		{"valid", func(e *Entity) {}, ""},
		{"empty code", func(e *Entity) { e.Code = "" }, "id"},
		{"NaN yield", func(e *Entity) { e.DistributionYield = math.NaN() }, "distribution_yield"},
		{"Inf roe", func(e *Entity) { e.ROE = math.Inf(1) }, "roe"},
		{"zero nav", func(e *Entity) { e.NAVRatio = 0 }, "nav_ratio"},
		{"negative buildings", func(e *Entity) { e.BuildingCount = -1 }, "building_count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEntity("8951")
			tt.mutate(&e)

			err := e.Validate()
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr), "expected SchemaError, got %v", err)
			assert.Equal(t, tt.wantField, schemaErr.Field)
		})
	}
}

func TestValidateTableDuplicateCode(t *testing.T) {
	table := []Entity{validEntity("8951"), validEntity("8952"), validEntity("8951")}

	err := ValidateTable(table)

	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Equal(t, "id", schemaErr.Field)
	assert.Equal(t, "8951", schemaErr.Code)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestValidateTableEmpty(t *testing.T) {
	assert.NoError(t, ValidateTable(nil))
}
