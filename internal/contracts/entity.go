package contracts

import (
	"fmt"
	"math"
)

// Category is the asset-type classification of a J-REIT
type Category string

const (
	CategoryOffice      Category = "office"
	CategoryResidential Category = "residential"
	CategoryRetail      Category = "retail"
	CategoryHotel       Category = "hotel"
	CategoryLogistics   Category = "logistics"
	CategoryDiversified Category = "diversified"
	CategoryComposite   Category = "composite"
	CategoryHealthcare  Category = "healthcare"
)

// categoryCodes maps the 運用資産 code used by japan-reit.com
var categoryCodes = map[int]Category{
	1: CategoryOffice,      // 事業所主体型
	2: CategoryResidential, // 住居主体型
	3: CategoryRetail,      // 商業施設主体型
	4: CategoryHotel,       // ホテル主体型
	5: CategoryLogistics,   // 物流施設主体型
	7: CategoryDiversified, // 総合型
	8: CategoryComposite,   // 複合型
	9: CategoryHealthcare,  // ヘルスケア施設主体型
}

var categoryLabels = map[Category]string{
	CategoryOffice:      "事業所主体型",
	CategoryResidential: "住居主体型",
	CategoryRetail:      "商業施設主体型",
	CategoryHotel:       "ホテル主体型",
	CategoryLogistics:   "物流施設主体型",
	CategoryDiversified: "総合型",
	CategoryComposite:   "複合型",
	CategoryHealthcare:  "ヘルスケア施設主体型",
}

// CategoryFromCode resolves the numeric asset-type code
func CategoryFromCode(code int) (Category, bool) {
	c, ok := categoryCodes[code]
	return c, ok
}

// CategoryFromLabel resolves a Japanese display label such as 物流施設主体型
func CategoryFromLabel(label string) (Category, bool) {
	for c, l := range categoryLabels {
		if l == label {
			return c, true
		}
	}
	return "", false
}

// Label returns the Japanese display label
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// Entity is one J-REIT row handed to the selection engine
// ⭐ SSOT: Provider → Selection 데이터 계약
type Entity struct {
	Code     string   `json:"code"` // 証券コード, unique
	Name     string   `json:"name"`
	Category Category `json:"category"`

	DistributionYield  float64 `json:"distribution_yield"`   // fraction, 0.045 = 4.5%
	NAVRatio           float64 `json:"nav_ratio"`            // price / NAV
	MarketCap          float64 `json:"market_cap"`           // yen
	AssetSize          float64 `json:"asset_size"`           // yen
	BuildingCount      int     `json:"building_count"`       //
	AverageBuildingAge float64 `json:"average_building_age"` // years
	LeverageRatio      float64 `json:"leverage_ratio"`       // interest-bearing debt ratio
	ROE                float64 `json:"roe"`                  // fraction

	// Carried through to the output, not scored
	NOIYield            float64 `json:"noi_yield"`
	UnrealizedGainRatio float64 `json:"unrealized_gain_ratio"`
	AnnualDistribution  float64 `json:"annual_distribution"` // yen per unit
}

// numericFields lists the numeric columns by their schema name; all must be finite
// so the table can be scored and JSON-encoded
func (e *Entity) numericFields() []struct {
	name  string
	value float64
} {
	return []struct {
		name  string
		value float64
	}{
		{"distribution_yield", e.DistributionYield},
		{"nav_ratio", e.NAVRatio},
		{"market_cap", e.MarketCap},
		{"asset_size", e.AssetSize},
		{"average_building_age", e.AverageBuildingAge},
		{"leverage_ratio", e.LeverageRatio},
		{"roe", e.ROE},
		{"noi_yield", e.NOIYield},
		{"unrealized_gain_ratio", e.UnrealizedGainRatio},
		{"annual_distribution", e.AnnualDistribution},
	}
}

// Validate checks the fields the scoring engine depends on
func (e *Entity) Validate() error {
	if e.Code == "" {
		return &SchemaError{Field: "id", Reason: "empty securities code"}
	}

	for _, f := range e.numericFields() {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return &SchemaError{Field: f.name, Code: e.Code, Reason: fmt.Sprintf("non-finite value %v", f.value)}
		}
	}

	if e.NAVRatio <= 0 {
		return &SchemaError{Field: "nav_ratio", Code: e.Code, Reason: fmt.Sprintf("must be > 0, got %v", e.NAVRatio)}
	}

	if e.BuildingCount < 0 {
		return &SchemaError{Field: "building_count", Code: e.Code, Reason: fmt.Sprintf("must be >= 0, got %d", e.BuildingCount)}
	}

	return nil
}

// ValidateTable validates every row and the uniqueness of Code
func ValidateTable(table []Entity) error {
	seen := make(map[string]struct{}, len(table))
	for i := range table {
		if err := table[i].Validate(); err != nil {
			return err
		}
		if _, dup := seen[table[i].Code]; dup {
			return &SchemaError{Field: "id", Code: table[i].Code, Reason: "duplicate securities code"}
		}
		seen[table[i].Code] = struct{}{}
	}
	return nil
}
