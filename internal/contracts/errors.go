package contracts

import "fmt"

// SchemaError reports a missing or malformed column in the entity table
type SchemaError struct {
	Field  string // schema field name, e.g. "nav_ratio"
	Code   string // securities code of the offending row, empty for column-level errors
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("schema error: %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("schema error: %s (code %s): %s", e.Field, e.Code, e.Reason)
}

// InvalidTopNError is returned when a selection asks for fewer than one row
type InvalidTopNError struct {
	TopN int
}

func (e *InvalidTopNError) Error() string {
	return fmt.Sprintf("top_n must be >= 1, got %d", e.TopN)
}
