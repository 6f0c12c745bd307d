package output

import (
	"encoding/json"
	"io"

	"rvg-calc/core/types"
)

// JSONFormatter renders the result as indented JSON
type JSONFormatter struct{}

// NewJSONFormatter creates a JSON formatter
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format returns FormatJSON
func (f *JSONFormatter) Format() Format { return FormatJSON }

// Render writes the result
func (f *JSONFormatter) Render(w io.Writer, result *types.CalculationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
