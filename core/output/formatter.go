// Package output provides output formatting interfaces.
// This package produces human and machine-readable outputs.
package output

import (
	"fmt"
	"io"
	"sort"

	"rvg-calc/core/types"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable CLI table
	FormatCLI Format = "cli"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"
)

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given result
	Render(w io.Writer, result *types.CalculationResult) error
}

// Options control what formatters include
type Options struct {
	// ShowNotes prints per-item derivation notes
	ShowNotes bool

	// ShowNotices prints result-level notices
	ShowNotices bool
}

// Registry manages formatter registration
type Registry struct {
	formatters map[Format]Formatter
}

// NewRegistry creates a registry with the given formatters
func NewRegistry(formatters ...Formatter) *Registry {
	r := &Registry{formatters: make(map[Format]Formatter)}
	for _, f := range formatters {
		r.formatters[f.Format()] = f
	}
	return r
}

// DefaultRegistry returns the CLI and JSON formatters
func DefaultRegistry(opts Options) *Registry {
	return NewRegistry(NewCLIFormatter(opts), NewJSONFormatter())
}

// Get returns a formatter for a format type
func (r *Registry) Get(format Format) (Formatter, error) {
	f, ok := r.formatters[format]
	if !ok {
		return nil, fmt.Errorf("unknown output format %q (available: %v)", format, r.Formats())
	}
	return f, nil
}

// Formats returns the registered format names, sorted
func (r *Registry) Formats() []Format {
	formats := make([]Format, 0, len(r.formatters))
	for f := range r.formatters {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}
