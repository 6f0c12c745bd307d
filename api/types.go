// Package api - Thin JSON API over the calculation engine
// The API is ONLY responsible for: input normalization, engine calls, output serialization.
// The API NEVER performs fee logic.
package api

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"rvg-calc/core/catalog"
	"rvg-calc/core/determinism"
	"rvg-calc/core/engine"
	"rvg-calc/core/types"
	apperrors "rvg-calc/internal/errors"
)

// DateLayout is the wire format of reference dates
const DateLayout = "2006-01-02"

// CalculateRequest is the input to POST /calculate.
// The CLI reads the same document from request files.
type CalculateRequest struct {
	// Amount is the disputed amount (Gegenstandswert)
	Amount decimal.Decimal `json:"amount" yaml:"amount"`

	// Date selects the fee tables (YYYY-MM-DD, empty = today)
	Date string `json:"date,omitempty" yaml:"date,omitempty"`

	// Positions in addition order
	Positions []engine.PositionRequest `json:"positions" yaml:"positions"`

	ReducedFees           bool `json:"reduced_fees,omitempty" yaml:"reduced_fees,omitempty"`
	SkipExpenseAutoAppend bool `json:"skip_expense_auto_append,omitempty" yaml:"skip_expense_auto_append,omitempty"`
	SkipVATAutoAppend     bool `json:"skip_vat_auto_append,omitempty" yaml:"skip_vat_auto_append,omitempty"`
	SkipCreditDetection   bool `json:"skip_credit_detection,omitempty" yaml:"skip_credit_detection,omitempty"`
}

// Normalize validates the request and converts it for the engine.
// now supplies the date when none is given.
func (r *CalculateRequest) Normalize(now time.Time) (engine.Request, error) {
	date, err := ParseDate(r.Date, now)
	if err != nil {
		return engine.Request{}, err
	}

	positions := make([]engine.PositionRequest, 0, len(r.Positions))
	for i, p := range r.Positions {
		p.Code = strings.TrimSpace(p.Code)
		if p.Code == "" {
			return engine.Request{}, apperrors.Newf(apperrors.TypeInput, "positions[%d]: code is required", i)
		}
		positions = append(positions, p)
	}

	return engine.Request{
		Amount:                r.Amount,
		Date:                  date,
		Positions:             positions,
		ReducedFees:           r.ReducedFees,
		SkipExpenseAutoAppend: r.SkipExpenseAutoAppend,
		SkipVATAutoAppend:     r.SkipVATAutoAppend,
		SkipCreditDetection:   r.SkipCreditDetection,
	}, nil
}

// InputHash identifies a normalized request
func InputHash(req engine.Request) string {
	canonical := struct {
		Amount    string                   `json:"amount"`
		Date      string                   `json:"date"`
		Positions []engine.PositionRequest `json:"positions"`
		Flags     [4]bool                  `json:"flags"`
	}{
		Amount:    req.Amount.String(),
		Date:      req.Date.Format(DateLayout),
		Positions: req.Positions,
		Flags:     [4]bool{req.ReducedFees, req.SkipExpenseAutoAppend, req.SkipVATAutoAppend, req.SkipCreditDetection},
	}
	hash, err := determinism.HashJSON(canonical)
	if err != nil {
		return ""
	}
	return hash.Hex()
}

// ParseDate parses a reference date; empty means the calendar day of now
func ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	date, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperrors.Wrapf(apperrors.TypeInput, err, "invalid date %q, expected YYYY-MM-DD", s)
	}
	return date, nil
}

// CalculateResponse is the output of POST /calculate
type CalculateResponse struct {
	RequestID string                   `json:"request_id"`
	InputHash string                   `json:"input_hash"`
	Result    *types.CalculationResult `json:"result"`
}

// FeeRequest is the input to POST /fee
type FeeRequest struct {
	Amount decimal.Decimal  `json:"amount"`
	Rate   *decimal.Decimal `json:"rate,omitempty"`
	Date   string           `json:"date,omitempty"`
	Table  engine.Table     `json:"table,omitempty"`
}

// PositionsResponse is the output of GET /positions
type PositionsResponse struct {
	Query     string                       `json:"query,omitempty"`
	Count     int                          `json:"count"`
	Positions []catalog.PositionDefinition `json:"positions"`
}

// ScheduleInfo describes one fee table version
type ScheduleInfo struct {
	Table     engine.Table `json:"table"`
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Citation  string       `json:"citation"`
	ValidFrom string       `json:"valid_from"`
	ValidTo   string       `json:"valid_until,omitempty"`
}

// ErrorResponse is the error envelope
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries a machine-readable code and a message
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
