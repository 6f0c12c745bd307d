package engine

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"rvg-calc/core/schedule"
	"rvg-calc/core/types"
	apperrors "rvg-calc/internal/errors"
)

// SingleFee returns rate x base fee at amount for an ad-hoc estimate.
// A nil version yields zero.
func SingleFee(amount, rate decimal.Decimal, version *schedule.FeeScheduleVersion) decimal.Decimal {
	if version == nil {
		return decimal.Zero
	}
	return types.RoundCents(rate.Mul(version.BaseFee(amount)))
}

// CourtFee returns rate x court fee at amount using the court table valid on date
func CourtFee(amount, rate decimal.Decimal, date time.Time) decimal.Decimal {
	return types.RoundCents(rate.Mul(schedule.Court().Select(date).BaseFee(amount)))
}

// ReducedFee returns rate x legal-aid fee at amount.
// ok is false above the table's cap and when no legal-aid table exists for
// the general edition valid on date.
func ReducedFee(amount, rate decimal.Decimal, date time.Time) (fee decimal.Decimal, ok bool) {
	v, ok := schedule.ReducedFor(schedule.General().Select(date))
	if !ok {
		return decimal.Zero, false
	}
	base, ok := v.BaseFee(amount)
	if !ok {
		return decimal.Zero, false
	}
	return types.RoundCents(rate.Mul(base)), true
}

// PositionRequest names one position of a declarative request
type PositionRequest struct {
	Code            string `json:"code" yaml:"code"`
	PositionOptions `yaml:",inline"`
}

// Request is a complete calculation described as data
type Request struct {
	Amount    decimal.Decimal
	Date      time.Time
	Positions []PositionRequest

	ReducedFees           bool
	SkipExpenseAutoAppend bool
	SkipVATAutoAppend     bool
	SkipCreditDetection   bool
}

// Calculate builds and finalizes a calculation from a request.
// It fails on the first unknown position code.
func Calculate(req Request, opts ...Option) (*types.CalculationResult, error) {
	if req.ReducedFees {
		opts = append(slices.Clip(opts), WithReducedFees())
	}

	calc := New(req.Amount, req.Date, opts...)
	if req.SkipExpenseAutoAppend {
		calc = calc.WithoutExpenseAutoAppend()
	}
	if req.SkipVATAutoAppend {
		calc = calc.WithoutVATAutoAppend()
	}
	if req.SkipCreditDetection {
		calc = calc.WithoutCreditDetection()
	}

	for _, p := range req.Positions {
		next, err := calc.Add(p.Code, p.PositionOptions)
		if err != nil {
			return nil, err
		}
		calc = next
	}
	return calc.Finalize(), nil
}

// Table names a fee table family for quotes
type Table string

const (
	TableGeneral Table = "rvg"
	TableCourt   Table = "gkg"
	TableReduced Table = "pkh"
)

// FeeQuote is a single fee looked up in one table
type FeeQuote struct {
	Table          Table           `json:"table"`
	VersionID      string          `json:"version_id"`
	DisputedAmount decimal.Decimal `json:"disputed_amount"`
	Rate           decimal.Decimal `json:"rate"`
	BaseFee        decimal.Decimal `json:"base_fee"`
	Fee            decimal.Decimal `json:"fee"`

	// Applicable is false when the reduced table does not cover the amount
	// or no reduced table exists for the date's period
	Applicable bool `json:"applicable"`
}

// Quote looks up rate x base fee in the table valid on date
func Quote(table Table, amount, rate decimal.Decimal, date time.Time) (FeeQuote, error) {
	q := FeeQuote{Table: table, DisputedAmount: amount, Rate: rate, Applicable: true}

	switch table {
	case TableGeneral, "":
		q.Table = TableGeneral
		v := schedule.General().Select(date)
		q.VersionID = v.ID
		q.BaseFee = v.BaseFee(amount)
	case TableCourt:
		v := schedule.Court().Select(date)
		q.VersionID = v.ID
		q.BaseFee = v.BaseFee(amount)
	case TableReduced:
		v, ok := schedule.ReducedFor(schedule.General().Select(date))
		if !ok {
			q.Applicable = false
			break
		}
		q.VersionID = v.ID
		q.BaseFee, q.Applicable = v.BaseFee(amount)
	default:
		return FeeQuote{}, apperrors.Newf(apperrors.TypeInput, "unknown fee table %q (expected rvg, gkg or pkh)", table)
	}

	q.Fee = types.RoundCents(rate.Mul(q.BaseFee))
	return q, nil
}
