// Package schedule - Versioned statutory fee tables
// Each table maps a disputed amount (Gegenstandswert) to a base fee through a
// right-continuous step function: an amount resolves to the fee of the next
// tabulated threshold at or above it. Amounts beyond the last threshold are
// extrapolated in whole steps.
package schedule

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"rvg-calc/core/types"
)

// Step is one tabulated (threshold, fee) pair
type Step struct {
	// Threshold is the inclusive upper bound of the step ("bis ... Euro")
	Threshold decimal.Decimal `json:"threshold"`

	// Fee is the base fee for amounts up to Threshold
	Fee decimal.Decimal `json:"fee"`
}

// RangeDefinition describes how the step function grows up to RangeEnd
type RangeDefinition struct {
	RangeEnd  decimal.Decimal `json:"range_end"`
	StepSize  decimal.Decimal `json:"step_size"`
	Increment decimal.Decimal `json:"increment"`
}

// Extrapolation describes growth beyond the last tabulated threshold
type Extrapolation struct {
	// StepSize is the amount per started step ("für jeden angefangenen Betrag")
	StepSize decimal.Decimal `json:"step_size"`

	// Increment is added per started step
	Increment decimal.Decimal `json:"increment"`
}

// Validity is a half-open validity interval [From, Until)
type Validity struct {
	From time.Time `json:"from"`

	// Until is exclusive; nil means the version is current
	Until *time.Time `json:"until,omitempty"`
}

// Contains reports whether date falls inside the interval
func (v Validity) Contains(date time.Time) bool {
	if date.Before(v.From) {
		return false
	}
	return v.Until == nil || date.Before(*v.Until)
}

// covers reports whether inner lies entirely inside v
func (v Validity) covers(inner Validity) bool {
	if inner.From.Before(v.From) {
		return false
	}
	if v.Until == nil {
		return true
	}
	return inner.Until != nil && !inner.Until.After(*v.Until)
}

// Date returns midnight UTC of a calendar day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func datePtr(year int, month time.Month, day int) *time.Time {
	d := Date(year, month, day)
	return &d
}

// lookup resolves amount against ordered steps with ceiling-step extrapolation.
// A zero extrapolation step size freezes the fee at the last tabulated value.
func lookup(steps []Step, above Extrapolation, amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() || len(steps) == 0 {
		return decimal.Zero
	}

	i := sort.Search(len(steps), func(i int) bool {
		return steps[i].Threshold.GreaterThanOrEqual(amount)
	})
	if i < len(steps) {
		return steps[i].Fee
	}

	last := steps[len(steps)-1]
	if !above.StepSize.IsPositive() {
		return last.Fee
	}

	count := amount.Sub(last.Threshold).Div(above.StepSize).Ceil()
	return types.RoundCents(last.Fee.Add(count.Mul(above.Increment)))
}

// validateSteps checks that thresholds strictly increase and fees never drop
func validateSteps(steps []Step) error {
	if len(steps) == 0 {
		return fmt.Errorf("table has no steps")
	}
	for i := 1; i < len(steps); i++ {
		if !steps[i].Threshold.GreaterThan(steps[i-1].Threshold) {
			return fmt.Errorf("threshold %s does not increase after %s", steps[i].Threshold, steps[i-1].Threshold)
		}
		if steps[i].Fee.LessThan(steps[i-1].Fee) {
			return fmt.Errorf("fee drops at threshold %s", steps[i].Threshold)
		}
	}
	return nil
}

func validateValidity(v Validity) error {
	if v.From.IsZero() {
		return fmt.Errorf("validity has no start date")
	}
	if v.Until != nil && !v.Until.After(v.From) {
		return fmt.Errorf("validity ends before it starts")
	}
	return nil
}

func copySteps(steps []Step) []Step {
	out := make([]Step, len(steps))
	copy(out, steps)
	return out
}
