// Package schedule - General value-fee table (§ 13 RVG)
package schedule

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"rvg-calc/core/types"
)

// FeeScheduleVersion is one edition of the general value-fee table.
// The table is described by its growth algorithm; the tabulated steps are
// built once on first use and never change afterwards.
type FeeScheduleVersion struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Citation string   `json:"citation"`
	Validity Validity `json:"validity"`

	// FirstThreshold and InitialFee anchor the step function
	FirstThreshold decimal.Decimal `json:"first_threshold"`
	InitialFee     decimal.Decimal `json:"initial_fee"`

	// Ranges are ordered by strictly increasing RangeEnd
	Ranges []RangeDefinition `json:"ranges"`

	// AboveTable applies beyond the last range end
	AboveTable Extrapolation `json:"above_table"`

	once  sync.Once
	steps []Step
}

// VersionID implements Version
func (v *FeeScheduleVersion) VersionID() string { return v.ID }

// Period implements Version
func (v *FeeScheduleVersion) Period() Validity { return v.Validity }

// Steps returns the tabulated (threshold, fee) pairs
func (v *FeeScheduleVersion) Steps() []Step {
	return copySteps(v.table())
}

// BaseFee returns the single (1.0) fee for a disputed amount
func (v *FeeScheduleVersion) BaseFee(amount decimal.Decimal) decimal.Decimal {
	return lookup(v.table(), v.AboveTable, amount)
}

func (v *FeeScheduleVersion) table() []Step {
	v.once.Do(func() {
		v.steps = BuildSteps(v.FirstThreshold, v.InitialFee, v.Ranges)
	})
	return v.steps
}

// BuildSteps expands range definitions into tabulated steps.
// The fee is rounded to the minor unit after every increment so hundreds of
// steps cannot accumulate drift.
func BuildSteps(firstThreshold, initialFee decimal.Decimal, ranges []RangeDefinition) []Step {
	threshold := firstThreshold
	fee := types.RoundCents(initialFee)
	steps := []Step{{Threshold: threshold, Fee: fee}}

	for _, r := range ranges {
		if !r.StepSize.IsPositive() {
			continue
		}
		for threshold.LessThan(r.RangeEnd) {
			threshold = threshold.Add(r.StepSize)
			fee = types.RoundCents(fee.Add(r.Increment))
			steps = append(steps, Step{Threshold: threshold, Fee: fee})
		}
	}

	return steps
}

// Validate checks the version's invariants
func (v *FeeScheduleVersion) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("fee schedule version has no id")
	}
	if err := validateValidity(v.Validity); err != nil {
		return fmt.Errorf("%s: %w", v.ID, err)
	}
	if !v.FirstThreshold.IsPositive() {
		return fmt.Errorf("%s: first threshold must be positive", v.ID)
	}

	previous := v.FirstThreshold
	for i, r := range v.Ranges {
		if !r.RangeEnd.GreaterThan(previous) {
			return fmt.Errorf("%s: range %d end %s does not increase", v.ID, i, r.RangeEnd)
		}
		if !r.StepSize.IsPositive() {
			return fmt.Errorf("%s: range %d has non-positive step size", v.ID, i)
		}
		if r.Increment.IsNegative() {
			return fmt.Errorf("%s: range %d has negative increment", v.ID, i)
		}
		previous = r.RangeEnd
	}

	if !v.AboveTable.StepSize.IsPositive() {
		return fmt.Errorf("%s: above-table step size must be positive", v.ID)
	}

	if err := validateSteps(v.table()); err != nil {
		return fmt.Errorf("%s: %w", v.ID, err)
	}
	return nil
}

// rvg2021 is § 13 Abs. 1 RVG as amended by the KostRÄG 2021
func rvg2021() *FeeScheduleVersion {
	d := types.MustDecimal
	return &FeeScheduleVersion{
		ID:       "rvg-2021",
		Name:     "RVG Gebührentabelle 2021",
		Citation: "§ 13 Abs. 1 RVG i.d.F. des KostRÄG 2021 (BGBl. I 2020, 3229)",
		Validity: Validity{
			From:  Date(2021, time.January, 1),
			Until: datePtr(2025, time.June, 1),
		},
		FirstThreshold: d("500"),
		InitialFee:     d("49"),
		Ranges: []RangeDefinition{
			{RangeEnd: d("2000"), StepSize: d("500"), Increment: d("39")},
			{RangeEnd: d("10000"), StepSize: d("1000"), Increment: d("56")},
			{RangeEnd: d("25000"), StepSize: d("3000"), Increment: d("52")},
			{RangeEnd: d("50000"), StepSize: d("5000"), Increment: d("81")},
			{RangeEnd: d("200000"), StepSize: d("15000"), Increment: d("94")},
			{RangeEnd: d("500000"), StepSize: d("30000"), Increment: d("132")},
		},
		AboveTable: Extrapolation{StepSize: d("50000"), Increment: d("165")},
	}
}

// rvg2025 is § 13 Abs. 1 RVG as amended by the KostBRÄG 2025
func rvg2025() *FeeScheduleVersion {
	d := types.MustDecimal
	return &FeeScheduleVersion{
		ID:       "rvg-2025",
		Name:     "RVG Gebührentabelle 2025",
		Citation: "§ 13 Abs. 1 RVG i.d.F. des KostBRÄG 2025",
		Validity: Validity{
			From: Date(2025, time.June, 1),
		},
		FirstThreshold: d("500"),
		InitialFee:     d("51.50"),
		Ranges: []RangeDefinition{
			{RangeEnd: d("2000"), StepSize: d("500"), Increment: d("41.50")},
			{RangeEnd: d("10000"), StepSize: d("1000"), Increment: d("59.50")},
			{RangeEnd: d("25000"), StepSize: d("3000"), Increment: d("55")},
			{RangeEnd: d("50000"), StepSize: d("5000"), Increment: d("86")},
			{RangeEnd: d("200000"), StepSize: d("15000"), Increment: d("99.50")},
			{RangeEnd: d("500000"), StepSize: d("30000"), Increment: d("140")},
		},
		AboveTable: Extrapolation{StepSize: d("50000"), Increment: d("175")},
	}
}
