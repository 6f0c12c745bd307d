// Package schedule - Reduced legal-aid fee table (§ 49 RVG)
package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ReducedFeeScheduleVersion is one edition of the legal-aid (PKH/VKH) table.
// Each edition is paired with the general edition of the same period: amounts
// up to Floor resolve through that general edition, amounts above Cap are out
// of the table's domain.
type ReducedFeeScheduleVersion struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Citation string   `json:"citation"`
	Validity Validity `json:"validity"`

	// GeneralID names the paired general edition
	GeneralID string `json:"general_id"`

	// Floor is the amount up to which the paired general table applies
	Floor decimal.Decimal `json:"floor"`

	// Cap is the largest amount inside the table's domain
	Cap decimal.Decimal `json:"cap"`

	Entries []Step `json:"entries"`

	general *FeeScheduleVersion
}

// NewReducedFeeScheduleVersion binds a legal-aid edition to its general edition
func NewReducedFeeScheduleVersion(v ReducedFeeScheduleVersion, general *FeeScheduleVersion) *ReducedFeeScheduleVersion {
	v.general = general
	if general != nil {
		v.GeneralID = general.ID
	}
	return &v
}

// VersionID implements Version
func (v *ReducedFeeScheduleVersion) VersionID() string { return v.ID }

// Period implements Version
func (v *ReducedFeeScheduleVersion) Period() Validity { return v.Validity }

// Steps returns the tabulated entries
func (v *ReducedFeeScheduleVersion) Steps() []Step {
	return copySteps(v.Entries)
}

// General returns the paired general edition
func (v *ReducedFeeScheduleVersion) General() *FeeScheduleVersion {
	return v.general
}

// BaseFee returns the reduced fee and whether the table applies.
// Non-positive amounts resolve to zero. Amounts up to Floor take the paired
// general fee. Amounts above Cap are not applicable.
func (v *ReducedFeeScheduleVersion) BaseFee(amount decimal.Decimal) (decimal.Decimal, bool) {
	switch {
	case !amount.IsPositive():
		return decimal.Zero, true
	case v.AboveCap(amount):
		return decimal.Zero, false
	case v.Delegates(amount):
		if v.general == nil {
			return decimal.Zero, false
		}
		return v.general.BaseFee(amount), true
	}
	return lookup(v.Entries, Extrapolation{}, amount), true
}

// Delegates reports whether amount resolves through the paired general table
func (v *ReducedFeeScheduleVersion) Delegates(amount decimal.Decimal) bool {
	return amount.IsPositive() && amount.LessThanOrEqual(v.Floor)
}

// AboveCap reports whether amount lies beyond the table's cap
func (v *ReducedFeeScheduleVersion) AboveCap(amount decimal.Decimal) bool {
	return amount.GreaterThan(v.Cap)
}

// Validate checks the version's invariants
func (v *ReducedFeeScheduleVersion) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("reduced fee schedule version has no id")
	}
	if err := validateValidity(v.Validity); err != nil {
		return fmt.Errorf("%s: %w", v.ID, err)
	}
	if err := validateSteps(v.Entries); err != nil {
		return fmt.Errorf("%s: %w", v.ID, err)
	}
	if v.general == nil || v.general.ID != v.GeneralID {
		return fmt.Errorf("%s: not paired with general edition %q", v.ID, v.GeneralID)
	}
	if !v.general.Validity.covers(v.Validity) {
		return fmt.Errorf("%s: validity lies outside the paired edition %s", v.ID, v.GeneralID)
	}
	if !v.Cap.GreaterThan(v.Floor) {
		return fmt.Errorf("%s: cap %s must exceed floor %s", v.ID, v.Cap, v.Floor)
	}
	if last := v.Entries[len(v.Entries)-1]; last.Threshold.LessThan(v.Cap) {
		return fmt.Errorf("%s: entries end at %s below cap %s", v.ID, last.Threshold, v.Cap)
	}
	return nil
}

// pkh2021 is § 49 RVG as amended by the KostRÄG 2021
// TODO: add the KostBRÄG 2025 edition of § 49 RVG, paired with rvg-2025, once its table values are verified against the BGBl.
func pkh2021(general *FeeScheduleVersion) *ReducedFeeScheduleVersion {
	return NewReducedFeeScheduleVersion(ReducedFeeScheduleVersion{
		ID:       "rvg-49-2021",
		Name:     "RVG § 49 Tabelle 2021 (Prozesskostenhilfe)",
		Citation: "§ 49 RVG i.d.F. des KostRÄG 2021",
		Validity: Validity{
			From:  Date(2021, time.January, 1),
			Until: datePtr(2025, time.June, 1),
		},
		Floor: decimal.NewFromInt(4000),
		Cap:   decimal.NewFromInt(30000),
		Entries: entries([][2]string{
			{"5000", "284.00"},
			{"6000", "295.00"},
			{"7000", "306.00"},
			{"8000", "317.00"},
			{"9000", "328.00"},
			{"10000", "339.00"},
			{"13000", "354.00"},
			{"16000", "369.00"},
			{"19000", "384.00"},
			{"22000", "399.00"},
			{"25000", "414.00"},
			{"30000", "453.00"},
		}),
	}, general)
}
