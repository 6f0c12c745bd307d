// Package schedule - Court fee table (§ 34 GKG)
package schedule

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"rvg-calc/core/types"
)

// CourtExtrapolation continues the court table beyond its last entry
type CourtExtrapolation struct {
	// BaseFee is the fee at the last tabulated threshold
	BaseFee   decimal.Decimal `json:"base_fee"`
	Increment decimal.Decimal `json:"increment"`
	StepSize  decimal.Decimal `json:"step_size"`
}

// CourtFeeScheduleVersion is one edition of the court fee table.
// Unlike the general table it is defined by an explicit list of entries.
type CourtFeeScheduleVersion struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Citation   string             `json:"citation"`
	Validity   Validity           `json:"validity"`
	Entries    []Step             `json:"entries"`
	AboveTable CourtExtrapolation `json:"above_table"`
}

// VersionID implements Version
func (v *CourtFeeScheduleVersion) VersionID() string { return v.ID }

// Period implements Version
func (v *CourtFeeScheduleVersion) Period() Validity { return v.Validity }

// Steps returns the tabulated entries
func (v *CourtFeeScheduleVersion) Steps() []Step {
	return copySteps(v.Entries)
}

// BaseFee returns the single (1.0) court fee for a disputed amount
func (v *CourtFeeScheduleVersion) BaseFee(amount decimal.Decimal) decimal.Decimal {
	if !amount.IsPositive() || len(v.Entries) == 0 {
		return decimal.Zero
	}

	last := v.Entries[len(v.Entries)-1]
	if amount.LessThanOrEqual(last.Threshold) {
		return lookup(v.Entries, Extrapolation{}, amount)
	}

	anchored := []Step{{Threshold: last.Threshold, Fee: v.AboveTable.BaseFee}}
	return lookup(anchored, Extrapolation{StepSize: v.AboveTable.StepSize, Increment: v.AboveTable.Increment}, amount)
}

// Validate checks the version's invariants
func (v *CourtFeeScheduleVersion) Validate() error {
	if v.ID == "" {
		return fmt.Errorf("court fee schedule version has no id")
	}
	if err := validateValidity(v.Validity); err != nil {
		return fmt.Errorf("%s: %w", v.ID, err)
	}
	if err := validateSteps(v.Entries); err != nil {
		return fmt.Errorf("%s: %w", v.ID, err)
	}
	last := v.Entries[len(v.Entries)-1]
	if !v.AboveTable.BaseFee.Equal(last.Fee) {
		return fmt.Errorf("%s: above-table base fee %s differs from last entry fee %s", v.ID, v.AboveTable.BaseFee, last.Fee)
	}
	if !v.AboveTable.StepSize.IsPositive() {
		return fmt.Errorf("%s: above-table step size must be positive", v.ID)
	}
	return nil
}

func entries(rows [][2]string) []Step {
	out := make([]Step, len(rows))
	for i, row := range rows {
		out[i] = Step{Threshold: types.MustDecimal(row[0]), Fee: types.MustDecimal(row[1])}
	}
	return out
}

// gkg2021 is Anlage 2 zu § 34 Abs. 1 GKG as amended by the KostRÄG 2021
func gkg2021() *CourtFeeScheduleVersion {
	return &CourtFeeScheduleVersion{
		ID:       "gkg-2021",
		Name:     "GKG Gebührentabelle 2021",
		Citation: "§ 34 Abs. 1 GKG, Anlage 2 i.d.F. des KostRÄG 2021",
		Validity: Validity{
			From:  Date(2021, time.January, 1),
			Until: datePtr(2025, time.June, 1),
		},
		Entries: entries([][2]string{
			{"500", "38.00"},
			{"1000", "58.00"},
			{"1500", "78.00"},
			{"2000", "98.00"},
			{"3000", "119.00"},
			{"4000", "140.00"},
			{"5000", "161.00"},
			{"6000", "182.00"},
			{"7000", "203.00"},
			{"8000", "224.00"},
			{"9000", "245.00"},
			{"10000", "266.00"},
			{"13000", "295.00"},
			{"16000", "324.00"},
			{"19000", "353.00"},
			{"22000", "382.00"},
			{"25000", "411.00"},
			{"30000", "449.00"},
			{"35000", "487.00"},
			{"40000", "525.00"},
			{"45000", "563.00"},
			{"50000", "601.00"},
			{"65000", "733.00"},
			{"80000", "865.00"},
			{"95000", "997.00"},
			{"110000", "1129.00"},
			{"125000", "1261.00"},
			{"140000", "1393.00"},
			{"155000", "1525.00"},
			{"170000", "1657.00"},
			{"185000", "1789.00"},
			{"200000", "1921.00"},
			{"230000", "2119.00"},
			{"260000", "2317.00"},
			{"290000", "2515.00"},
			{"320000", "2713.00"},
			{"350000", "2911.00"},
			{"380000", "3109.00"},
			{"410000", "3307.00"},
			{"440000", "3505.00"},
			{"470000", "3703.00"},
			{"500000", "3901.00"},
		}),
		AboveTable: CourtExtrapolation{
			BaseFee:   types.MustDecimal("3901.00"),
			Increment: types.MustDecimal("198"),
			StepSize:  types.MustDecimal("50000"),
		},
	}
}

// gkg2025 is Anlage 2 zu § 34 Abs. 1 GKG as amended by the KostBRÄG 2025
func gkg2025() *CourtFeeScheduleVersion {
	return &CourtFeeScheduleVersion{
		ID:       "gkg-2025",
		Name:     "GKG Gebührentabelle 2025",
		Citation: "§ 34 Abs. 1 GKG, Anlage 2 i.d.F. des KostBRÄG 2025",
		Validity: Validity{
			From: Date(2025, time.June, 1),
		},
		Entries: entries([][2]string{
			{"500", "40.00"},
			{"1000", "61.00"},
			{"1500", "82.00"},
			{"2000", "103.00"},
			{"3000", "125.50"},
			{"4000", "148.00"},
			{"5000", "170.50"},
			{"6000", "193.00"},
			{"7000", "215.50"},
			{"8000", "238.00"},
			{"9000", "260.50"},
			{"10000", "283.00"},
			{"13000", "313.50"},
			{"16000", "344.00"},
			{"19000", "374.50"},
			{"22000", "405.00"},
			{"25000", "435.50"},
			{"30000", "475.50"},
			{"35000", "515.50"},
			{"40000", "555.50"},
			{"45000", "595.50"},
			{"50000", "635.50"},
			{"65000", "775.50"},
			{"80000", "915.50"},
			{"95000", "1055.50"},
			{"110000", "1195.50"},
			{"125000", "1335.50"},
			{"140000", "1475.50"},
			{"155000", "1615.50"},
			{"170000", "1755.50"},
			{"185000", "1895.50"},
			{"200000", "2035.50"},
			{"230000", "2245.50"},
			{"260000", "2455.50"},
			{"290000", "2665.50"},
			{"320000", "2875.50"},
			{"350000", "3085.50"},
			{"380000", "3295.50"},
			{"410000", "3505.50"},
			{"440000", "3715.50"},
			{"470000", "3925.50"},
			{"500000", "4135.50"},
		}),
		AboveTable: CourtExtrapolation{
			BaseFee:   types.MustDecimal("4135.50"),
			Increment: types.MustDecimal("210"),
			StepSize:  types.MustDecimal("50000"),
		},
	}
}
