package engine

import (
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rvg-calc/core/catalog"
	"rvg-calc/core/schedule"
)

// Option configures a calculation at construction
type Option func(*Calculation)

// WithCatalog replaces the default VV RVG catalog
func WithCatalog(c *catalog.Catalog) Option {
	return func(calc *Calculation) {
		if c != nil {
			calc.catalog = c
		}
	}
}

// WithScheduleRegistry replaces the general fee table registry
func WithScheduleRegistry(r *schedule.Registry[*schedule.FeeScheduleVersion]) Option {
	return func(calc *Calculation) {
		if r != nil {
			calc.general = r
		}
	}
}

// WithScheduleVersion pins the general fee table, ignoring the reference date
func WithScheduleVersion(v *schedule.FeeScheduleVersion) Option {
	return func(calc *Calculation) {
		calc.version = v
	}
}

// WithReducedFees takes ad-valorem base fees from the legal-aid table where it applies
func WithReducedFees() Option {
	return func(calc *Calculation) {
		calc.useReduced = true
	}
}

// WithReducedRegistry replaces the legal-aid fee table registry
func WithReducedRegistry(r *schedule.Registry[*schedule.ReducedFeeScheduleVersion]) Option {
	return func(calc *Calculation) {
		if r != nil {
			calc.reducedRegistry = r
		}
	}
}

// WithLogger sets the debug logger; the default discards everything
func WithLogger(l *zap.Logger) Option {
	return func(calc *Calculation) {
		if l != nil {
			calc.logger = l
		}
	}
}

// PositionOptions are the per-position inputs of Add.
// Every field is optional; missing values fall back to catalog defaults.
type PositionOptions struct {
	// Rate overrides the default rate of an ad-valorem position
	Rate *decimal.Decimal `json:"rate,omitempty" yaml:"rate,omitempty"`

	// AmountOverride replaces the calculation's disputed amount for this item
	AmountOverride *decimal.Decimal `json:"amount_override,omitempty" yaml:"amount_override,omitempty"`

	// PartyCount is the number of clients for the multi-party surcharge
	PartyCount int `json:"party_count,omitempty" yaml:"party_count,omitempty"`

	// Units is the quantity of a per-unit expense (kilometres, pages)
	Units decimal.Decimal `json:"units,omitempty" yaml:"units,omitempty"`

	// UnitRate overrides the catalog unit rate
	UnitRate *decimal.Decimal `json:"unit_rate,omitempty" yaml:"unit_rate,omitempty"`

	// Days is the number of days of a tiered-fixed expense
	Days int `json:"days,omitempty" yaml:"days,omitempty"`

	// AbsenceTier selects the daily rate; empty means the longest absence
	AbsenceTier catalog.AbsenceTier `json:"absence_tier,omitempty" yaml:"absence_tier,omitempty"`

	// DailyRate overrides the catalog daily rate of the selected tier
	DailyRate *decimal.Decimal `json:"daily_rate,omitempty" yaml:"daily_rate,omitempty"`

	// FixedAmount is the caller amount of fixed, range-bound and actual-cost positions
	FixedAmount *decimal.Decimal `json:"fixed_amount,omitempty" yaml:"fixed_amount,omitempty"`

	// Note is copied onto the item
	Note string `json:"note,omitempty" yaml:"note,omitempty"`
}
