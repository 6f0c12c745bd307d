// Package engine computes statutory fee calculations.
// A Calculation is an immutable accumulator: every Add returns a new value
// and Finalize turns a value into a CalculationResult without touching it.
// CLI and HTTP are thin wrappers around this package.
package engine

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rvg-calc/core/catalog"
	"rvg-calc/core/pricing"
	"rvg-calc/core/schedule"
	"rvg-calc/core/types"
	apperrors "rvg-calc/internal/errors"
)

// Calculation accumulates fee positions for one disputed amount.
// The zero value is not usable; create one with New.
type Calculation struct {
	amount decimal.Decimal
	date   time.Time

	catalog         *catalog.Catalog
	general         *schedule.Registry[*schedule.FeeScheduleVersion]
	version         *schedule.FeeScheduleVersion
	reducedRegistry *schedule.Registry[*schedule.ReducedFeeScheduleVersion]
	reduced         *schedule.ReducedFeeScheduleVersion
	useReduced      bool
	logger          *zap.Logger

	entries []entry
	notices []string

	skipExpense bool
	skipVAT     bool
	skipCredit  bool
}

// entry pairs a resolved item with the definition it came from
type entry struct {
	def  catalog.PositionDefinition
	item types.CalculationItem
}

// New starts a calculation. The schedule version is bound once from date.
func New(amount decimal.Decimal, date time.Time, opts ...Option) Calculation {
	c := Calculation{
		amount:          amount,
		date:            date,
		catalog:         catalog.Default(),
		general:         schedule.General(),
		reducedRegistry: schedule.Reduced(),
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&c)
	}

	if c.version == nil {
		c.version = c.general.Select(date)
	}
	if c.version == nil {
		c.version = schedule.SelectVersion(date)
	}
	if c.useReduced {
		if r, ok := schedule.PairedReduced(c.reducedRegistry, c.version); ok {
			c.reduced = r
		} else {
			c.notices = append(c.notices, fmt.Sprintf("no legal-aid table exists for %s, general table applied", c.version.ID))
		}
	}

	c.logger.Debug("calculation started",
		zap.String("amount", amount.String()),
		zap.Time("date", date),
		zap.String("schedule", c.version.ID),
		zap.Bool("reduced", c.reduced != nil),
	)
	return c
}

// Amount returns the disputed amount
func (c Calculation) Amount() decimal.Decimal { return c.amount }

// Date returns the reference date
func (c Calculation) Date() time.Time { return c.date }

// Version returns the bound general fee table
func (c Calculation) Version() *schedule.FeeScheduleVersion { return c.version }

// Len returns the number of explicitly added positions
func (c Calculation) Len() int { return len(c.entries) }

// WithoutExpenseAutoAppend suppresses the automatic communication flat rate
func (c Calculation) WithoutExpenseAutoAppend() Calculation {
	c.skipExpense = true
	return c
}

// WithoutVATAutoAppend suppresses the automatic VAT line
func (c Calculation) WithoutVATAutoAppend() Calculation {
	c.skipVAT = true
	return c
}

// WithoutCreditDetection suppresses the Anrechnung
func (c Calculation) WithoutCreditDetection() Calculation {
	c.skipCredit = true
	return c
}

// Add resolves a position and returns the extended calculation.
// An unknown code is the only error; the receiver is never modified.
func (c Calculation) Add(code string, opts PositionOptions) (Calculation, error) {
	def, ok := c.catalog.Lookup(code)
	if !ok {
		c.logger.Debug("unknown position", zap.String("code", code))
		return c, apperrors.UnknownPosition(strings.TrimSpace(code))
	}

	item, notices := c.resolve(def, opts)
	c.logger.Debug("position added",
		zap.String("code", item.Code),
		zap.String("family", item.Family.String()),
		zap.String("amount", item.Amount.StringFixed(2)),
	)
	return c.with(entry{def: def, item: item}, notices...), nil
}

// MustAdd is Add for statically known codes; it panics on unknown codes
func (c Calculation) MustAdd(code string, opts PositionOptions) Calculation {
	next, err := c.Add(code, opts)
	if err != nil {
		panic(err)
	}
	return next
}

func (c Calculation) with(e entry, notices ...string) Calculation {
	next := c
	next.entries = append(slices.Clip(c.entries), e)
	if len(notices) > 0 {
		next.notices = append(slices.Clip(c.notices), notices...)
	}
	return next
}

// IsUnknownPosition reports whether err is an unknown position code
func IsUnknownPosition(err error) bool {
	return apperrors.IsType(err, apperrors.TypeUnknownPosition)
}

// resolve computes the item for a definition and returns result-level notices
func (c Calculation) resolve(def catalog.PositionDefinition, opts PositionOptions) (types.CalculationItem, []string) {
	disputed := c.amount
	if opts.AmountOverride != nil {
		disputed = *opts.AmountOverride
	}

	item := types.CalculationItem{
		Code:           def.Code,
		Name:           def.Name,
		Family:         def.Family,
		Formula:        def.Formula,
		DisputedAmount: disputed,
	}

	var notices []string
	switch def.Family {
	case types.FamilyAdValorem:
		notices = c.resolveAdValorem(&item, def, opts)
	case types.FamilyExpense:
		notices = resolveExpense(&item, def, opts)
	case types.FamilyFixed, types.FamilyRangeBound:
		notices = resolveCallerAmount(&item, def, opts)
	}

	if opts.Note != "" {
		item.Notes = append(item.Notes, opts.Note)
	}
	item.FinalAmount = item.Amount
	return item, notices
}

func (c Calculation) resolveAdValorem(item *types.CalculationItem, def catalog.PositionDefinition, opts PositionOptions) []string {
	var notices []string
	rate := def.DefaultRate

	switch {
	case def.PartyCountRate:
		rate = partyCountRate(def, opts.PartyCount)
		item.Notes = append(item.Notes, fmt.Sprintf("%d clients: %s per additional client, rate %s", max(opts.PartyCount, 1), def.DefaultRate, rate))
	case opts.Rate != nil && opts.Rate.IsNegative():
		item.Notes = append(item.Notes, fmt.Sprintf("negative rate %s ignored, default rate %s applied", opts.Rate, def.DefaultRate))
	case opts.Rate != nil:
		rate = *opts.Rate
	}

	if !def.PartyCountRate {
		if clamped, changed := types.Clamp(rate, def.MinRate, def.MaxRate); changed {
			msg := fmt.Sprintf("%s: rate %s outside %s, clamped to %s", def.Code, rate, describeBounds(def.MinRate, def.MaxRate), clamped)
			item.Notes = append(item.Notes, msg)
			notices = append(notices, msg)
			rate = clamped
		}
	}

	base, table, notice := c.baseFee(item.DisputedAmount)
	if notice != "" {
		notices = append(notices, notice)
	}

	item.Rate = &rate
	item.BaseFee = &base
	item.Amount = types.RoundCents(rate.Mul(base))
	item.Notes = append(item.Notes, fmt.Sprintf("%s x %s EUR (%s)", rate, base.StringFixed(2), table))
	return notices
}

// partyCountRate is the per-client surcharge for every client beyond the first
func partyCountRate(def catalog.PositionDefinition, parties int) decimal.Decimal {
	additional := max(parties-1, 0)
	rate := def.DefaultRate.Mul(decimal.NewFromInt(int64(additional)))
	if def.MaxRate != nil && rate.GreaterThan(*def.MaxRate) {
		return *def.MaxRate
	}
	return rate
}

// baseFee returns the table fee at amount, the table id and an optional notice.
// The legal-aid table and the bound general table always belong to one period.
func (c Calculation) baseFee(amount decimal.Decimal) (decimal.Decimal, string, string) {
	if c.reduced != nil {
		switch {
		case c.reduced.AboveCap(amount):
			notice := fmt.Sprintf("disputed amount %s EUR exceeds the %s cap of %s EUR, general table %s applied",
				amount.StringFixed(2), c.reduced.ID, c.reduced.Cap.StringFixed(2), c.version.ID)
			return c.version.BaseFee(amount), c.version.ID, notice
		case !c.reduced.Delegates(amount):
			fee, _ := c.reduced.BaseFee(amount)
			return fee, c.reduced.ID, ""
		}
	}
	return c.version.BaseFee(amount), c.version.ID, ""
}

func resolveExpense(item *types.CalculationItem, def catalog.PositionDefinition, opts PositionOptions) []string {
	switch def.Formula {
	case types.FormulaPercentOfFees, types.FormulaPercentOfTotal:
		// Resolved against the complete position list during finalization
		item.Amount = decimal.Zero

	case types.FormulaPerUnit:
		switch {
		case opts.UnitRate != nil:
			item.Amount = types.RoundCents(pricing.FlatCost(opts.Units, *opts.UnitRate))
			item.Notes = append(item.Notes, fmt.Sprintf("%s units x %s EUR", opts.Units, opts.UnitRate.StringFixed(2)))
		case len(def.UnitTiers) > 0:
			item.Amount = types.RoundCents(pricing.TieredCost(opts.Units, def.UnitTiers))
			item.Notes = append(item.Notes, fmt.Sprintf("%s units at tiered rates", opts.Units))
		default:
			item.Amount = types.RoundCents(pricing.FlatCost(opts.Units, def.UnitRate))
			item.Notes = append(item.Notes, fmt.Sprintf("%s units x %s EUR", opts.Units, def.UnitRate.StringFixed(2)))
		}

	case types.FormulaTieredFixed:
		tier := opts.AbsenceTier
		if tier == "" {
			tier = catalog.DefaultAbsenceTier
		}
		rate, ok := def.DailyRates[tier]
		if !ok {
			item.Notes = append(item.Notes, fmt.Sprintf("unknown absence tier %q, %s applied", tier, catalog.DefaultAbsenceTier))
			tier = catalog.DefaultAbsenceTier
			rate = def.DailyRates[tier]
		}
		if opts.DailyRate != nil {
			rate = *opts.DailyRate
		}
		days := max(opts.Days, 0)
		item.Amount = types.RoundCents(rate.Mul(decimal.NewFromInt(int64(days))))
		item.Notes = append(item.Notes, fmt.Sprintf("%d days x %s EUR (%s)", days, rate.StringFixed(2), tier))

	default:
		return resolveCallerAmount(item, def, opts)
	}
	return nil
}

// resolveCallerAmount covers positions whose amount the caller supplies
func resolveCallerAmount(item *types.CalculationItem, def catalog.PositionDefinition, opts PositionOptions) []string {
	if opts.FixedAmount == nil {
		item.Amount = decimal.Zero
		item.Notes = append(item.Notes, "no amount supplied")
		return nil
	}

	amount := *opts.FixedAmount
	if amount.IsNegative() {
		item.Notes = append(item.Notes, fmt.Sprintf("negative amount %s ignored", amount.StringFixed(2)))
		amount = decimal.Zero
	}

	var notices []string
	if def.Family == types.FamilyRangeBound {
		if clamped, changed := types.Clamp(amount, def.MinAmount, def.MaxAmount); changed {
			msg := fmt.Sprintf("%s: amount %s EUR outside %s EUR, clamped to %s EUR",
				def.Code, amount.StringFixed(2), describeBounds(def.MinAmount, def.MaxAmount), clamped.StringFixed(2))
			item.Notes = append(item.Notes, msg)
			notices = append(notices, msg)
			amount = clamped
		}
	}

	item.Amount = types.RoundCents(amount)
	return notices
}

func describeBounds(lo, hi *decimal.Decimal) string {
	format := func(d *decimal.Decimal, open string) string {
		if d == nil {
			return open
		}
		return d.String()
	}
	return fmt.Sprintf("[%s, %s]", format(lo, "-inf"), format(hi, "+inf"))
}
