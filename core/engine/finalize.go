package engine

import (
	"fmt"
	"slices"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"rvg-calc/core/credit"
	"rvg-calc/core/types"
)

// Finalize produces the result of the calculation.
// Order: credit detection, expense auto-append, VAT auto-append, totals.
// The receiver stays usable; finalizing twice yields equal results.
func (c Calculation) Finalize() *types.CalculationResult {
	entries := slices.Clone(c.entries)
	notices := slices.Clone(c.notices)

	var applied *types.CreditResult
	if !c.skipCredit {
		if result, ok := c.applyCredit(entries); ok {
			applied = &result
			notices = append(notices, result.Explanation)
		}
	}

	if !c.skipExpense {
		entries = c.autoAppend(entries, types.FormulaPercentOfFees)
	}
	resolveDeferred(entries, types.FormulaPercentOfFees)

	if !c.skipVAT {
		entries = c.autoAppend(entries, types.FormulaPercentOfTotal)
	}
	resolveDeferred(entries, types.FormulaPercentOfTotal)

	var netAmounts, vatAmounts []decimal.Decimal
	items := make([]types.CalculationItem, len(entries))
	for i, e := range entries {
		items[i] = e.item
		if e.def.IsVAT() {
			vatAmounts = append(vatAmounts, e.item.FinalAmount)
		} else {
			netAmounts = append(netAmounts, e.item.FinalAmount)
		}
	}
	net := types.RoundCents(types.Sum(netAmounts...))
	vat := types.RoundCents(types.Sum(vatAmounts...))

	result := &types.CalculationResult{
		Items:             items,
		Credit:            applied,
		DisputedAmount:    c.amount,
		ReferenceDate:     c.date,
		ScheduleVersionID: c.version.ID,
		NetTotal:          net,
		VATAmount:         vat,
		GrossTotal:        types.RoundCents(types.Sum(net, vat)),
		Currency:          types.CurrencyEUR,
		Notices:           notices,
	}
	if c.reduced != nil {
		result.ReducedScheduleVersionID = c.reduced.ID
	}

	c.logger.Debug("calculation finalized",
		zap.Int("items", len(items)),
		zap.Bool("credit", applied != nil),
		zap.String("net", net.StringFixed(2)),
		zap.String("vat", vat.StringFixed(2)),
		zap.String("gross", result.GrossTotal.StringFixed(2)),
	)
	return result
}

// applyCredit deducts the credit source from its target when both are present.
// The first occurrence of each code is used, whatever the addition order.
func (c Calculation) applyCredit(entries []entry) (types.CreditResult, bool) {
	source, target, ok := c.catalog.CreditPair()
	if !ok {
		return types.CreditResult{}, false
	}

	si := indexOf(entries, source.Code)
	ti := indexOf(entries, target.Code)
	if si < 0 || ti < 0 {
		return types.CreditResult{}, false
	}

	src, tgt := entries[si].item, &entries[ti].item
	if src.Rate == nil || tgt.Rate == nil || tgt.BaseFee == nil {
		return types.CreditResult{}, false
	}

	result := credit.Compute(source.Code, target.Code, *src.Rate, *tgt.Rate, *tgt.BaseFee)
	tgt.CreditDeduction = result.CreditAmount.Neg()
	tgt.FinalAmount = tgt.Amount.Sub(result.CreditAmount)
	tgt.Notes = append(slices.Clip(tgt.Notes), result.Explanation)
	return result, true
}

// autoAppend adds the catalog's auto-append position for formula unless one is present
func (c Calculation) autoAppend(entries []entry, formula types.ExpenseFormula) []entry {
	def, ok := c.catalog.AutoAppendPosition(formula)
	if !ok || indexOf(entries, def.Code) >= 0 {
		return entries
	}

	item, _ := c.resolve(def, PositionOptions{})
	item.AutoAppended = true
	return append(entries, entry{def: def, item: item})
}

// resolveDeferred computes the percentage positions of formula in place
func resolveDeferred(entries []entry, formula types.ExpenseFormula) {
	base := decimal.Zero
	for _, e := range entries {
		switch formula {
		case types.FormulaPercentOfFees:
			if e.def.Family == types.FamilyAdValorem {
				base = base.Add(e.item.FinalAmount)
			}
		case types.FormulaPercentOfTotal:
			if !e.def.IsVAT() {
				base = base.Add(e.item.FinalAmount)
			}
		}
	}

	charged := ""
	for i := range entries {
		e := &entries[i]
		if e.def.Formula != formula {
			continue
		}

		// A percentage position is charged once; repeats resolve to zero
		if charged != "" {
			e.item.Amount = decimal.Zero
			e.item.FinalAmount = e.item.CreditDeduction
			e.item.Notes = append(slices.Clip(e.item.Notes), fmt.Sprintf("already charged by the first %s item", charged))
			continue
		}
		charged = e.def.Code

		amount := types.RoundCents(e.def.Percentage.Mul(base))
		note := fmt.Sprintf("%s%% of %s EUR = %s EUR", e.def.Percentage.Shift(2), base.StringFixed(2), amount.StringFixed(2))
		if e.def.CapAmount != nil && amount.GreaterThan(*e.def.CapAmount) {
			amount = *e.def.CapAmount
			note += fmt.Sprintf(", capped at %s EUR", amount.StringFixed(2))
		}

		e.item.Amount = amount
		e.item.FinalAmount = amount.Add(e.item.CreditDeduction)
		e.item.Notes = append(slices.Clip(e.item.Notes), note)
	}
}

func indexOf(entries []entry, code string) int {
	return slices.IndexFunc(entries, func(e entry) bool {
		return e.item.Code == code
	})
}
