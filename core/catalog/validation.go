// Package catalog - Catalog validation
// Ensures catalog integrity and enforces invariants.
package catalog

import (
	"fmt"

	"rvg-calc/core/types"
)

// ValidationRule is a per-entry validation rule
type ValidationRule func(*PositionDefinition) error

// DefaultValidationRules returns the standard validation rules
func DefaultValidationRules() []ValidationRule {
	return []ValidationRule{
		validateIdentity,
		validateRates,
		validateFormula,
		validateRangeBounds,
		validateAutoAppend,
	}
}

// Validate checks a catalog against validation rules and cross-entry invariants
func (c *Catalog) Validate(rules []ValidationRule) []error {
	var errors []error

	for _, entry := range c.All() {
		e := entry
		for _, rule := range rules {
			if err := rule(&e); err != nil {
				errors = append(errors, fmt.Errorf("%s: %w", e.Code, err))
			}
		}
	}

	errors = append(errors, c.validateCreditPair()...)
	errors = append(errors, c.validateUniqueAutoAppend()...)

	return errors
}

// validateIdentity ensures every entry has a code, a name and a known family
func validateIdentity(e *PositionDefinition) error {
	if e.Code == "" || e.Name == "" {
		return fmt.Errorf("code and name are required")
	}
	if !e.Family.IsValid() {
		return fmt.Errorf("unknown fee family %q", e.Family)
	}
	return nil
}

// validateRates ensures ad-valorem rates are consistent and others carry none
func validateRates(e *PositionDefinition) error {
	if e.Family != types.FamilyAdValorem {
		if !e.DefaultRate.IsZero() || e.MinRate != nil || e.MaxRate != nil || e.PartyCountRate {
			return fmt.Errorf("only ad-valorem positions carry rates")
		}
		return nil
	}

	if !e.DefaultRate.IsPositive() {
		return fmt.Errorf("ad-valorem position needs a positive default rate")
	}
	if e.MinRate != nil && e.MaxRate != nil && e.MinRate.GreaterThan(*e.MaxRate) {
		return fmt.Errorf("min rate %s exceeds max rate %s", e.MinRate, e.MaxRate)
	}
	if _, clamped := types.Clamp(e.DefaultRate, e.MinRate, e.MaxRate); clamped {
		return fmt.Errorf("default rate %s outside [%v, %v]", e.DefaultRate, e.MinRate, e.MaxRate)
	}
	return nil
}

// validateFormula ensures expense positions declare a formula with its parameters
func validateFormula(e *PositionDefinition) error {
	if e.Family != types.FamilyExpense {
		if e.Formula != types.FormulaNone {
			return fmt.Errorf("formula %s requires the expense family", e.Formula)
		}
		return nil
	}

	switch e.Formula {
	case types.FormulaPercentOfFees, types.FormulaPercentOfTotal:
		if !e.Percentage.IsPositive() {
			return fmt.Errorf("percentage expense needs a positive percentage")
		}
	case types.FormulaPerUnit:
		if !e.UnitRate.IsPositive() && len(e.UnitTiers) == 0 {
			return fmt.Errorf("per-unit expense needs a unit rate or tiers")
		}
	case types.FormulaTieredFixed:
		if _, ok := e.DailyRates[DefaultAbsenceTier]; !ok {
			return fmt.Errorf("tiered expense needs a rate for the default tier %s", DefaultAbsenceTier)
		}
	case types.FormulaActual:
	default:
		return fmt.Errorf("expense position needs a formula")
	}
	return nil
}

// validateRangeBounds ensures range-bound positions declare an ordered range
func validateRangeBounds(e *PositionDefinition) error {
	if e.Family != types.FamilyRangeBound {
		return nil
	}
	if e.MinAmount == nil || e.MaxAmount == nil {
		return fmt.Errorf("range-bound position needs min and max amount")
	}
	if e.MinAmount.GreaterThan(*e.MaxAmount) {
		return fmt.Errorf("min amount %s exceeds max amount %s", e.MinAmount, e.MaxAmount)
	}
	return nil
}

// validateAutoAppend ensures only dependent expenses are appended silently
func validateAutoAppend(e *PositionDefinition) error {
	if e.AutoAppend && !e.Formula.IsDeferred() {
		return fmt.Errorf("only percentage expenses may be auto-appended")
	}
	return nil
}

// validateCreditPair ensures there is at most one credit source and its target is ad-valorem
func (c *Catalog) validateCreditPair() []error {
	var errors []error
	sources := 0

	for _, entry := range c.All() {
		if !entry.IsCreditSource() {
			continue
		}
		sources++
		if entry.Family != types.FamilyAdValorem {
			errors = append(errors, fmt.Errorf("%s: credit source must be ad-valorem", entry.Code))
		}
		target, ok := c.Lookup(entry.CreditTarget)
		if !ok {
			errors = append(errors, fmt.Errorf("%s: credit target %s not in catalog", entry.Code, entry.CreditTarget))
			continue
		}
		if target.Family != types.FamilyAdValorem {
			errors = append(errors, fmt.Errorf("%s: credit target %s must be ad-valorem", entry.Code, target.Code))
		}
	}

	if sources > 1 {
		errors = append(errors, fmt.Errorf("catalog has %d credit sources, expected at most one", sources))
	}
	return errors
}

// validateUniqueAutoAppend ensures at most one auto-appended position per formula
func (c *Catalog) validateUniqueAutoAppend() []error {
	var errors []error
	seen := make(map[types.ExpenseFormula]string)

	for _, entry := range c.All() {
		if !entry.AutoAppend {
			continue
		}
		if other, ok := seen[entry.Formula]; ok {
			errors = append(errors, fmt.Errorf("%s and %s both auto-append formula %s", other, entry.Code, entry.Formula))
			continue
		}
		seen[entry.Formula] = entry.Code
	}
	return errors
}

// MustValidate panics if validation fails
func (c *Catalog) MustValidate() {
	errors := c.Validate(DefaultValidationRules())
	if len(errors) > 0 {
		panic(fmt.Sprintf("Catalog has %d validation errors: %v", len(errors), errors))
	}
}
