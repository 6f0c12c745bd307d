// Package types defines core domain types shared across all layers.
// This package contains NO business logic beyond money rounding.
package types

// FeeFamily classifies how a fee position computes its amount
type FeeFamily string

const (
	// FamilyAdValorem - rate x base fee from the value-fee table
	FamilyAdValorem FeeFamily = "ad_valorem"

	// FamilyFixed - caller-supplied amount
	FamilyFixed FeeFamily = "fixed"

	// FamilyRangeBound - caller-supplied amount within a statutory range
	FamilyRangeBound FeeFamily = "range_bound"

	// FamilyExpense - disbursements (Auslagen), see ExpenseFormula
	FamilyExpense FeeFamily = "expense"
)

// String returns the string representation
func (f FeeFamily) String() string {
	return string(f)
}

// IsValid checks if the family is known
func (f FeeFamily) IsValid() bool {
	switch f {
	case FamilyAdValorem, FamilyFixed, FamilyRangeBound, FamilyExpense:
		return true
	default:
		return false
	}
}

// ExpenseFormula selects the formula of an expense position
type ExpenseFormula string

const (
	// FormulaNone is used by every non-expense family
	FormulaNone ExpenseFormula = ""

	// FormulaPercentOfFees - percentage of the ad-valorem fees, capped
	FormulaPercentOfFees ExpenseFormula = "percent_of_fees"

	// FormulaPercentOfTotal - percentage of every other item (VAT)
	FormulaPercentOfTotal ExpenseFormula = "percent_of_total"

	// FormulaPerUnit - units x unit rate, optionally tiered
	FormulaPerUnit ExpenseFormula = "per_unit"

	// FormulaTieredFixed - days x daily rate of the selected tier
	FormulaTieredFixed ExpenseFormula = "tiered_fixed"

	// FormulaActual - actual cost supplied by the caller
	FormulaActual ExpenseFormula = "actual"
)

// String returns the string representation
func (f ExpenseFormula) String() string {
	if f == FormulaNone {
		return "none"
	}
	return string(f)
}

// IsDeferred reports whether items with this formula depend on other items
// and must be resolved when the calculation is finalized
func (f ExpenseFormula) IsDeferred() bool {
	return f == FormulaPercentOfFees || f == FormulaPercentOfTotal
}
