// Package types - Calculation result types
package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// CalculationItem is one resolved line of a calculation
type CalculationItem struct {
	// Code is the fee position number (e.g. "3100")
	Code string `json:"code"`

	// Name is the statutory name of the position
	Name string `json:"name"`

	// Family is the resolved fee family
	Family FeeFamily `json:"family"`

	// Formula is set for expense positions
	Formula ExpenseFormula `json:"formula,omitempty"`

	// Rate is the fee rate applied (ad-valorem only)
	Rate *decimal.Decimal `json:"rate,omitempty"`

	// BaseFee is the table fee the rate was applied to (ad-valorem only)
	BaseFee *decimal.Decimal `json:"base_fee,omitempty"`

	// DisputedAmount is the value used for this item
	DisputedAmount decimal.Decimal `json:"disputed_amount"`

	// Amount is the amount before any credit
	Amount decimal.Decimal `json:"amount"`

	// CreditDeduction is the credit applied to this item (zero or negative)
	CreditDeduction decimal.Decimal `json:"credit_deduction"`

	// FinalAmount is Amount plus CreditDeduction
	FinalAmount decimal.Decimal `json:"final_amount"`

	// AutoAppended marks items added by finalization
	AutoAppended bool `json:"auto_appended,omitempty"`

	// Notes document how the amount was derived
	Notes []string `json:"notes,omitempty"`
}

// CreditResult describes the applied Anrechnung
type CreditResult struct {
	SourceCode   string          `json:"source_code"`
	TargetCode   string          `json:"target_code"`
	SourceRate   decimal.Decimal `json:"source_rate"`
	HalvedRate   decimal.Decimal `json:"halved_rate"`
	CappedRate   decimal.Decimal `json:"capped_rate"`
	BaseFee      decimal.Decimal `json:"base_fee"`
	TargetAmount decimal.Decimal `json:"target_amount"`
	CreditAmount decimal.Decimal `json:"credit_amount"`
	Explanation  string          `json:"explanation"`
}

// CalculationResult is the terminal value of a calculation
type CalculationResult struct {
	// Items in addition order, auto-appended items last
	Items []CalculationItem `json:"items"`

	// Credit is the applied credit, if any
	Credit *CreditResult `json:"credit,omitempty"`

	// DisputedAmount is the calculation's Gegenstandswert
	DisputedAmount decimal.Decimal `json:"disputed_amount"`

	// ReferenceDate selected the schedule version
	ReferenceDate time.Time `json:"reference_date"`

	// ScheduleVersionID identifies the general fee table used
	ScheduleVersionID string `json:"schedule_version_id"`

	// ReducedScheduleVersionID is set when legal-aid fees were used
	ReducedScheduleVersionID string `json:"reduced_schedule_version_id,omitempty"`

	NetTotal   decimal.Decimal `json:"net_total"`
	VATAmount  decimal.Decimal `json:"vat_amount"`
	GrossTotal decimal.Decimal `json:"gross_total"`

	// Currency of every amount in the result
	Currency Currency `json:"currency"`

	// Notices must be surfaced to the user verbatim
	Notices []string `json:"notices,omitempty"`
}

// Item returns the first item with the given code
func (r *CalculationResult) Item(code string) (CalculationItem, bool) {
	if r == nil {
		return CalculationItem{}, false
	}
	for _, item := range r.Items {
		if item.Code == code {
			return item, true
		}
	}
	return CalculationItem{}, false
}
