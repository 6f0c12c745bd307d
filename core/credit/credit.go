// Package credit - Anrechnung of a prior business fee onto the procedural fee
// Vorbem. 3 Abs. 4 VV RVG: half of the business fee, at most a 0.75 rate,
// is credited against the procedural fee of the subsequent court proceedings.
package credit

import (
	"fmt"

	"github.com/shopspring/decimal"

	"rvg-calc/core/types"
)

// Citation is the statutory basis of the credit rule
const Citation = "Vorbem. 3 Abs. 4 VV RVG"

var (
	maxCreditRate = decimal.RequireFromString("0.75")
	half          = decimal.RequireFromString("0.5")
)

// MaxCreditRate returns the statutory ceiling of the credited rate
func MaxCreditRate() decimal.Decimal {
	return maxCreditRate
}

// Compute returns the credit of the source fee against the target fee.
// baseFee must be the table fee at the target's disputed amount.
// The credit never exceeds the target amount and is never negative.
func Compute(sourceCode, targetCode string, sourceRate, targetRate, baseFee decimal.Decimal) types.CreditResult {
	halved := sourceRate.Mul(half)
	capped := decimal.Min(halved, maxCreditRate)

	nominal := types.RoundCents(capped.Mul(baseFee))
	targetAmount := types.RoundCents(targetRate.Mul(baseFee))

	amount := nominal
	if amount.GreaterThan(targetAmount) {
		amount = targetAmount
	}
	if amount.IsNegative() {
		amount = decimal.Zero
	}

	return types.CreditResult{
		SourceCode:   sourceCode,
		TargetCode:   targetCode,
		SourceRate:   sourceRate,
		HalvedRate:   halved,
		CappedRate:   capped,
		BaseFee:      baseFee,
		TargetAmount: targetAmount,
		CreditAmount: amount,
		Explanation:  explain(sourceCode, targetCode, sourceRate, halved, capped, baseFee, amount, nominal),
	}
}

func explain(sourceCode, targetCode string, sourceRate, halved, capped, baseFee, amount, nominal decimal.Decimal) string {
	msg := fmt.Sprintf(
		"Anrechnung nach %s: half of the %s rate %s = %s",
		Citation, sourceCode, sourceRate.String(), halved.String(),
	)
	if !capped.Equal(halved) {
		msg += fmt.Sprintf(", capped at %s", capped.String())
	}
	msg += fmt.Sprintf(" x base fee %s EUR = %s EUR deducted from %s", baseFee.StringFixed(2), nominal.StringFixed(2), targetCode)
	if !amount.Equal(nominal) {
		msg += fmt.Sprintf(", limited to %s EUR", amount.StringFixed(2))
	}
	return msg
}
