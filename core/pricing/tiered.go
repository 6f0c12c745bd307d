// Package pricing - Tiered unit pricing
// Computes per-unit amounts whose unit rate drops after a threshold,
// e.g. the document flat rate (first 50 pages at one rate, the rest cheaper).
package pricing

import "github.com/shopspring/decimal"

// Tier represents a tiered pricing level
type Tier struct {
	// UpTo is the cumulative upper unit limit (nil = unlimited)
	UpTo *decimal.Decimal `json:"up_to,omitempty"`

	// UnitRate is the rate per unit in this tier
	UnitRate decimal.Decimal `json:"unit_rate"`
}

// TieredCost computes the cost of quantity units across tiers.
// Units beyond the last bounded tier are not charged unless an unlimited tier exists.
func TieredCost(quantity decimal.Decimal, tiers []Tier) decimal.Decimal {
	if !quantity.IsPositive() || len(tiers) == 0 {
		return decimal.Zero
	}

	total := decimal.Zero
	remaining := quantity
	previousLimit := decimal.Zero

	for _, tier := range tiers {
		if !remaining.IsPositive() {
			break
		}

		if tier.UpTo == nil {
			// Unlimited tier - all remaining goes here
			total = total.Add(remaining.Mul(tier.UnitRate))
			remaining = decimal.Zero
			continue
		}

		tierSize := tier.UpTo.Sub(previousLimit)
		usage := decimal.Min(remaining, tierSize)
		total = total.Add(usage.Mul(tier.UnitRate))
		remaining = remaining.Sub(usage)
		previousLimit = *tier.UpTo
	}

	return total
}

// FlatCost computes units x rate, zero for non-positive quantities
func FlatCost(quantity, rate decimal.Decimal) decimal.Decimal {
	if !quantity.IsPositive() {
		return decimal.Zero
	}
	return quantity.Mul(rate)
}
