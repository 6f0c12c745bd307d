// Package catalog - Authoritative fee position catalog
// Defines the canonical list of VV RVG positions with their computation metadata.
// The catalog is read-only once built.
package catalog

import (
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"rvg-calc/core/determinism"
	"rvg-calc/core/pricing"
	"rvg-calc/core/types"
)

// AbsenceTier selects the daily rate of the absence allowance
type AbsenceTier string

const (
	AbsenceUpTo4Hours AbsenceTier = "up_to_4h"
	Absence4To8Hours  AbsenceTier = "4_to_8h"
	AbsenceOver8Hours AbsenceTier = "over_8h"
)

// DefaultAbsenceTier applies when the caller names no tier
const DefaultAbsenceTier = AbsenceOver8Hours

// String returns string representation
func (t AbsenceTier) String() string {
	return string(t)
}

// PositionDefinition is a catalog entry for a fee position
type PositionDefinition struct {
	Code     string               `json:"code"`
	Name     string               `json:"name"`
	Category string               `json:"category"`
	Family   types.FeeFamily      `json:"family"`
	Formula  types.ExpenseFormula `json:"formula,omitempty"`
	Citation string               `json:"citation,omitempty"`

	// DefaultRate, MinRate and MaxRate apply to ad-valorem positions
	DefaultRate decimal.Decimal  `json:"default_rate"`
	MinRate     *decimal.Decimal `json:"min_rate,omitempty"`
	MaxRate     *decimal.Decimal `json:"max_rate,omitempty"`

	// PartyCountRate derives the rate from the number of clients
	PartyCountRate bool `json:"party_count_rate,omitempty"`

	// MinAmount and MaxAmount bound range-bound positions
	MinAmount *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount *decimal.Decimal `json:"max_amount,omitempty"`

	// Percentage and CapAmount apply to percentage expenses
	Percentage decimal.Decimal  `json:"percentage"`
	CapAmount  *decimal.Decimal `json:"cap_amount,omitempty"`

	// UnitRate applies to per-unit expenses; UnitTiers replaces it when set
	UnitRate  decimal.Decimal `json:"unit_rate"`
	UnitTiers []pricing.Tier  `json:"unit_tiers,omitempty"`

	// DailyRates apply to tiered-fixed expenses
	DailyRates map[AbsenceTier]decimal.Decimal `json:"daily_rates,omitempty"`

	// CreditTarget is set on the credit source and names the reduced position
	CreditTarget string `json:"credit_target,omitempty"`

	// AutoAppend allows finalization to add the position silently
	AutoAppend bool `json:"auto_append,omitempty"`
}

// IsCreditSource reports whether the position reduces another one
func (p PositionDefinition) IsCreditSource() bool {
	return p.CreditTarget != ""
}

// IsVAT reports whether the position is the value-added-tax line
func (p PositionDefinition) IsVAT() bool {
	return p.Family == types.FamilyExpense && p.Formula == types.FormulaPercentOfTotal
}

// Catalog is the authoritative position catalog
type Catalog struct {
	entries map[string]*PositionDefinition
}

// NewCatalog creates a new empty catalog
func NewCatalog() *Catalog {
	return &Catalog{
		entries: make(map[string]*PositionDefinition),
	}
}

// Register adds a position to the catalog, replacing any entry with the same code
func (c *Catalog) Register(entry PositionDefinition) {
	c.entries[entry.Code] = &entry
}

// Lookup returns a position definition by code
func (c *Catalog) Lookup(code string) (PositionDefinition, bool) {
	entry, ok := c.entries[strings.TrimSpace(code)]
	if !ok {
		return PositionDefinition{}, false
	}
	return *entry, true
}

// All returns every position ordered by code
func (c *Catalog) All() []PositionDefinition {
	result := make([]PositionDefinition, 0, len(c.entries))
	determinism.RangeMapSorted(c.entries, func(_ string, entry *PositionDefinition) bool {
		result = append(result, *entry)
		return true
	})
	return result
}

// Len returns the number of positions
func (c *Catalog) Len() int {
	return len(c.entries)
}

const (
	rankExactCode = iota
	rankCodePrefix
	rankText
)

// Search matches by code prefix, name substring or category substring.
// Exact code matches sort first, then prefix matches, then other matches.
// An empty query returns every position.
func (c *Catalog) Search(query string) []PositionDefinition {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return c.All()
	}

	type ranked struct {
		rank  int
		entry PositionDefinition
	}

	var matches []ranked
	for _, entry := range c.entries {
		code := strings.ToLower(entry.Code)
		switch {
		case code == q:
			matches = append(matches, ranked{rankExactCode, *entry})
		case strings.HasPrefix(code, q):
			matches = append(matches, ranked{rankCodePrefix, *entry})
		case strings.Contains(strings.ToLower(entry.Name), q),
			strings.Contains(strings.ToLower(entry.Category), q):
			matches = append(matches, ranked{rankText, *entry})
		}
	}

	determinism.SortSlice(matches, func(a, b ranked) bool {
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		return a.entry.Code < b.entry.Code
	})

	result := make([]PositionDefinition, len(matches))
	for i, m := range matches {
		result[i] = m.entry
	}
	return result
}

// CreditPair returns the designated credit source and its target
func (c *Catalog) CreditPair() (source, target PositionDefinition, ok bool) {
	for _, entry := range c.All() {
		if !entry.IsCreditSource() {
			continue
		}
		t, found := c.Lookup(entry.CreditTarget)
		if !found {
			return PositionDefinition{}, PositionDefinition{}, false
		}
		return entry, t, true
	}
	return PositionDefinition{}, PositionDefinition{}, false
}

// AutoAppendPosition returns the auto-appendable position with the given formula
func (c *Catalog) AutoAppendPosition(formula types.ExpenseFormula) (PositionDefinition, bool) {
	for _, entry := range c.All() {
		if entry.AutoAppend && entry.Formula == formula {
			return entry, true
		}
	}
	return PositionDefinition{}, false
}

// Stats returns catalog statistics
func (c *Catalog) Stats() CatalogStats {
	stats := CatalogStats{
		ByFamily: make(map[types.FeeFamily]int),
	}
	for _, entry := range c.entries {
		stats.Total++
		stats.ByFamily[entry.Family]++
		if entry.AutoAppend {
			stats.AutoAppend++
		}
	}
	return stats
}

// CatalogStats holds catalog statistics
type CatalogStats struct {
	Total      int                     `json:"total"`
	ByFamily   map[types.FeeFamily]int `json:"by_family"`
	AutoAppend int                     `json:"auto_append"`
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	c := NewCatalog()
	RegisterVV(c)
	c.MustValidate()
	return c
})

// Default returns the process-wide VV RVG catalog
func Default() *Catalog {
	return defaultCatalog()
}
