package catalog

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"rvg-calc/core/types"
)

func TestDefaultCatalogValidates(t *testing.T) {
	c := NewCatalog()
	RegisterVV(c)

	if errs := c.Validate(DefaultValidationRules()); len(errs) > 0 {
		for _, err := range errs {
			t.Errorf("validation error: %v", err)
		}
	}
	if Default().Len() != c.Len() {
		t.Errorf("expected default catalog with %d entries, got %d", c.Len(), Default().Len())
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		code   string
		found  bool
		family types.FeeFamily
		rate   string
	}{
		{code: "3100", found: true, family: types.FamilyAdValorem, rate: "1.3"},
		{code: "3104", found: true, family: types.FamilyAdValorem, rate: "1.2"},
		{code: " 2300 ", found: true, family: types.FamilyAdValorem, rate: "1.3"},
		{code: "4100", found: true, family: types.FamilyRangeBound, rate: "0"},
		{code: "7008", found: true, family: types.FamilyExpense, rate: "0"},
		{code: "9999", found: false},
		{code: "", found: false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			def, ok := Default().Lookup(tt.code)
			if ok != tt.found {
				t.Fatalf("expected found=%v, got %v", tt.found, ok)
			}
			if !ok {
				return
			}
			if def.Family != tt.family {
				t.Errorf("expected family %s, got %s", tt.family, def.Family)
			}
			if !def.DefaultRate.Equal(decimal.RequireFromString(tt.rate)) {
				t.Errorf("expected default rate %s, got %s", tt.rate, def.DefaultRate)
			}
		})
	}
}

func TestSearchRanking(t *testing.T) {
	results := Default().Search("310")
	if len(results) == 0 {
		t.Fatal("expected prefix matches for 310")
	}
	for _, r := range results {
		if !strings.HasPrefix(r.Code, "310") {
			t.Errorf("unexpected match %s for prefix 310", r.Code)
		}
	}

	exact := Default().Search("3100")
	if len(exact) == 0 || exact[0].Code != "3100" {
		t.Fatalf("expected exact match first, got %v", codes(exact))
	}

	text := Default().Search("terminsgebühr")
	if len(text) < 3 {
		t.Fatalf("expected name matches, got %v", codes(text))
	}
	for i := 1; i < len(text); i++ {
		if text[i-1].Code > text[i].Code {
			t.Errorf("expected equal-rank results ordered by code, got %v", codes(text))
		}
	}
}

func TestSearchExactBeatsPrefixBeatsText(t *testing.T) {
	c := NewCatalog()
	c.Register(PositionDefinition{Code: "12", Name: "Zwölf", Category: "x", Family: types.FamilyFixed})
	c.Register(PositionDefinition{Code: "120", Name: "Hundertzwanzig", Category: "x", Family: types.FamilyFixed})
	c.Register(PositionDefinition{Code: "900", Name: "Mentions 12 in name", Category: "x", Family: types.FamilyFixed})

	got := codes(c.Search("12"))
	expected := []string{"12", "120", "900"}
	if strings.Join(got, ",") != strings.Join(expected, ",") {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestSearchByCategory(t *testing.T) {
	results := Default().Search("auslagen")
	if len(results) == 0 {
		t.Fatal("expected category matches")
	}
	for _, r := range results {
		if r.Category != CategoryExpenses {
			t.Errorf("unexpected category %s for %s", r.Category, r.Code)
		}
	}
}

func TestSearchEmptyReturnsAll(t *testing.T) {
	if got := len(Default().Search("  ")); got != Default().Len() {
		t.Errorf("expected %d positions, got %d", Default().Len(), got)
	}
}

func TestCreditPair(t *testing.T) {
	source, target, ok := Default().CreditPair()
	if !ok {
		t.Fatal("expected a credit pair")
	}
	if source.Code != "2300" || target.Code != "3100" {
		t.Errorf("expected 2300 -> 3100, got %s -> %s", source.Code, target.Code)
	}
}

func TestAutoAppendPositions(t *testing.T) {
	expense, ok := Default().AutoAppendPosition(types.FormulaPercentOfFees)
	if !ok || expense.Code != "7002" {
		t.Errorf("expected 7002 as auto-appended expense, got %q", expense.Code)
	}
	vat, ok := Default().AutoAppendPosition(types.FormulaPercentOfTotal)
	if !ok || vat.Code != "7008" || !vat.IsVAT() {
		t.Errorf("expected 7008 as auto-appended VAT, got %q", vat.Code)
	}
}

func TestValidationRejectsBrokenEntries(t *testing.T) {
	tests := []struct {
		name  string
		entry PositionDefinition
	}{
		{
			name:  "default rate outside bounds",
			entry: PositionDefinition{Code: "1", Name: "x", Family: types.FamilyAdValorem, DefaultRate: decimal.NewFromInt(3), MaxRate: types.DecimalPtr("2.5")},
		},
		{
			name:  "fixed position with a rate",
			entry: PositionDefinition{Code: "2", Name: "x", Family: types.FamilyFixed, DefaultRate: decimal.NewFromInt(1)},
		},
		{
			name:  "expense without formula",
			entry: PositionDefinition{Code: "3", Name: "x", Family: types.FamilyExpense},
		},
		{
			name:  "range without bounds",
			entry: PositionDefinition{Code: "4", Name: "x", Family: types.FamilyRangeBound},
		},
		{
			name:  "auto-append of an actual expense",
			entry: PositionDefinition{Code: "5", Name: "x", Family: types.FamilyExpense, Formula: types.FormulaActual, AutoAppend: true},
		},
		{
			name:  "credit target missing",
			entry: PositionDefinition{Code: "6", Name: "x", Family: types.FamilyAdValorem, DefaultRate: decimal.NewFromInt(1), CreditTarget: "404"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCatalog()
			c.Register(tt.entry)
			if errs := c.Validate(DefaultValidationRules()); len(errs) == 0 {
				t.Error("expected validation errors")
			}
		})
	}
}

func TestMustValidatePanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for invalid catalog")
		}
	}()

	c := NewCatalog()
	c.Register(PositionDefinition{Code: "1", Family: types.FamilyAdValorem})
	c.MustValidate()
}

func codes(defs []PositionDefinition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Code
	}
	return out
}

func TestStats(t *testing.T) {
	c := Default()
	stats := c.Stats()

	if stats.Total != c.Len() {
		t.Errorf("expected total %d, got %d", c.Len(), stats.Total)
	}
	sum := 0
	for _, n := range stats.ByFamily {
		sum += n
	}
	if sum != stats.Total {
		t.Errorf("expected families to add up to %d, got %d", stats.Total, sum)
	}
	if stats.AutoAppend != 2 {
		t.Errorf("expected 7002 and 7008 as auto-append positions, got %d", stats.AutoAppend)
	}
	if stats.ByFamily[types.FamilyAdValorem] == 0 {
		t.Error("expected ad-valorem positions")
	}
}
