package engine

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rvg-calc/core/catalog"
	"rvg-calc/core/schedule"
	"rvg-calc/core/types"
)

var (
	july2025 = schedule.Date(2025, time.July, 1)
	jan2024  = schedule.Date(2024, time.January, 1)
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func assertAmount(t *testing.T, label string, got decimal.Decimal, expected string) {
	t.Helper()
	if !got.Equal(dec(expected)) {
		t.Errorf("%s: expected %s, got %s", label, expected, got.StringFixed(2))
	}
}

func mustItem(t *testing.T, result *types.CalculationResult, code string) types.CalculationItem {
	t.Helper()
	item, ok := result.Item(code)
	if !ok {
		t.Fatalf("expected item %s in result", code)
	}
	return item
}

func build(t *testing.T, calc Calculation, codes ...string) Calculation {
	t.Helper()
	for _, code := range codes {
		next, err := calc.Add(code, PositionOptions{})
		if err != nil {
			t.Fatalf("Add(%s): %v", code, err)
		}
		calc = next
	}
	return calc
}

func TestCivilProceedings(t *testing.T) {
	result := build(t, New(dec("5000"), july2025), "3100", "3104").Finalize()

	assertAmount(t, "3100", mustItem(t, result, "3100").FinalAmount, "460.85")
	assertAmount(t, "3104", mustItem(t, result, "3104").FinalAmount, "425.40")

	expense := mustItem(t, result, "7002")
	assertAmount(t, "7002", expense.FinalAmount, "20.00")
	if !expense.AutoAppended {
		t.Error("expected 7002 to be auto-appended")
	}

	assertAmount(t, "net", result.NetTotal, "906.25")
	assertAmount(t, "vat", result.VATAmount, "172.19")
	assertAmount(t, "gross", result.GrossTotal, "1078.44")

	if result.ScheduleVersionID != "rvg-2025" {
		t.Errorf("expected rvg-2025, got %s", result.ScheduleVersionID)
	}
	if result.Currency != types.CurrencyEUR {
		t.Errorf("expected EUR, got %s", result.Currency)
	}
	if result.Credit != nil {
		t.Error("expected no credit without a business fee")
	}
}

func TestScheduleSelectedByDate(t *testing.T) {
	result := build(t, New(dec("5000"), schedule.Date(2024, time.January, 1)), "3100").Finalize()

	if result.ScheduleVersionID != "rvg-2021" {
		t.Errorf("expected rvg-2021, got %s", result.ScheduleVersionID)
	}
	assertAmount(t, "3100", mustItem(t, result, "3100").Amount, "434.20")
}

func TestCreditDetection(t *testing.T) {
	tests := []struct {
		name  string
		codes []string
	}{
		{name: "source first", codes: []string{"2300", "3100"}},
		{name: "target first", codes: []string{"3100", "2300"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := build(t, New(dec("5000"), july2025), tt.codes...).Finalize()

			if result.Credit == nil {
				t.Fatal("expected a credit")
			}
			assertAmount(t, "credit", result.Credit.CreditAmount, "230.43")

			target := mustItem(t, result, "3100")
			assertAmount(t, "3100 amount", target.Amount, "460.85")
			assertAmount(t, "3100 deduction", target.CreditDeduction, "-230.43")
			assertAmount(t, "3100 final", target.FinalAmount, "230.42")

			source := mustItem(t, result, "2300")
			assertAmount(t, "2300 final", source.FinalAmount, "460.85")

			assertAmount(t, "net", result.NetTotal, "711.27")
			assertAmount(t, "vat", result.VATAmount, "135.14")
			assertAmount(t, "gross", result.GrossTotal, "846.41")

			if len(result.Notices) == 0 || !strings.Contains(result.Notices[len(result.Notices)-1], "Vorbem. 3 Abs. 4") {
				t.Errorf("expected credit explanation in notices, got %v", result.Notices)
			}
		})
	}
}

func TestCreditUsesTargetDisputedAmount(t *testing.T) {
	calc := New(dec("5000"), july2025).
		MustAdd("2300", PositionOptions{}).
		MustAdd("3100", PositionOptions{AmountOverride: ptr("10000")})
	result := calc.Finalize()

	assertAmount(t, "credit", result.Credit.CreditAmount, "423.80")
	assertAmount(t, "credit base", result.Credit.BaseFee, "652.00")
	assertAmount(t, "3100 final", mustItem(t, result, "3100").FinalAmount, "423.80")
}

func TestCreditCappedRate(t *testing.T) {
	calc := New(dec("5000"), july2025).
		MustAdd("2300", PositionOptions{Rate: ptr("2.5")}).
		MustAdd("3100", PositionOptions{})
	result := calc.Finalize()

	assertAmount(t, "capped rate", result.Credit.CappedRate, "0.75")
	assertAmount(t, "credit", result.Credit.CreditAmount, "265.88")
}

func TestWithoutCreditDetection(t *testing.T) {
	result := build(t, New(dec("5000"), july2025).WithoutCreditDetection(), "2300", "3100").Finalize()

	if result.Credit != nil {
		t.Error("expected credit detection to be suppressed")
	}
	assertAmount(t, "3100 final", mustItem(t, result, "3100").FinalAmount, "460.85")
}

func TestSuppressAutoAppend(t *testing.T) {
	calc := New(dec("5000"), july2025).WithoutExpenseAutoAppend().WithoutVATAutoAppend()
	result := build(t, calc, "3100").Finalize()

	if len(result.Items) != 1 {
		t.Fatalf("expected only 3100, got %d items", len(result.Items))
	}
	assertAmount(t, "net", result.NetTotal, "460.85")
	assertAmount(t, "vat", result.VATAmount, "0")
	assertAmount(t, "gross", result.GrossTotal, "460.85")
}

func TestExpenseBelowCap(t *testing.T) {
	result := build(t, New(dec("500"), july2025), "3100").Finalize()

	assertAmount(t, "3100", mustItem(t, result, "3100").Amount, "66.95")
	assertAmount(t, "7002", mustItem(t, result, "7002").Amount, "13.39")
}

func TestExplicitPercentagePositionsResolveAtFinalize(t *testing.T) {
	result := build(t, New(dec("5000"), july2025), "7008", "7002", "3100").Finalize()

	count := 0
	for _, item := range result.Items {
		if item.Code == "7008" {
			count++
			if item.AutoAppended {
				t.Error("explicit 7008 must not be marked auto-appended")
			}
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one 7008, got %d", count)
	}

	assertAmount(t, "7002", mustItem(t, result, "7002").Amount, "20.00")
	assertAmount(t, "net", result.NetTotal, "480.85")
	assertAmount(t, "vat", result.VATAmount, "91.36")
	if result.Items[0].Code != "7008" {
		t.Errorf("expected addition order kept, got %s first", result.Items[0].Code)
	}
}

func TestPercentagePositionChargedOnce(t *testing.T) {
	tests := []struct {
		name  string
		codes []string
		net   string
		vat   string
	}{
		{name: "repeated flat rate", codes: []string{"3100", "7002", "7002"}, net: "480.85", vat: "91.36"},
		{name: "repeated vat", codes: []string{"3100", "7008", "7008"}, net: "480.85", vat: "91.36"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := build(t, New(dec("5000"), july2025), tt.codes...).Finalize()

			assertAmount(t, "net", result.NetTotal, tt.net)
			assertAmount(t, "vat", result.VATAmount, tt.vat)

			repeated := result.Items[2]
			assertAmount(t, "repeated "+repeated.Code, repeated.FinalAmount, "0")
			if len(repeated.Notes) == 0 {
				t.Error("expected a note on the repeated item")
			}
		})
	}
}

func TestEmptyCalculation(t *testing.T) {
	result := New(dec("5000"), july2025).Finalize()

	if len(result.Items) != 2 {
		t.Fatalf("expected auto-appended expense and VAT, got %d items", len(result.Items))
	}
	assertAmount(t, "gross", result.GrossTotal, "0")
}

func TestUnknownPosition(t *testing.T) {
	calc := build(t, New(dec("5000"), july2025), "3100")

	next, err := calc.Add("9999", PositionOptions{})
	if err == nil {
		t.Fatal("expected error for unknown position")
	}
	if !IsUnknownPosition(err) {
		t.Errorf("expected unknown position error, got %v", err)
	}
	if next.Len() != 1 || calc.Len() != 1 {
		t.Errorf("expected state unchanged, got %d and %d positions", next.Len(), calc.Len())
	}
}

func TestMustAddPanicsOnUnknownCode(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic")
		}
	}()
	New(dec("5000"), july2025).MustAdd("0000", PositionOptions{})
}

func TestCalculationIsImmutable(t *testing.T) {
	base := build(t, New(dec("5000"), july2025), "3100")

	withTermin := build(t, base, "3104")
	withSettlement := build(t, base, "1003")

	if base.Len() != 1 {
		t.Errorf("expected base untouched, got %d positions", base.Len())
	}
	if _, ok := withTermin.Finalize().Item("1003"); ok {
		t.Error("sibling calculation leaked a position")
	}
	if _, ok := withSettlement.Finalize().Item("3104"); ok {
		t.Error("sibling calculation leaked a position")
	}

	credited := build(t, base, "2300")
	first := credited.Finalize()
	second := credited.Finalize()
	if !first.GrossTotal.Equal(second.GrossTotal) || len(first.Items) != len(second.Items) {
		t.Error("expected finalize to be repeatable")
	}
	if got := len(mustItem(t, first, "3100").Notes); got != len(mustItem(t, second, "3100").Notes) {
		t.Error("finalize leaked notes between results")
	}

	// the credit applied to credited must not reach base
	assertAmount(t, "base 3100", mustItem(t, base.Finalize(), "3100").FinalAmount, "460.85")
}

func TestRateHandling(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		opts    PositionOptions
		rate    string
		amount  string
		clamped bool
	}{
		{name: "default rate", code: "2300", rate: "1.3", amount: "460.85"},
		{name: "caller rate", code: "2300", opts: PositionOptions{Rate: ptr("1.5")}, rate: "1.5", amount: "531.75"},
		{name: "rate above maximum", code: "2300", opts: PositionOptions{Rate: ptr("3.0")}, rate: "2.5", amount: "886.25", clamped: true},
		{name: "rate below minimum", code: "2300", opts: PositionOptions{Rate: ptr("0.2")}, rate: "0.5", amount: "177.25", clamped: true},
		{name: "negative rate", code: "3100", opts: PositionOptions{Rate: ptr("-1")}, rate: "1.3", amount: "460.85"},
		{name: "single client", code: "1008", opts: PositionOptions{PartyCount: 1}, rate: "0", amount: "0"},
		{name: "three clients", code: "1008", opts: PositionOptions{PartyCount: 3}, rate: "0.6", amount: "212.70"},
		{name: "surcharge cap", code: "1008", opts: PositionOptions{PartyCount: 10}, rate: "2.0", amount: "709.00"},
		{name: "caller rate ignored for surcharge", code: "1008", opts: PositionOptions{PartyCount: 2, Rate: ptr("1.0")}, rate: "0.3", amount: "106.35"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := New(dec("5000"), july2025).WithoutExpenseAutoAppend().WithoutVATAutoAppend()
			next, err := calc.Add(tt.code, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			result := next.Finalize()
			item := mustItem(t, result, tt.code)

			if item.Rate == nil || !item.Rate.Equal(dec(tt.rate)) {
				t.Errorf("expected rate %s, got %v", tt.rate, item.Rate)
			}
			assertAmount(t, "amount", item.Amount, tt.amount)
			if got := len(result.Notices) > 0; got != tt.clamped {
				t.Errorf("expected clamp notice %v, got notices %v", tt.clamped, result.Notices)
			}
		})
	}
}

func TestCallerAmounts(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		opts    PositionOptions
		amount  string
		clamped bool
	}{
		{name: "range within bounds", code: "4100", opts: PositionOptions{FixedAmount: ptr("200")}, amount: "200"},
		{name: "range above maximum", code: "4100", opts: PositionOptions{FixedAmount: ptr("500")}, amount: "396", clamped: true},
		{name: "range below minimum", code: "4108", opts: PositionOptions{FixedAmount: ptr("10")}, amount: "77", clamped: true},
		{name: "range without amount", code: "4104", amount: "0"},
		{name: "fixed amount", code: "2503", opts: PositionOptions{FixedAmount: ptr("93.50")}, amount: "93.50"},
		{name: "negative fixed amount", code: "2500", opts: PositionOptions{FixedAmount: ptr("-15")}, amount: "0"},
		{name: "actual expense", code: "7004", opts: PositionOptions{FixedAmount: ptr("48.90")}, amount: "48.90"},
		{name: "mileage", code: "7003", opts: PositionOptions{Units: dec("100")}, amount: "42.00"},
		{name: "mileage with caller rate", code: "7003", opts: PositionOptions{Units: dec("100"), UnitRate: ptr("0.30")}, amount: "30.00"},
		{name: "document copies tiered", code: "7000", opts: PositionOptions{Units: dec("60")}, amount: "26.50"},
		{name: "negative units", code: "7003", opts: PositionOptions{Units: dec("-5")}, amount: "0"},
		{name: "absence default tier", code: "7005", opts: PositionOptions{Days: 2}, amount: "160"},
		{name: "absence selected tier", code: "7005", opts: PositionOptions{Days: 2, AbsenceTier: catalog.Absence4To8Hours}, amount: "100"},
		{name: "absence caller daily rate", code: "7005", opts: PositionOptions{Days: 3, DailyRate: ptr("40")}, amount: "120"},
		{name: "absence unknown tier", code: "7005", opts: PositionOptions{Days: 1, AbsenceTier: "weekend"}, amount: "80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := New(dec("5000"), july2025).WithoutExpenseAutoAppend().WithoutVATAutoAppend()
			result := calc.MustAdd(tt.code, tt.opts).Finalize()
			item := mustItem(t, result, tt.code)

			assertAmount(t, "amount", item.Amount, tt.amount)
			if item.Rate != nil {
				t.Errorf("expected no rate on %s", item.Family)
			}
			if got := len(result.Notices) > 0; got != tt.clamped {
				t.Errorf("expected clamp notice %v, got notices %v", tt.clamped, result.Notices)
			}
		})
	}
}

func TestExpenseBaseExcludesNonAdValorem(t *testing.T) {
	calc := New(dec("500"), july2025).
		MustAdd("3100", PositionOptions{}).
		MustAdd("4100", PositionOptions{FixedAmount: ptr("300")})
	result := calc.Finalize()

	assertAmount(t, "7002", mustItem(t, result, "7002").Amount, "13.39")
	assertAmount(t, "net", result.NetTotal, "380.34")
	assertAmount(t, "vat", result.VATAmount, "72.26")
}

func TestReducedFees(t *testing.T) {
	tests := []struct {
		name    string
		amount  string
		base    string
		notice  bool
		reduced bool
	}{
		{name: "within reduced table", amount: "5000", base: "284.00", reduced: true},
		{name: "below floor", amount: "3000", base: "222.00"},
		{name: "at floor", amount: "4000", base: "278.00"},
		{name: "above cap", amount: "40000", base: "1117.00", notice: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := New(dec(tt.amount), jan2024, WithReducedFees()).WithoutExpenseAutoAppend().WithoutVATAutoAppend()
			result := calc.MustAdd("3100", PositionOptions{}).Finalize()
			item := mustItem(t, result, "3100")

			assertAmount(t, "base fee", *item.BaseFee, tt.base)
			if got := len(result.Notices) > 0; got != tt.notice {
				t.Errorf("expected notice %v, got %v", tt.notice, result.Notices)
			}
			if result.ScheduleVersionID != "rvg-2021" || result.ReducedScheduleVersionID != "rvg-49-2021" {
				t.Errorf("expected editions of one period, got %s and %s", result.ScheduleVersionID, result.ReducedScheduleVersionID)
			}
			if got := strings.Contains(strings.Join(item.Notes, " "), result.ReducedScheduleVersionID); got != tt.reduced {
				t.Errorf("expected reduced table note %v, got %v", tt.reduced, item.Notes)
			}
		})
	}
}

func TestReducedFeesWithoutPairedTable(t *testing.T) {
	calc := New(dec("5000"), july2025, WithReducedFees()).WithoutExpenseAutoAppend().WithoutVATAutoAppend()
	result := calc.MustAdd("3100", PositionOptions{}).Finalize()

	assertAmount(t, "base fee", *mustItem(t, result, "3100").BaseFee, "354.50")
	if result.ReducedScheduleVersionID != "" {
		t.Errorf("expected no legal-aid table, got %s", result.ReducedScheduleVersionID)
	}
	if len(result.Notices) != 1 || !strings.Contains(result.Notices[0], "rvg-2025") {
		t.Errorf("expected one notice naming rvg-2025, got %v", result.Notices)
	}
}

func TestReducedFeesMonotonicAcrossFloor(t *testing.T) {
	amounts := []string{"3000", "3999.99", "4000", "4000.01", "4500", "5000", "5000.01", "6000"}

	for _, date := range []time.Time{jan2024, july2025} {
		t.Run(date.Format(time.DateOnly), func(t *testing.T) {
			prev := decimal.Zero
			for _, amount := range amounts {
				calc := New(dec(amount), date, WithReducedFees()).WithoutExpenseAutoAppend().WithoutVATAutoAppend()
				base := *mustItem(t, calc.MustAdd("3100", PositionOptions{}).Finalize(), "3100").BaseFee
				if base.LessThan(prev) {
					t.Fatalf("base fee drops from %s to %s at %s", prev, base, amount)
				}
				prev = base
			}
		})
	}
}

func TestWithScheduleVersion(t *testing.T) {
	v2021, ok := schedule.General().Get("rvg-2021")
	if !ok {
		t.Fatal("expected rvg-2021")
	}

	result := New(dec("5000"), july2025, WithScheduleVersion(v2021)).MustAdd("3100", PositionOptions{}).Finalize()
	if result.ScheduleVersionID != "rvg-2021" {
		t.Errorf("expected pinned version, got %s", result.ScheduleVersionID)
	}
}

func TestNonPositiveAmount(t *testing.T) {
	for _, amount := range []string{"0", "-100"} {
		result := build(t, New(dec(amount), july2025), "3100", "3104").Finalize()
		assertAmount(t, "gross for "+amount, result.GrossTotal, "0")
	}
}
