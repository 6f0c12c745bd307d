package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"rvg-calc/core/types"
)

func sampleResult() *types.CalculationResult {
	rate := decimal.RequireFromString("1.3")
	base := decimal.RequireFromString("354.50")
	return &types.CalculationResult{
		Items: []types.CalculationItem{
			{
				Code:            "3100",
				Name:            "Verfahrensgebühr",
				Family:          types.FamilyAdValorem,
				Rate:            &rate,
				BaseFee:         &base,
				Amount:          decimal.RequireFromString("460.85"),
				CreditDeduction: decimal.RequireFromString("-230.43"),
				FinalAmount:     decimal.RequireFromString("230.42"),
				Notes:           []string{"1.3 x 354.50 EUR (rvg-2025)"},
			},
			{
				Code:         "7002",
				Name:         "Pauschale für Entgelte für Post- und Telekommunikationsdienstleistungen",
				Family:       types.FamilyExpense,
				Formula:      types.FormulaPercentOfFees,
				Amount:       decimal.RequireFromString("20"),
				FinalAmount:  decimal.RequireFromString("20"),
				AutoAppended: true,
			},
		},
		DisputedAmount:    decimal.RequireFromString("5000"),
		ScheduleVersionID: "rvg-2025",
		NetTotal:          decimal.RequireFromString("250.42"),
		VATAmount:         decimal.RequireFromString("47.58"),
		GrossTotal:        decimal.RequireFromString("298.00"),
		Currency:          types.CurrencyEUR,
		Notices:           []string{"credit applied"},
	}
}

func TestCLIFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCLIFormatter(Options{ShowNotes: true, ShowNotices: true}).Render(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{"3100 Verfahrensgebühr (1.3)", "460.85 EUR", "-230.43 EUR", "298.00 EUR", "rvg-2025", "credit applied", "1.3 x 354.50"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}

	// every box line has the same width
	width := -1
	for _, line := range strings.Split(out, "\n") {
		if !strings.HasPrefix(line, "│") && !strings.HasPrefix(line, "┌") && !strings.HasPrefix(line, "├") && !strings.HasPrefix(line, "└") {
			continue
		}
		n := utf8.RuneCountInString(line)
		if width < 0 {
			width = n
		}
		if n != width {
			t.Errorf("line width %d, expected %d: %q", n, width, line)
		}
	}
}

func TestCLIFormatterHidesNotes(t *testing.T) {
	var buf bytes.Buffer
	if err := NewCLIFormatter(Options{}).Render(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "1.3 x 354.50") || strings.Contains(buf.String(), "Hinweise") {
		t.Errorf("expected notes and notices hidden:\n%s", buf.String())
	}
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	if err := NewJSONFormatter().Render(&buf, sampleResult()); err != nil {
		t.Fatal(err)
	}

	var decoded types.CalculationResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatal(err)
	}
	if !decoded.GrossTotal.Equal(decimal.RequireFromString("298")) || len(decoded.Items) != 2 {
		t.Errorf("unexpected decoded result %+v", decoded)
	}
}

func TestRegistry(t *testing.T) {
	r := DefaultRegistry(Options{})

	if f, err := r.Get(FormatJSON); err != nil || f.Format() != FormatJSON {
		t.Errorf("expected json formatter, got %v, %v", f, err)
	}
	if _, err := r.Get("html"); err == nil {
		t.Error("expected error for unknown format")
	}
	if got := r.Formats(); len(got) != 2 || got[0] != FormatCLI {
		t.Errorf("unexpected formats %v", got)
	}
}
