package credit

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name       string
		sourceRate string
		targetRate string
		baseFee    string
		halved     string
		capped     string
		credit     string
	}{
		{name: "standard business fee", sourceRate: "1.3", targetRate: "1.3", baseFee: "354.50", halved: "0.65", capped: "0.65", credit: "230.43"},
		{name: "maximum business fee is capped", sourceRate: "2.5", targetRate: "1.3", baseFee: "354.50", halved: "1.25", capped: "0.75", credit: "265.88"},
		{name: "credit limited to target", sourceRate: "2.0", targetRate: "0.5", baseFee: "100", halved: "1", capped: "0.75", credit: "50.00"},
		{name: "zero base fee", sourceRate: "1.3", targetRate: "1.3", baseFee: "0", halved: "0.65", capped: "0.65", credit: "0"},
		{name: "negative source rate never credits", sourceRate: "-1", targetRate: "1.3", baseFee: "100", halved: "-0.5", capped: "-0.5", credit: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute("2300", "3100", dec(tt.sourceRate), dec(tt.targetRate), dec(tt.baseFee))

			if !got.HalvedRate.Equal(dec(tt.halved)) {
				t.Errorf("halved rate: expected %s, got %s", tt.halved, got.HalvedRate)
			}
			if !got.CappedRate.Equal(dec(tt.capped)) {
				t.Errorf("capped rate: expected %s, got %s", tt.capped, got.CappedRate)
			}
			if !got.CreditAmount.Equal(dec(tt.credit)) {
				t.Errorf("credit: expected %s, got %s", tt.credit, got.CreditAmount)
			}
			if got.SourceCode != "2300" || got.TargetCode != "3100" {
				t.Errorf("unexpected codes %s -> %s", got.SourceCode, got.TargetCode)
			}
			if got.Explanation == "" {
				t.Error("expected an explanation")
			}
		})
	}
}

// TestCreditBound checks 0 <= credit <= target amount over a grid of rates
func TestCreditBound(t *testing.T) {
	baseFee := dec("354.50")
	for source := -10; source <= 30; source++ {
		for target := 0; target <= 25; target++ {
			sourceRate := decimal.New(int64(source), -1)
			targetRate := decimal.New(int64(target), -1)
			got := Compute("2300", "3100", sourceRate, targetRate, baseFee)

			if got.CreditAmount.IsNegative() {
				t.Fatalf("negative credit for rates %s/%s: %s", sourceRate, targetRate, got.CreditAmount)
			}
			if got.CreditAmount.GreaterThan(got.TargetAmount) {
				t.Fatalf("credit %s exceeds target %s for rates %s/%s", got.CreditAmount, got.TargetAmount, sourceRate, targetRate)
			}
		}
	}
}

func TestMaxCreditRate(t *testing.T) {
	if !MaxCreditRate().Equal(dec("0.75")) {
		t.Errorf("expected 0.75, got %s", MaxCreditRate())
	}

	got := Compute("2300", "3100", dec("2.5"), dec("1.3"), dec("100"))
	if !got.CappedRate.Equal(MaxCreditRate()) {
		t.Errorf("expected capped rate %s, got %s", MaxCreditRate(), got.CappedRate)
	}
}
