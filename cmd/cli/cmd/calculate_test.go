package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"rvg-calc/core/engine"
	apperrors "rvg-calc/internal/errors"
)

func resetCalcFlags() {
	calcAmount, calcDate, calcFile = "", "", ""
	calcRates, calcUnits, calcFixed, calcDays = nil, nil, nil, nil
	calcParties = 0
}

func TestParseDecimalPairs(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{name: "dot", pairs: []string{"2300=1.8"}, want: map[string]string{"2300": "1.8"}},
		{name: "comma", pairs: []string{" 2300 = 1,5 "}, want: map[string]string{"2300": "1.5"}},
		{name: "missing separator", pairs: []string{"2300"}, wantErr: true},
		{name: "missing code", pairs: []string{"=1.3"}, wantErr: true},
		{name: "not a number", pairs: []string{"2300=viel"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseDecimalPairs("rate", tt.pairs)
			if tt.wantErr {
				if !apperrors.IsType(err, apperrors.TypeInput) {
					t.Fatalf("expected input error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			for code, value := range tt.want {
				if !got[code].Equal(decimal.RequireFromString(value)) {
					t.Errorf("%s: expected %s, got %s", code, value, got[code])
				}
			}
		})
	}
}

func TestBuildRequestFromFlags(t *testing.T) {
	resetCalcFlags()
	defer resetCalcFlags()

	calcAmount = "5000"
	calcRates = []string{"2300=1.5"}
	calcUnits = []string{"7003=120"}
	calcParties = 3

	req, err := buildRequest([]string{"2300", "3100", "7003", "1008"})
	if err != nil {
		t.Fatal(err)
	}
	if !req.Amount.Equal(decimal.NewFromInt(5000)) || len(req.Positions) != 4 {
		t.Fatalf("unexpected request %+v", req)
	}
	if r := req.Positions[0].Rate; r == nil || !r.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("expected rate override on 2300, got %v", r)
	}
	if req.Positions[1].Rate != nil {
		t.Error("expected no rate override on 3100")
	}
	if !req.Positions[2].Units.Equal(decimal.NewFromInt(120)) {
		t.Errorf("expected 120 km, got %s", req.Positions[2].Units)
	}
	if req.Positions[3].PartyCount != 3 {
		t.Errorf("expected 3 parties, got %d", req.Positions[3].PartyCount)
	}
}

func TestBuildRequestRequiresInput(t *testing.T) {
	resetCalcFlags()
	defer resetCalcFlags()

	if _, err := buildRequest([]string{"3100"}); !apperrors.IsType(err, apperrors.TypeInput) {
		t.Errorf("expected missing amount error, got %v", err)
	}
	calcAmount = "5000"
	if _, err := buildRequest(nil); !apperrors.IsType(err, apperrors.TypeInput) {
		t.Errorf("expected missing positions error, got %v", err)
	}
}

func TestBuildRequestFromFile(t *testing.T) {
	resetCalcFlags()
	defer resetCalcFlags()

	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "request.yaml")
	if err := os.WriteFile(yamlPath, []byte(`amount: 5000
date: "2025-07-01"
positions:
  - code: "2300"
    rate: "1.5"
  - code: "3100"
skip_vat_auto_append: true
`), 0o644); err != nil {
		t.Fatal(err)
	}

	calcFile = yamlPath
	calcFixed = []string{"7000=12.40"}
	req, err := buildRequest([]string{"7000"})
	if err != nil {
		t.Fatal(err)
	}
	if !req.SkipVATAutoAppend || req.Date != "2025-07-01" || len(req.Positions) != 3 {
		t.Fatalf("unexpected request %+v", req)
	}
	if r := req.Positions[0].Rate; r == nil || !r.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("expected inline yaml rate, got %v", r)
	}
	if f := req.Positions[2].FixedAmount; f == nil || !f.Equal(decimal.RequireFromString("12.40")) {
		t.Errorf("expected fixed amount from flag, got %v", f)
	}

	normalized, err := req.Normalize(time.Now())
	if err != nil {
		t.Fatal(err)
	}
	result, err := engine.Calculate(normalized)
	if err != nil {
		t.Fatal(err)
	}
	if result.Credit == nil {
		t.Error("expected credit between 2300 and 3100")
	}

	jsonPath := filepath.Join(dir, "broken.json")
	_ = os.WriteFile(jsonPath, []byte(`{"amount":`), 0o644)
	calcFile = jsonPath
	if _, err := buildRequest(nil); !apperrors.IsType(err, apperrors.TypeParsing) {
		t.Errorf("expected parsing error, got %v", err)
	}
}
