// Package cmd - calculate command
package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"rvg-calc/api"
	"rvg-calc/core/catalog"
	"rvg-calc/core/engine"
	"rvg-calc/core/output"
	"rvg-calc/internal/config"
	apperrors "rvg-calc/internal/errors"
	"rvg-calc/internal/logging"
)

var (
	calcAmount    string
	calcDate      string
	calcFile      string
	calcReduced   bool
	calcNoExpense bool
	calcNoVAT     bool
	calcNoCredit  bool
	calcNotes     bool
	calcRates     []string
	calcUnits     []string
	calcFixed     []string
	calcDays      []string
	calcParties   int
)

// calculateCmd represents the calculate command
var calculateCmd = &cobra.Command{
	Use:   "calculate [code...]",
	Short: "Calculate the fees for a list of VV RVG positions",
	Long: `Calculate attorney fees for one disputed amount.

Positions are resolved in the given order. The business fee (2300) is
credited against the procedural fee (3100) when both are present, and the
communication flat rate (7002) and VAT (7008) are appended automatically.

Per-position values use CODE=VALUE pairs. A request file (YAML or JSON)
holds the same data as the HTTP API's POST /calculate body.

Examples:
  rvg-calc calculate --amount 5000 3100 3104
  rvg-calc calculate --amount 5000 --rate 2300=1.8 2300 3100 3104
  rvg-calc calculate --amount 8000 --units 7003=120 --days 7005=1 3100 3104 7003 7005
  rvg-calc calculate --amount 5000 --parties 3 3100 1008
  rvg-calc calculate --file request.yaml --format json`,
	RunE: runCalculate,
}

func init() {
	rootCmd.AddCommand(calculateCmd)

	calculateCmd.Flags().StringVarP(&calcAmount, "amount", "a", "", "disputed amount in EUR")
	calculateCmd.Flags().StringVarP(&calcDate, "date", "d", "", "reference date YYYY-MM-DD (default today)")
	calculateCmd.Flags().StringVar(&calcFile, "file", "", "request file (.yaml, .yml or .json)")
	calculateCmd.Flags().BoolVar(&calcReduced, "reduced", false, "use the § 49 RVG legal-aid table")
	calculateCmd.Flags().BoolVar(&calcNoExpense, "no-expense", false, "do not append the communication flat rate")
	calculateCmd.Flags().BoolVar(&calcNoVAT, "no-vat", false, "do not append VAT")
	calculateCmd.Flags().BoolVar(&calcNoCredit, "no-credit", false, "do not credit the business fee")
	calculateCmd.Flags().BoolVar(&calcNotes, "notes", false, "show how every amount was derived")
	calculateCmd.Flags().StringArrayVar(&calcRates, "rate", nil, "rate override CODE=RATE")
	calculateCmd.Flags().StringArrayVar(&calcUnits, "units", nil, "units (km, pages) CODE=N")
	calculateCmd.Flags().StringArrayVar(&calcFixed, "fixed", nil, "caller amount CODE=EUR")
	calculateCmd.Flags().StringArrayVar(&calcDays, "days", nil, "absence days CODE=N")
	calculateCmd.Flags().IntVar(&calcParties, "parties", 0, "number of clients for 1008")
}

func runCalculate(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	req, err := buildRequest(args)
	if err != nil {
		return err
	}
	req.ReducedFees = req.ReducedFees || calcReduced || cfg.Calculation.ReducedFees
	req.SkipExpenseAutoAppend = req.SkipExpenseAutoAppend || calcNoExpense || !cfg.Calculation.AutoExpense
	req.SkipVATAutoAppend = req.SkipVATAutoAppend || calcNoVAT || !cfg.Calculation.AutoVAT
	req.SkipCreditDetection = req.SkipCreditDetection || calcNoCredit

	normalized, err := req.Normalize(time.Now())
	if err != nil {
		return err
	}

	logging.Debug("calculating",
		zap.String("amount", normalized.Amount.String()),
		zap.Time("date", normalized.Date),
		zap.Int("positions", len(normalized.Positions)),
		zap.Bool("reduced", normalized.ReducedFees),
	)
	result, err := engine.Calculate(normalized, engine.WithLogger(logging.Named("engine")))
	if err != nil {
		if engine.IsUnknownPosition(err) {
			return unknownPositionHint(err)
		}
		return err
	}

	formatter, err := output.DefaultRegistry(output.Options{
		ShowNotes:   calcNotes || cfg.Output.ShowNotes,
		ShowNotices: cfg.Output.ShowNotices,
	}).Get(format())
	if err != nil {
		return err
	}
	return formatter.Render(os.Stdout, result)
}

// buildRequest merges the request file, flags and positional codes
func buildRequest(codes []string) (*api.CalculateRequest, error) {
	req := &api.CalculateRequest{}
	if calcFile != "" {
		loaded, err := readRequestFile(calcFile)
		if err != nil {
			return nil, err
		}
		req = loaded
	}

	if calcAmount != "" {
		amount, err := decimal.NewFromString(calcAmount)
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.TypeInput, err, "invalid amount %q", calcAmount)
		}
		req.Amount = amount
	} else if calcFile == "" {
		return nil, apperrors.Input("--amount or --file is required")
	}
	if calcDate != "" {
		req.Date = calcDate
	}

	for _, code := range codes {
		req.Positions = append(req.Positions, engine.PositionRequest{Code: code})
	}
	if len(req.Positions) == 0 {
		return nil, apperrors.Input("no positions given")
	}

	return req, applyPositionFlags(req.Positions)
}

func readRequestFile(path string) (*api.CalculateRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.TypeInput, err, "reading request file %s", path)
	}

	var req api.CalculateRequest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &req)
	default:
		err = yaml.Unmarshal(data, &req)
	}
	if err != nil {
		return nil, apperrors.Parsing("parsing request file "+path, err)
	}
	return &req, nil
}

// applyPositionFlags copies CODE=VALUE flags onto every position with that code
func applyPositionFlags(positions []engine.PositionRequest) error {
	rates, err := parseDecimalPairs("rate", calcRates)
	if err != nil {
		return err
	}
	units, err := parseDecimalPairs("units", calcUnits)
	if err != nil {
		return err
	}
	fixed, err := parseDecimalPairs("fixed", calcFixed)
	if err != nil {
		return err
	}
	days, err := parseIntPairs("days", calcDays)
	if err != nil {
		return err
	}

	for i := range positions {
		p := &positions[i]
		code := strings.TrimSpace(p.Code)
		if v, ok := rates[code]; ok {
			p.Rate = &v
		}
		if v, ok := units[code]; ok {
			p.Units = v
		}
		if v, ok := fixed[code]; ok {
			p.FixedAmount = &v
		}
		if v, ok := days[code]; ok {
			p.Days = v
		}
		if calcParties > 0 {
			p.PartyCount = calcParties
		}
	}
	return nil
}

func splitPair(flag, pair string) (string, string, error) {
	code, value, ok := strings.Cut(pair, "=")
	if !ok || strings.TrimSpace(code) == "" {
		return "", "", apperrors.Newf(apperrors.TypeInput, "--%s expects CODE=VALUE, got %q", flag, pair)
	}
	return strings.TrimSpace(code), strings.TrimSpace(value), nil
}

func parseDecimalPairs(flag string, pairs []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(pairs))
	for _, pair := range pairs {
		code, value, err := splitPair(flag, pair)
		if err != nil {
			return nil, err
		}
		d, err := decimal.NewFromString(strings.ReplaceAll(value, ",", "."))
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.TypeInput, err, "--%s %s: invalid number %q", flag, code, value)
		}
		out[code] = d
	}
	return out, nil
}

func parseIntPairs(flag string, pairs []string) (map[string]int, error) {
	out := make(map[string]int, len(pairs))
	for _, pair := range pairs {
		code, value, err := splitPair(flag, pair)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, apperrors.Wrapf(apperrors.TypeInput, err, "--%s %s: invalid integer %q", flag, code, value)
		}
		out[code] = n
	}
	return out, nil
}

// unknownPositionHint adds close catalog matches to an unknown code error
func unknownPositionHint(err error) error {
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		return err
	}
	code, _ := domainErr.Context["code"].(string)
	if len(code) < 2 {
		return err
	}

	matches := catalog.Default().Search(code[:len(code)-1])
	if len(matches) == 0 {
		return err
	}
	suggestions := make([]string, 0, 5)
	for _, m := range matches {
		if len(suggestions) == 5 {
			break
		}
		suggestions = append(suggestions, m.Code)
	}
	return fmt.Errorf("%w (did you mean %s?)", err, strings.Join(suggestions, ", "))
}
