package cmd

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"rvg-calc/api"
	"rvg-calc/core/engine"
	"rvg-calc/core/output"
	apperrors "rvg-calc/internal/errors"
)

var (
	feeAmount  string
	feeRate    string
	feeDate    string
	feeCourt   bool
	feeReduced bool
)

var feeCmd = &cobra.Command{
	Use:   "fee",
	Short: "Look up a single fee in the attorney, court or legal-aid table",
	Long: `Look up rate x base fee for one disputed amount.

Examples:
  rvg-calc fee --amount 5000
  rvg-calc fee --amount 5000 --rate 1.3 --date 2024-01-01
  rvg-calc fee --amount 5000 --rate 3.0 --court
  rvg-calc fee --amount 5000 --reduced`,
	RunE: runFee,
}

func init() {
	rootCmd.AddCommand(feeCmd)

	feeCmd.Flags().StringVarP(&feeAmount, "amount", "a", "", "disputed amount in EUR (required)")
	feeCmd.Flags().StringVarP(&feeRate, "rate", "r", "1.0", "fee rate")
	feeCmd.Flags().StringVarP(&feeDate, "date", "d", "", "reference date YYYY-MM-DD (default today)")
	feeCmd.Flags().BoolVar(&feeCourt, "court", false, "use the GKG court fee table")
	feeCmd.Flags().BoolVar(&feeReduced, "reduced", false, "use the § 49 RVG legal-aid table")
	_ = feeCmd.MarkFlagRequired("amount")
}

func runFee(cmd *cobra.Command, args []string) error {
	if feeCourt && feeReduced {
		return apperrors.Input("--court and --reduced are mutually exclusive")
	}

	amount, err := decimal.NewFromString(feeAmount)
	if err != nil {
		return apperrors.Wrapf(apperrors.TypeInput, err, "invalid amount %q", feeAmount)
	}
	rate, err := decimal.NewFromString(feeRate)
	if err != nil {
		return apperrors.Wrapf(apperrors.TypeInput, err, "invalid rate %q", feeRate)
	}
	date, err := api.ParseDate(feeDate, time.Now())
	if err != nil {
		return err
	}

	table := engine.TableGeneral
	switch {
	case feeCourt:
		table = engine.TableCourt
	case feeReduced:
		table = engine.TableReduced
	}

	quote, err := engine.Quote(table, amount, rate, date)
	if err != nil {
		return err
	}

	if format() == output.FormatJSON {
		return printJSON(quote)
	}
	fmt.Printf("Table:     %s (%s)\n", quote.Table, quote.VersionID)
	fmt.Printf("Amount:    %s EUR\n", quote.DisputedAmount.StringFixed(2))
	if !quote.Applicable {
		if quote.VersionID == "" {
			fmt.Println("No legal-aid table exists for this date.")
		} else {
			fmt.Println("The legal-aid table does not apply to this amount.")
		}
		return nil
	}
	fmt.Printf("Base fee:  %s EUR\n", quote.BaseFee.StringFixed(2))
	fmt.Printf("Rate:      %s\n", quote.Rate.String())
	fmt.Printf("Fee:       %s EUR\n", quote.Fee.StringFixed(2))
	return nil
}
