package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"rvg-calc/core/catalog"
	"rvg-calc/core/output"
)

var positionsCmd = &cobra.Command{
	Use:   "positions [query]",
	Short: "Search the VV RVG position catalog",
	Long: `List catalog positions whose code or name contains the query.

Without a query every position is listed in code order.

Examples:
  rvg-calc positions
  rvg-calc positions 31
  rvg-calc positions terminsgebühr --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := ""
		if len(args) == 1 {
			query = args[0]
		}
		positions := catalog.Default().Search(query)

		if format() == output.FormatJSON {
			return printJSON(positions)
		}
		if len(positions) == 0 {
			fmt.Printf("No positions match %q\n", query)
			return nil
		}

		fmt.Printf("%-6s %-14s %-9s %s\n", "CODE", "FAMILY", "RATE", "NAME")
		fmt.Println(strings.Repeat("─", 75))
		for _, p := range positions {
			fmt.Printf("%-6s %-14s %-9s %s\n", p.Code, p.Family, rateLabel(p), p.Name)
		}
		fmt.Printf("\n%d position(s)\n", len(positions))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(positionsCmd)
}

func rateLabel(p catalog.PositionDefinition) string {
	if p.DefaultRate.IsZero() {
		return "-"
	}
	if p.MinRate != nil && p.MaxRate != nil {
		return p.MinRate.String() + "-" + p.MaxRate.String()
	}
	return p.DefaultRate.String()
}
