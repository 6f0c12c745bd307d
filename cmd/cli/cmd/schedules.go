package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"rvg-calc/api"
	"rvg-calc/core/output"
)

var schedulesCmd = &cobra.Command{
	Use:   "schedules",
	Short: "List the registered fee table versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		schedules := api.ListSchedules()
		if format() == output.FormatJSON {
			return printJSON(schedules)
		}

		fmt.Printf("%-5s %-10s %-12s %-12s %s\n", "TABLE", "ID", "FROM", "UNTIL", "NAME")
		for _, s := range schedules {
			until := s.ValidTo
			if until == "" {
				until = "open"
			}
			fmt.Printf("%-5s %-10s %-12s %-12s %s\n", s.Table, s.ID, s.ValidFrom, until, s.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schedulesCmd)
}
