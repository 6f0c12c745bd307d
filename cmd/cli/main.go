// Package main is the entry point for the rvg-calc CLI.
package main

import (
	"os"

	"rvg-calc/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
