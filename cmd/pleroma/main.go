package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pleroma",
		Short: "Pleroma actor runtime",
		Long:  "Run a Pleroma node: single-threaded vats scheduled across a burner pool, routed over a reliable transport",
	}

	rootCmd.AddCommand(startCmd())
	rootCmd.AddCommand(testCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
