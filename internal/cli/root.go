// Package cli wires the cobra command tree: flag parsing, connection
// resolution and construction of the deployment services.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pgplan",
	Short: "Dependency-ordered deployment of derived SQL objects",
	Long: `pgplan scans a corpus of SQL sources, reads @@name@@ dependency markers,
and deploys views and other derived objects in dependency order. Plain
migrations run first through a checksummed, advisory-locked ledger.

Corpus layout:
  tables/        table definitions (registered, never executed)
  views/         derived objects with @@name@@ markers
  migrations/    NNNN_name.sql forward scripts, NNNN_name.down.sql reverse

Exit Codes:
  0  - Success
  1  - General error
  2  - CLI usage error (invalid arguments or flags)
  3  - Panic or unexpected system error
  10 - Invalid configuration
  11 - Database connection failed
  12 - User denied revert approval
  13 - SQL execution failed
  14 - Invalid corpus or planning error
  15 - Migration order error`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		printVersionInfo()
		return nil
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output for all commands")
}

// getVerboseFlag safely retrieves the verbose flag value.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to get verbose flag: %v\n", err)
		return false
	}
	return verbose
}
