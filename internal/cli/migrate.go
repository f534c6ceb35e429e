package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate <source_path>",
	Short: "Apply pending migrations without deploying derived objects",
	Long: `Migrate runs the ledger sweep only: pending migration steps are applied
in ascending sequence order under the advisory lock, already-applied
steps are skipped. Derived objects under views/ are left untouched.

Examples:
  pgplan migrate ./corpus -d mydb
  pgplan migrate ./corpus -d mydb --dry-run`,
	Args: RequireSourcePath,
	RunE: runMigrate,
}

type migrateFlagValues struct {
	conn    connectionFlags
	dryRun  bool
	timeout time.Duration
}

var migrateFlags migrateFlagValues

func init() {
	rootCmd.AddCommand(migrateCmd)

	registerConnectionFlags(migrateCmd, &migrateFlags.conn)
	migrateCmd.Flags().BoolVar(&migrateFlags.dryRun, "dry-run", false,
		"Print the steps that would be applied without connecting")
	migrateCmd.Flags().DurationVar(&migrateFlags.timeout, "timeout", 3*time.Minute,
		"Overall timeout, protection against hangs (default 3m)")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	config, err := buildDeployConfig(cmd, args[0], &migrateFlags.conn, migrateFlags.timeout, migrateFlags.dryRun)
	if err != nil {
		return err
	}

	logger := newLogger(config.Verbose)
	svc := newDeployService(newApprover(false), logger)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if err := svc.Migrate(ctx, config); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
