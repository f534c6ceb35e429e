package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

var revertCmd = &cobra.Command{
	Use:   "revert <source_path> <sequence>",
	Short: "Revert one applied migration step",
	Long: `Revert runs the reverse script of the applied step with the given
sequence number and removes its ledger record. The operation requires
interactive approval; --force replaces the prompt with a countdown for
unattended use.

Examples:
  pgplan revert ./corpus 3 -d mydb
  pgplan revert ./corpus 3 -d mydb --force`,
	Args: revertArgs,
	RunE: runRevert,
}

type revertFlagValues struct {
	conn    connectionFlags
	force   bool
	timeout time.Duration
}

var revertFlags revertFlagValues

func init() {
	rootCmd.AddCommand(revertCmd)

	registerConnectionFlags(revertCmd, &revertFlags.conn)
	revertCmd.Flags().BoolVar(&revertFlags.force, "force", false,
		"Skip the interactive approval prompt (countdown approver)\n"+
			"Use for CI/CD pipelines")
	revertCmd.Flags().DurationVar(&revertFlags.timeout, "timeout", 3*time.Minute,
		"Overall timeout, protection against hangs (default 3m)")
}

func revertArgs(cmd *cobra.Command, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf(`expected <source_path> and <sequence>

Usage: %s

Example:
  pgplan revert ./corpus 3 -d mydb`, cmd.UseLine())
	}
	if _, err := parseSequence(args[1]); err != nil {
		return err
	}
	return nil
}

func parseSequence(arg string) (int, error) {
	seq, err := strconv.Atoi(arg)
	if err != nil || seq <= 0 {
		return 0, fmt.Errorf("sequence must be a positive integer, got %q", arg)
	}
	return seq, nil
}

func runRevert(cmd *cobra.Command, args []string) error {
	sequence, err := parseSequence(args[1])
	if err != nil {
		return err
	}

	config, err := buildDeployConfig(cmd, args[0], &revertFlags.conn, revertFlags.timeout, false)
	if err != nil {
		return err
	}
	config.Force = revertFlags.force

	logger := newLogger(config.Verbose)
	svc := newDeployService(newApprover(revertFlags.force), logger)

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	if err := svc.Revert(ctx, config, sequence); err != nil {
		return fmt.Errorf("revert failed: %w", err)
	}
	return nil
}
