package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/vvka-141/pgplan/internal/checksum"
	"github.com/vvka-141/pgplan/internal/config"
	"github.com/vvka-141/pgplan/internal/db"
	"github.com/vvka-141/pgplan/internal/files/scanner"
	"github.com/vvka-141/pgplan/internal/ledger"
	"github.com/vvka-141/pgplan/internal/logging"
	"github.com/vvka-141/pgplan/internal/services"
	"github.com/vvka-141/pgplan/internal/tui"
	"github.com/vvka-141/pgplan/internal/tui/wizards"
	"github.com/vvka-141/pgplan/internal/ui"
	"github.com/vvka-141/pgplan/pkg/pgplan"
)

// runWizard is swapped out by tests; the real implementation starts the
// bubbletea connection wizard.
var runWizard = wizards.Run

// loadProjectConfig loads a .env file from the working directory, then
// the pgplan.yaml project file. A missing pgplan.yaml is not an error.
func loadProjectConfig(sourcePath string) (*config.ProjectConfig, error) {
	_ = godotenv.Load()

	projectCfg, err := config.Load(sourcePath)
	if err != nil {
		if errors.Is(err, config.ErrConfigNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load pgplan.yaml: %v: %w", err, pgplan.ErrInvalidConfig)
	}
	return projectCfg, nil
}

// resolveEffectiveTimeout prefers pgplan.yaml when --timeout wasn't set.
func resolveEffectiveTimeout(cmd *cobra.Command, projectCfg *config.ProjectConfig, flagTimeout time.Duration) (time.Duration, error) {
	if projectCfg != nil && projectCfg.Timeout != "" && !cmd.Flags().Changed("timeout") {
		parsed, err := time.ParseDuration(projectCfg.Timeout)
		if err != nil {
			return 0, fmt.Errorf("invalid timeout in pgplan.yaml: %v: %w", err, pgplan.ErrInvalidConfig)
		}
		return parsed, nil
	}
	return flagTimeout, nil
}

// buildDeployConfig resolves connection sources and assembles the
// DeployConfig shared by deploy, migrate and revert. When no target
// database can be determined and a human is at the terminal, the
// connection wizard fills the gap.
func buildDeployConfig(
	cmd *cobra.Command,
	sourcePath string,
	connFlags *connectionFlags,
	timeout time.Duration,
	dryRun bool,
) (pgplan.DeployConfig, error) {
	verbose := getVerboseFlag(cmd)

	projectCfg, err := loadProjectConfig(sourcePath)
	if err != nil {
		return pgplan.DeployConfig{}, err
	}

	resolved, err := resolveConnection(connFlags, projectCfg, os.Stdin)
	if err != nil {
		return pgplan.DeployConfig{}, err
	}

	if resolved.Config.Database == "" && !dryRun {
		if !tui.IsInteractive() {
			return pgplan.DeployConfig{}, fmt.Errorf("database name is required: provide -d/--database, a connection string, $PGDATABASE, or pgplan.yaml: %w", pgplan.ErrInvalidConfig)
		}
		result, err := runWizard(cmd.Context())
		if err != nil {
			return pgplan.DeployConfig{}, fmt.Errorf("connection wizard failed: %w", err)
		}
		if result.Cancelled {
			return pgplan.DeployConfig{}, fmt.Errorf("connection setup cancelled: %w", pgplan.ErrInvalidConfig)
		}
		if result.ConnString != "" {
			cfg, err := db.ParseConnectionString(result.ConnString)
			if err != nil {
				return pgplan.DeployConfig{}, err
			}
			resolved.Config = *cfg
			resolved.ConnString = result.ConnString
		} else {
			resolved.Config = result.Config
			resolved.ConnString = db.BuildConnectionString(&result.Config)
		}
	}

	effectiveTimeout, err := resolveEffectiveTimeout(cmd, projectCfg, timeout)
	if err != nil {
		return pgplan.DeployConfig{}, err
	}

	deployCfg := pgplan.DeployConfig{
		SourcePath:        sourcePath,
		DatabaseName:      resolved.Config.Database,
		ConnectionString:  resolved.ConnString,
		DryRun:            dryRun,
		Timeout:           effectiveTimeout,
		Verbose:           verbose,
		AuthMethod:        resolved.Config.AuthMethod,
		AzureTenantID:     resolved.Config.AzureTenantID,
		AzureClientID:     resolved.Config.AzureClientID,
		AzureClientSecret: resolved.Config.AzureClientSecret,
		AWSRegion:         resolved.Config.AWSRegion,
		GoogleInstance:    resolved.Config.GoogleInstance,
	}

	if verbose {
		logConnectionVerbose(&resolved.Config)
	}

	return deployCfg, nil
}

// newDeployService assembles the production service graph.
func newDeployService(approver pgplan.Approver, logger pgplan.Logger) *services.DeployService {
	return services.NewDeployService(
		db.NewConnector,
		func(conn pgplan.DBConnection, logger pgplan.Logger) services.Ledger {
			return ledger.NewPGLedger(conn, logger)
		},
		scanner.NewScanner(checksum.New()),
		approver,
		logger,
	)
}

// signalContext derives a context cancelled on SIGINT/SIGTERM so a
// Ctrl+C releases the advisory lock instead of abandoning it.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigChan:
			fmt.Fprintln(os.Stderr, "\n[INTERRUPT] Received interrupt signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigChan)
	}()

	return ctx, cancel
}

// logConnectionVerbose logs the resolved connection details.
func logConnectionVerbose(cfg *pgplan.ConnectionConfig) {
	fmt.Fprintf(os.Stderr, "[VERBOSE] Connection resolved:\n")
	fmt.Fprintf(os.Stderr, "  Host: %s\n", cfg.Host)
	fmt.Fprintf(os.Stderr, "  Port: %d\n", cfg.Port)
	fmt.Fprintf(os.Stderr, "  User: %s\n", cfg.Username)
	fmt.Fprintf(os.Stderr, "  Database: %s\n", cfg.Database)
	fmt.Fprintf(os.Stderr, "  SSL Mode: %s\n", cfg.SSLMode)
	fmt.Fprintf(os.Stderr, "  Auth Method: %s\n", cfg.AuthMethod)
	if cfg.GoogleInstance != "" {
		fmt.Fprintf(os.Stderr, "  Cloud SQL Instance: %s\n", cfg.GoogleInstance)
	}
	if cfg.AWSRegion != "" {
		fmt.Fprintf(os.Stderr, "  AWS Region: %s\n", cfg.AWSRegion)
	}
}

// newApprover picks the approver implementation for revert operations.
func newApprover(force bool) pgplan.Approver {
	if force {
		return ui.NewForcedApprover()
	}
	return ui.NewInteractiveApprover()
}

// newLogger builds the console logger for command output.
func newLogger(verbose bool) pgplan.Logger {
	return logging.NewConsoleLogger(verbose)
}
