package services

import (
	"context"
	"fmt"

	"github.com/vvka-141/pgplan/internal/db"
	"github.com/vvka-141/pgplan/internal/preprocessor"
	"github.com/vvka-141/pgplan/pkg/pgplan"
)

// Ledger is the migration ledger as the deployer needs it: the public
// apply/revert contract plus schema bootstrap and mutual exclusion.
type Ledger interface {
	pgplan.Ledger

	// EnsureSchema creates the applied-state table if missing.
	EnsureSchema(ctx context.Context) error

	// AcquireLock blocks until this run holds the deployment lock.
	// The returned function releases it.
	AcquireLock(ctx context.Context) (func(), error)
}

// LedgerFactory builds a Ledger over an established connection.
type LedgerFactory func(conn pgplan.DBConnection, logger pgplan.Logger) Ledger

// connectFunc establishes a database connection for a deployment and
// returns it with a cleanup function.
type connectFunc func(ctx context.Context, connConfig *pgplan.ConnectionConfig) (pgplan.DBConnection, func(), error)

// DeployService implements the Deployer interface.
// Thread-Safety: NOT safe for concurrent Deploy() calls on the same
// instance; create separate instances for concurrent deployments.
type DeployService struct {
	connectorFactory func(*pgplan.ConnectionConfig) (pgplan.Connector, error)
	ledgerFactory    LedgerFactory
	scanner          pgplan.CorpusScanner
	planner          *PlanService
	approver         pgplan.Approver
	logger           pgplan.Logger
	connect          connectFunc
}

// NewDeployService creates a DeployService with all dependencies
// injected. Panics on nil dependencies: those are programmer errors
// that should fail loudly at startup, not surface as nil dereferences
// mid-deployment.
func NewDeployService(
	connectorFactory func(*pgplan.ConnectionConfig) (pgplan.Connector, error),
	ledgerFactory LedgerFactory,
	scanner pgplan.CorpusScanner,
	approver pgplan.Approver,
	logger pgplan.Logger,
) *DeployService {
	if connectorFactory == nil {
		panic("connectorFactory cannot be nil")
	}
	if ledgerFactory == nil {
		panic("ledgerFactory cannot be nil")
	}
	if scanner == nil {
		panic("scanner cannot be nil")
	}
	if approver == nil {
		panic("approver cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}

	svc := &DeployService{
		connectorFactory: connectorFactory,
		ledgerFactory:    ledgerFactory,
		scanner:          scanner,
		planner:          NewPlanService(),
		approver:         approver,
		logger:           logger,
	}
	svc.connect = svc.defaultConnect
	return svc
}

func (s *DeployService) defaultConnect(ctx context.Context, connConfig *pgplan.ConnectionConfig) (pgplan.DBConnection, func(), error) {
	connector, err := s.connectorFactory(connConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connector: %w", err)
	}

	pool, err := connector.Connect(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to target database: %w", err)
	}

	return db.NewPoolAdapter(pool), pool.Close, nil
}

// Deploy executes the full workflow: plan pre-flight, migration sweep,
// then derived-object creation in dependency order. Nothing is deployed
// on any planning error.
func (s *DeployService) Deploy(ctx context.Context, config pgplan.DeployConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	if config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, config.Timeout)
		defer cancel()
	}

	s.logger.Verbose("Scanning corpus at %s", config.SourcePath)
	corpus, err := s.scanner.ScanCorpus(config.SourcePath)
	if err != nil {
		return err
	}

	steps, err := s.scanner.ScanMigrations(config.SourcePath)
	if err != nil {
		return err
	}

	// Planning happens before any connection is opened.
	result, err := s.planner.PlanCorpus(corpus)
	if err != nil {
		return err
	}
	s.logger.Verbose("Planned %d derived objects, %d migration steps", len(result.Plan), len(steps))

	if config.DryRun {
		s.reportDryRun(result, steps, config)
		return nil
	}

	conn, cleanup, err := s.connectFor(ctx, config)
	if err != nil {
		return err
	}
	defer cleanup()

	ledger := s.ledgerFactory(conn, s.logger)
	if err := ledger.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to prepare migration ledger: %w", err)
	}

	release, err := ledger.AcquireLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire deployment lock: %w", err)
	}
	defer release()

	if !config.SkipMigrations {
		if err := s.sweep(ctx, ledger, steps); err != nil {
			return err
		}
	}

	if err := s.createObjects(ctx, conn, result); err != nil {
		return err
	}

	s.logger.Info("✓ Deployment completed successfully")
	return nil
}

// Migrate runs the ledger sweep only, leaving derived objects alone.
func (s *DeployService) Migrate(ctx context.Context, config pgplan.DeployConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	steps, err := s.scanner.ScanMigrations(config.SourcePath)
	if err != nil {
		return err
	}

	if config.DryRun {
		for _, step := range steps {
			s.logger.Info("would apply %04d_%s", step.Sequence, step.Name)
		}
		return nil
	}

	conn, cleanup, err := s.connectFor(ctx, config)
	if err != nil {
		return err
	}
	defer cleanup()

	ledger := s.ledgerFactory(conn, s.logger)
	if err := ledger.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to prepare migration ledger: %w", err)
	}

	release, err := ledger.AcquireLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire deployment lock: %w", err)
	}
	defer release()

	return s.sweep(ctx, ledger, steps)
}

// Revert undoes one applied migration step after approval.
func (s *DeployService) Revert(ctx context.Context, config pgplan.DeployConfig, sequence int) error {
	if err := config.Validate(); err != nil {
		return err
	}

	subject := fmt.Sprintf("revert migration step %d on database %q", sequence, config.DatabaseName)
	approved, err := s.approver.RequestApproval(ctx, subject)
	if err != nil {
		return fmt.Errorf("approval failed: %w", err)
	}
	if !approved {
		return fmt.Errorf("revert of step %d: %w", sequence, pgplan.ErrApprovalDenied)
	}

	conn, cleanup, err := s.connectFor(ctx, config)
	if err != nil {
		return err
	}
	defer cleanup()

	ledger := s.ledgerFactory(conn, s.logger)
	if err := ledger.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("failed to prepare migration ledger: %w", err)
	}

	release, err := ledger.AcquireLock(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire deployment lock: %w", err)
	}
	defer release()

	if err := ledger.Revert(ctx, sequence); err != nil {
		return err
	}

	s.logger.Info("✓ Reverted migration step %d", sequence)
	return nil
}

// connectFor resolves the connection configuration from the deploy
// config and establishes the connection.
func (s *DeployService) connectFor(ctx context.Context, config pgplan.DeployConfig) (pgplan.DBConnection, func(), error) {
	connConfig, err := db.ParseConnectionString(config.ConnectionString)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", pgplan.ErrInvalidConfig, err)
	}

	if config.DatabaseName != "" {
		connConfig.Database = config.DatabaseName
	}
	connConfig.AuthMethod = config.AuthMethod
	connConfig.AzureTenantID = config.AzureTenantID
	connConfig.AzureClientID = config.AzureClientID
	connConfig.AzureClientSecret = config.AzureClientSecret
	connConfig.AWSRegion = config.AWSRegion
	connConfig.GoogleInstance = config.GoogleInstance

	return s.connect(ctx, connConfig)
}

// sweep applies pending migration steps in ascending sequence order.
// Already-applied steps are skipped by the ledger itself.
func (s *DeployService) sweep(ctx context.Context, ledger Ledger, steps []pgplan.MigrationStep) error {
	for _, step := range steps {
		if err := ledger.Apply(ctx, step); err != nil {
			return err
		}
	}
	return nil
}

// createObjects executes each planned definition in order, with
// dependency markers erased.
func (s *DeployService) createObjects(ctx context.Context, conn pgplan.DBConnection, result *PlanResult) error {
	for _, name := range result.Plan {
		src := result.Sources[name]
		statement := preprocessor.EraseMarkers(src.Content)

		s.logger.Verbose("Creating %s (%s)", name, src.Path)
		if _, err := conn.Exec(ctx, statement); err != nil {
			return fmt.Errorf("failed to create %s (%s): %w (%w)",
				name, src.Path, pgplan.ErrExecutionFailed, err)
		}
	}

	s.logger.Info("Created %d derived objects", len(result.Plan))
	return nil
}

func (s *DeployService) reportDryRun(result *PlanResult, steps []pgplan.MigrationStep, config pgplan.DeployConfig) {
	if !config.SkipMigrations {
		for _, step := range steps {
			s.logger.Info("would apply %04d_%s", step.Sequence, step.Name)
		}
	}
	for _, name := range result.Plan {
		s.logger.Info("would create %s", name)
	}
}

var _ pgplan.Deployer = (*DeployService)(nil)
