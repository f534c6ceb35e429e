package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgplan/internal/retry"
	"github.com/vvka-141/pgplan/pkg/pgplan"
)

const (
	// DefaultMaxConns limits concurrent connections during deployments.
	DefaultMaxConns = 5

	// DefaultMinConns keeps at least one connection warm in the pool.
	DefaultMinConns = 1

	// DefaultMaxConnIdleTime avoids reconnection overhead during long
	// deployments.
	DefaultMaxConnIdleTime = 30 * time.Minute
)

func configurePool(poolConfig *pgxpool.Config) {
	poolConfig.MaxConns = DefaultMaxConns
	poolConfig.MinConns = DefaultMinConns
	poolConfig.MaxConnIdleTime = DefaultMaxConnIdleTime
}

func newRetryExecutor() *retry.Executor {
	classifier := retry.NewPostgreSQLErrorClassifier()
	strategy := retry.NewExponentialBackoff(pgplan.DefaultRetryMaxAttempts,
		retry.WithInitialDelay(pgplan.DefaultRetryInitialDelay),
		retry.WithMaxDelay(pgplan.DefaultRetryMaxDelay),
	)
	return retry.NewExecutor(classifier, strategy)
}

// StandardConnector implements pgplan.Connector for username/password
// authentication with automatic retry on transient failures.
type StandardConnector struct {
	config        *pgplan.ConnectionConfig
	retryExecutor *retry.Executor
}

// NewStandardConnector creates a connector using standard credentials.
func NewStandardConnector(config *pgplan.ConnectionConfig) *StandardConnector {
	return &StandardConnector{
		config:        config,
		retryExecutor: newRetryExecutor(),
	}
}

// Connect establishes a connection pool, retrying transient failures.
func (c *StandardConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	return connectWithRetry(ctx, c.retryExecutor, c.config, BuildConnectionString(c.config))
}

// connectWithRetry parses connStr, builds the pool and verifies it with
// a ping, using executor to retry transient failures.
func connectWithRetry(ctx context.Context, executor *retry.Executor, config *pgplan.ConnectionConfig, connStr string) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := executor.Execute(ctx, func(ctx context.Context) error {
		poolConfig, err := pgxpool.ParseConfig(connStr)
		if err != nil {
			return fmt.Errorf("failed to parse connection config: %w", err)
		}

		configurePool(poolConfig)

		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, config)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return wrapConnectionError(err, config)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return pool, nil
}

// NewConnector selects the Connector implementation matching the
// config's AuthMethod.
func NewConnector(config *pgplan.ConnectionConfig) (pgplan.Connector, error) {
	switch config.AuthMethod {
	case pgplan.AuthMethodStandard:
		return NewStandardConnector(config), nil
	case pgplan.AuthMethodAWSIAM:
		return newAWSConnector(config)
	case pgplan.AuthMethodGoogleIAM:
		return newGoogleConnector(config)
	case pgplan.AuthMethodAzureEntraID:
		return newAzureConnector(config)
	default:
		return nil, fmt.Errorf("unsupported auth method %v: %w", config.AuthMethod, pgplan.ErrUnsupportedAuthMethod)
	}
}

// wrapConnectionError attaches actionable hints to raw pgx connection
// errors, and ties them to ErrConnectionFailed for exit-code mapping.
func wrapConnectionError(err error, config *pgplan.ConnectionConfig) error {
	errStr := strings.ToLower(err.Error())
	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	var hint string
	switch {
	case strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "actively refused"):
		hint = fmt.Sprintf("connection refused to %s; check that PostgreSQL is running (pg_isready -h %s -p %d) and that the host and port are correct",
			addr, config.Host, config.Port)
	case strings.Contains(errStr, "no such host"):
		hint = fmt.Sprintf("cannot resolve host %q; check the spelling and DNS configuration", config.Host)
	case strings.Contains(errStr, "password authentication failed"):
		hint = fmt.Sprintf("password authentication failed for database %q; check the username and password ($PGPASSWORD or ~/.pgpass)", config.Database)
	case strings.Contains(errStr, "does not exist"):
		hint = fmt.Sprintf("database %q does not exist; create it with: createdb %s", config.Database, config.Database)
	case strings.Contains(errStr, "timeout") || strings.Contains(errStr, "timed out"):
		hint = fmt.Sprintf("connection timed out to %s; the server may be unreachable or a firewall may be dropping packets", addr)
	case strings.Contains(errStr, "ssl") || strings.Contains(errStr, "tls"):
		hint = "SSL/TLS negotiation failed; check the sslmode setting against the server's requirements"
	case strings.Contains(errStr, "too many connections"):
		hint = fmt.Sprintf("too many connections to database %q; the server's max_connections limit may be reached", config.Database)
	}

	if hint != "" {
		return fmt.Errorf("%s: %w (%w)", hint, pgplan.ErrConnectionFailed, err)
	}
	return fmt.Errorf("failed to connect to database: %w (%w)", pgplan.ErrConnectionFailed, err)
}

// newAWSConnector wires the AWS RDS IAM token provider into a
// token-based connector.
func newAWSConnector(config *pgplan.ConnectionConfig) (pgplan.Connector, error) {
	endpoint := fmt.Sprintf("%s:%d", config.Host, config.Port)

	tokenProvider, err := NewAWSIAMTokenProvider(endpoint, config.AWSRegion, config.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS IAM token provider: %w", err)
	}

	return NewTokenBasedConnector(config, tokenProvider, "AWS IAM"), nil
}

// newGoogleConnector creates a Cloud SQL connector for Google IAM auth.
func newGoogleConnector(config *pgplan.ConnectionConfig) (pgplan.Connector, error) {
	if config.GoogleInstance == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires an instance connection name (project:region:instance)")
	}
	if config.Username == "" {
		return nil, fmt.Errorf("Google Cloud SQL IAM auth requires a username")
	}

	return NewGoogleCloudSQLConnector(config, config.GoogleInstance), nil
}

// newAzureConnector wires an Azure Entra ID token provider into a
// token-based connector. Explicit tenant/client/secret selects Service
// Principal auth; otherwise the default credential chain is used.
func newAzureConnector(config *pgplan.ConnectionConfig) (pgplan.Connector, error) {
	var tokenProvider TokenProvider
	var err error

	if config.AzureTenantID != "" && config.AzureClientID != "" && config.AzureClientSecret != "" {
		tokenProvider, err = NewAzureServicePrincipalProvider(
			config.AzureTenantID,
			config.AzureClientID,
			config.AzureClientSecret,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Service Principal provider: %w", err)
		}
	} else {
		tokenProvider, err = NewAzureDefaultCredentialProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to create Azure Default Credential provider: %w", err)
		}
	}

	return NewTokenBasedConnector(config, tokenProvider, "Azure"), nil
}
