package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgplan/internal/retry"
	"github.com/vvka-141/pgplan/pkg/pgplan"
)

// TokenProvider abstracts cloud token acquisition for database
// authentication. The token is used as the PostgreSQL password.
type TokenProvider interface {
	// GetToken acquires a token and reports its expiry time.
	GetToken(ctx context.Context) (token string, expiresOn time.Time, err error)

	// String returns a description for logging. Must not include secrets.
	String() string
}

// AzurePostgreSQLScope is the OAuth scope for Azure Database for
// PostgreSQL token requests.
const AzurePostgreSQLScope = "https://ossrdbms-aad.database.windows.net/.default"

// TokenBasedConnector implements pgplan.Connector for providers that
// authenticate via short-lived tokens (AWS IAM, Azure Entra ID).
type TokenBasedConnector struct {
	config        *pgplan.ConnectionConfig
	tokenProvider TokenProvider
	retryExecutor *retry.Executor
	providerName  string
}

// NewTokenBasedConnector creates a connector backed by tokenProvider.
// providerName appears in error messages (e.g. "AWS IAM", "Azure").
func NewTokenBasedConnector(config *pgplan.ConnectionConfig, tokenProvider TokenProvider, providerName string) *TokenBasedConnector {
	return &TokenBasedConnector{
		config:        config,
		tokenProvider: tokenProvider,
		retryExecutor: newRetryExecutor(),
		providerName:  providerName,
	}
}

// Connect acquires a fresh token and establishes a connection pool.
// A new token is acquired on every retry so an expired token never
// blocks the retry loop.
func (c *TokenBasedConnector) Connect(ctx context.Context) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool

	err := c.retryExecutor.Execute(ctx, func(ctx context.Context) error {
		token, _, err := c.tokenProvider.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to acquire %s token: %w", c.providerName, err)
		}

		configWithToken := *c.config
		configWithToken.Password = token

		poolConfig, err := pgxpool.ParseConfig(BuildConnectionString(&configWithToken))
		if err != nil {
			return fmt.Errorf("failed to parse connection config: %w", err)
		}

		configurePool(poolConfig)

		pool, err = pgxpool.NewWithConfig(ctx, poolConfig)
		if err != nil {
			return wrapConnectionError(err, c.config)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return wrapConnectionError(err, c.config)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return pool, nil
}
