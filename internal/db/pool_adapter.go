package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vvka-141/pgplan/pkg/pgplan"
)

// PoolAdapter adapts *pgxpool.Pool to the pgplan.DBConnection interface,
// keeping pgx-specific types out of the public API.
//
// Thread-Safety: safe for concurrent use (pgxpool.Pool is thread-safe).
type PoolAdapter struct {
	pool *pgxpool.Pool
}

// NewPoolAdapter wraps the given pool.
func NewPoolAdapter(pool *pgxpool.Pool) pgplan.DBConnection {
	return &PoolAdapter{pool: pool}
}

// Exec executes a query without returning any rows.
func (p *PoolAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.pool.Exec(ctx, sql, args...)
}

// QueryRow executes a query that is expected to return at most one row.
func (p *PoolAdapter) QueryRow(ctx context.Context, sql string, args ...any) pgplan.Row {
	return &rowAdapter{row: p.pool.QueryRow(ctx, sql, args...)}
}

// Acquire obtains a dedicated connection from the pool. The ledger uses
// this for advisory locks and transactional apply, which need
// connection affinity.
func (p *PoolAdapter) Acquire(ctx context.Context) (pgplan.PooledConnection, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	return &pooledConnAdapter{conn: conn}, nil
}

type rowAdapter struct {
	row interface{ Scan(...any) error }
}

func (r *rowAdapter) Scan(dest ...any) error {
	return r.row.Scan(dest...)
}

type pooledConnAdapter struct {
	conn *pgxpool.Conn
}

func (p *pooledConnAdapter) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.conn.Exec(ctx, sql, args...)
}

func (p *pooledConnAdapter) QueryRow(ctx context.Context, sql string, args ...any) pgplan.Row {
	return &rowAdapter{row: p.conn.QueryRow(ctx, sql, args...)}
}

func (p *pooledConnAdapter) Release() {
	p.conn.Release()
}

var _ pgplan.DBConnection = (*PoolAdapter)(nil)
var _ pgplan.PooledConnection = (*pooledConnAdapter)(nil)
