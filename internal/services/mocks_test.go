package services

import (
	"context"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vvka-141/pgplan/pkg/pgplan"
)

// fakeConn records executed statements and can be told to fail.
type fakeConn struct {
	mu       sync.Mutex
	executed []string
	failOn   string // statement substring that triggers an error
	err      error
}

func (c *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failOn != "" && strings.Contains(sql, c.failOn) {
		return pgconn.CommandTag{}, c.err
	}
	c.executed = append(c.executed, sql)
	return pgconn.CommandTag{}, nil
}

func (c *fakeConn) QueryRow(_ context.Context, _ string, _ ...any) pgplan.Row {
	return fakeRow{}
}

func (c *fakeConn) Acquire(_ context.Context) (pgplan.PooledConnection, error) {
	return fakePooledConn{c}, nil
}

type fakeRow struct{}

func (fakeRow) Scan(...any) error { return nil }

type fakePooledConn struct{ conn *fakeConn }

func (p fakePooledConn) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return p.conn.Exec(ctx, sql, args...)
}

func (p fakePooledConn) QueryRow(ctx context.Context, sql string, args ...any) pgplan.Row {
	return p.conn.QueryRow(ctx, sql, args...)
}

func (p fakePooledConn) Release() {}

// stubApprover answers every approval request with a fixed verdict.
type stubApprover struct {
	approve  bool
	err      error
	subjects []string
}

func (a *stubApprover) RequestApproval(_ context.Context, subject string) (bool, error) {
	a.subjects = append(a.subjects, subject)
	return a.approve, a.err
}
