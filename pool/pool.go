package pool

import (
	"context"
	"database/sql"
	"time"
)

// Pool defines the interface of a live database handle held by the registry.
type Pool interface {
	Close() error
	SetMaxIdleConns(n int)
	SetConnMaxLifetime(d time.Duration)
	PingContext(ctx context.Context) error
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	Driver() string
}

// StdPool is an implementation of Pool using the standard library's *sql.DB.
// It is limited to a single open session, so that every statement issued
// under one connection name sees the same session state (this matters for
// SQLite in-memory databases and session variables).
type StdPool struct {
	*sql.DB
	driver string
}

// Open opens a handle for the given database/sql driver name and DSN. No
// session is established until the first statement or Ping.
func Open(driver, dsn string) (*StdPool, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	return NewStdPool(db, driver), nil
}

// NewStdPool creates a new StdPool wrapping the given *sql.DB.
func NewStdPool(db *sql.DB, driver string) *StdPool {
	db.SetMaxOpenConns(1)
	return &StdPool{DB: db, driver: driver}
}

// Driver returns the database/sql driver name the handle was opened with.
func (p *StdPool) Driver() string {
	return p.driver
}
