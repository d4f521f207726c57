package core

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/shrek82/namedsql/dialect"
	"github.com/shrek82/namedsql/logger"
	"github.com/shrek82/namedsql/pool"
)

// Registry owns the mapping from connection names to open handles. It is
// the only place handles are created and closed.
//
// Registry methods are safe to call from several goroutines, but callers
// must not close or replace a name while statements are running against it.
type Registry struct {
	emitter
	errorState
	loggerState

	mu    sync.RWMutex
	conns map[string]*connection
	caps  *dialect.Capabilities
	opts  Options
}

type connection struct {
	config  ConnectionConfig
	dialect dialect.Dialect
	handle  pool.Pool
}

// NewRegistry probes the linked database/sql drivers once and returns an
// empty registry. opts may be nil.
func NewRegistry(opts *Options) *Registry {
	return newRegistry(dialect.Probe(), opts)
}

func newRegistry(caps *dialect.Capabilities, opts *Options) *Registry {
	r := &Registry{
		conns: make(map[string]*connection),
		caps:  caps,
	}
	r.SetLogger(defaultLogger())
	if opts != nil {
		r.opts = *opts
	}
	return r
}

func defaultLogger() logger.Logger {
	l := logger.NewStdLogger()
	l.SetLevel(logger.LogLevelWarn)
	return l
}

// loggerState holds a component's logger. SetLogger may be called while
// the component is in use.
type loggerState struct {
	logMu sync.RWMutex
	l     logger.Logger
}

// SetLogger sets a custom logger.
func (s *loggerState) SetLogger(l logger.Logger) {
	s.logMu.Lock()
	s.l = l
	s.logMu.Unlock()
}

func (s *loggerState) log() logger.Logger {
	s.logMu.RLock()
	defer s.logMu.RUnlock()
	return s.l
}

// Capabilities returns the driver table computed when the registry was
// created.
func (r *Registry) Capabilities() *dialect.Capabilities {
	return r.caps
}

// AvailableDrivers returns the database/sql names of drivers that can be
// opened in this process.
func (r *Registry) AvailableDrivers() []string {
	return r.caps.SupportedDrivers()
}

// Open establishes a session for cfg and installs it under cfg.Name. Any
// handle already registered under that name is closed first. On failure
// the name has no entry afterwards.
func (r *Registry) Open(ctx context.Context, cfg ConnectionConfig) error {
	driverName, err := r.caps.Validate(cfg.Driver)
	if err != nil {
		r.fail(cfg.Name, err)
		return err
	}
	if err := cfg.Validate(); err != nil {
		r.fail(cfg.Name, err)
		return err
	}

	r.mu.Lock()
	old := r.conns[cfg.Name]
	delete(r.conns, cfg.Name)
	r.mu.Unlock()
	if old != nil {
		r.closeHandle(cfg.Name, old, CloseRequested)
	}

	d := dialect.For(driverName)
	p, err := r.connect(ctx, driverName, d.DSN(cfg.connParams()))
	if err != nil {
		err = fmt.Errorf("%w: connection %q (%s): %w", ErrConnectFailed, cfg.Name, cfg.Driver, err)
		r.fail(cfg.Name, err)
		r.emit(Event{Kind: EventClosed, Connection: cfg.Name, Reason: CloseError, Message: err.Error()})
		return err
	}

	conn := &connection{config: cfg, dialect: d, handle: p}
	conn.config.Params = cfg.connParams().Params

	r.mu.Lock()
	raced := r.conns[cfg.Name]
	r.conns[cfg.Name] = conn
	r.mu.Unlock()
	if raced != nil {
		r.closeHandle(cfg.Name, raced, CloseRequested)
	}

	r.set("")
	r.log().Info("connection %q is open (%s)", cfg.Name, driverName)
	r.emit(Event{Kind: EventConnected, Connection: cfg.Name, Handle: p})
	return nil
}

func (r *Registry) connect(ctx context.Context, driverName, dsn string) (pool.Pool, error) {
	p, err := pool.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	if r.opts.MaxIdleConns > 0 {
		p.SetMaxIdleConns(r.opts.MaxIdleConns)
	}
	if r.opts.ConnMaxLifetime > 0 {
		p.SetConnMaxLifetime(r.opts.ConnMaxLifetime)
	}

	if r.opts.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.ConnectTimeout)
		defer cancel()
	}
	if err := p.PingContext(ctx); err != nil {
		_ = p.Close()
		return nil, err
	}
	return p, nil
}

// Close closes and removes the handle registered under name. Closing a
// name that is not open does nothing.
func (r *Registry) Close(name string) {
	r.mu.Lock()
	conn := r.conns[name]
	delete(r.conns, name)
	r.mu.Unlock()

	r.set("")
	if conn == nil {
		return
	}
	r.closeHandle(name, conn, CloseRequested)
}

// Remove drops name from the registry. It is equivalent to Close.
func (r *Registry) Remove(name string) {
	r.Close(name)
}

// CloseAll closes every registered handle.
func (r *Registry) CloseAll() {
	for _, name := range r.ConnectionNames() {
		r.Close(name)
	}
}

func (r *Registry) closeHandle(name string, conn *connection, reason CloseReason) {
	if err := conn.handle.Close(); err != nil {
		r.log().Warn("closing connection %q: %v", name, err)
	}
	r.log().Info("connection %q closed: %s", name, reason)
	r.emit(Event{Kind: EventClosed, Connection: name, Reason: reason})
}

// ConnectionNames returns a sorted snapshot of the open connection names.
func (r *Registry) ConnectionNames() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.conns))
	for name := range r.conns {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// IsConnected reports whether name has an open handle.
func (r *Registry) IsConnected(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.conns[name]
	return ok
}

// Config returns a copy of the configuration name was opened with.
func (r *Registry) Config(name string) (ConnectionConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.conns[name]
	if !ok {
		return ConnectionConfig{}, false
	}
	return conn.config, true
}

// Handle returns the open handle for name. Executors and result models
// resolve their connection through it on every call.
func (r *Registry) Handle(name string) (pool.Pool, error) {
	r.mu.RLock()
	conn, ok := r.conns[name]
	r.mu.RUnlock()
	if !ok {
		return nil, notFound(name)
	}
	return conn.handle, nil
}

// ListTables returns the names of catalog objects of the given kind on
// connection name. An unknown kind is reported as a warning and treated as
// AllTables.
func (r *Registry) ListTables(ctx context.Context, name string, kind dialect.TableKind) ([]string, error) {
	r.mu.RLock()
	conn, ok := r.conns[name]
	r.mu.RUnlock()
	if !ok {
		err := notFound(name)
		r.fail(name, err)
		return []string{}, err
	}

	if !kind.Valid() {
		msg := fmt.Sprintf("%v %d on connection %q, trying with all tables", ErrInvalidTableKind, int(kind), name)
		r.log().Warn("%s", msg)
		r.emit(Event{Kind: EventWarning, Connection: name, Message: msg})
		kind = dialect.AllTables
	}

	kinds := []dialect.TableKind{kind}
	if kind == dialect.AllTables {
		kinds = []dialect.TableKind{dialect.Tables, dialect.Views, dialect.SystemTables}
	}

	names := []string{}
	for _, k := range kinds {
		query, args := conn.dialect.TablesSQL(k)
		found, err := queryNames(ctx, conn.handle, query, args)
		if err != nil {
			err = fmt.Errorf("%w: listing %s on connection %q: %w", ErrStatementExec, k, name, err)
			r.fail(name, err)
			return []string{}, err
		}
		names = append(names, found...)
	}

	r.set("")
	return names, nil
}

func queryNames(ctx context.Context, p pool.Pool, query string, args []any) ([]string, error) {
	rows, err := p.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (r *Registry) fail(name string, err error) {
	r.set(err.Error())
	r.log().WithFields(map[string]any{"connection": name}).Error("%v", err)
	r.emit(Event{Kind: EventError, Connection: name, Message: err.Error()})
}

func notFound(name string) error {
	return fmt.Errorf("%w: could not find database connection with the connection name %q", ErrConnectionNotFound, name)
}
