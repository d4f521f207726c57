// Package namedsql gives application code access to SQL databases through
// named connections: a registry that owns the handles, an executor for
// one-shot statements and a refreshable read-only result model.
package namedsql

import (
	"github.com/shrek82/namedsql/core"
	"github.com/shrek82/namedsql/dialect"
)

// Re-export core types and functions
type (
	Registry         = core.Registry
	Executor         = core.Executor
	ResultModel      = core.ResultModel
	ConnectionConfig = core.ConnectionConfig
	Options          = core.Options
	Request          = core.Request
	Outcome          = core.Outcome
	OutcomeKind      = core.OutcomeKind
	Event            = core.Event
	EventKind        = core.EventKind
	CloseReason      = core.CloseReason
	Listener         = core.Listener
	Middleware       = core.Middleware
	ExecFunc         = core.ExecFunc
)

var (
	NewRegistry    = core.NewRegistry
	NewExecutor    = core.NewExecutor
	NewResultModel = core.NewResultModel
	IsRowReturning = core.IsRowReturning
	FormatValue    = core.FormatValue
)

const (
	DefaultConnection   = core.DefaultConnection
	UnknownRowsAffected = core.UnknownRowsAffected

	OutcomeRows     = core.OutcomeRows
	OutcomeAffected = core.OutcomeAffected
	OutcomeFailure  = core.OutcomeFailure

	EventConnected  = core.EventConnected
	EventClosed     = core.EventClosed
	EventError      = core.EventError
	EventWarning    = core.EventWarning
	EventDone       = core.EventDone
	EventModelReset = core.EventModelReset

	CloseError     = core.CloseError
	CloseRequested = core.CloseRequested
	CloseUnknown   = core.CloseUnknown
)

// Re-export errors
var (
	ErrUnsupportedDriver  = core.ErrUnsupportedDriver
	ErrConnectFailed      = core.ErrConnectFailed
	ErrConnectionNotFound = core.ErrConnectionNotFound
	ErrStatementPrepare   = core.ErrStatementPrepare
	ErrStatementExec      = core.ErrStatementExec
	ErrIndexOutOfRange    = core.ErrIndexOutOfRange
	ErrInvalidTableKind   = core.ErrInvalidTableKind
	ErrInvalidConfig      = core.ErrInvalidConfig
	ErrNotRowReturning    = core.ErrNotRowReturning
	ErrFieldNotFound      = core.ErrFieldNotFound
)

// Re-export dialect types
type (
	Driver    = dialect.Driver
	TableKind = dialect.TableKind
)

var ParseDriver = dialect.ParseDriver

const (
	Postgres  = dialect.Postgres
	MySql     = dialect.MySql
	Oracle    = dialect.Oracle
	ODBC      = dialect.ODBC
	DB2       = dialect.DB2
	TDS       = dialect.TDS
	SQLite    = dialect.SQLite
	SQLite2   = dialect.SQLite2
	InterBase = dialect.InterBase

	Tables       = dialect.Tables
	SystemTables = dialect.SystemTables
	Views        = dialect.Views
	AllTables    = dialect.AllTables
)
