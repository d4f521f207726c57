package core

import (
	"errors"

	"github.com/shrek82/namedsql/dialect"
)

var (
	// ErrUnsupportedDriver is returned when the requested driver is unknown or not linked into the binary.
	ErrUnsupportedDriver = dialect.ErrUnsupportedDriver
	// ErrConnectFailed is returned when a session cannot be established.
	ErrConnectFailed = errors.New("connect failed")
	// ErrConnectionNotFound is returned when no open connection exists under a name.
	ErrConnectionNotFound = errors.New("connection not found")
	// ErrStatementPrepare is returned when the driver rejects a statement while preparing it.
	ErrStatementPrepare = errors.New("statement prepare failed")
	// ErrStatementExec is returned when a prepared statement fails while running or reading its rows.
	ErrStatementExec = errors.New("statement exec failed")
	// ErrIndexOutOfRange is returned by positional model access outside the current grid.
	ErrIndexOutOfRange = errors.New("index out of range")
	// ErrInvalidTableKind is reported as a warning when ListTables gets an unknown kind.
	ErrInvalidTableKind = errors.New("invalid table kind")
	// ErrInvalidConfig is returned when a ConnectionConfig fails validation.
	ErrInvalidConfig = errors.New("invalid connection config")
	// ErrNotRowReturning is returned when a result model is asked to run a statement that yields no rows.
	ErrNotRowReturning = errors.New("statement does not return rows")
	// ErrFieldNotFound is returned when a model has no column with the requested name.
	ErrFieldNotFound = errors.New("field not found")
)
