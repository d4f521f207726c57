package core

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/shrek82/namedsql/logger"
)

// ResultModel is a read-only, refreshable table built from one SELECT.
// Exec re-runs the stored query and swaps in the new rows and column index
// in one step; if it fails the previous data stays in place. Listeners of
// EventModelReset should drop any cached cells and re-read.
type ResultModel struct {
	emitter
	errorState
	loggerState

	registry *Registry

	mu         sync.RWMutex
	connection string
	query      string
	columns    []string
	index      map[string]int
	rows       [][]any
}

// NewResultModel creates an empty model resolving connections through r.
func NewResultModel(r *Registry) *ResultModel {
	m := &ResultModel{
		registry: r,
		index:    map[string]int{},
	}
	m.SetLogger(defaultLogger())
	return m
}


// SetQuery stores the connection name and SQL text run by Exec. It does
// not touch the current data.
func (m *ResultModel) SetQuery(connection, query string) {
	m.mu.Lock()
	m.connection = connection
	m.query = query
	m.mu.Unlock()
}

// Query returns the stored connection name and SQL text.
func (m *ResultModel) Query() (connection, query string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connection, m.query
}

// Exec runs the stored query and replaces the model's rows and columns.
func (m *ResultModel) Exec(ctx context.Context) error {
	connection, query := m.Query()
	log := m.log().WithFields(map[string]any{"connection": connection})

	g, err := m.materialize(ctx, connection, query, log)
	if err != nil {
		m.set(err.Error())
		log.Error("%v", err)
		m.emit(Event{Kind: EventError, Connection: connection, Message: err.Error()})
		return err
	}

	index := make(map[string]int, len(g.columns))
	for i, name := range g.columns {
		if _, dup := index[name]; !dup {
			index[name] = i
		}
	}

	m.mu.Lock()
	m.columns = g.columns
	m.index = index
	m.rows = g.rows
	m.mu.Unlock()

	m.set("")
	m.emit(Event{Kind: EventModelReset, Connection: connection})
	return nil
}

func (m *ResultModel) materialize(ctx context.Context, connection, query string, log logger.Logger) (*grid, error) {
	h, err := m.registry.Handle(connection)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty statement on connection %q", ErrStatementPrepare, connection)
	}
	if !IsRowReturning(query) {
		return nil, fmt.Errorf("%w: %s", ErrNotRowReturning, query)
	}

	start := time.Now()
	g, _, err := prepared(ctx, h, query, true)
	log.SQL(query, time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("connection %q: %w", connection, err)
	}
	return g, nil
}

// Clear empties the model. It needs no connection and always succeeds.
func (m *ResultModel) Clear() {
	m.mu.Lock()
	m.columns = nil
	m.index = map[string]int{}
	m.rows = nil
	connection := m.connection
	m.mu.Unlock()

	m.set("")
	m.emit(Event{Kind: EventModelReset, Connection: connection})
}

// RowCount returns the number of materialized rows.
func (m *ResultModel) RowCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// ColumnCount returns the number of columns of the last successful Exec.
func (m *ResultModel) ColumnCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.columns)
}

// FieldName returns the name of column col.
func (m *ResultModel) FieldName(col int) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if col < 0 || col >= len(m.columns) {
		return "", fmt.Errorf("%w: column %d of %d", ErrIndexOutOfRange, col, len(m.columns))
	}
	return m.columns[col], nil
}

// FieldNames returns a copy of all column names in order.
func (m *ResultModel) FieldNames() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.columns...)
}

// FieldIndex returns the position of the column named name. The lookup is
// case-sensitive; if several columns share a name the first one wins.
func (m *ResultModel) FieldIndex(name string) (int, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.index[name]
	return i, ok
}

// Value returns the field at row, col.
func (m *ResultModel) Value(row, col int) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.value(row, col)
}

// ValueByName returns the field at row in the column named field.
func (m *ResultModel) ValueByName(row int, field string) (any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	col, ok := m.index[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrFieldNotFound, field)
	}
	return m.value(row, col)
}

func (m *ResultModel) value(row, col int) (any, error) {
	if row < 0 || row >= len(m.rows) {
		return nil, fmt.Errorf("%w: row %d of %d", ErrIndexOutOfRange, row, len(m.rows))
	}
	if col < 0 || col >= len(m.columns) {
		return nil, fmt.Errorf("%w: column %d of %d", ErrIndexOutOfRange, col, len(m.columns))
	}
	return m.rows[row][col], nil
}
