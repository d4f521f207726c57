package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Request names the connection and the SQL text of one statement.
type Request struct {
	Connection string
	SQL        string
}

// OutcomeKind tells which variant of an Outcome is populated.
type OutcomeKind int

const (
	OutcomeRows OutcomeKind = iota
	OutcomeAffected
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeRows:
		return "rows"
	case OutcomeAffected:
		return "affected"
	case OutcomeFailure:
		return "failure"
	}
	return "unknown"
}

// Outcome is the result of one executed statement.
type Outcome struct {
	Kind OutcomeKind

	// Rows: the result set as text, one line per row, columns separated by
	// tabs, plus the column names and row count.
	Text     string
	Columns  []string
	RowCount int

	// Affected: the driver-reported count, or UnknownRowsAffected.
	Affected int64

	// Failure: a readable message and the underlying error.
	Message string
	Err     error
}

// Rows builds a successful row-returning Outcome.
func Rows(text string, columns []string, rowCount int) Outcome {
	return Outcome{Kind: OutcomeRows, Text: text, Columns: columns, RowCount: rowCount}
}

// Affected builds a successful Outcome for a statement without a result set.
func Affected(count int64) Outcome {
	return Outcome{Kind: OutcomeAffected, Affected: count}
}

// Failure builds a failed Outcome from err.
func Failure(err error) Outcome {
	return Outcome{Kind: OutcomeFailure, Message: err.Error(), Err: err}
}

// Failed reports whether the Outcome is a Failure.
func (o Outcome) Failed() bool {
	return o.Kind == OutcomeFailure
}

// Executor runs one-shot statements against connections of a Registry.
// Apart from its last error it keeps no state between calls, so one
// Executor may serve several goroutines as long as each targets its own
// connection name.
type Executor struct {
	emitter
	errorState
	loggerState

	registry    *Registry
	middlewares []Middleware
}

// NewExecutor creates an Executor resolving connections through r.
func NewExecutor(r *Registry) *Executor {
	e := &Executor{registry: r}
	e.SetLogger(defaultLogger())
	return e
}

// Use appends middlewares to the chain. It must be called before the
// executor is shared between goroutines.
func (e *Executor) Use(m ...Middleware) {
	e.middlewares = append(e.middlewares, m...)
}

// Execute prepares and runs req.SQL on the connection named req.Connection
// and blocks until the driver has finished. It never panics on bad input;
// every problem is returned as a Failure outcome.
func (e *Executor) Execute(ctx context.Context, req Request) Outcome {
	out := chain(e.middlewares, e.run)(ctx, req)

	if out.Failed() {
		if out.Err == nil {
			out.Err = errors.New(out.Message)
		}
		e.set(out.Message)
		e.emit(Event{Kind: EventError, Connection: req.Connection, Message: out.Message})
		return out
	}

	e.set("")
	e.emit(Event{Kind: EventDone, Connection: req.Connection})
	return out
}

func (e *Executor) run(ctx context.Context, req Request) Outcome {
	log := e.log().WithFields(map[string]any{"connection": req.Connection})

	h, err := e.registry.Handle(req.Connection)
	if err != nil {
		log.Error("%v", err)
		return Failure(err)
	}
	if strings.TrimSpace(req.SQL) == "" {
		return Failure(fmt.Errorf("%w: empty statement on connection %q", ErrStatementPrepare, req.Connection))
	}

	rowReturning := IsRowReturning(req.SQL)
	start := time.Now()
	g, affected, err := prepared(ctx, h, req.SQL, rowReturning)
	log.SQL(req.SQL, time.Since(start), err)
	if err != nil {
		return Failure(fmt.Errorf("connection %q: %w", req.Connection, err))
	}

	if rowReturning {
		return Rows(g.Text(), g.columns, len(g.rows))
	}
	return Affected(affected)
}
