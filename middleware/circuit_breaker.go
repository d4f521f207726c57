package middleware

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shrek82/namedsql/core"
)

var ErrCircuitOpen = errors.New("circuit breaker is open")

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

// CircuitBreakerMiddleware stops sending statements to a connection after
// Threshold consecutive failures, until ResetTimeout has passed. Each
// connection name has its own breaker.
type CircuitBreakerMiddleware struct {
	Threshold    int           // Number of failures before opening
	ResetTimeout time.Duration // Time to wait before half-open

	mu       sync.Mutex
	breakers map[string]*breaker
}

type breaker struct {
	state          State
	failures       int
	lastFailure    time.Time
	halfOpenPassed bool
}

func NewCircuitBreaker(threshold int, resetTimeout time.Duration) *CircuitBreakerMiddleware {
	return &CircuitBreakerMiddleware{
		Threshold:    threshold,
		ResetTimeout: resetTimeout,
		breakers:     make(map[string]*breaker),
	}
}

func (m *CircuitBreakerMiddleware) Name() string {
	return "CircuitBreaker"
}

// State returns the breaker state for a connection name.
func (m *CircuitBreakerMiddleware) State(connection string) State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if b, ok := m.breakers[connection]; ok {
		return b.state
	}
	return StateClosed
}

func (m *CircuitBreakerMiddleware) Process(ctx context.Context, req core.Request, next core.ExecFunc) core.Outcome {
	m.mu.Lock()
	b, ok := m.breakers[req.Connection]
	if !ok {
		b = &breaker{}
		m.breakers[req.Connection] = b
	}
	switch b.state {
	case StateOpen:
		if time.Since(b.lastFailure) > m.ResetTimeout {
			b.state = StateHalfOpen
			b.halfOpenPassed = false
		} else {
			m.mu.Unlock()
			return core.Failure(fmt.Errorf("connection %q: %w", req.Connection, ErrCircuitOpen))
		}
	case StateHalfOpen:
		if b.halfOpenPassed {
			// one probe at a time
			m.mu.Unlock()
			return core.Failure(fmt.Errorf("connection %q: %w", req.Connection, ErrCircuitOpen))
		}
		b.halfOpenPassed = true
	}
	m.mu.Unlock()

	out := next(ctx, req)

	m.mu.Lock()
	defer m.mu.Unlock()
	if out.Failed() {
		m.recordFailure(b)
	} else {
		m.recordSuccess(b)
	}
	return out
}

func (m *CircuitBreakerMiddleware) recordFailure(b *breaker) {
	b.failures++
	b.lastFailure = time.Now()

	switch b.state {
	case StateClosed:
		if b.failures >= m.Threshold {
			b.state = StateOpen
		}
	case StateHalfOpen:
		b.state = StateOpen
		b.halfOpenPassed = false
	}
}

// recordSuccess resets the count so only consecutive failures open the breaker.
func (m *CircuitBreakerMiddleware) recordSuccess(b *breaker) {
	b.state = StateClosed
	b.failures = 0
	b.halfOpenPassed = false
}
