package middleware

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/shrek82/namedsql/core"
)

// SlowLogMiddleware logs statements that take longer than the specified threshold.
type SlowLogMiddleware struct {
	Threshold time.Duration
	LogPath   string

	once    sync.Once
	initErr error
	logger  *log.Logger
	file    *os.File
}

// NewSlowLog creates a new SlowLogMiddleware.
// threshold: statements taking longer than this will be logged.
// logPath: path to the log file. If empty, logs to standard output.
func NewSlowLog(threshold time.Duration, logPath string) *SlowLogMiddleware {
	return &SlowLogMiddleware{
		Threshold: threshold,
		LogPath:   logPath,
	}
}

// SetOutput sets the output destination for the logger.
// This is useful for testing or custom logging.
func (m *SlowLogMiddleware) SetOutput(w io.Writer) {
	m.logger = log.New(w, "[SLOW SQL] ", log.LstdFlags)
}

func (m *SlowLogMiddleware) Name() string {
	return "SlowLog"
}

// Init opens the log file. Process calls it lazily if it was not called.
func (m *SlowLogMiddleware) Init() error {
	m.once.Do(func() {
		// If logger is already set (e.g. by SetOutput), don't overwrite it
		if m.logger != nil {
			return
		}

		if m.LogPath != "" {
			f, err := os.OpenFile(m.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				m.initErr = fmt.Errorf("failed to open slow log file: %w", err)
				m.logger = log.New(os.Stderr, "[SLOW SQL] ", log.LstdFlags)
				return
			}
			m.file = f
			m.logger = log.New(f, "[SLOW SQL] ", log.LstdFlags)
		} else {
			m.logger = log.New(os.Stdout, "[SLOW SQL] ", log.LstdFlags)
		}
	})
	return m.initErr
}

func (m *SlowLogMiddleware) Shutdown() error {
	if m.file != nil {
		return m.file.Close()
	}
	return nil
}

func (m *SlowLogMiddleware) Process(ctx context.Context, req core.Request, next core.ExecFunc) core.Outcome {
	_ = m.Init()

	start := time.Now()
	out := next(ctx, req)
	duration := time.Since(start)

	if duration > m.Threshold {
		switch out.Kind {
		case core.OutcomeRows:
			m.logger.Printf("duration=%v | connection=%q | sql=%s | rows=%d", duration, req.Connection, req.SQL, out.RowCount)
		case core.OutcomeAffected:
			m.logger.Printf("duration=%v | connection=%q | sql=%s | affected=%d", duration, req.Connection, req.SQL, out.Affected)
		default:
			m.logger.Printf("duration=%v | connection=%q | sql=%s | err=%s", duration, req.Connection, req.SQL, out.Message)
		}
	}

	return out
}
