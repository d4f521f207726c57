package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
)

// LogLevel defines the severity of the log
type LogLevel int

const (
	LogLevelSilent LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
)

// ParseLevel maps "silent", "error", "warn" or "info" to a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "silent", "off", "none":
		return LogLevelSilent, nil
	case "error":
		return LogLevelError, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "info", "":
		return LogLevelInfo, nil
	}
	return LogLevelInfo, fmt.Errorf("unknown log level %q", s)
}

// LogFormat defines the output format of the log
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// Logger is the interface for logging SQL and connection lifecycle messages
type Logger interface {
	SetLevel(level LogLevel)
	SetFormat(format LogFormat)
	SetOutput(w io.Writer)
	WithFields(fields map[string]any) Logger
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
	SQL(sql string, duration time.Duration, err error)
}

// sink is shared by a logger and every logger derived from it with
// WithFields, so that settings and writes stay consistent across them.
type sink struct {
	mu     sync.Mutex
	level  LogLevel
	format LogFormat
	writer io.Writer
}

// stdLogger is the default implementation of Logger
type stdLogger struct {
	sink   *sink
	fields map[string]any
}

// NewStdLogger creates a logger writing text at Info level to stdout.
func NewStdLogger() Logger {
	return New(os.Stdout, LogLevelInfo)
}

// New creates a text logger writing to w at the given level.
func New(w io.Writer, level LogLevel) Logger {
	return &stdLogger{
		sink: &sink{
			level:  level,
			format: LogFormatText,
			writer: w,
		},
		fields: make(map[string]any),
	}
}

// Discard returns a logger that writes nothing.
func Discard() Logger {
	return New(io.Discard, LogLevelSilent)
}

func (l *stdLogger) SetLevel(level LogLevel) {
	l.sink.mu.Lock()
	l.sink.level = level
	l.sink.mu.Unlock()
}

func (l *stdLogger) SetFormat(format LogFormat) {
	l.sink.mu.Lock()
	l.sink.format = format
	l.sink.mu.Unlock()
}

func (l *stdLogger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	l.sink.writer = w
	l.sink.mu.Unlock()
}

func (l *stdLogger) WithFields(fields map[string]any) Logger {
	merged := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &stdLogger{sink: l.sink, fields: merged}
}

func (l *stdLogger) Info(format string, args ...any) {
	l.log(LogLevelInfo, "INFO", fmt.Sprintf(format, args...), nil)
}

func (l *stdLogger) Warn(format string, args ...any) {
	l.log(LogLevelWarn, "WARN", fmt.Sprintf(format, args...), nil)
}

func (l *stdLogger) Error(format string, args ...any) {
	l.log(LogLevelError, "ERROR", fmt.Sprintf(format, args...), nil)
}

// SQL logs a statement with its duration. Failed statements are logged at
// error level, successful ones at info level.
func (l *stdLogger) SQL(sql string, duration time.Duration, err error) {
	extra := map[string]any{"sql": sql, "duration": duration.String()}
	if err != nil {
		extra["error"] = err.Error()
		l.log(LogLevelError, "SQL", fmt.Sprintf("[%v] %s | error: %v", duration, sql, err), extra)
		return
	}
	msg := fmt.Sprintf("[%v] %s", duration, sql)
	l.log(LogLevelInfo, "SQL", msg, extra)
}

func (l *stdLogger) log(min LogLevel, level string, msg string, extra map[string]any) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()

	if l.sink.level < min {
		return
	}

	now := time.Now()
	if l.sink.format == LogFormatJSON {
		data := make(map[string]any, len(l.fields)+len(extra)+3)
		for k, v := range l.fields {
			data[k] = v
		}
		for k, v := range extra {
			data[k] = v
		}
		data["time"] = now.Format(time.RFC3339)
		data["level"] = level
		data["msg"] = msg
		_ = json.NewEncoder(l.sink.writer).Encode(data)
		return
	}

	if level == "SQL" {
		if sqlStr, ok := extra["sql"].(string); ok {
			msg = getSQLColor(sqlStr) + msg + ansiReset
		}
	}
	fmt.Fprintf(l.sink.writer, "[NAMEDSQL] %s %s: %s%s\n", now.Format("2006-01-02 15:04:05"), level, msg, formatFields(l.fields))
}

func formatFields(fields map[string]any) string {
	if len(fields) == 0 {
		return ""
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, fields[k])
	}
	return sb.String()
}

func getSQLColor(sqlStr string) string {
	s := strings.TrimSpace(strings.ToUpper(sqlStr))
	switch {
	case strings.HasPrefix(s, "SELECT"):
		return ansiYellow
	case strings.HasPrefix(s, "INSERT"), strings.HasPrefix(s, "UPDATE"):
		return ansiGreen
	case strings.HasPrefix(s, "DELETE"):
		return ansiRed
	default:
		return ansiCyan
	}
}
