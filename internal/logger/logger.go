package logger

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level orders log severities
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	default:
		return "ERROR"
	}
}

// ParseLevel maps a config string to a Level, defaulting to info
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

type LogEntry struct {
	Timestamp string      `json:"timestamp"`
	Level     string      `json:"level"`
	Service   string      `json:"service"`
	Action    string      `json:"action"`
	Message   string      `json:"message"`
	Hostname  string      `json:"hostname"`
	RequestID string      `json:"request_id,omitempty"`
	Error     *ErrorEntry `json:"error,omitempty"`
}

type ErrorEntry struct {
	Msg   string `json:"msg"`
	Stack string `json:"stack,omitempty"`
}

// Logger writes one JSON object per line
type Logger struct {
	service  string
	hostname string
	min      Level
	mu       sync.Mutex
	out      io.Writer
}

func NewLogger(service string, min Level) *Logger {
	return New(os.Stdout, service, min)
}

// New creates a logger writing to out
func New(out io.Writer, service string, min Level) *Logger {
	hostname, _ := os.Hostname()
	return &Logger{
		service:  service,
		hostname: hostname,
		min:      min,
		out:      out,
	}
}

// Discard returns a logger that drops everything
func Discard() *Logger {
	return New(io.Discard, "discard", LevelError+1)
}

// NewRequestID returns a fresh correlation id
func NewRequestID() string {
	return uuid.NewString()
}

func (l *Logger) Debug(requestID, action, message string) {
	l.log(LevelDebug, requestID, action, message, nil)
}

func (l *Logger) Info(requestID, action, message string) {
	l.log(LevelInfo, requestID, action, message, nil)
}

func (l *Logger) Warn(requestID, action, message string) {
	l.log(LevelWarn, requestID, action, message, nil)
}

func (l *Logger) Error(requestID, action, message string, err error) {
	var entry *ErrorEntry
	if err != nil {
		buf := make([]byte, 1024)
		n := runtime.Stack(buf, false)
		entry = &ErrorEntry{
			Msg:   err.Error(),
			Stack: string(buf[:n]),
		}
	}
	l.log(LevelError, requestID, action, message, entry)
}

func (l *Logger) log(level Level, requestID, action, message string, errorEntry *ErrorEntry) {
	if level < l.min {
		return
	}
	entry := LogEntry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Service:   l.service,
		Action:    action,
		Message:   message,
		Hostname:  l.hostname,
		RequestID: requestID,
		Error:     errorEntry,
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Write(append(jsonData, '\n'))
}

type requestIDKey struct{}

// WithRequestID returns a context carrying the request id
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID returns the request id stored in ctx, or ""
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
