package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"
	ctrl "sigs.k8s.io/controller-runtime"
)

// LogLevel defines the severity of the log entry.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String makes LogLevel satisfy the fmt.Stringer interface.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l LogLevel) SlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo // Default to INFO for unknown
	}
}

// ParseLevel maps a user supplied level name to a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	switch name {
	case "debug", "DEBUG":
		return LevelDebug, nil
	case "info", "INFO", "":
		return LevelInfo, nil
	case "warn", "WARN", "warning":
		return LevelWarn, nil
	case "error", "ERROR":
		return LevelError, nil
	default:
		return LevelInfo, fmt.Errorf("unknown log level %q", name)
	}
}

var defaultLogger *slog.Logger

var (
	// controllerRuntimeTarget is the handler controller-runtime logs reach.
	// controller-runtime binds its logger only once, so InitForCLI swaps
	// the target instead of calling ctrl.SetLogger again.
	controllerRuntimeTarget atomic.Pointer[slog.Handler]
	controllerRuntimeOnce   sync.Once
)

// InitForCLI initializes the logging system for CLI mode.
// Calling it again retargets every logger, controller-runtime's included.
func InitForCLI(filterLevel LogLevel, output io.Writer) {
	opts := &slog.HandlerOptions{
		Level: filterLevel.SlogLevel(),
	}
	handler := slog.NewTextHandler(output, opts)
	defaultLogger = slog.New(handler)
	slog.SetDefault(defaultLogger)

	initControllerRuntimeLogger(handler)
}

// initControllerRuntimeLogger routes controller-runtime and client-go logs
// through the same handler so they honour the configured level and output.
func initControllerRuntimeLogger(handler slog.Handler) {
	if handler == nil {
		return
	}
	controllerRuntimeTarget.Store(&handler)
	controllerRuntimeOnce.Do(func() {
		redirect := &redirectHandler{target: &controllerRuntimeTarget}
		ctrl.SetLogger(logr.FromSlogHandler(redirect.WithAttrs([]slog.Attr{slog.String("subsystem", "controller-runtime")})))
	})
}

// redirectHandler forwards to whatever handler target currently holds.
// Attributes and groups added through it are replayed on the current
// target for every call.
type redirectHandler struct {
	target *atomic.Pointer[slog.Handler]
	wrap   func(slog.Handler) slog.Handler
}

func (h *redirectHandler) current() slog.Handler {
	base := *h.target.Load()
	if h.wrap == nil {
		return base
	}
	return h.wrap(base)
}

func (h *redirectHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.current().Enabled(ctx, level)
}

func (h *redirectHandler) Handle(ctx context.Context, r slog.Record) error {
	return h.current().Handle(ctx, r)
}

func (h *redirectHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return h.then(func(next slog.Handler) slog.Handler { return next.WithAttrs(attrs) })
}

func (h *redirectHandler) WithGroup(name string) slog.Handler {
	return h.then(func(next slog.Handler) slog.Handler { return next.WithGroup(name) })
}

func (h *redirectHandler) then(step func(slog.Handler) slog.Handler) slog.Handler {
	prev := h.wrap
	return &redirectHandler{
		target: h.target,
		wrap: func(base slog.Handler) slog.Handler {
			if prev != nil {
				base = prev(base)
			}
			return step(base)
		},
	}
}

func logInternal(level LogLevel, subsystem string, err error, messageFmt string, args ...interface{}) {
	logger := defaultLogger
	if logger == nil {
		// Not initialized yet (tests, early bootstrap): fall back to slog's default.
		logger = slog.Default()
	}
	if !logger.Enabled(context.Background(), level.SlogLevel()) {
		return
	}

	msg := messageFmt
	if len(args) > 0 {
		msg = fmt.Sprintf(messageFmt, args...)
	}

	slogAttrs := []slog.Attr{slog.String("subsystem", subsystem)}
	if err != nil {
		slogAttrs = append(slogAttrs, slog.String("error", err.Error()))
	}

	logger.LogAttrs(context.Background(), level.SlogLevel(), msg, slogAttrs...)
}

// Debug logs a debug message.
func Debug(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelDebug, subsystem, nil, messageFmt, args...)
}

// Info logs an informational message.
func Info(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelInfo, subsystem, nil, messageFmt, args...)
}

// Warn logs a warning message.
func Warn(subsystem string, messageFmt string, args ...interface{}) {
	logInternal(LevelWarn, subsystem, nil, messageFmt, args...)
}

// Error logs an error message.
func Error(subsystem string, err error, messageFmt string, args ...interface{}) {
	logInternal(LevelError, subsystem, err, messageFmt, args...)
}
