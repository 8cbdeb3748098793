package frost

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/frost/kawase"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

// live holds the effects whose devices receive logger updates.
var (
	liveMu sync.Mutex
	live   = make(map[*Effect]struct{})
)

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for frost and its sub-packages.
// By default, frost produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by frost:
//   - [slog.LevelDebug]: render chain reallocation, noise regeneration
//   - [slog.LevelInfo]: effect lifecycle (created, reconfigured, closed)
//   - [slog.LevelWarn]: disabled blur, failed allocations and uploads
//
// Example:
//
//	frost.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)
	kawase.SetLogger(l)

	liveMu.Lock()
	defer liveMu.Unlock()
	for e := range live {
		propagateLogger(e.device, l)
	}
}

// Logger returns the current logger used by frost.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by devices that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the logger to a device if it implements the
// loggerSetter interface.
func propagateLogger(dev any, l *slog.Logger) {
	if ls, ok := dev.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}

func trackEffect(e *Effect) {
	liveMu.Lock()
	defer liveMu.Unlock()
	live[e] = struct{}{}
	propagateLogger(e.device, Logger())
}

func untrackEffect(e *Effect) {
	liveMu.Lock()
	defer liveMu.Unlock()
	delete(live, e)
}
