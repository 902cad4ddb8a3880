package driver

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[zap.Logger]

func init() {
	loggerPtr.Store(zap.NewNop())
}

// SetLogger configures the logger for the driver and the components it
// builds. By default the driver produces no log output.
//
// Diagnostic logs are separate from the log-line events sent to the caller:
// they go wherever l writes, which must not be stdout when stdout carries
// the protocol.
//
// Pass nil to restore the silent default.
//
// Log levels used:
//   - Debug: per-command and per-frame diagnostics
//   - Info: lifecycle (ready, quit, caller gone)
//   - Warn: non-fatal protocol anomalies (unknown opcode, trailing bytes,
//     decode failure, resource misses)
//   - Error: transport failures
//
// Example:
//
//	cfg := zap.NewDevelopmentConfig()
//	cfg.OutputPaths = []string{"stderr"}
//	l, _ := cfg.Build()
//	driver.SetLogger(l)
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	loggerPtr.Store(l)
}

// Logger returns the current logger. Sub-packages receive it when the
// driver constructs them.
func Logger() *zap.Logger {
	return loggerPtr.Load()
}
