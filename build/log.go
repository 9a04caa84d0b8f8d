// Package build provides the ambient logging infrastructure shared by every
// package in this module: a rotating log writer and the per-subsystem
// sub-logger helper used by each package's log.go.
package build

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/decred/slog"
	"github.com/jrick/logrotate/rotator"
)

// LogSubsystem is the verbosity/identity pair used by RotatingLogWriter when
// registering a new sub-logger.
type LogSubsystem struct {
	tag    string
	logger slog.Logger
}

// RotatingLogWriter wraps a rotating file writer and fans out log records to
// the subsystems registered against it. It mirrors the role
// degeri-dcrlnd/build plays for the full daemon, trimmed to what this module
// needs: one rotated file, one backend, N named sub-loggers.
type RotatingLogWriter struct {
	backend   *slog.Backend
	rotator   *rotator.Rotator
	subsystem map[string]*LogSubsystem
}

// NewRotatingLogWriter returns a log writer that has not yet been pointed at
// a file. Call InitLogRotator before any logger obtained from GenSubLogger is
// used, or log lines are silently dropped.
func NewRotatingLogWriter() *RotatingLogWriter {
	return &RotatingLogWriter{
		subsystem: make(map[string]*LogSubsystem),
	}
}

// InitLogRotator initializes the log file rotator to write logs to logFile
// and creates roll files in the same directory, rolling over to a new file
// when the file exceeds 10 MiB and keeping at most maxRolls rolled files.
func (r *RotatingLogWriter) InitLogRotator(logFile string, maxRolls int) error {
	logDir, _ := filepath.Split(logFile)
	if err := os.MkdirAll(logDir, 0o700); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	rot, err := rotator.New(logFile, 10*1024, false, maxRolls)
	if err != nil {
		return fmt.Errorf("failed to create file rotator: %w", err)
	}

	r.rotator = rot
	r.backend = slog.NewBackend(r)

	return nil
}

// Write implements io.Writer over the underlying rotator so the slog backend
// can write directly to rotated files.
func (r *RotatingLogWriter) Write(b []byte) (int, error) {
	if r.rotator == nil {
		return len(b), nil
	}
	return r.rotator.Write(b)
}

// GenSubLogger creates a new sub-logger tagged with subsystem, deferring to
// the backend created by InitLogRotator. It satisfies the signature expected
// by NewSubLogger's genLogger parameter.
func (r *RotatingLogWriter) GenSubLogger(subsystem string) slog.Logger {
	if r.backend == nil {
		return slog.Disabled
	}
	return r.backend.Logger(subsystem)
}

// RegisterSubLogger registers logger under tag so its level can be changed
// later (e.g. via a "debuglevel" RPC or flag) by SetLogLevel.
func (r *RotatingLogWriter) RegisterSubLogger(tag string, logger slog.Logger) {
	r.subsystem[tag] = &LogSubsystem{tag: tag, logger: logger}
}

// SetLogLevel sets the logging level of the named subsystem, returning false
// if no subsystem by that name was registered.
func (r *RotatingLogWriter) SetLogLevel(subsystem string, level string) bool {
	s, ok := r.subsystem[subsystem]
	if !ok {
		return false
	}

	lvl, ok := slog.LevelFromString(level)
	if !ok {
		return false
	}

	s.logger.SetLevel(lvl)
	return true
}

// SupportedSubsystems returns the sorted tags of every subsystem registered
// so far.
func (r *RotatingLogWriter) SupportedSubsystems() []string {
	systems := make([]string, 0, len(r.subsystem))
	for tag := range r.subsystem {
		systems = append(systems, tag)
	}
	sort.Strings(systems)
	return systems
}

// NewSubLogger creates a logger for subsystem. If genLogger is nil (as
// happens for every package-level logger declared before SetupLoggers runs),
// the returned logger is disabled until genLogger is later supplied, so
// packages never see a nil *slog.Logger.
func NewSubLogger(subsystem string, genLogger func(string) slog.Logger) slog.Logger {
	if genLogger == nil {
		return slog.Disabled
	}
	logger := genLogger(subsystem)
	logger.SetLevel(slog.LevelInfo)
	return logger
}
