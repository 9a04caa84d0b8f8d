package svcnode

import "github.com/decred/slog"

// log is the package-wide subsystem logger, disabled until UseLogger is
// called by the top-level SetupLoggers wiring.
var log = slog.Disabled

// DisableLog disables all library log output.
func DisableLog() {
	log = slog.Disabled
}

// UseLogger sets the subsystem logger used by this package.
func UseLogger(logger slog.Logger) {
	log = logger
}
