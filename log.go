// Package dcrutilitynode wires together the utility-node overlay: the
// registry/gossip core in svcnode, the service-node and control-node roles,
// and the operator RPC surface in rpcutility.
package dcrutilitynode

import (
	"github.com/atcsecure/dcrutilitynode/build"
	"github.com/atcsecure/dcrutilitynode/control"
	"github.com/atcsecure/dcrutilitynode/rpcutility"
	"github.com/atcsecure/dcrutilitynode/service"
	"github.com/atcsecure/dcrutilitynode/snwire"
	"github.com/atcsecure/dcrutilitynode/svcnode"
	"github.com/decred/slog"
)

// replaceableLogger mirrors the teacher's pattern of letting every
// package-level logger be swapped out once a root logger becomes available,
// without requiring callers to thread a logger through every constructor.
type replaceableLogger struct {
	slog.Logger
	subsystem string
}

var (
	pkgLoggers []*replaceableLogger

	addPkgLogger = func(subsystem string) *replaceableLogger {
		l := &replaceableLogger{
			Logger:    build.NewSubLogger(subsystem, nil),
			subsystem: subsystem,
		}
		pkgLoggers = append(pkgLoggers, l)
		return l
	}

	utnoLog = addPkgLogger("UTNO")
)

// SetupLoggers initializes all package-level logger variables against root,
// once the caller has called root.InitLogRotator. Call this as early as
// possible during process startup.
func SetupLoggers(root *build.RotatingLogWriter) {
	for _, l := range pkgLoggers {
		l.Logger = build.NewSubLogger(l.subsystem, root.GenSubLogger)
		SetSubLogger(root, l.subsystem, l.Logger)
	}

	AddSubLogger(root, "SNWR", snwire.UseLogger)
	AddSubLogger(root, "SVCN", svcnode.UseLogger)
	AddSubLogger(root, "SRVN", service.UseLogger)
	AddSubLogger(root, "CTLN", control.UseLogger)
	AddSubLogger(root, "RPCU", rpcutility.UseLogger)
}

// AddSubLogger creates and registers the logger for one or more subsystems.
func AddSubLogger(root *build.RotatingLogWriter, subsystem string,
	useLoggers ...func(slog.Logger)) {

	logger := build.NewSubLogger(subsystem, root.GenSubLogger)
	SetSubLogger(root, subsystem, logger, useLoggers...)
}

// SetSubLogger registers logger under subsystem and fans it out to every
// useLogger callback supplied.
func SetSubLogger(root *build.RotatingLogWriter, subsystem string,
	logger slog.Logger, useLoggers ...func(slog.Logger)) {

	root.RegisterSubLogger(subsystem, logger)
	for _, useLogger := range useLoggers {
		useLogger(logger)
	}
}
