// Package logging provides leveled, subsystem-tagged logging for stackctl.
//
// The package is a thin layer over Go's log/slog. Every entry carries a
// "subsystem" attribute naming the component that produced it (Registry,
// Executor, Helm, Kube, ...), which keeps the output of long batch
// installs greppable.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stdout)
//
//	logging.Info("Registry", "Installation order: %s", strings.Join(order, " -> "))
//	logging.Debug("Helm", "Running helm %s", strings.Join(args, " "))
//	logging.Warn("Registry", "Service %s is disabled, skipping", id)
//	logging.Error("Executor", err, "Failed to apply manifest %s", path)
//
// InitForCLI also installs a logr bridge so that controller-runtime and
// client-go messages go through the same handler and level filter.
//
// Calls made before InitForCLI fall back to slog's default logger.
package logging
