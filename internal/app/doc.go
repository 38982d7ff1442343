// Package app provides application bootstrap for stackctl.
//
// It turns command-line settings into a ready-to-use orchestrator:
//
//  1. Logging is configured from the debug and quiet flags.
//  2. The platform configuration is loaded (explicit path, search path or
//     built-in defaults) and its certificate credentials are checked.
//  3. The cluster collaborators are created: the controller-runtime backed
//     manifest applier and resource reader, the helm CLI package manager and
//     the file-based manifest renderer.
//  4. Service definitions are loaded from the manifests directory and every
//     definition with a configuration entry is registered with the
//     orchestrator registry.
//
// # Offline mode
//
// Commands that only inspect definitions and configuration (such as listing
// services) set Config.Offline. No cluster connection is attempted and the
// collaborators stay unset.
//
// # Testing
//
// NewApplicationWithCollaborators accepts pre-built collaborators so the
// whole wiring can be exercised with fakes:
//
//	cfg := app.NewConfig(false, true, "", "testdata/manifests", "")
//	cfg.Stack = &stack
//	application, err := app.NewApplicationWithCollaborators(cfg, fakes)
package app
