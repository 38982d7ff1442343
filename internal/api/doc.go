// Package api holds the types shared by every layer of stackctl: the
// lifecycle and health enums, the typed error taxonomy, and the contracts
// of the external collaborators the orchestration engine drives.
//
// # Collaborators
//
//   - ManifestApplier: applies and deletes rendered manifests (internal/kube)
//   - PackageManager: chart repositories and releases (internal/helm)
//   - ResourceReader: fetches resource documents for waits and probes (internal/kube)
//   - Renderer: renders manifest templates (internal/template)
//
// Keeping the contracts here lets the executor and lifecycle code depend on
// small interfaces while the concrete clients live in their own packages.
//
// # Errors
//
// Every failure the engine reports is one of DependencyError, StepError,
// ValidationFailure, HealthTimeoutError, ConfigError or NotFoundError. Each
// comes with an IsX helper built on errors.As so callers can branch on the
// category through any amount of %w wrapping:
//
//	if err := registry.InstallServices(ctx, ids); err != nil {
//	    if api.IsDependencyError(err) {
//	        // fix the definitions, retrying will not help
//	    }
//	}
package api
