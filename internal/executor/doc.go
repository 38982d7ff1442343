// Package executor runs the install steps of a service definition.
//
// A manifest step renders its template and applies the result; a helm step
// registers the chart repository, refreshes indexes, and installs the
// release (or upgrades it when a release of that name already exists).
// After the primary action the step's wait conditions are polled in
// declaration order against the cluster. Every failure is an
// *api.StepError carrying the failing kind and target.
//
// The executor also evaluates read-only validation checks and existence
// probes, and reverts steps during uninstall.
package executor
