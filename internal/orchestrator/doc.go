// Package orchestrator provides the service registry that coordinates batch
// operations over platform services.
//
// # Registration
//
// Register validates a definition together with its service configuration
// and builds the service through the configured factory. Registering an id
// a second time swaps definition and configuration in place and keeps the
// runtime status, so a re-read configuration never forgets that a service
// was installed by this process.
//
// # Batch Operations
//
// Every batch resolves the dependency closure of the requested ids first;
// an unknown id or a cycle fails the batch before anything runs.
//
//   - InstallServices walks the install order one service at a time. It
//     skips disabled services and services the cluster already has, stops
//     at the first install failure, and waits for each installed service to
//     become ready within its ready timeout. Failing validation checks are
//     logged and do not stop the batch.
//   - UninstallServices walks the exact reverse of the install order and
//     attempts every service, joining the failures.
//   - UpgradeServices upgrades in install order and stops at the first
//     failure.
//
// Services installed before a failure are not rolled back. Re-running the
// batch skips them.
//
// # Status
//
// GetStatus reports lifecycle status, health, configuration and endpoints
// of every registered service. Cluster probes run in parallel. Lifecycle
// status changes are published to SubscribeToStateChanges subscribers.
package orchestrator
