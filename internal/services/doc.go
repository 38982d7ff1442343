// Package services provides the service abstraction the registry drives.
//
// # Core Concepts
//
// Service: The capability set of one installable platform service. It
// installs, uninstalls and upgrades itself, answers IsInstalled and
// GetHealth from the cluster, and owns its lifecycle status.
//
// BaseService: Identity, configuration and lifecycle status shared by every
// variant. Status transitions go through UpdateStatus, which notifies the
// registered StateChangeCallback outside the lock.
//
// Instance: The manifest-driven variant. It runs the install steps of its
// definition in order through a StepRunner, reverts them in reverse order
// on uninstall (attempting every step), and derives health from the
// definition's validation checks.
//
// ServiceRegistry: A thread-safe store of registered services that keeps
// registration order for stable listings.
//
// # Lifecycle
//
//	not_installed -> installing -> installed | failed
//	installed     -> upgrading  -> installed | failed
//	any           -> uninstalling -> not_installed | failed
//
// The lifecycle status records what this process did to the service. It is
// never consulted by IsInstalled, which asks the cluster.
//
// # Template Context
//
// Manifests are rendered with service_name, namespace, domain and env,
// followed by the configured settings and the definition's config
// defaults. gateway_name defaults to "<env>-gateway" where the environment
// name is the first label of the domain. Step overrides may reference
// "@config.key", "@env.key" and "@service.name|namespace" with an optional
// "|default".
package services
