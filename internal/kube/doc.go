// Package kube talks to the target cluster through controller-runtime.
//
// Client applies rendered manifests as unstructured objects (create, or
// update on conflict), deletes them tolerating objects that are already
// gone, and reads single resources by group/version/resource for readiness
// waits and validation checks.
package kube
