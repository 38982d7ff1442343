// Package dependency computes install and uninstall orders for platform
// services.
//
// # Core Concepts
//
// Graph: a directed graph of services where each node lists the services it
// depends on. The graph remembers the order in which nodes were inserted;
// that order is the tie-break for everything else.
//
// Resolve: walks the dependency closure of a set of targets breadth-first,
// builds the graph, and sorts it with Kahn's algorithm. Ready nodes leave
// the queue first-in first-out, so a fixed set of definitions always yields
// the same order.
//
// # Dependency Rules
//
//  1. Every dependency is installed before any service that depends on it
//  2. An id that is not registered fails the whole resolution
//  3. A cycle fails the whole resolution and names every node that could
//     not be scheduled
//  4. Uninstall order is exactly Reverse of the install order
//
// # Usage Example
//
//	order, err := dependency.Resolve([]string{"sample-app"}, func(id string) ([]string, bool) {
//	    svc, ok := registry.Get(id)
//	    if !ok {
//	        return nil, false
//	    }
//	    return svc.Dependencies(), true
//	})
//	if err != nil {
//	    return err // *api.DependencyError
//	}
//	// order: istio, storage, cert-manager, minio, sample-app
//
// Errors are reported as *api.DependencyError and are never retried.
package dependency
