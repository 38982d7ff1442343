package dependency

import (
	"stackctl/internal/api"
)

// Lookup returns the declared dependencies of id, or ok == false when id is
// not registered.
type Lookup func(id string) (deps []string, ok bool)

// Resolve returns an install order for targets and everything they
// transitively depend on. Every dependency precedes its dependents.
//
// The order is deterministic: the closure is walked breadth-first from
// targets in the given order, nodes enter the graph in the order they are
// first seen (a node, then its dependencies), and Kahn's algorithm pops
// ready nodes first-in first-out. Unknown ids and cycles are reported as
// *api.DependencyError.
func Resolve(targets []string, lookup Lookup) ([]string, error) {
	if len(targets) == 0 {
		return []string{}, nil
	}

	g, err := closure(targets, lookup)
	if err != nil {
		return nil, err
	}
	return g.TopologicalSort()
}

// Reverse returns order back to front. Uninstall order is the reverse of the
// install order of the same closure.
func Reverse(order []string) []string {
	out := make([]string, len(order))
	for i, id := range order {
		out[len(order)-1-i] = id
	}
	return out
}

// closure builds the graph of targets and their transitive dependencies.
func closure(targets []string, lookup Lookup) (*Graph, error) {
	g := New()
	seen := make(map[string]bool)
	requiredBy := make(map[string]string)

	var queue []string
	// processing order: a node is queued once, when first seen
	var inserted []string
	insert := func(id string) {
		if !seen[id] {
			seen[id] = true
			inserted = append(inserted, id)
			queue = append(queue, id)
		}
	}
	for _, id := range targets {
		insert(id)
	}

	processed := make(map[string][]string)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]

		deps, ok := lookup(id)
		if !ok {
			return nil, &api.DependencyError{Unknown: id, RequiredBy: requiredBy[id]}
		}
		processed[id] = deps
		for _, dep := range deps {
			if !seen[dep] {
				requiredBy[dep] = id
			}
			insert(dep)
		}
	}

	// Nodes are placed in processing order, each followed by those of its
	// dependencies not yet placed.
	for _, id := range inserted {
		if g.Get(id) == nil {
			g.AddNode(Node{ID: id, DependsOn: processed[id]})
		}
		for _, dep := range processed[id] {
			if g.Get(dep) == nil {
				g.AddNode(Node{ID: dep, DependsOn: processed[dep]})
			}
		}
	}
	return g, nil
}

// TopologicalSort orders the graph with Kahn's algorithm. Edges run from a
// dependency to its dependents in the order they were declared; the ready
// queue is seeded in insertion order and drained first-in first-out.
func (g *Graph) TopologicalSort() ([]string, error) {
	inDegree := make(map[string]int, len(g.order))
	dependents := make(map[string][]string, len(g.order))
	for _, id := range g.order {
		inDegree[id] = len(g.nodes[id].DependsOn)
		for _, dep := range g.nodes[id].DependsOn {
			dependents[dep] = append(dependents[dep], id)
		}
	}

	var queue []string
	for _, id := range g.order {
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	result := make([]string, 0, len(g.order))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		result = append(result, id)

		for _, dependent := range dependents[id] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
			}
		}
	}

	if len(result) != len(g.order) {
		var cycle []string
		for _, id := range g.order {
			if inDegree[id] > 0 {
				cycle = append(cycle, id)
			}
		}
		return nil, &api.DependencyError{Cycle: cycle}
	}
	return result, nil
}
