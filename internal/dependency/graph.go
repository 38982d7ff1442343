package dependency

// Node is a service together with its declared dependency list.
type Node struct {
	ID        string
	DependsOn []string
}

// Graph answers dependency queries and remembers the order in which nodes
// were first inserted. It is *not* thread-safe by itself; callers must
// synchronise if they write concurrently.
type Graph struct {
	nodes map[string]*Node
	order []string
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddNode adds (or replaces) a node in the graph. A replaced node keeps
// its original insertion position.
func (g *Graph) AddNode(n Node) {
	if g.nodes == nil {
		g.nodes = make(map[string]*Node)
	}
	if _, exists := g.nodes[n.ID]; !exists {
		g.order = append(g.order, n.ID)
	}
	// Copy to avoid external mutations
	copied := Node{ID: n.ID, DependsOn: append([]string(nil), n.DependsOn...)}
	g.nodes[n.ID] = &copied
}

// Get returns a pointer to the stored node or nil if it does not exist.
func (g *Graph) Get(id string) *Node {
	return g.nodes[id]
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.order)
}

// IDs returns the node ids in insertion order.
func (g *Graph) IDs() []string {
	return append([]string(nil), g.order...)
}

// Dependencies returns a slice of immediate dependency IDs for the given node.
func (g *Graph) Dependencies(id string) []string {
	if n, ok := g.nodes[id]; ok {
		// Return a copy to avoid callers modifying internal slice.
		depsCopy := make([]string, len(n.DependsOn))
		copy(depsCopy, n.DependsOn)
		return depsCopy
	}
	return nil
}

// Dependents returns, in insertion order, all node IDs that have a direct
// dependency on the given node.
func (g *Graph) Dependents(id string) []string {
	var res []string
	for _, nid := range g.order {
		for _, dep := range g.nodes[nid].DependsOn {
			if dep == id {
				res = append(res, nid)
				break
			}
		}
	}
	return res
}
