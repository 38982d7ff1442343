package dependency

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackctl/internal/api"
)

// platform mirrors the stock service set.
var platform = map[string][]string{
	"istio":        nil,
	"cert-manager": {"istio"},
	"storage":      nil,
	"minio":        {"storage", "cert-manager"},
	"sample-app":   {"istio", "minio"},
}

func lookupIn(m map[string][]string) Lookup {
	return func(id string) ([]string, bool) {
		deps, ok := m[id]
		return deps, ok
	}
}

func indexOf(order []string, id string) int {
	for i, v := range order {
		if v == id {
			return i
		}
	}
	return -1
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		targets  []string
		expected []string
	}{
		{
			name:     "empty targets",
			targets:  nil,
			expected: []string{},
		},
		{
			name:     "single service without dependencies",
			targets:  []string{"storage"},
			expected: []string{"storage"},
		},
		{
			name:     "chain",
			targets:  []string{"cert-manager"},
			expected: []string{"istio", "cert-manager"},
		},
		{
			name:     "full closure",
			targets:  []string{"sample-app"},
			expected: []string{"istio", "storage", "cert-manager", "minio", "sample-app"},
		},
		{
			name:     "independent targets keep request order",
			targets:  []string{"storage", "istio"},
			expected: []string{"storage", "istio"},
		},
		{
			name:     "independent targets reversed",
			targets:  []string{"istio", "storage"},
			expected: []string{"istio", "storage"},
		},
		{
			name:     "duplicate targets collapse",
			targets:  []string{"minio", "storage", "minio"},
			expected: []string{"storage", "istio", "cert-manager", "minio"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := Resolve(tt.targets, lookupIn(platform))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, order)
		})
	}
}

func TestResolve_DependenciesPrecedeDependents(t *testing.T) {
	targets := []string{"sample-app", "minio", "cert-manager", "storage", "istio"}
	order, err := Resolve(targets, lookupIn(platform))
	require.NoError(t, err)
	require.Len(t, order, len(platform))

	for id, deps := range platform {
		for _, dep := range deps {
			assert.Less(t, indexOf(order, dep), indexOf(order, id), "%s must precede %s", dep, id)
		}
	}
}

// reachable returns every id reachable from targets, targets included.
func reachable(graph map[string][]string, targets []string) map[string]bool {
	seen := make(map[string]bool)
	queue := append([]string(nil), targets...)
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		queue = append(queue, graph[id]...)
	}
	return seen
}

// randomDAG builds n nodes where edges only point from higher to lower
// indices, so the graph is acyclic.
func randomDAG(rng *rand.Rand, n int, density float64) map[string][]string {
	graph := make(map[string][]string, n)
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("svc-%02d", i)
		graph[id] = nil
		for j := 0; j < i; j++ {
			if rng.Float64() < density {
				graph[id] = append(graph[id], fmt.Sprintf("svc-%02d", j))
			}
		}
	}
	return graph
}

func assertValidOrder(t *testing.T, graph map[string][]string, targets, order []string) {
	t.Helper()

	want := reachable(graph, targets)
	got := make(map[string]bool, len(order))
	for _, id := range order {
		assert.False(t, got[id], "%s appears more than once", id)
		got[id] = true
	}
	assert.Equal(t, want, got)

	for _, id := range order {
		for _, dep := range graph[id] {
			assert.Less(t, indexOf(order, dep), indexOf(order, id), "%s must precede %s", dep, id)
		}
	}
}

func TestResolve_OrderingAcrossShapes(t *testing.T) {
	tests := []struct {
		name    string
		graph   map[string][]string
		targets []string
	}{
		{
			name:    "chain",
			graph:   map[string][]string{"a": nil, "b": {"a"}, "c": {"b"}, "d": {"c"}, "e": {"d"}},
			targets: []string{"e"},
		},
		{
			name:    "diamond",
			graph:   map[string][]string{"a": nil, "b": {"a"}, "c": {"a"}, "d": {"b", "c"}},
			targets: []string{"d"},
		},
		{
			name: "wide fan-out",
			graph: map[string][]string{
				"root": nil, "l1": {"root"}, "l2": {"root"}, "l3": {"root"},
				"l4": {"root"}, "l5": {"root"}, "l6": {"root"},
			},
			targets: []string{"l6", "l3", "l1"},
		},
		{
			name: "wide fan-in",
			graph: map[string][]string{
				"x1": nil, "x2": nil, "x3": nil, "x4": nil,
				"top": {"x4", "x3", "x2", "x1"},
			},
			targets: []string{"top"},
		},
		{
			name: "disconnected components",
			graph: map[string][]string{
				"a": nil, "b": {"a"},
				"p": nil, "q": {"p"}, "r": {"q", "p"},
				"lonely": nil,
			},
			targets: []string{"r", "b", "lonely"},
		},
		{
			name:    "target is a dependency of another target",
			graph:   map[string][]string{"a": nil, "b": {"a"}, "c": {"b"}},
			targets: []string{"a", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order, err := Resolve(tt.targets, lookupIn(tt.graph))
			require.NoError(t, err)
			assertValidOrder(t, tt.graph, tt.targets, order)
		})
	}
}

func TestResolve_RandomDAGs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		n := 1 + rng.Intn(25)
		graph := randomDAG(rng, n, rng.Float64()*0.5)

		var targets []string
		for j := 0; j < n; j++ {
			if rng.Intn(4) == 0 {
				targets = append(targets, fmt.Sprintf("svc-%02d", j))
			}
		}
		if len(targets) == 0 {
			targets = []string{fmt.Sprintf("svc-%02d", n-1)}
		}
		rng.Shuffle(len(targets), func(a, b int) { targets[a], targets[b] = targets[b], targets[a] })

		t.Run(fmt.Sprintf("graph %d with %d nodes", i, n), func(t *testing.T) {
			order, err := Resolve(targets, lookupIn(graph))
			require.NoError(t, err)
			assertValidOrder(t, graph, targets, order)
		})
	}
}

func TestResolve_Deterministic(t *testing.T) {
	first, err := Resolve([]string{"sample-app"}, lookupIn(platform))
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		again, err := Resolve([]string{"sample-app"}, lookupIn(platform))
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestResolve_UnknownDependency(t *testing.T) {
	graph := map[string][]string{
		"minio": {"storage"},
	}

	_, err := Resolve([]string{"minio"}, lookupIn(graph))
	require.Error(t, err)

	var depErr *api.DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "storage", depErr.Unknown)
	assert.Equal(t, "minio", depErr.RequiredBy)

	_, err = Resolve([]string{"nope"}, lookupIn(graph))
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, "nope", depErr.Unknown)
	assert.Empty(t, depErr.RequiredBy)
}

func TestResolve_Cycle(t *testing.T) {
	graph := map[string][]string{
		"a": {"b"},
		"b": {"a"},
		"c": {"a"},
		"d": nil,
	}

	_, err := Resolve([]string{"c", "d"}, lookupIn(graph))
	require.Error(t, err)
	assert.True(t, api.IsDependencyError(err))

	var depErr *api.DependencyError
	require.ErrorAs(t, err, &depErr)
	// every node still waiting on a dependency, in insertion order
	assert.Equal(t, []string{"c", "a", "b"}, depErr.Cycle)
	assert.Contains(t, err.Error(), "circular dependency")
}

func TestReverse(t *testing.T) {
	assert.Equal(t, []string{}, Reverse(nil))
	assert.Equal(t, []string{"c", "b", "a"}, Reverse([]string{"a", "b", "c"}))

	order, err := Resolve([]string{"sample-app"}, lookupIn(platform))
	require.NoError(t, err)
	uninstall := Reverse(order)
	assert.Equal(t, []string{"sample-app", "minio", "cert-manager", "storage", "istio"}, uninstall)
	assert.Equal(t, order, Reverse(uninstall))
}
