package dependency

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackctl/internal/api"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.NotNil(t, g.nodes)
	assert.Equal(t, 0, g.Len())
}

func TestAddNode(t *testing.T) {
	tests := []struct {
		name          string
		nodes         []Node
		expectedOrder []string
	}{
		{
			name:          "add single node",
			nodes:         []Node{{ID: "istio"}},
			expectedOrder: []string{"istio"},
		},
		{
			name: "add multiple nodes",
			nodes: []Node{
				{ID: "istio"},
				{ID: "cert-manager", DependsOn: []string{"istio"}},
				{ID: "minio", DependsOn: []string{"cert-manager"}},
			},
			expectedOrder: []string{"istio", "cert-manager", "minio"},
		},
		{
			name: "replace existing node keeps position",
			nodes: []Node{
				{ID: "storage"},
				{ID: "istio"},
				{ID: "storage", DependsOn: []string{"istio"}},
			},
			expectedOrder: []string{"storage", "istio"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := New()
			for _, n := range tt.nodes {
				g.AddNode(n)
			}
			assert.Equal(t, tt.expectedOrder, g.IDs())
		})
	}
}

func TestAddNode_CopiesDependencies(t *testing.T) {
	deps := []string{"istio"}
	g := New()
	g.AddNode(Node{ID: "cert-manager", DependsOn: deps})
	deps[0] = "mutated"

	assert.Equal(t, []string{"istio"}, g.Dependencies("cert-manager"))

	got := g.Dependencies("cert-manager")
	got[0] = "mutated"
	assert.Equal(t, []string{"istio"}, g.Get("cert-manager").DependsOn)
}

func TestGraphQueries(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "istio"})
	g.AddNode(Node{ID: "cert-manager", DependsOn: []string{"istio"}})
	g.AddNode(Node{ID: "sample-app", DependsOn: []string{"istio", "cert-manager"}})

	assert.Nil(t, g.Get("nope"))
	assert.Nil(t, g.Dependencies("nope"))
	assert.Empty(t, g.Dependencies("istio"))
	assert.Equal(t, []string{"cert-manager", "sample-app"}, g.Dependents("istio"))
	assert.Equal(t, []string{"sample-app"}, g.Dependents("cert-manager"))
	assert.Empty(t, g.Dependents("sample-app"))
}

func TestTopologicalSort_Cycle(t *testing.T) {
	g := New()
	g.AddNode(Node{ID: "a", DependsOn: []string{"b"}})
	g.AddNode(Node{ID: "b", DependsOn: []string{"a"}})
	g.AddNode(Node{ID: "c"})

	_, err := g.TopologicalSort()
	require.Error(t, err)

	var depErr *api.DependencyError
	require.ErrorAs(t, err, &depErr)
	assert.Equal(t, []string{"a", "b"}, depErr.Cycle)
}
