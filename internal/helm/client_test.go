package helm

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackctl/internal/api"
)

// invocation is one recorded helm call.
type invocation struct {
	args   []string
	values string
}

type recorder struct {
	calls []invocation
	// fail makes the helper exit non-zero for this subcommand
	fail string
	// list is printed by the helper for "helm list"
	list string
}

// install swaps execCommandContext for the helper process and records every
// call. The values file, if any, is read while it still exists.
func (r *recorder) install(t *testing.T) {
	t.Helper()
	old := execCommandContext
	t.Cleanup(func() { execCommandContext = old })

	execCommandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		call := invocation{args: append([]string(nil), args...)}
		for i, a := range args {
			if a == "-f" && i+1 < len(args) {
				data, err := os.ReadFile(args[i+1])
				require.NoError(t, err)
				call.values = string(data)
			}
		}
		r.calls = append(r.calls, call)

		cs := []string{"-test.run=TestHelperProcess", "--", name}
		cs = append(cs, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = []string{
			"GO_WANT_HELPER_PROCESS=1",
			"HELM_MOCK_FAIL=" + r.fail,
			"HELM_MOCK_LIST=" + r.list,
		}
		return cmd
	}
}

// TestHelperProcess is a helper process for mocking exec.Command
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	args := os.Args
	for i, arg := range args {
		if arg == "--" {
			args = args[i+1:]
			break
		}
	}
	if len(args) < 2 || args[0] != "helm" {
		fmt.Fprintf(os.Stderr, "unexpected command %v\n", args)
		os.Exit(2)
	}

	sub := args[1]
	if sub == os.Getenv("HELM_MOCK_FAIL") {
		fmt.Fprintf(os.Stderr, "Error: %s: boom\n", sub)
		os.Exit(1)
	}
	if sub == "list" {
		fmt.Fprint(os.Stdout, os.Getenv("HELM_MOCK_LIST"))
	}
	os.Exit(0)
}

func TestClient_ArgumentVectors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		call     func(c *Client) error
		expected []string
	}{
		{
			name:     "add repo",
			call:     func(c *Client) error { return c.AddRepo(ctx, "jetstack", "https://charts.jetstack.io") },
			expected: []string{"repo", "add", "jetstack", "https://charts.jetstack.io", "--force-update"},
		},
		{
			name:     "update repos",
			call:     func(c *Client) error { return c.UpdateRepos(ctx) },
			expected: []string{"repo", "update"},
		},
		{
			name: "install with version",
			call: func(c *Client) error {
				return c.Install(ctx, api.ReleaseRequest{Release: "cert-manager", Chart: "jetstack/cert-manager", Namespace: "cert-manager", Version: "v1.13.0"})
			},
			expected: []string{"install", "cert-manager", "jetstack/cert-manager", "-n", "cert-manager", "--create-namespace", "--version", "v1.13.0"},
		},
		{
			name: "upgrade without version",
			call: func(c *Client) error {
				return c.Upgrade(ctx, api.ReleaseRequest{Release: "istiod", Chart: "istio/istiod", Namespace: "istio-system"})
			},
			expected: []string{"upgrade", "istiod", "istio/istiod", "-n", "istio-system"},
		},
		{
			name:     "uninstall",
			call:     func(c *Client) error { return c.Uninstall(ctx, "istiod", "istio-system") },
			expected: []string{"uninstall", "istiod", "-n", "istio-system"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &recorder{}
			r.install(t)

			require.NoError(t, tt.call(New("")))
			require.Len(t, r.calls, 1)
			assert.Equal(t, tt.expected, r.calls[0].args)
		})
	}
}

func TestClient_InstallWritesValuesFile(t *testing.T) {
	r := &recorder{}
	r.install(t)

	c := New("/tmp/kubeconfig")
	err := c.Install(context.Background(), api.ReleaseRequest{
		Release:   "openebs",
		Chart:     "openebs/openebs",
		Namespace: "openebs",
		Values:    map[string]interface{}{"engines": map[string]interface{}{"replicated": false}},
	})
	require.NoError(t, err)
	require.Len(t, r.calls, 1)

	args := r.calls[0].args
	assert.Equal(t, []string{"--kubeconfig", "/tmp/kubeconfig"}, args[len(args)-2:])
	assert.Contains(t, args, "-f")
	assert.Contains(t, r.calls[0].values, "replicated: false")

	// the values file is removed afterwards
	for i, a := range args {
		if a == "-f" {
			_, statErr := os.Stat(args[i+1])
			assert.True(t, os.IsNotExist(statErr))
		}
	}
}

func TestClient_ErrorsCarryStderr(t *testing.T) {
	r := &recorder{fail: "install"}
	r.install(t)

	err := New("").Install(context.Background(), api.ReleaseRequest{Release: "minio", Chart: "minio/operator", Namespace: "minio"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "helm install minio failed")
	assert.Contains(t, err.Error(), "Error: install: boom")
}

func TestClient_ListReleases(t *testing.T) {
	r := &recorder{list: `[{"name":"istiod","namespace":"istio-system","revision":"2","updated":"2024-01-01","status":"deployed","chart":"istiod-1.20.0","app_version":"1.20.0"}]`}
	r.install(t)

	c := New("")
	releases, err := c.ListReleases(context.Background(), "istio-system")
	require.NoError(t, err)
	require.Len(t, releases, 1)
	assert.Equal(t, api.Release{Name: "istiod", Namespace: "istio-system", Revision: "2", Status: "deployed", Chart: "istiod-1.20.0", AppVersion: "1.20.0"}, releases[0])
	assert.Equal(t, []string{"list", "-o", "json", "-n", "istio-system"}, r.calls[0].args)

	_, err = c.ListReleases(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, []string{"list", "-o", "json", "--all-namespaces"}, r.calls[1].args)
}

func TestClient_ListReleasesEmptyAndMalformed(t *testing.T) {
	r := &recorder{}
	r.install(t)

	releases, err := New("").ListReleases(context.Background(), "default")
	require.NoError(t, err)
	assert.Empty(t, releases)

	r.list = "not json"
	_, err = New("").ListReleases(context.Background(), "default")
	assert.ErrorContains(t, err, "failed to parse helm list output")
}
