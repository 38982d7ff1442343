package helm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"sigs.k8s.io/yaml"

	"stackctl/internal/api"
	"stackctl/pkg/logging"
)

// execCommandContext is a variable to allow mocking in tests
var execCommandContext = exec.CommandContext

// Client drives the helm binary. It implements api.PackageManager.
type Client struct {
	binary     string
	kubeconfig string
}

var _ api.PackageManager = (*Client)(nil)

// New creates a client. A non-empty kubeconfig is passed to every helm
// invocation.
func New(kubeconfig string) *Client {
	return &Client{binary: "helm", kubeconfig: kubeconfig}
}

// CheckAvailable reports whether the helm binary can be found.
func (c *Client) CheckAvailable() error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("helm not found in PATH: %w", err)
	}
	return nil
}

// AddRepo registers a chart repository, replacing an existing entry of the
// same name.
func (c *Client) AddRepo(ctx context.Context, name, url string) error {
	_, err := c.run(ctx, "repo", "add", name, url, "--force-update")
	return err
}

// UpdateRepos refreshes every repository index.
func (c *Client) UpdateRepos(ctx context.Context) error {
	_, err := c.run(ctx, "repo", "update")
	return err
}

// Install installs a new release, creating its namespace if needed.
func (c *Client) Install(ctx context.Context, req api.ReleaseRequest) error {
	return c.release(ctx, "install", req, "--create-namespace")
}

// Upgrade upgrades an existing release.
func (c *Client) Upgrade(ctx context.Context, req api.ReleaseRequest) error {
	return c.release(ctx, "upgrade", req)
}

func (c *Client) release(ctx context.Context, verb string, req api.ReleaseRequest, extra ...string) error {
	args := []string{verb, req.Release, req.Chart, "-n", req.Namespace}
	args = append(args, extra...)
	if req.Version != "" {
		args = append(args, "--version", req.Version)
	}

	if len(req.Values) > 0 {
		path, err := writeValuesFile(req.Release, req.Values)
		if err != nil {
			return err
		}
		defer os.Remove(path)
		args = append(args, "-f", path)
	}

	logging.Debug("Helm", "%s %s (%s) in %s", verb, req.Release, req.Chart, req.Namespace)
	_, err := c.run(ctx, args...)
	return err
}

// Uninstall removes a release.
func (c *Client) Uninstall(ctx context.Context, release, namespace string) error {
	_, err := c.run(ctx, "uninstall", release, "-n", namespace)
	return err
}

// ListReleases lists the releases of namespace, or of all namespaces when
// namespace is empty.
func (c *Client) ListReleases(ctx context.Context, namespace string) ([]api.Release, error) {
	args := []string{"list", "-o", "json"}
	if namespace != "" {
		args = append(args, "-n", namespace)
	} else {
		args = append(args, "--all-namespaces")
	}

	out, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	var releases []api.Release
	if len(bytes.TrimSpace(out)) == 0 {
		return releases, nil
	}
	if err := json.Unmarshal(out, &releases); err != nil {
		return nil, fmt.Errorf("failed to parse helm list output: %w", err)
	}
	return releases, nil
}

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	if c.kubeconfig != "" {
		args = append(args, "--kubeconfig", c.kubeconfig)
	}

	cmd := execCommandContext(ctx, c.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		op := strings.Join(args[:min(2, len(args))], " ")
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("helm %s failed: %w: %s", op, err, msg)
		}
		return nil, fmt.Errorf("helm %s failed: %w", op, err)
	}
	return stdout.Bytes(), nil
}

func writeValuesFile(release string, values map[string]interface{}) (string, error) {
	data, err := yaml.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to marshal values for %s: %w", release, err)
	}

	f, err := os.CreateTemp("", release+"-values-*.yaml")
	if err != nil {
		return "", fmt.Errorf("failed to create values file for %s: %w", release, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write values file for %s: %w", release, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write values file for %s: %w", release, err)
	}
	return f.Name(), nil
}
