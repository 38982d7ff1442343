package app

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackctl/internal/api"
	"stackctl/internal/config"
	"stackctl/internal/definition"
	"stackctl/internal/template"
)

const certManagerDefinition = `
name: Cert Manager
namespace: cert-manager
description: Certificate management
install:
  - path: cert-manager/issuer.yaml
`

const istioDefinition = `
name: Istio
namespace: istio-system
dependencies: [cert-manager]
install:
  - path: istio/gateway.yaml
endpoints:
  - name: gateway
    url: https://gateway.{{ domain }}
`

const orphanDefinition = `
name: Orphan
install:
  - path: orphan/app.yaml
`

type recordingApplier struct {
	mu      sync.Mutex
	applied []string
}

func (a *recordingApplier) Apply(_ context.Context, manifest, namespace string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applied = append(a.applied, namespace+":"+manifest)
	return nil
}

func (a *recordingApplier) Delete(context.Context, string, string) error {
	return nil
}

type emptyReader struct{}

func (emptyReader) Get(context.Context, api.ResourceRef) (map[string]interface{}, bool, error) {
	return nil, false, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func manifestsDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "cert-manager", definition.FileName), certManagerDefinition)
	writeFile(t, filepath.Join(root, "cert-manager", "issuer.yaml"), "issuer in {{ .namespace }}")
	writeFile(t, filepath.Join(root, "istio", definition.FileName), istioDefinition)
	writeFile(t, filepath.Join(root, "istio", "gateway.yaml"), "gateway for {{ .domain }}")
	writeFile(t, filepath.Join(root, "orphan", definition.FileName), orphanDefinition)
	return root
}

func testStack() *config.Config {
	stack := config.GetDefaultConfig()
	stack.Environment["domain"] = "dev.example.local"
	stack.Services = map[string]config.ServiceConfig{
		"cert-manager": {Enabled: true, Version: "v1.13.0"},
		"istio":        {Enabled: true, Version: "1.20.0"},
		"minio":        {Enabled: true, Version: "7.1.1"},
	}
	return &stack
}

func newTestApplication(t *testing.T, applier *recordingApplier) *Application {
	t.Helper()
	dir := manifestsDir(t)
	cfg := NewConfig(false, true, "", dir, "")
	cfg.Stack = testStack()

	application, err := NewApplicationWithCollaborators(cfg, Collaborators{
		Renderer: template.NewFileRenderer(dir),
		Applier:  applier,
		Reader:   emptyReader{},
	})
	require.NoError(t, err)
	return application
}

func TestNewConfig(t *testing.T) {
	cfg := NewConfig(true, false, "/etc/stack.yaml", "", "/tmp/kubeconfig")

	assert.True(t, cfg.Debug)
	assert.False(t, cfg.Quiet)
	assert.Equal(t, "/etc/stack.yaml", cfg.ConfigPath)
	assert.Equal(t, DefaultManifestsDir, cfg.ManifestsDir)
	assert.Equal(t, "/tmp/kubeconfig", cfg.Kubeconfig)
	assert.Nil(t, cfg.Stack)
}

func TestNewApplicationWithCollaborators_RegistersConfiguredDefinitions(t *testing.T) {
	application := newTestApplication(t, &recordingApplier{})

	assert.ElementsMatch(t, []string{"cert-manager", "istio"}, application.Registry().IDs())
	assert.Equal(t, "dev.example.local", application.Stack().Domain())
}

func TestApplication_Targets(t *testing.T) {
	application := newTestApplication(t, &recordingApplier{})

	assert.Equal(t, []string{"cert-manager", "istio"}, application.Targets(nil))
	assert.Equal(t, []string{"istio"}, application.Targets([]string{"istio"}))
}

func TestApplication_UninstallTargets(t *testing.T) {
	dir := manifestsDir(t)
	cfg := NewConfig(false, true, "", dir, "")
	cfg.Stack = testStack()
	cfg.Stack.Services["istio"] = config.ServiceConfig{Enabled: false, Version: "1.20.0"}

	application, err := NewApplicationWithCollaborators(cfg, Collaborators{
		Renderer: template.NewFileRenderer(dir),
		Applier:  &recordingApplier{},
		Reader:   emptyReader{},
	})
	require.NoError(t, err)

	tests := []struct {
		name     string
		ids      []string
		expected []string
	}{
		{name: "no arguments includes disabled services", ids: nil, expected: []string{"cert-manager", "istio"}},
		{name: "explicit ids pass through", ids: []string{"istio"}, expected: []string{"istio"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ElementsMatch(t, tt.expected, application.UninstallTargets(tt.ids))
		})
	}

	assert.Equal(t, []string{"cert-manager"}, application.Targets(nil))
}

func TestApplication_ServiceSummaries(t *testing.T) {
	application := newTestApplication(t, &recordingApplier{})

	summaries := application.ServiceSummaries()
	require.Len(t, summaries, 3)

	assert.Equal(t, "cert-manager", summaries[0].ID)
	assert.Equal(t, "Cert Manager", summaries[0].Name)
	assert.Equal(t, "v1.13.0", summaries[0].Version)
	assert.True(t, summaries[0].Enabled)

	assert.Equal(t, []string{"cert-manager"}, summaries[1].Dependencies)

	assert.Equal(t, "orphan", summaries[2].ID)
	assert.Equal(t, "orphan", summaries[2].Namespace)
	assert.False(t, summaries[2].Enabled)
}

func TestApplication_InstallEndToEnd(t *testing.T) {
	applier := &recordingApplier{}
	application := newTestApplication(t, applier)

	err := application.Registry().InstallServices(context.Background(), []string{"istio"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"cert-manager:issuer in cert-manager",
		"istio-system:gateway for dev.example.local",
	}, applier.applied)

	istio, ok := application.Registry().Get("istio")
	require.True(t, ok)
	assert.Equal(t, api.StatusInstalled, istio.GetStatus())
}

func TestInitializeServices_Errors(t *testing.T) {
	t.Run("configuration not loaded", func(t *testing.T) {
		_, err := InitializeServices(NewConfig(false, true, "", t.TempDir(), ""), Collaborators{})
		assert.Error(t, err)
	})

	t.Run("invalid definition", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "broken", definition.FileName), "install:\n  - type: shell\n")

		cfg := NewConfig(false, true, "", dir, "")
		cfg.Stack = testStack()
		_, err := InitializeServices(cfg, Collaborators{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to load service definitions")
	})

	t.Run("missing manifests directory", func(t *testing.T) {
		cfg := NewConfig(false, true, "", filepath.Join(t.TempDir(), "absent"), "")
		cfg.Stack = testStack()
		services, err := InitializeServices(cfg, Collaborators{})
		require.NoError(t, err)
		assert.Empty(t, services.Registry.IDs())
	})
}

func TestNewApplication_Offline(t *testing.T) {
	dir := manifestsDir(t)
	configPath := filepath.Join(t.TempDir(), "stack.yaml")
	writeFile(t, configPath, `
environment:
  domain: platform.local
services:
  cert-manager:
    version: v1.13.0
`)

	cfg := NewConfig(false, true, configPath, dir, "")
	cfg.Offline = true

	application, err := NewApplication(cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"cert-manager"}, application.Registry().IDs())
	assert.Equal(t, "platform.local", application.Stack().Domain())
}

func TestNewApplication_ConfigErrors(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "stack.yaml")
	writeFile(t, configPath, "services: [not, a, map]\n")

	cfg := NewConfig(false, true, configPath, t.TempDir(), "")
	cfg.Offline = true

	_, err := NewApplication(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}
