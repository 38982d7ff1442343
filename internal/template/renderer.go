package template

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	texttemplate "text/template"

	"github.com/Masterminds/sprig/v3"
)

// FileRenderer renders manifest templates from disk with text/template and
// the sprig function map. Relative paths resolve against BaseDir.
type FileRenderer struct {
	BaseDir string
}

// NewFileRenderer creates a renderer rooted at baseDir.
func NewFileRenderer(baseDir string) *FileRenderer {
	return &FileRenderer{BaseDir: baseDir}
}

// Render renders the template at path. A value the template references but
// the context lacks is an error.
func (r *FileRenderer) Render(path string, values map[string]interface{}) (string, error) {
	full := path
	if !filepath.IsAbs(full) && r.BaseDir != "" {
		full = filepath.Join(r.BaseDir, path)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("failed to read manifest template %s: %w", full, err)
	}
	return RenderString(filepath.Base(path), string(data), values)
}

// RenderString renders an in-memory template.
func RenderString(name, text string, values map[string]interface{}) (string, error) {
	tmpl, err := texttemplate.New(name).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(text)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, values); err != nil {
		return "", fmt.Errorf("failed to render template %s: %w", name, err)
	}
	return buf.String(), nil
}
