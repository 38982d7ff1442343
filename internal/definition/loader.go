package definition

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"sigs.k8s.io/yaml"

	"stackctl/internal/api"
	"stackctl/internal/config"
	"stackctl/pkg/logging"
)

// Loader reads service definitions from <root>/<id>/service.yaml.
// Loaded definitions are cached by id.
type Loader struct {
	root string

	mu    sync.Mutex
	cache map[string]*Definition
}

// NewLoader creates a loader rooted at root.
func NewLoader(root string) *Loader {
	return &Loader{
		root:  root,
		cache: make(map[string]*Definition),
	}
}

// Root returns the directory the loader reads from.
func (l *Loader) Root() string {
	return l.root
}

// Path returns the definition file path of id.
func (l *Loader) Path(id string) string {
	return filepath.Join(l.root, id, FileName)
}

// Load reads and validates the definition of id.
func (l *Loader) Load(id string) (*Definition, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if def, ok := l.cache[id]; ok {
		return def, nil
	}

	path := l.Path(id)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, api.NewNotFoundError("service definition", path)
		}
		return nil, fmt.Errorf("failed to read service definition %s: %w", path, err)
	}

	def, err := Parse(id, data, path)
	if err != nil {
		return nil, err
	}
	l.cache[id] = def
	logging.Debug("DefinitionLoader", "Loaded service definition %s from %s", id, path)
	return def, nil
}

// LoadAll loads every service directory under the root that contains a
// definition file, in directory-name order. A missing root yields no
// definitions.
func (l *Loader) LoadAll() ([]*Definition, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Warn("DefinitionLoader", "Service definition root %s does not exist", l.root)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read directory %s: %w", l.root, err)
	}

	var ids []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := os.Stat(l.Path(entry.Name())); err != nil {
			continue
		}
		ids = append(ids, entry.Name())
	}
	sort.Strings(ids)

	defs := make([]*Definition, 0, len(ids))
	for _, id := range ids {
		def, err := l.Load(id)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

// Parse decodes and validates a definition document. source names the
// document in errors.
func Parse(id string, data []byte, source string) (*Definition, error) {
	var def Definition
	if err := yaml.UnmarshalStrict(data, &def); err != nil {
		return nil, api.NewConfigError(source, "", err.Error())
	}
	def.ID = id
	normalize(&def)

	if err := Validate(&def, source); err != nil {
		return nil, err
	}
	return &def, nil
}

// normalize fills implicit defaults: steps without a type are manifest
// steps and duplicate dependencies collapse to their first occurrence.
func normalize(def *Definition) {
	for i := range def.Install {
		if def.Install[i].Kind == "" {
			def.Install[i].Kind = StepManifest
		}
	}

	seen := make(map[string]bool, len(def.Dependencies))
	deps := def.Dependencies[:0]
	for _, dep := range def.Dependencies {
		dep = strings.TrimSpace(dep)
		if dep == "" || seen[dep] {
			continue
		}
		seen[dep] = true
		deps = append(deps, dep)
	}
	def.Dependencies = deps
}

// Validate checks the load-time invariants of def and returns the first
// problem as an *api.ConfigError.
func Validate(def *Definition, source string) error {
	if !config.IsValidServiceID(def.ID) {
		return api.NewConfigError(source, "id", fmt.Sprintf("service id %q must be a lowercase DNS label", def.ID))
	}
	for _, dep := range def.Dependencies {
		if dep == def.ID {
			return api.NewConfigError(source, "dependencies", fmt.Sprintf("service %s depends on itself", def.ID))
		}
	}
	for i, step := range def.Install {
		if step.Kind != StepManifest && step.Kind != StepHelm {
			return api.NewConfigError(source, fmt.Sprintf("install[%d].type", i), fmt.Sprintf("unknown step type %q", step.Kind))
		}
	}

	if err := config.Validator().Struct(def); err != nil {
		errs := config.ConvertValidatorErrors(err)
		return api.NewConfigError(source, errs[0].Field, errs[0].Message)
	}
	return nil
}
