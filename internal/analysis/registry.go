package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"loom/internal/services"
)

// Registry loads analysis-type definitions from a directory of JSON files,
// one file per type, named "<type>.json".
type Registry struct {
	dir  string
	defs map[string]*Definition
}

// NewRegistry returns a registry reading from dir. Definitions are loaded
// on demand and cached.
func NewRegistry(dir string) *Registry {
	return &Registry{dir: dir, defs: map[string]*Definition{}}
}

// Load returns the definition for name. An absent file is a configuration
// error ("unknown analysis type").
func (r *Registry) Load(name string) (*Definition, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, services.Wrap(services.ErrConfiguration, "registry", "load", "empty analysis type name", nil)
	}
	if def, ok := r.defs[name]; ok {
		return def, nil
	}

	path := filepath.Join(r.dir, name+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, services.Wrap(services.ErrConfiguration, "registry", "load", fmt.Sprintf("unknown analysis type %q", name), nil)
		}
		return nil, services.Wrap(services.ErrConfiguration, "registry", "load", path, err)
	}

	def := new(Definition)
	if err := json.Unmarshal(data, def); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "registry", "parse", path, err)
	}
	if def.Name == "" {
		def.Name = name
	}
	if def.Name != name {
		return nil, services.Wrap(services.ErrConfiguration, "registry", "parse",
			fmt.Sprintf("definition name %q does not match file %q", def.Name, name), nil)
	}
	if strings.TrimSpace(def.Prompt) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "registry", "parse",
			fmt.Sprintf("analysis type %q has no prompt", name), nil)
	}

	r.defs[name] = def
	return def, nil
}

// Names lists every analysis type available in the registry directory.
func (r *Registry) Names() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "registry", "list", r.dir, err)
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// CheckCycles verifies the requires graph reachable from name is acyclic.
// A cyclic configuration would otherwise recurse without bound during
// resolution, so cycles are rejected up front as configuration errors.
func (r *Registry) CheckCycles(name string) error {
	return r.walkRequires(name, nil)
}

func (r *Registry) walkRequires(name string, trail []string) error {
	for _, seen := range trail {
		if seen == name {
			return services.Wrap(services.ErrConfiguration, "registry", "cycle",
				fmt.Sprintf("requires cycle: %s -> %s", strings.Join(trail, " -> "), name), nil)
		}
	}
	def, err := r.Load(name)
	if err != nil {
		return err
	}
	trail = append(trail, name)
	for _, req := range def.Requires {
		if err := r.walkRequires(req, trail); err != nil {
			return err
		}
	}
	return nil
}

// Validate loads every definition and checks that requires and
// optional_inputs reference real types and that no requires cycle exists.
func (r *Registry) Validate() error {
	names, err := r.Names()
	if err != nil {
		return err
	}
	for _, name := range names {
		def, err := r.Load(name)
		if err != nil {
			return err
		}
		for _, opt := range def.OptionalInputs {
			if _, err := r.Load(opt); err != nil {
				return services.Wrap(services.ErrConfiguration, "registry", "validate",
					fmt.Sprintf("%s: optional input %q", name, opt), err)
			}
		}
		if err := r.CheckCycles(name); err != nil {
			return err
		}
	}
	return nil
}
