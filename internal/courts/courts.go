// Package courts holds the static reference table of Czech courts and
// their infosoud query codes.
package courts

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed court_map.yaml
var DefaultCourtMapYAML []byte

// Court describes one court as infosoud knows it. TypSoudu is required
// for URL construction; KrajOrg and Org are present only for courts
// below the supreme level.
type Court struct {
	Name     string `yaml:"name"`
	TypSoudu string `yaml:"typSoudu"`
	KrajOrg  string `yaml:"krajOrg,omitempty"`
	Org      string `yaml:"Org,omitempty"`
}

// Registry is an immutable name-keyed lookup of court descriptors.
type Registry struct {
	byName map[string]Court
}

// Load reads a court map YAML file from disk.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading court map: %w", err)
	}
	return parse(data)
}

// LoadDefault builds the registry from the embedded court map.
func LoadDefault() (*Registry, error) {
	return parse(DefaultCourtMapYAML)
}

func parse(data []byte) (*Registry, error) {
	var entries []Court
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing court map: %w", err)
	}

	byName := make(map[string]Court, len(entries))
	for _, c := range entries {
		if c.Name == "" {
			continue
		}
		byName[c.Name] = c
	}
	return &Registry{byName: byName}, nil
}

// Lookup returns the descriptor for a court name.
func (r *Registry) Lookup(name string) (Court, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Known reports whether a court name is present in the registry.
func (r *Registry) Known(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Len returns the number of registered courts.
func (r *Registry) Len() int {
	return len(r.byName)
}
