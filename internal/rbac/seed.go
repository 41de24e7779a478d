package rbac

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed seed.yaml
var seedYAML []byte

// SeedRole is a role definition expanded from the seed file.
type SeedRole struct {
	Name        string
	Permissions []string
}

type seedFile struct {
	Roles []struct {
		Name    string   `yaml:"name"`
		Groups  []string `yaml:"groups"`
		Actions []string `yaml:"actions"`
	} `yaml:"roles"`
}

// DefaultRoles returns the built-in roles.
func DefaultRoles() ([]SeedRole, error) {
	return ParseSeed(seedYAML)
}

// ParseSeed expands a YAML role seed document.
func ParseSeed(b []byte) ([]SeedRole, error) {
	var f seedFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse role seed: %w", err)
	}
	out := make([]SeedRole, 0, len(f.Roles))
	for _, r := range f.Roles {
		if r.Name == "" {
			return nil, fmt.Errorf("parse role seed: role without name")
		}
		perms := Expand(r.Groups, r.Actions)
		if len(perms) == 0 {
			return nil, fmt.Errorf("parse role seed: role %q grants nothing", r.Name)
		}
		out = append(out, SeedRole{Name: r.Name, Permissions: perms})
	}
	return out, nil
}
