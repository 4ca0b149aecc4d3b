package permissions

import (
	"embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// RolePolicy is one role's grant set as declared in the policy file.
type RolePolicy struct {
	Description string   `yaml:"description"`
	Permissions []string `yaml:"permissions"`
}

type policyFile struct {
	Roles map[string]RolePolicy `yaml:"roles"`
}

// Registry maps directory roles to permission sets. Policies ship embedded in
// the binary; the registry is read-only after construction apart from the
// lock guarding lazy lookups.
type Registry struct {
	roles map[string]RolePolicy
	mu    sync.RWMutex
}

// NewRegistry loads the embedded role policy file.
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/roles.yaml")
	if err != nil {
		return nil, fmt.Errorf("read role policy: %w", err)
	}

	var pf policyFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("unmarshal role policy: %w", err)
	}
	if len(pf.Roles) == 0 {
		return nil, fmt.Errorf("role policy declares no roles")
	}

	return &Registry{roles: pf.Roles}, nil
}

// PermissionsForRole returns the permission set granted to a role. An unknown
// role resolves to no permissions rather than an error: directory entries can
// carry roles the policy no longer knows about.
func (r *Registry) PermissionsForRole(role string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	policy, ok := r.roles[role]
	if !ok {
		return nil
	}
	out := make([]string, len(policy.Permissions))
	copy(out, policy.Permissions)
	return out
}

// RoleHasPermission reports whether a role's policy grants perm.
func (r *Registry) RoleHasPermission(role, perm string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	policy, ok := r.roles[role]
	if !ok {
		return false
	}
	for _, p := range policy.Permissions {
		if p == perm {
			return true
		}
	}
	return false
}

// RolesWithPermission returns every role whose policy grants perm.
func (r *Registry) RolesWithPermission(perm string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for role, policy := range r.roles {
		for _, p := range policy.Permissions {
			if p == perm {
				out = append(out, role)
				break
			}
		}
	}
	return out
}
