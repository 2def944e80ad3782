package rbac

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"gopkg.in/yaml.v3"

	"github.com/credisphere/credisphere/internal/shared"
)

// Registry is the immutable role → permissions table. It is built once at
// process start and only read afterwards, so it is safe for concurrent use.
type Registry struct {
	roles map[RoleName][]string
	sets  map[RoleName]map[string]struct{}
}

// NewRegistry copies table into a Registry. Role names are folded to their
// canonical form and permissions are lower-cased and deduplicated in order.
func NewRegistry(table map[RoleName][]string) *Registry {
	reg := &Registry{
		roles: make(map[RoleName][]string, len(table)),
		sets:  make(map[RoleName]map[string]struct{}, len(table)),
	}
	for name, perms := range table {
		key := canonicalRole(string(name))
		if key == "" {
			continue
		}
		normalized := normalizePermissions(append(reg.roles[key], perms...))
		reg.roles[key] = normalized
		set := make(map[string]struct{}, len(normalized))
		for _, p := range normalized {
			set[p] = struct{}{}
		}
		reg.sets[key] = set
	}
	return reg
}

// DefaultRegistry returns the built-in role table.
func DefaultRegistry() *Registry {
	member := append([]string{}, shared.ViewScopes()...)
	president := append(append([]string{}, member...),
		shared.PermCompetitionsEdit,
		shared.PermPowerTeamsEdit,
	)
	admin := append(append([]string{}, president...),
		shared.PermUsersView,
		shared.PermUsersEdit,
		shared.PermClubsEdit,
		shared.PermPartiesEdit,
		shared.PermCategoriesEdit,
	)
	return NewRegistry(map[RoleName][]string{
		RoleSuperAdmin: shared.CoreScopes(),
		RoleAdmin:      admin,
		RolePresident:  president,
		RoleMember:     member,
	})
}

type registryFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// Parse builds a Registry from a YAML document of the form
//
//	roles:
//	  admin: [users.view, users.edit]
//
// Roles outside the closed enumeration are rejected.
func Parse(data []byte) (*Registry, error) {
	var doc registryFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("rbac: parse roles: %w", err)
	}
	if len(doc.Roles) == 0 {
		return nil, errors.New("rbac: roles document defines no roles")
	}
	table := make(map[RoleName][]string, len(doc.Roles))
	for name, perms := range doc.Roles {
		key := canonicalRole(name)
		if !key.Valid() {
			return nil, fmt.Errorf("rbac: unknown role %q", name)
		}
		table[key] = append(table[key], perms...)
	}
	return NewRegistry(table), nil
}

// LoadFile reads a YAML role table from path.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("rbac: read roles file: %w", err)
	}
	return Parse(data)
}

// Roles returns the defined role names, sorted.
func (r *Registry) Roles() []RoleName {
	if r == nil {
		return nil
	}
	names := make([]RoleName, 0, len(r.roles))
	for name := range r.roles {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Permissions returns a copy of the permission list for name. Unknown roles
// yield an empty list.
func (r *Registry) Permissions(name RoleName) []string {
	if r == nil {
		return []string{}
	}
	perms := r.roles[canonicalRole(string(name))]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// Role returns the role definition and whether it exists.
func (r *Registry) Role(name RoleName) (Role, bool) {
	if r == nil {
		return Role{}, false
	}
	key := canonicalRole(string(name))
	if _, ok := r.roles[key]; !ok {
		return Role{}, false
	}
	return Role{Name: key, Permissions: r.Permissions(key)}, true
}

// Has reports whether role name grants perm.
func (r *Registry) Has(name RoleName, perm string) bool {
	if r == nil {
		return false
	}
	set, ok := r.sets[canonicalRole(string(name))]
	if !ok {
		return false
	}
	_, ok = set[normalizePermission(perm)]
	return ok
}

// Snapshot returns a deep copy of the whole table.
func (r *Registry) Snapshot() map[RoleName][]string {
	out := make(map[RoleName][]string)
	if r == nil {
		return out
	}
	for name := range r.roles {
		out[name] = r.Permissions(name)
	}
	return out
}

func canonicalRole(name string) RoleName {
	return RoleName(cases.Fold().String(strings.TrimSpace(name)))
}

func normalizePermission(p string) string {
	return strings.TrimSpace(strings.ToLower(p))
}

func normalizePermissions(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = normalizePermission(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}
