package permissions

import (
	_ "embed"
	"encoding/json"
	"slices"
	"strings"

	"dinebook/shared/role"

	"github.com/rs/zerolog/log"
)

//go:embed permissions.json
var permissionsData []byte

// Permission is the coarse gate for one route. Public routes accept
// anonymous callers; Roles, when set, lists the roles allowed through.
// Ownership checks happen later in the services.
type Permission struct {
	Roles  []string `json:"roles"`
	Path   string   `json:"path"`
	Method string   `json:"method"`
	Public bool     `json:"public"`
}

// Allows reports whether r may call the route.
func (p Permission) Allows(r role.Role) bool {
	if r == role.Anonymous {
		return p.Public
	}

	return len(p.Roles) == 0 || slices.Contains(p.Roles, r.String())
}

type PermissionData struct {
	Endpoints []Permission `json:"endpoints"`
	Skip      bool         `json:"skip"`
}

// normalizePath drops a trailing slash so "/v1/restaurants" and
// "/v1/restaurants/" resolve to the same entry.
func normalizePath(path string) string {
	if path == "/" {
		return path
	}

	return strings.TrimSuffix(path, "/")
}

// FindPermissions returns the entry for a route pattern. Unlisted routes get
// the zero Permission: authenticated, any role.
func (r *PermissionData) FindPermissions(path, method string) Permission {
	path = normalizePath(path)

	idx := slices.IndexFunc(r.Endpoints, func(rp Permission) bool {
		return rp.Path == path && rp.Method == method
	})

	if idx == -1 {
		return Permission{}
	}

	return r.Endpoints[idx]
}

func Get() *PermissionData {
	var permissions PermissionData

	err := json.Unmarshal(permissionsData, &permissions)
	if err != nil {
		log.Err(err).Msg("Failed to decode embedded permissions")

		return nil
	}

	for i := range permissions.Endpoints {
		permissions.Endpoints[i].Path = normalizePath(permissions.Endpoints[i].Path)
	}

	log.Info().Int("endpoints", len(permissions.Endpoints)).Msg("Successfully loaded embedded permissions")

	return &permissions
}
