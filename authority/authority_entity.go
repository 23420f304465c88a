package authority

import (
	"strings"
)

const (
	RoleRoot          = "Root"
	RoleAdministrator = "Administrator"
)

// Capability is the access level a route demands from the caller.
type Capability string

const (
	CapabilityAuthenticated Capability = "authenticated"
	CapabilityAdmin         Capability = "admin"
	CapabilityRoot          Capability = "root"
)

// Permissions holds the names of the roles granted to a caller.
type Permissions []string

func (c Permissions) HasRole(role string) bool {
	for _, v := range c {
		if strings.EqualFold(v, role) {
			return true
		}
	}
	return false
}

func (c Permissions) HasAnyRole(roles ...string) bool {
	for _, role := range roles {
		if c.HasRole(role) {
			return true
		}
	}
	return false
}

// Grants reports whether the holder of c satisfies capability.
// Root implies admin; every signed-in caller is authenticated.
func (c Permissions) Grants(capability Capability) bool {
	switch capability {
	case CapabilityAuthenticated:
		return true
	case CapabilityAdmin:
		return c.HasAnyRole(RoleAdministrator, RoleRoot)
	case CapabilityRoot:
		return c.HasRole(RoleRoot)
	}
	return false
}
