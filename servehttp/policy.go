package servehttp

import (
	"net/http"
	"tenantry/account"
	"tenantry/authority"
	"tenantry/rbac"
	"tenantry/sessions"
)

// AccessPolicy lists the capability required by every authenticated route.
func AccessPolicy() authority.Policy {
	p := authority.Policy{}

	p.Require(authority.CapabilityAuthenticated, http.MethodGet,
		sessions.PathSession, rbac.PathDomains, rbac.PathUserRole+"/:id")

	p.Require(authority.CapabilityAdmin, http.MethodPost, rbac.AssignmentPaths...)
	p.Require(authority.CapabilityAdmin, http.MethodDelete, rbac.AssignmentPaths...)

	userPath := account.PathUser + "/:id"
	p.Require(authority.CapabilityRoot, http.MethodGet, account.PathUsers, userPath)
	p.Require(authority.CapabilityRoot, http.MethodPost, account.PathUser)
	p.Require(authority.CapabilityRoot, http.MethodPut, userPath)
	p.Require(authority.CapabilityRoot, http.MethodPatch, userPath)
	p.Require(authority.CapabilityRoot, http.MethodDelete, userPath)
	return p
}
