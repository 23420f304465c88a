package authority

import (
	"net/http"
	"tenantry/bizerror"
)

// Route identifies an endpoint by method and route template, e.g. "GET /v1/user/:id".
type Route struct {
	Method string
	Path   string
}

func (r Route) String() string {
	return r.Method + " " + r.Path
}

// Policy maps routes to the capability required to call them.
// Routes without an entry are denied.
type Policy map[Route]Capability

// Require registers capability for method on every path.
func (p Policy) Require(capability Capability, method string, paths ...string) Policy {
	for _, path := range paths {
		p[Route{Method: method, Path: path}] = capability
	}
	return p
}

func (p Policy) Lookup(method, path string) (Capability, bool) {
	capability, found := p[Route{Method: method, Path: path}]
	return capability, found
}

func (p Policy) Authorize(method, path string, perms Permissions) error {
	if method == http.MethodHead {
		method = http.MethodGet
	}
	capability, found := p.Lookup(method, path)
	if !found {
		return bizerror.ErrNoPolicyForRoute
	}
	if !perms.Grants(capability) {
		return bizerror.ErrForbidden
	}
	return nil
}
