package auth

import (
	"net/http"
	"strings"
)

// Rule maps requests to the least role allowed to make them. An empty Method matches any
// method; a Path ending in "/" matches by prefix.
type Rule struct {
	Method string
	Path   string
	Role   Role
}

func (r Rule) matches(req *http.Request) bool {
	if r.Method != "" && r.Method != req.Method {
		return false
	}
	if strings.HasSuffix(r.Path, "/") {
		return strings.HasPrefix(req.URL.Path, r.Path)
	}
	return req.URL.Path == r.Path
}

// GridRules guard the grid front-end API. First match wins.
var GridRules = []Rule{
	{Method: http.MethodGet, Path: "/api/v1/grid", Role: RoleViewer},
	{Method: http.MethodGet, Path: "/api/v1/grid/stream", Role: RoleViewer},
	{Path: "/api/v1/grid/", Role: RoleEditor},
	{Method: http.MethodGet, Path: "/api/v1/notes", Role: RoleViewer},
	{Path: "/api/v1/notes", Role: RoleEditor},
	{Path: "/api/v1/report.pdf", Role: RoleViewer},
	{Path: "/api/v1/export", Role: RoleAdmin},
}

// Policy determines required roles by request.
type Policy struct {
	Rules          []Rule
	ExemptPaths    map[string]struct{}
	ExemptPrefixes []string
}

// NewDefaultPolicy builds a policy over GridRules with exemptions.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	set := make(map[string]struct{}, len(exemptPaths))
	for _, path := range exemptPaths {
		set[path] = struct{}{}
	}
	return Policy{Rules: GridRules, ExemptPaths: set, ExemptPrefixes: exemptPrefixes}
}

// IsExempt returns true when a request should skip auth/RBAC.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	if _, ok := p.ExemptPaths[r.URL.Path]; ok {
		return true
	}
	for _, prefix := range p.ExemptPrefixes {
		if strings.HasPrefix(r.URL.Path, prefix) {
			return true
		}
	}
	return false
}

// RequiredRole resolves the required role for the request. Unlisted /api/ routes need viewer
// for reads and editor otherwise; anything else is left alone.
func (p Policy) RequiredRole(r *http.Request) (Role, bool) {
	if r == nil {
		return "", false
	}
	for _, rule := range p.Rules {
		if rule.matches(r) {
			return rule.Role, true
		}
	}
	if !strings.HasPrefix(r.URL.Path, "/api/") {
		return "", false
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return RoleViewer, true
	default:
		return RoleEditor, true
	}
}
