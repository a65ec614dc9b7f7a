package auth

import (
	"net/http"
	"strings"
)

// Rule grants access to requests whose path matches Pattern. A "*" segment
// matches any single path segment. An empty Method matches every method.
type Rule struct {
	Method  string
	Pattern string
	Role    Role
}

func (r Rule) matches(method string, segments []string) bool {
	if r.Method != "" && r.Method != method {
		return false
	}
	want := splitPath(r.Pattern)
	if len(want) != len(segments) {
		return false
	}
	for i, seg := range want {
		if seg != "*" && seg != segments[i] {
			return false
		}
	}
	return true
}

// SlipRules guards the slip routes. Downloads disclose every owner's billing
// data and need operator; the QR preview needs viewer.
var SlipRules = []Rule{
	{Method: http.MethodGet, Pattern: "/api/v1/slips", Role: RoleOperator},
	{Method: http.MethodGet, Pattern: "/api/v1/slips/summary.xlsx", Role: RoleOperator},
	{Method: http.MethodGet, Pattern: "/api/v1/apartments/*/slip", Role: RoleOperator},
	{Method: http.MethodGet, Pattern: "/api/v1/apartments/*/qr.png", Role: RoleViewer},
}

// Policy maps requests to the role they require. Rules are tried in order;
// other /api/ requests need viewer for reads and admin for writes.
type Policy struct {
	exempt map[string]struct{}
	rules  []Rule
}

// NewDefaultPolicy builds a policy over SlipRules that lets exemptPaths
// through unauthenticated. Each entry of exemptPrefixes exempts a subtree.
func NewDefaultPolicy(exemptPaths []string, exemptPrefixes []string) Policy {
	p := NewPolicy(SlipRules, exemptPaths...)
	for _, prefix := range exemptPrefixes {
		p.exempt[strings.TrimRight(prefix, "/")+"/"] = struct{}{}
	}
	return p
}

// NewPolicy builds a policy from explicit rules.
func NewPolicy(rules []Rule, exemptPaths ...string) Policy {
	p := Policy{exempt: make(map[string]struct{}, len(exemptPaths)), rules: rules}
	for _, path := range exemptPaths {
		p.exempt[path] = struct{}{}
	}
	return p
}

// IsExempt reports whether a request skips authentication.
func (p Policy) IsExempt(r *http.Request) bool {
	if r == nil {
		return true
	}
	path := r.URL.Path
	if _, ok := p.exempt[path]; ok {
		return true
	}
	for entry := range p.exempt {
		if strings.HasSuffix(entry, "/") && strings.HasPrefix(path, entry) {
			return true
		}
	}
	return false
}

// RequiredRole resolves the role a request needs; ok is false for paths
// outside the API.
func (p Policy) RequiredRole(r *http.Request) (role Role, ok bool) {
	if r == nil {
		return "", false
	}
	segments := splitPath(r.URL.Path)
	for _, rule := range p.rules {
		if rule.matches(r.Method, segments) {
			return rule.Role, true
		}
	}

	if !strings.HasPrefix(r.URL.Path, "/api/") {
		return "", false
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return RoleViewer, true
	}
	return RoleAdmin, true
}

func splitPath(path string) []string {
	return strings.Split(strings.Trim(path, "/"), "/")
}
