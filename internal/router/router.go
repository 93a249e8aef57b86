// Package router maps client locations to views.
//
// The route table is ordered and the first matching route wins. Patterns are
// slash-separated segments; a segment starting with ':' captures one path
// segment as a named parameter and the pattern "*" matches any path.
package router

import (
	"net/url"
	"path"
	"strings"
)

// Kind identifies the view a location resolves to.
type Kind int

const (
	KindHome Kind = iota
	KindDashboard
	KindDetails
	KindForm
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindHome:
		return "home"
	case KindDashboard:
		return "dashboard"
	case KindDetails:
		return "details"
	case KindForm:
		return "form"
	case KindNotFound:
		return "not-found"
	default:
		return "unknown"
	}
}

// Client locations.
const (
	PathHome       = "/"
	PathActivities = "/activities"
	PathCreate     = "/createActivity"
	patternDetails = "/activities/:id"
	patternManage  = "/manage/:id"
	patternAny     = "*"
)

// ParamID is the parameter name used by the details and manage routes.
const ParamID = "id"

// ActivityPath returns the details location for id.
func ActivityPath(id string) string {
	return PathActivities + "/" + escapeSegment(id)
}

// ManagePath returns the edit form location for id.
func ManagePath(id string) string {
	return "/manage/" + escapeSegment(id)
}

// escapeSegment escapes id as one path segment. Dot segments are
// percent-encoded so Clean does not collapse them.
func escapeSegment(id string) string {
	if id == "." || id == ".." {
		return strings.ReplaceAll(id, ".", "%2E")
	}
	return url.PathEscape(id)
}

// Route binds one or more patterns to a view kind.
type Route struct {
	Kind     Kind
	Patterns []string
}

// DefaultRoutes is the client's route table.
var DefaultRoutes = []Route{
	{Kind: KindHome, Patterns: []string{PathHome}},
	{Kind: KindDashboard, Patterns: []string{PathActivities}},
	{Kind: KindDetails, Patterns: []string{patternDetails}},
	{Kind: KindForm, Patterns: []string{PathCreate, patternManage}},
	{Kind: KindNotFound, Patterns: []string{patternAny}},
}

// Match is the result of resolving a location.
type Match struct {
	Kind    Kind
	Path    string // cleaned location
	Pattern string // pattern that matched
	Params  map[string]string
}

// Param returns the named parameter or "".
func (m Match) Param(name string) string {
	return m.Params[name]
}

// Interior reports whether the location renders inside the navigation frame.
// Only the landing page is rendered without it.
func (m Match) Interior() bool {
	return m.Kind != KindHome
}

// Router resolves locations against an ordered route table.
type Router struct {
	routes []Route
}

// New creates a Router over routes. With no routes DefaultRoutes is used.
func New(routes ...Route) *Router {
	if len(routes) == 0 {
		routes = DefaultRoutes
	}
	return &Router{routes: routes}
}

// Match resolves location. A location no route accepts resolves to
// KindNotFound with no pattern.
func (r *Router) Match(location string) Match {
	p := Clean(location)
	for _, route := range r.routes {
		for _, pattern := range route.Patterns {
			if params, ok := matchPattern(pattern, p); ok {
				return Match{Kind: route.Kind, Path: p, Pattern: pattern, Params: params}
			}
		}
	}
	return Match{Kind: KindNotFound, Path: p}
}

// Clean strips any query or fragment from location and normalizes the
// remaining path: a leading slash, no trailing slash, no dot segments.
func Clean(location string) string {
	if i := strings.IndexAny(location, "?#"); i >= 0 {
		location = location[:i]
	}
	if !strings.HasPrefix(location, "/") {
		location = "/" + location
	}
	return path.Clean(location)
}

func matchPattern(pattern, p string) (map[string]string, bool) {
	if pattern == patternAny {
		return map[string]string{}, true
	}
	pSegs := segments(pattern)
	segs := segments(p)
	if len(pSegs) != len(segs) {
		return nil, false
	}
	params := make(map[string]string)
	for i, ps := range pSegs {
		if name, ok := strings.CutPrefix(ps, ":"); ok {
			v, err := url.PathUnescape(segs[i])
			if err != nil || v == "" {
				return nil, false
			}
			params[name] = v
			continue
		}
		if ps != segs[i] {
			return nil, false
		}
	}
	return params, true
}

func segments(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
