package dispatch

import (
	"fmt"
	"strings"
)

// segment is one compiled path template segment: a literal, or a named
// capture when capture is true.
type segment struct {
	value   string
	capture bool
}

// template is a compiled path template.
type template []segment

// splitPath trims separators and splits on "/", dropping empty segments.
func splitPath(p string) []string {
	parts := strings.Split(strings.Trim(p, "/"), "/")
	out := parts[:0]
	for _, s := range parts {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// compileTemplate parses a pattern such as "/schedules/{schedule_id}/tasks".
func compileTemplate(pattern string) (template, error) {
	parts := splitPath(pattern)
	t := make(template, 0, len(parts))
	seen := make(map[string]bool)
	for _, p := range parts {
		if !strings.HasPrefix(p, "{") || !strings.HasSuffix(p, "}") {
			if strings.ContainsAny(p, "{}") {
				return nil, fmt.Errorf("pattern %q: malformed segment %q", pattern, p)
			}
			t = append(t, segment{value: p})
			continue
		}
		name := p[1 : len(p)-1]
		if name == "" || strings.ContainsAny(name, "{}") {
			return nil, fmt.Errorf("pattern %q: malformed capture %q", pattern, p)
		}
		if seen[name] {
			return nil, fmt.Errorf("pattern %q: duplicate capture %q", pattern, name)
		}
		seen[name] = true
		t = append(t, segment{value: name, capture: true})
	}
	return t, nil
}

// captures returns the capture names in order.
func (t template) captures() []string {
	var out []string
	for _, s := range t {
		if s.capture {
			out = append(out, s.value)
		}
	}
	return out
}

// match binds the segments of an already split path. Literal segments
// compare case-sensitively; captures take the raw segment.
func (t template) match(parts []string) (map[string]string, bool) {
	if len(parts) != len(t) {
		return nil, false
	}
	var params map[string]string
	for i, s := range t {
		if !s.capture {
			if s.value != parts[i] {
				return nil, false
			}
			continue
		}
		if params == nil {
			params = make(map[string]string, len(t))
		}
		params[s.value] = parts[i]
	}
	if params == nil {
		params = map[string]string{}
	}
	return params, true
}

// routeTable is an ordered list of routes; the first match wins.
type routeTable []*route

// match finds the first route registered for method whose template matches
// path. The incoming method is upper-cased; registered methods are compared
// as stored.
func (rt routeTable) match(method, path string) (*route, map[string]string, bool) {
	method = strings.ToUpper(method)
	parts := splitPath(path)
	for _, r := range rt {
		if r.method != method {
			continue
		}
		if params, ok := r.tmpl.match(parts); ok {
			return r, params, true
		}
	}
	return nil, nil, false
}
