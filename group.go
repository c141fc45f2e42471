package dispatch

import "strings"

// Group is a collection of routes under a shared prefix and shared tags.
type Group struct {
	parent Registrar
	prefix string
	tags   []string
}

// GroupOption configures a Group.
type GroupOption func(*Group)

// WithGroupTags adds default tags to all routes registered on the group.
func WithGroupTags(tags ...string) GroupOption {
	return func(g *Group) {
		g.tags = append(g.tags, tags...)
	}
}

// Group creates a route group with the given prefix and options.
func (a *App) Group(prefix string, opts ...GroupOption) *Group {
	return newGroup(a, prefix, opts)
}

// Group creates a nested group under g.
func (g *Group) Group(prefix string, opts ...GroupOption) *Group {
	return newGroup(g, prefix, opts)
}

func newGroup(parent Registrar, prefix string, opts []GroupOption) *Group {
	g := &Group{parent: parent, prefix: prefix}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// addRoute implements Registrar for Group.
func (g *Group) addRoute(r *route) {
	r.pattern = joinPath(g.prefix, r.pattern)
	r.tags = append(append([]string(nil), g.tags...), r.tags...)
	g.parent.addRoute(r)
}

func joinPath(prefix, pattern string) string {
	prefix = strings.Trim(prefix, "/")
	pattern = strings.Trim(pattern, "/")
	switch {
	case prefix == "":
		return "/" + pattern
	case pattern == "":
		return "/" + prefix
	}
	return "/" + prefix + "/" + pattern
}
