package dispatch

import (
	"encoding/json"
	"io"
	"net/http"

	"gopkg.in/yaml.v3"
)

// Doc describes an application and its routes.
type Doc struct {
	Title   string     `json:"title,omitempty" yaml:"title,omitempty"`
	Version string     `json:"version,omitempty" yaml:"version,omitempty"`
	Routes  []RouteDoc `json:"routes" yaml:"routes"`
}

// RouteDoc describes a registered route.
type RouteDoc struct {
	Method      string     `json:"method" yaml:"method"`
	Path        string     `json:"path" yaml:"path"`
	Status      int        `json:"status" yaml:"status"`
	Summary     string     `json:"summary,omitempty" yaml:"summary,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Tags        []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Deprecated  bool       `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Params      []ParamDoc `json:"params,omitempty" yaml:"params,omitempty"`
}

// ParamDoc describes one handler parameter.
type ParamDoc struct {
	Name        string `json:"name" yaml:"name"`
	Kind        string `json:"kind" yaml:"kind"`
	Type        string `json:"type" yaml:"type"`
	Default     any    `json:"default,omitempty" yaml:"default,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Dependency  string `json:"dependency,omitempty" yaml:"dependency,omitempty"`
}

// Routes describes every route in registration order. A route without an
// explicit status reports 200.
func (a *App) Routes() []RouteDoc {
	table := a.table()
	out := make([]RouteDoc, 0, len(table))
	for _, r := range table {
		status := r.status
		if status == 0 {
			status = http.StatusOK
		}
		doc := RouteDoc{
			Method:      r.method,
			Path:        r.pattern,
			Status:      status,
			Summary:     r.summary,
			Description: r.desc,
			Tags:        r.tags,
			Deprecated:  r.deprecated,
		}
		for _, p := range r.params {
			doc.Params = append(doc.Params, ParamDoc{
				Name:        p.Name,
				Kind:        p.Kind.String(),
				Type:        p.Type.String(),
				Default:     p.Default,
				Description: p.Description,
				Dependency:  p.Dependency,
			})
		}
		out = append(out, doc)
	}
	return out
}

// Doc returns the application description.
func (a *App) Doc() Doc {
	return Doc{Title: a.title, Version: a.version, Routes: a.Routes()}
}

// WriteRoutes writes Doc as indented JSON to w.
func (a *App) WriteRoutes(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(a.Doc())
}

// WriteRoutesYAML writes Doc as YAML to w.
func (a *App) WriteRoutesYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(a.Doc()); err != nil {
		return err
	}
	return enc.Close()
}
