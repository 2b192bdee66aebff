// Package render produces a printable HTML rendition of a case report form:
// the sections and fields a given study group would see, optionally
// pre-filled from a saved snapshot. The output is meant for paper capture
// and review, not for interactive editing.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/flosch/pongo2/v6"
	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/datalab/go-crf/pkg/schema"
	"github.com/datalab/go-crf/pkg/visibility"
)

//go:embed templates/*.html
var templates embed.FS

const formTemplate = "templates/crf.html"

// Options controls a single render.
type Options struct {
	// Title heads the document; empty defaults to "Formulario CRF".
	Title string
	// Values pre-fills scalar fields and marks selected options. Keys are
	// field identifiers; values are strings or []string selections.
	Values map[string]any
	// Timestamp is printed in the header when non-zero.
	Timestamp time.Time
}

// Option customises a Renderer.
type Option func(*Renderer)

// WithTheme injects design tokens and CSS variables from a resolved theme
// configuration into the document stylesheet.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(r *Renderer) {
		r.theme = cfg
	}
}

// WithVisibility swaps the visibility evaluator used to decide which
// sections and fields appear for the requested group.
func WithVisibility(vis visibility.Evaluator) Option {
	return func(r *Renderer) {
		r.vis = vis
	}
}

// Renderer turns schemas into standalone HTML documents. It is safe for
// concurrent use once constructed.
type Renderer struct {
	tmpl   *pongo2.Template
	policy *bluemonday.Policy
	theme  *theme.RendererConfig
	vis    visibility.Evaluator
}

// New compiles the embedded template and returns a ready Renderer.
func New(options ...Option) (*Renderer, error) {
	set := pongo2.NewSet("crf", pongo2.NewFSLoader(templates))
	tmpl, err := set.FromFile(formTemplate)
	if err != nil {
		return nil, fmt.Errorf("render: compile template: %w", err)
	}
	r := &Renderer{
		tmpl:   tmpl,
		policy: bluemonday.StrictPolicy(),
		vis:    visibility.New(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	return r, nil
}

// Render produces the HTML document for the schema as seen by the given
// group. Schema text passes through a strict sanitizer before it reaches
// the template, so labels sourced from a remote variable catalog cannot
// smuggle markup into the page.
func (r *Renderer) Render(s schema.Schema, group schema.Group, opts Options) ([]byte, error) {
	title := opts.Title
	if title == "" {
		title = "Formulario CRF"
	}

	var sections []pongo2.Context
	for _, section := range s.Sections {
		if !r.vis.ShowSection(section, group) {
			continue
		}
		var fields []pongo2.Context
		for _, field := range section.Fields {
			if !r.vis.ShowField(field, group) {
				continue
			}
			fields = append(fields, r.fieldContext(field, opts.Values))
		}
		if len(fields) == 0 {
			continue
		}
		sections = append(sections, pongo2.Context{
			"title":  r.clean(section.Title),
			"fields": fields,
		})
	}

	var generated string
	if !opts.Timestamp.IsZero() {
		generated = opts.Timestamp.Format("2006-01-02 15:04")
	}

	var buf bytes.Buffer
	err := r.tmpl.ExecuteWriter(pongo2.Context{
		"title":     r.clean(title),
		"group":     string(group),
		"generated": generated,
		"css_vars":  cssVarsBlock(r.theme),
		"sections":  sections,
	}, &buf)
	if err != nil {
		return nil, fmt.Errorf("render: execute template: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) fieldContext(field schema.Field, values map[string]any) pongo2.Context {
	ctx := pongo2.Context{
		"label":    r.clean(field.Label),
		"required": field.Required,
		"tall":     field.Type == schema.FieldTypeTextarea,
		"hint":     r.clean(field.Placeholder),
		"value":    "",
		"marker":   "",
	}

	if field.IsChoice() {
		selected := selectedSet(values, field.ID)
		marker, checked := "○", "●"
		if field.Type == schema.FieldTypeCheckbox {
			marker, checked = "☐", "☑"
		}
		var options []pongo2.Context
		for _, opt := range field.Options {
			m := marker
			if selected[opt] {
				m = checked
			}
			options = append(options, pongo2.Context{"text": r.clean(opt), "marker": m})
		}
		ctx["options"] = options
		return ctx
	}

	if values != nil {
		ctx["value"] = r.clean(stringValue(values[field.ID]))
	}
	return ctx
}

func (r *Renderer) clean(s string) string {
	return r.policy.Sanitize(s)
}

func selectedSet(values map[string]any, id string) map[string]bool {
	out := make(map[string]bool)
	if values == nil {
		return out
	}
	switch v := values[id].(type) {
	case string:
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out[part] = true
			}
		}
	case []string:
		for _, part := range v {
			out[part] = true
		}
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				out[s] = true
			}
		}
	}
	return out
}

func stringValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// cssVarsBlock flattens theme CSS variables into a declaration block with
// deterministic ordering. Tokens without an explicit CSS variable get one
// derived from their name.
func cssVarsBlock(cfg *theme.RendererConfig) string {
	if cfg == nil {
		return ""
	}
	vars := make(map[string]string, len(cfg.CSSVars)+len(cfg.Tokens))
	for name, value := range cfg.Tokens {
		vars["--"+name] = value
	}
	for name, value := range cfg.CSSVars {
		vars[name] = value
	}
	if len(vars) == 0 {
		return ""
	}
	keys := make([]string, 0, len(vars))
	for key := range vars {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	var sb strings.Builder
	for _, key := range keys {
		fmt.Fprintf(&sb, "%s: %s; ", key, vars[key])
	}
	return strings.TrimSpace(sb.String())
}
