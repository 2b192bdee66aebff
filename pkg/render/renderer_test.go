package render

import (
	"strings"
	"testing"

	theme "github.com/goliatone/go-theme"

	"github.com/datalab/go-crf/pkg/schema"
	"github.com/datalab/go-crf/pkg/visibility"
)

func renderSchema() schema.Schema {
	return schema.Schema{Sections: []schema.Section{
		{Title: "Generales", Fields: []schema.Field{
			{ID: "EDAD", Label: "Edad", Type: schema.FieldTypeNumber, Required: true},
			{ID: "FUMA", Label: "Tabaquismo", Type: schema.FieldTypeRadio, Options: []string{"Sí", "No"}},
			{ID: "SINTOMAS", Label: "Síntomas", Type: schema.FieldTypeCheckbox, Options: []string{"Tos", "Fiebre"}},
			{ID: "NOTAS", Label: "Notas", Type: schema.FieldTypeTextarea},
		}},
		{Title: "Exposición", Groups: []schema.Group{schema.GroupCase}, Fields: []schema.Field{
			{ID: "EXPOSICION", Label: "Exposición", Type: schema.FieldTypeText},
		}},
	}}
}

func TestRender_SectionsAndFields(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := r.Render(renderSchema(), schema.GroupControl, Options{Title: "CRF Piloto"})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)

	for _, want := range []string{"CRF Piloto", "Generales", "Edad", "Tabaquismo", "○ Sí", "☐ Tos"} {
		if !strings.Contains(html, want) {
			t.Fatalf("output missing %q:\n%s", want, html)
		}
	}
	if strings.Contains(html, "Exposición") {
		t.Fatalf("case-only section rendered for a control form")
	}
}

func TestRender_CaseGroupIncludesRestrictedSection(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := r.Render(renderSchema(), schema.GroupCase, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(string(out), "Exposición") {
		t.Fatalf("case form should include the restricted section")
	}
}

func TestRender_SanitizesLabels(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	s := schema.Schema{Sections: []schema.Section{
		{Title: "Generales", Fields: []schema.Field{
			{ID: "X", Label: `Edad <script>alert("x")</script>`, Type: schema.FieldTypeText},
		}},
	}}
	out, err := r.Render(s, schema.GroupControl, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(out), "<script>") {
		t.Fatalf("markup survived sanitization:\n%s", out)
	}
	if !strings.Contains(string(out), "Edad") {
		t.Fatalf("label text should survive sanitization")
	}
}

func TestRender_PrefilledValues(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := r.Render(renderSchema(), schema.GroupControl, Options{
		Values: map[string]any{
			"EDAD":     "44",
			"FUMA":     "No",
			"SINTOMAS": []string{"Tos"},
		},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)

	if !strings.Contains(html, "44") {
		t.Fatalf("scalar value not rendered")
	}
	if !strings.Contains(html, "● No") || !strings.Contains(html, "○ Sí") {
		t.Fatalf("radio selection markers wrong:\n%s", html)
	}
	if !strings.Contains(html, "☑ Tos") || !strings.Contains(html, "☐ Fiebre") {
		t.Fatalf("checkbox selection markers wrong:\n%s", html)
	}
}

func TestRender_HidesForcedFields(t *testing.T) {
	r, err := New(WithVisibility(visibility.New("EDAD")))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := r.Render(renderSchema(), schema.GroupControl, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(string(out), "Edad") {
		t.Fatalf("force-hidden field rendered")
	}
}

func TestRender_ThemeCSSVars(t *testing.T) {
	r, err := New(WithTheme(&theme.RendererConfig{
		Tokens:  map[string]string{"accent": "#123456"},
		CSSVars: map[string]string{"--spacing": "1rem"},
	}))
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}

	out, err := r.Render(renderSchema(), schema.GroupControl, Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	html := string(out)
	if !strings.Contains(html, "--accent: #123456;") {
		t.Fatalf("token css var missing:\n%s", html)
	}
	if !strings.Contains(html, "--spacing: 1rem") {
		t.Fatalf("explicit css var missing:\n%s", html)
	}
}
