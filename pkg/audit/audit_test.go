package audit

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/datalab/go-crf/pkg/form"
	"github.com/datalab/go-crf/pkg/schema"
	"github.com/datalab/go-crf/pkg/visibility"
)

func auditSchema() schema.Schema {
	return schema.Schema{Sections: []schema.Section{
		{Title: "Generales", Fields: []schema.Field{
			{ID: "EDAD", Label: "Edad", Type: schema.FieldTypeNumber, Required: true},
			{ID: "NOTAS", Label: "Notas", Type: schema.FieldTypeTextarea},
		}},
		{Title: "Exposición", Groups: []schema.Group{schema.GroupCase}, Fields: []schema.Field{
			{ID: "EXPOSICION", Label: "Exposición", Type: schema.FieldTypeText, Required: true},
		}},
	}}
}

func filledBaseline(inst *form.Instance) {
	inst.Hydrate(map[string]any{form.IDFullName: "Ana Pérez"})
}

func TestStrict_AllVisibleFieldsGate(t *testing.T) {
	inst := form.Build(auditSchema(), schema.GroupControl)
	filledBaseline(inst)
	a := New(PolicyStrict, visibility.New())

	// NOTAS is optional but visible and empty: strict still reports it.
	want := []string{"Edad", "Notas"}
	if diff := cmp.Diff(want, a.MissingFields(inst)); diff != "" {
		t.Fatalf("missing fields (-want +got):\n%s", diff)
	}

	inst.Hydrate(map[string]any{"EDAD": "44", "NOTAS": "sin hallazgos"})
	if missing := a.MissingFields(inst); len(missing) != 0 {
		t.Fatalf("complete form still missing: %v", missing)
	}
}

func TestStrict_InvisibleFieldsSkipped(t *testing.T) {
	inst := form.Build(auditSchema(), schema.GroupControl)
	filledBaseline(inst)
	inst.Hydrate(map[string]any{"EDAD": "44", "NOTAS": "x"})
	a := New(PolicyStrict, visibility.New())

	// EXPOSICION is case-only; a control participant never owes it.
	if missing := a.MissingFields(inst); len(missing) != 0 {
		t.Fatalf("invisible section leaked into the audit: %v", missing)
	}

	inst.SetGroup(schema.GroupCase)
	want := []string{"Exposición"}
	if diff := cmp.Diff(want, a.MissingFields(inst)); diff != "" {
		t.Fatalf("case group audit (-want +got):\n%s", diff)
	}
}

func TestStrict_BaselineChecks(t *testing.T) {
	inst := form.Build(auditSchema(), schema.GroupControl)
	a := New(PolicyStrict, visibility.New())

	missing := a.MissingFields(inst)
	if len(missing) == 0 || missing[0] != "Nombre Completo" {
		t.Fatalf("empty full name should lead the report: %v", missing)
	}

	nombre, _ := inst.Control(form.IDFullName)
	if !nombre.Invalid() {
		t.Fatalf("strict audit should mark the control invalid")
	}

	grupo, _ := inst.Control(form.IDGroup)
	grupo.SetValue("")
	missing = a.MissingFields(inst)
	if missing[0] != "Grupo" {
		t.Fatalf("unanswered group should lead the report: %v", missing)
	}
}

func TestStrict_MarksFieldControlsInvalid(t *testing.T) {
	inst := form.Build(auditSchema(), schema.GroupControl)
	filledBaseline(inst)
	a := New(PolicyStrict, visibility.New())

	_ = a.MissingFields(inst)
	notas, _ := inst.Control("NOTAS")
	if !notas.Invalid() {
		t.Fatalf("strict audit should flag empty visible fields")
	}
}

func TestLenient_OnlyRequiredGate(t *testing.T) {
	inst := form.Build(auditSchema(), schema.GroupControl)
	a := New(PolicyLenient, visibility.New())

	want := []string{"Edad"}
	if diff := cmp.Diff(want, a.MissingFields(inst)); diff != "" {
		t.Fatalf("lenient audit (-want +got):\n%s", diff)
	}

	// Lenient never mutates controls.
	notas, _ := inst.Control("NOTAS")
	if notas.Invalid() {
		t.Fatalf("lenient audit must not flag optional fields")
	}

	inst.Hydrate(map[string]any{"EDAD": "44"})
	if missing := a.MissingFields(inst); len(missing) != 0 {
		t.Fatalf("lenient audit after fill: %v", missing)
	}
}

func TestAnalyzeAnswers(t *testing.T) {
	s := auditSchema()
	vis := visibility.New()

	complete, missing := AnalyzeAnswers(s, schema.GroupCase, []string{" edad ", "EXPOSICION"}, vis)
	if !complete || len(missing) != 0 {
		t.Fatalf("case-insensitive trimmed codes should match: %v", missing)
	}

	complete, missing = AnalyzeAnswers(s, schema.GroupCase, []string{"EDAD"}, vis)
	if complete {
		t.Fatalf("missing exposure answer should fail")
	}
	if diff := cmp.Diff([]string{"Exposición"}, missing); diff != "" {
		t.Fatalf("missing labels (-want +got):\n%s", diff)
	}

	// Controls never owe the case-only field.
	complete, _ = AnalyzeAnswers(s, schema.GroupControl, []string{"EDAD"}, vis)
	if !complete {
		t.Fatalf("control participant should be complete without case fields")
	}
}
