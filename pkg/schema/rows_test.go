package schema

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeRows_BareArray(t *testing.T) {
	raw := []byte(`[{"codigoVariable":"EDAD","enunciado":"Edad","tipoDato":"Numero"}]`)

	rows, err := DecodeRows(raw)
	if err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 1 || rows[0].Code != "EDAD" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestDecodeRows_DataEnvelope(t *testing.T) {
	raw := []byte(`{"data":[{"codigo_variable":"SEXO","enunciado":"Sexo"}]}`)

	rows, err := DecodeRows(raw)
	if err != nil {
		t.Fatalf("decode rows: %v", err)
	}
	if len(rows) != 1 || rows[0].CodeAlt != "SEXO" {
		t.Fatalf("unexpected rows: %+v", rows)
	}
}

func TestDecodeRows_Malformed(t *testing.T) {
	if _, err := DecodeRows([]byte(`{"data":`)); err == nil {
		t.Fatalf("expected error for malformed payload")
	}
}

func TestFromRows_SectionsAndOrdering(t *testing.T) {
	rows := []VariableRow{
		{Code: "B", Label: "Segunda", Section: "Generales", Order: 2},
		{Code: "A", Label: "Primera", Section: "Generales", Order: 1},
		{Code: "C", Label: "Clínica", Section: "Antecedentes", Order: 1},
		{Code: "", Label: "sin código"},
	}

	s := FromRows(rows)
	if len(s.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(s.Sections))
	}
	if s.Sections[0].Title != "Generales" || s.Sections[1].Title != "Antecedentes" {
		t.Fatalf("sections out of order: %+v", s.Sections)
	}
	var ids []string
	for _, f := range s.Sections[0].Fields {
		ids = append(ids, f.ID)
	}
	if diff := cmp.Diff([]string{"A", "B"}, ids); diff != "" {
		t.Fatalf("field order mismatch (-want +got):\n%s", diff)
	}
}

func TestFromRows_DefaultsAndDualNaming(t *testing.T) {
	rows := []VariableRow{
		{CodeAlt: "TABACO", TypeTagAlt: "SeleccionUnica", Options: "Sí,No", RequiredAlt: true, AppliesTo: "Caso"},
	}

	s := FromRows(rows)
	f, ok := s.FieldByID("TABACO")
	if !ok {
		t.Fatalf("expected snake_case row to produce a field")
	}
	if f.Label != "TABACO" {
		t.Fatalf("label should default to the code, got %q", f.Label)
	}
	if f.Type != FieldTypeRadio || !f.Required {
		t.Fatalf("alt columns not honoured: %+v", f)
	}
	if diff := cmp.Diff([]Group{GroupCase}, f.Groups); diff != "" {
		t.Fatalf("groups mismatch (-want +got):\n%s", diff)
	}
	if s.Sections[0].Title != "Generales" {
		t.Fatalf("blank section should fall back, got %q", s.Sections[0].Title)
	}
}

func TestFromRows_ValidationRule(t *testing.T) {
	rows := []VariableRow{
		{Code: "EDAD", TypeTag: "Numero", Rule: `{"min":18,"max":99}`},
		{Code: "NOTA", Rule: `{not json`},
	}

	s := FromRows(rows)
	edad, _ := s.FieldByID("EDAD")
	if edad.Validation.Min == nil || *edad.Validation.Min != 18 {
		t.Fatalf("min rule not decoded: %+v", edad.Validation)
	}
	if edad.Validation.Max == nil || *edad.Validation.Max != 99 {
		t.Fatalf("max rule not decoded: %+v", edad.Validation)
	}
	nota, _ := s.FieldByID("NOTA")
	if nota.Validation != (Validation{}) {
		t.Fatalf("malformed rule should be ignored, got %+v", nota.Validation)
	}
}
