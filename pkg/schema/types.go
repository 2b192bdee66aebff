package schema

// Group classifies a participant as a study case or a control. Section and
// field visibility can be restricted to a subset of groups.
type Group string

const (
	GroupCase    Group = "case"
	GroupControl Group = "control"
)

// ParseGroup normalizes a raw group tag (backend rows use "Caso"/"Control"/
// "Ambos" style tags, drafts store lowercase) into a Group. Unknown values
// default to control, matching the reference behaviour of treating missing
// group data as control.
func ParseGroup(raw string) Group {
	switch normalizeToken(raw) {
	case "case", "caso":
		return GroupCase
	default:
		return GroupControl
	}
}

// WireTag returns the uppercase backend enum value for the group. The
// backend persists the Spanish tags.
func (g Group) WireTag() string {
	if g == GroupCase {
		return "CASO"
	}
	return "CONTROL"
}

// FieldType is the closed enumeration of CRF field kinds.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeDate     FieldType = "date"
	FieldTypeRadio    FieldType = "radio"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
)

// Validation carries the optional constraints a field may declare. Numeric
// bounds only apply to number fields; pattern and length bounds apply to any
// text-bearing field. Nil pointers mean "no constraint".
type Validation struct {
	Min       *float64 `json:"min,omitempty" yaml:"min,omitempty"`
	Max       *float64 `json:"max,omitempty" yaml:"max,omitempty"`
	Pattern   string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	MinLength *int     `json:"minLength,omitempty" yaml:"minLength,omitempty"`
	MaxLength *int     `json:"maxLength,omitempty" yaml:"maxLength,omitempty"`
}

// Field describes a single CRF input. IDs are unique across the whole
// schema, not just within a section; the derived-value wiring and draft
// round-trips depend on that invariant.
type Field struct {
	ID          string     `json:"id" yaml:"id"`
	Label       string     `json:"label" yaml:"label"`
	Type        FieldType  `json:"type" yaml:"type"`
	Required    bool       `json:"required,omitempty" yaml:"required,omitempty"`
	Options     []string   `json:"options,omitempty" yaml:"options,omitempty"`
	Placeholder string     `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Groups      []Group    `json:"groups,omitempty" yaml:"groups,omitempty"`
	Validation  Validation `json:"validation,omitempty" yaml:"validation,omitempty"`
}

// IsChoice reports whether the field offers a fixed option list.
func (f Field) IsChoice() bool {
	switch f.Type {
	case FieldTypeRadio, FieldTypeCheckbox, FieldTypeSelect:
		return true
	}
	return false
}

// Section groups an ordered run of fields under a title. Order is
// significant: it drives display order and audit traversal order.
type Section struct {
	Title  string  `json:"title" yaml:"title"`
	Groups []Group `json:"groups,omitempty" yaml:"groups,omitempty"`
	Fields []Field `json:"fields" yaml:"fields"`
}

// Schema is the ordered collection of sections handed to a form instance.
// It is immutable once a form is built from it; structural edits require
// discarding the form and rebuilding.
type Schema struct {
	Sections []Section `json:"sections" yaml:"sections"`
}

// Fields returns every field in schema traversal order.
func (s Schema) Fields() []Field {
	var out []Field
	for _, sec := range s.Sections {
		out = append(out, sec.Fields...)
	}
	return out
}

// FieldByID returns the field with the given identifier. When duplicate IDs
// slip through a malformed schema the last definition wins, mirroring the
// factory's patch-over behaviour.
func (s Schema) FieldByID(id string) (Field, bool) {
	var found Field
	ok := false
	for _, sec := range s.Sections {
		for _, f := range sec.Fields {
			if f.ID == id {
				found = f
				ok = true
			}
		}
	}
	return found, ok
}

// Empty reports whether the schema holds no fields at all.
func (s Schema) Empty() bool {
	for _, sec := range s.Sections {
		if len(sec.Fields) > 0 {
			return false
		}
	}
	return true
}
