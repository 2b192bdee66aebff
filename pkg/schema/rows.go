package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// VariableRow is the flat wire shape the variables endpoint returns. Two
// naming conventions coexist in the backend lineage (snake_case from raw SQL
// projections, camelCase from the DTO layer); both are accepted and the
// camelCase value wins when a row carries both.
type VariableRow struct {
	Code        string `json:"codigoVariable"`
	CodeAlt     string `json:"codigo_variable"`
	Label       string `json:"enunciado"`
	TypeTag     string `json:"tipoDato"`
	TypeTagAlt  string `json:"tipo_dato"`
	Options     string `json:"opciones"`
	AppliesTo   string `json:"aplicaA"`
	Section     string `json:"seccion"`
	Order       int    `json:"ordenEnunciado"`
	Required    bool   `json:"esObligatoria"`
	RequiredAlt bool   `json:"es_obligatoria"`
	Rule        string `json:"reglaValidacion"`
}

func (r VariableRow) code() string {
	if r.Code != "" {
		return r.Code
	}
	return r.CodeAlt
}

func (r VariableRow) typeTag() string {
	if r.TypeTag != "" {
		return r.TypeTag
	}
	return r.TypeTagAlt
}

func (r VariableRow) required() bool {
	return r.Required || r.RequiredAlt
}

// rowEnvelope tolerates the {data: [...]} wrapper some deployments emit.
type rowEnvelope struct {
	Data []VariableRow `json:"data"`
}

// DecodeRows decodes a variables payload that is either a bare JSON array of
// rows or wrapped in a {data: [...]} envelope.
func DecodeRows(raw []byte) ([]VariableRow, error) {
	var rows []VariableRow
	if err := json.Unmarshal(raw, &rows); err == nil {
		return rows, nil
	}
	var env rowEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("schema: decode variable rows: %w", err)
	}
	return env.Data, nil
}

// FromRows assembles a Schema out of flat variable rows. Sections appear in
// first-row order; fields within a section sort by their declared order with
// row order as the tie break. Rows without a code are dropped.
func FromRows(rows []VariableRow) Schema {
	type indexed struct {
		field Field
		order int
		pos   int
	}

	var sectionOrder []string
	sections := map[string][]indexed{}

	for i, row := range rows {
		code := row.code()
		if code == "" {
			continue
		}
		field := Field{
			ID:       code,
			Label:    row.Label,
			Type:     NormalizeType(row.typeTag()),
			Required: row.required(),
			Options:  splitOptions(row.Options),
			Groups:   parseGroups(row.AppliesTo),
		}
		if field.Label == "" {
			field.Label = code
		}
		if rule := parseRule(row.Rule); rule != nil {
			field.Validation = *rule
		}

		title := row.Section
		if title == "" {
			title = "Generales"
		}
		if _, seen := sections[title]; !seen {
			sectionOrder = append(sectionOrder, title)
		}
		sections[title] = append(sections[title], indexed{field: field, order: row.Order, pos: i})
	}

	out := Schema{}
	for _, title := range sectionOrder {
		entries := sections[title]
		sort.SliceStable(entries, func(a, b int) bool {
			if entries[a].order != entries[b].order {
				return entries[a].order < entries[b].order
			}
			return entries[a].pos < entries[b].pos
		})
		sec := Section{Title: title}
		for _, e := range entries {
			sec.Fields = append(sec.Fields, e.field)
		}
		out.Sections = append(out.Sections, sec)
	}
	return out
}

// parseRule decodes the per-row validation-rule JSON blob. Malformed rules
// are ignored rather than failing the whole schema load.
func parseRule(raw string) *Validation {
	if raw == "" {
		return nil
	}
	var v Validation
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil
	}
	return &v
}
