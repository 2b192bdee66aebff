package schema

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Extension keys recognised on OpenAPI property schemas. They let a site
// that already maintains an OpenAPI description of its instruments reuse it
// as a CRF schema source without a separate document.
const (
	extSection = "x-crf-section"
	extGroups  = "x-crf-groups"
	extOrder   = "x-crf-order"
	extType    = "x-crf-type"
)

// FromOpenAPI derives a Schema from a named component schema inside an
// OpenAPI 3 document. Each property becomes a field; the x-crf-* extensions
// control sectioning, ordering, group restriction, and field-type overrides.
// Properties without a section extension land in a "Generales" section.
func FromOpenAPI(ctx context.Context, raw []byte, component string) (Schema, error) {
	if len(raw) == 0 {
		return Schema{}, errors.New("schema: openapi document is empty")
	}
	loader := &openapi3.Loader{Context: ctx}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return Schema{}, fmt.Errorf("schema: load openapi document: %w", err)
	}
	if doc.Components == nil || len(doc.Components.Schemas) == 0 {
		return Schema{}, errors.New("schema: openapi document has no component schemas")
	}
	ref, ok := doc.Components.Schemas[component]
	if !ok || ref == nil || ref.Value == nil {
		return Schema{}, fmt.Errorf("schema: component schema %q not found", component)
	}

	src := ref.Value
	required := map[string]bool{}
	for _, name := range src.Required {
		required[name] = true
	}

	type entry struct {
		field   Field
		section string
		order   int
	}
	entries := make([]entry, 0, len(src.Properties))
	for name, prop := range src.Properties {
		if prop == nil || prop.Value == nil {
			continue
		}
		f := fieldFromProperty(name, prop.Value)
		f.Required = required[name]
		entries = append(entries, entry{
			field:   f,
			section: stringExtension(prop.Value.Extensions, extSection, "Generales"),
			order:   intExtension(prop.Value.Extensions, extOrder),
		})
	}

	sort.SliceStable(entries, func(a, b int) bool {
		if entries[a].order != entries[b].order {
			return entries[a].order < entries[b].order
		}
		return entries[a].field.ID < entries[b].field.ID
	})

	out := Schema{}
	index := map[string]int{}
	for _, e := range entries {
		i, seen := index[e.section]
		if !seen {
			out.Sections = append(out.Sections, Section{Title: e.section})
			i = len(out.Sections) - 1
			index[e.section] = i
		}
		out.Sections[i].Fields = append(out.Sections[i].Fields, e.field)
	}
	return out, nil
}

func fieldFromProperty(name string, src *openapi3.Schema) Field {
	f := Field{
		ID:     name,
		Label:  src.Title,
		Groups: groupsExtension(src.Extensions),
	}
	if f.Label == "" {
		f.Label = name
	}

	enum := src.Enum
	if len(enum) == 0 && src.Items != nil && src.Items.Value != nil {
		enum = src.Items.Value.Enum
	}
	for _, raw := range enum {
		f.Options = append(f.Options, fmt.Sprint(raw))
	}

	if override := stringExtension(src.Extensions, extType, ""); override != "" {
		f.Type = NormalizeType(override)
	} else {
		f.Type = typeFromOpenAPI(src, len(f.Options) > 0)
	}

	if f.Type == FieldTypeRadio && len(f.Options) == 0 {
		f.Options = []string{"Sí", "No"}
	}

	if src.Min != nil {
		v := *src.Min
		f.Validation.Min = &v
	}
	if src.Max != nil {
		v := *src.Max
		f.Validation.Max = &v
	}
	if src.MinLength != 0 {
		v := int(src.MinLength)
		f.Validation.MinLength = &v
	}
	if src.MaxLength != nil {
		v := int(*src.MaxLength)
		f.Validation.MaxLength = &v
	}
	f.Validation.Pattern = src.Pattern
	return f
}

func typeFromOpenAPI(src *openapi3.Schema, hasOptions bool) FieldType {
	var primary string
	if src.Type != nil {
		if values := src.Type.Slice(); len(values) > 0 {
			primary = values[0]
		}
	}
	switch primary {
	case "number", "integer":
		return FieldTypeNumber
	case "boolean":
		return FieldTypeRadio
	case "array":
		return FieldTypeCheckbox
	case "string":
		if src.Format == "date" || src.Format == "date-time" {
			return FieldTypeDate
		}
		if hasOptions {
			return FieldTypeSelect
		}
		return FieldTypeText
	default:
		return FieldTypeText
	}
}

func stringExtension(ext map[string]any, key, fallback string) string {
	if raw, ok := ext[key]; ok {
		if s, ok := raw.(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return fallback
}

func intExtension(ext map[string]any, key string) int {
	switch v := ext[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func groupsExtension(ext map[string]any) []Group {
	raw, ok := ext[extGroups]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case string:
		return parseGroups(v)
	case []any:
		var out []Group
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, ParseGroup(s))
			}
		}
		return out
	}
	return nil
}
