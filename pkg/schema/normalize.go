package schema

import "strings"

// normalizeToken lowercases and trims a raw tag so backend casing variants
// compare equal.
func normalizeToken(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeType maps a backend data-type tag onto the closed FieldType
// enumeration. The backend historically emitted Spanish camel-case tags
// ("Texto", "SeleccionUnica"); newer rows use the lowercase enum values
// directly. Unknown tags collapse to text rather than propagating untyped
// data into form logic.
func NormalizeType(raw string) FieldType {
	switch normalizeToken(raw) {
	case "number", "numero", "número", "numeric", "integer":
		return FieldTypeNumber
	case "date", "fecha":
		return FieldTypeDate
	case "radio", "seleccionunica", "selección única", "single":
		return FieldTypeRadio
	case "checkbox", "seleccionmultiple", "selección múltiple", "multi":
		return FieldTypeCheckbox
	case "textarea", "textolargo":
		return FieldTypeTextarea
	case "select", "lista":
		return FieldTypeSelect
	default:
		return FieldTypeText
	}
}

// parseGroups maps a row applicability tag onto a visibility restriction.
// "Ambos"/empty means no restriction.
func parseGroups(raw string) []Group {
	switch normalizeToken(raw) {
	case "", "ambos", "both", "all":
		return nil
	case "caso", "case":
		return []Group{GroupCase}
	case "control":
		return []Group{GroupControl}
	default:
		return nil
	}
}

// splitOptions breaks a comma-separated options string into a clean slice.
func splitOptions(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
