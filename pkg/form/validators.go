package form

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/datalab/go-crf/pkg/schema"
)

// Required rejects empty values: nil, blank strings, and zero-length
// multi-choice selections.
func Required(value any) error {
	if IsEmpty(value) {
		return fmt.Errorf("form: value is required")
	}
	return nil
}

// Min rejects numeric values below the bound. Non-numeric values pass; the
// presence check is Required's job.
func Min(bound float64) Validator {
	return func(value any) error {
		n, ok := toNumber(value)
		if !ok {
			return nil
		}
		if n < bound {
			return fmt.Errorf("form: value %v is below minimum %v", n, bound)
		}
		return nil
	}
}

// Max rejects numeric values above the bound.
func Max(bound float64) Validator {
	return func(value any) error {
		n, ok := toNumber(value)
		if !ok {
			return nil
		}
		if n > bound {
			return fmt.Errorf("form: value %v is above maximum %v", n, bound)
		}
		return nil
	}
}

// Pattern rejects strings that do not match the expression. An invalid
// expression yields a validator that always fails, surfacing the schema
// mistake at the field instead of panicking the form.
func Pattern(expr string) Validator {
	re, err := regexp.Compile(expr)
	return func(value any) error {
		s := stringValue(value)
		if s == "" {
			return nil
		}
		if err != nil {
			return fmt.Errorf("form: invalid pattern %q: %w", expr, err)
		}
		if !re.MatchString(s) {
			return fmt.Errorf("form: value does not match pattern %q", expr)
		}
		return nil
	}
}

// MinLength rejects strings shorter than n and multi-choice selections with
// fewer than n options.
func MinLength(n int) Validator {
	return func(value any) error {
		if IsEmpty(value) {
			return nil
		}
		if length(value) < n {
			return fmt.Errorf("form: value is shorter than %d", n)
		}
		return nil
	}
}

// MaxLength rejects strings longer than n.
func MaxLength(n int) Validator {
	return func(value any) error {
		if length(value) > n {
			return fmt.Errorf("form: value is longer than %d", n)
		}
		return nil
	}
}

// ValidatorsFor assembles the conjunctive validator chain for a field:
// presence for required fields, numeric bounds for number fields, and
// pattern plus length bounds for any field that declares them.
func ValidatorsFor(field schema.Field) []Validator {
	var out []Validator
	if field.Required {
		out = append(out, Required)
		if field.Type == schema.FieldTypeCheckbox {
			out = append(out, MinLength(1))
		}
	}
	if field.Type == schema.FieldTypeNumber {
		if field.Validation.Min != nil {
			out = append(out, Min(*field.Validation.Min))
		}
		if field.Validation.Max != nil {
			out = append(out, Max(*field.Validation.Max))
		}
	}
	if field.Validation.Pattern != "" {
		out = append(out, Pattern(field.Validation.Pattern))
	}
	if field.Validation.MinLength != nil {
		out = append(out, MinLength(*field.Validation.MinLength))
	}
	if field.Validation.MaxLength != nil {
		out = append(out, MaxLength(*field.Validation.MaxLength))
	}
	return out
}

// IsEmpty reports whether a control value counts as unanswered: nil, a
// blank string, or a multi-choice selection with zero options.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}

func stringValue(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func length(value any) int {
	switch v := value.(type) {
	case []string:
		return len(v)
	case []any:
		return len(v)
	default:
		return utf8.RuneCountInString(stringValue(value))
	}
}

// toNumber parses a control value as a decimal number, accepting either "."
// or "," as the decimal separator.
func toNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(v, ",", "."))
		if s == "" {
			return 0, false
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func splitCSV(raw string) []string {
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
