// Package visibility decides which sections and fields of a schema render
// for the currently selected participant group. Predicates are pure and
// re-evaluated on every call; there is no caching across group changes.
package visibility

import "github.com/datalab/go-crf/pkg/schema"

// Evaluator answers section and field visibility questions for a schema.
// Hidden holds field identifiers that never render regardless of group
// restrictions, such as the computed derived-value field.
type Evaluator struct {
	hidden map[string]bool
}

// New constructs an Evaluator. The variadic IDs are force-hidden fields.
func New(hidden ...string) Evaluator {
	set := make(map[string]bool, len(hidden))
	for _, id := range hidden {
		if id != "" {
			set[id] = true
		}
	}
	return Evaluator{hidden: set}
}

// ShowField reports whether the field renders for the given group. A field
// with no group restriction is visible to every group.
func (e Evaluator) ShowField(field schema.Field, group schema.Group) bool {
	if e.hidden[field.ID] {
		return false
	}
	if len(field.Groups) == 0 {
		return true
	}
	for _, g := range field.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// ShowSection reports whether the section renders for the given group. A
// section with zero visible fields never renders, even when the section
// itself carries no restriction.
func (e Evaluator) ShowSection(section schema.Section, group schema.Group) bool {
	visible := false
	for _, f := range section.Fields {
		if e.ShowField(f, group) {
			visible = true
			break
		}
	}
	if !visible {
		return false
	}
	if len(section.Groups) == 0 {
		return true
	}
	for _, g := range section.Groups {
		if g == group {
			return true
		}
	}
	return false
}
