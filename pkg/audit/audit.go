// Package audit determines which required or visible fields of a form are
// still unanswered. Callers decide what to do with the result: save a
// draft, block finalization, or both. The audit itself never persists
// anything.
package audit

import (
	"strings"

	"github.com/datalab/go-crf/pkg/form"
	"github.com/datalab/go-crf/pkg/schema"
	"github.com/datalab/go-crf/pkg/visibility"
)

// Policy selects the completeness rule. Two policies exist in the product's
// lineage; the strict one is the later, authoritative behaviour and the
// default across the engine.
type Policy int

const (
	// PolicyStrict treats any visible field with a raw empty value as
	// missing, regardless of its required flag, and marks the control
	// invalid for visual feedback. Finalization demands a 100% complete
	// visible form.
	PolicyStrict Policy = iota
	// PolicyLenient is the legacy rule: only declared-required fields
	// gate, judged by their validator chain. It never mutates controls.
	PolicyLenient
)

// Baseline control labels reported when the synthetic or demographic
// controls are unanswered. These are checked independent of schema content.
const (
	groupLabel    = "Grupo"
	fullNameLabel = "Nombre Completo"
)

// Auditor walks a schema against a form instance and reports missing
// fields.
type Auditor struct {
	policy Policy
	vis    visibility.Evaluator
}

// New constructs an Auditor. The visibility evaluator decides which
// sections and fields are in play for the instance's current group.
func New(policy Policy, vis visibility.Evaluator) Auditor {
	return Auditor{policy: policy, vis: vis}
}

// MissingFields returns the human-readable labels of every unanswered field
// in schema traversal order, baseline controls first. Invisible sections
// and fields are skipped.
func (a Auditor) MissingFields(inst *form.Instance) []string {
	group := inst.Group()
	var missing []string

	missing = append(missing, a.missingBaseline(inst)...)

	for _, section := range inst.Schema().Sections {
		if !a.vis.ShowSection(section, group) {
			continue
		}
		for _, field := range section.Fields {
			if !a.vis.ShowField(field, group) {
				continue
			}
			ctrl, ok := inst.Control(field.ID)
			if !ok {
				continue
			}
			if a.fieldMissing(field, ctrl) {
				label := field.Label
				if label == "" {
					label = field.ID
				}
				missing = append(missing, label)
			}
		}
	}
	return missing
}

func (a Auditor) missingBaseline(inst *form.Instance) []string {
	var missing []string

	if ctrl, ok := inst.Control(form.IDGroup); ok && ctrl.Invalid() {
		missing = append(missing, groupLabel)
	}

	if a.policy == PolicyStrict {
		ctrl, ok := inst.Control(form.IDFullName)
		if !ok || form.IsEmpty(ctrl.Value()) {
			if ok {
				ctrl.MarkInvalid()
			}
			missing = append(missing, fullNameLabel)
		}
	}
	return missing
}

func (a Auditor) fieldMissing(field schema.Field, ctrl *form.Control) bool {
	switch a.policy {
	case PolicyLenient:
		if !field.Required {
			return false
		}
		if ctrl.Multi() {
			return form.IsEmpty(ctrl.Value())
		}
		return ctrl.Validate() != nil
	default:
		if form.IsEmpty(ctrl.Value()) {
			ctrl.MarkInvalid()
			return true
		}
		return false
	}
}

// AnalyzeAnswers reports completeness for a server-backed participant
// record, given the set of variable codes it has answers for. Required and
// visible fields only; code comparison is case-insensitive and trimmed
// because the two backend projections disagree on casing.
func AnalyzeAnswers(s schema.Schema, group schema.Group, answered []string, vis visibility.Evaluator) (bool, []string) {
	have := make(map[string]bool, len(answered))
	for _, code := range answered {
		have[strings.ToLower(strings.TrimSpace(code))] = true
	}

	var missing []string
	for _, section := range s.Sections {
		if !vis.ShowSection(section, group) {
			continue
		}
		for _, field := range section.Fields {
			if !vis.ShowField(field, group) {
				continue
			}
			if !field.Required {
				continue
			}
			if have[strings.ToLower(strings.TrimSpace(field.ID))] {
				continue
			}
			label := field.Label
			if label == "" {
				label = field.ID
			}
			missing = append(missing, label)
		}
	}
	return len(missing) == 0, missing
}
