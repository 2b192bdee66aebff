// Package form turns a schema into an interactive, partially-validated set
// of typed controls: the field control factory and form instance of the CRF
// engine.
package form

import (
	"github.com/datalab/go-crf/pkg/schema"
)

// Well-known control identifiers shared across the engine. The participant
// code is assigned by the backend and never entered here; the group selector
// is a synthetic control that exists on every form; the remaining IDs are
// the core demographic fields the submission payload carries.
const (
	IDCode          = "codigo"
	IDGroup         = "grupo"
	IDFullName      = "nombre_completo"
	IDPhone         = "telefono"
	IDAddress       = "direccion"
	IDInclusionDate = "fecha_inclusion"
)

// Instance is a live form: one control per non-excluded schema field plus
// the synthetic group selector. It tracks the currently selected group and
// exposes snapshots for drafts, audits, and submission.
type Instance struct {
	schema   schema.Schema
	group    schema.Group
	controls map[string]*Control
	order    []string
}

// Build constructs an Instance from a schema and an initial group. The
// system-assigned participant-code field is excluded. Duplicate field IDs
// are an input-contract violation; the factory tolerates them by letting the
// last definition win.
func Build(s schema.Schema, group schema.Group) *Instance {
	inst := &Instance{
		schema:   s,
		group:    group,
		controls: make(map[string]*Control),
	}

	grp := newControl(IDGroup, false, Required)
	grp.store(string(group))
	inst.add(grp)
	grp.Subscribe(func(value any) {
		inst.group = schema.ParseGroup(stringValue(value))
	})

	for _, field := range s.Fields() {
		if field.ID == IDCode {
			continue
		}
		multi := field.Type == schema.FieldTypeCheckbox
		ctrl := newControl(field.ID, multi, ValidatorsFor(field)...)
		inst.add(ctrl)
	}

	// Core demographic slots exist on every form, schema or not: the
	// submission payload and the strict completeness audit read them.
	for _, id := range []string{IDFullName, IDPhone, IDAddress, IDInclusionDate} {
		if _, ok := inst.controls[id]; !ok {
			inst.add(newControl(id, false))
		}
	}
	return inst
}

func (i *Instance) add(c *Control) {
	if _, seen := i.controls[c.id]; !seen {
		i.order = append(i.order, c.id)
	}
	i.controls[c.id] = c
}

// Schema returns the schema the instance was built from.
func (i *Instance) Schema() schema.Schema { return i.schema }

// Group returns the currently selected participant group.
func (i *Instance) Group() schema.Group { return i.group }

// SetGroup writes the group selector control, which in turn updates the
// instance's current group and re-drives visibility on the next render.
func (i *Instance) SetGroup(group schema.Group) {
	if ctrl, ok := i.controls[IDGroup]; ok {
		ctrl.SetValue(string(group))
	}
}

// Control returns the control bound to the given field identifier.
func (i *Instance) Control(id string) (*Control, bool) {
	c, ok := i.controls[id]
	return c, ok
}

// ControlIDs returns every control identifier in creation order.
func (i *Instance) ControlIDs() []string {
	return append([]string(nil), i.order...)
}

// Hydrate patches control values from an identifier→value map. Unknown
// identifiers are ignored. Multi-choice controls accept either a list or a
// comma-joined string, matching both draft and server preload shapes.
func (i *Instance) Hydrate(values map[string]any) {
	for id, value := range values {
		ctrl, ok := i.controls[id]
		if !ok || value == nil {
			continue
		}
		ctrl.SetValue(value)
	}
}

// Snapshot copies the full identifier→value mapping, disabled controls
// included: the derived value is disabled-but-meaningful.
func (i *Instance) Snapshot() map[string]any {
	out := make(map[string]any, len(i.controls))
	for id, ctrl := range i.controls {
		out[id] = ctrl.Value()
	}
	return out
}

// Reset clears every control and restores the group selector to the given
// default, as a "fresh start" requires.
func (i *Instance) Reset(group schema.Group) {
	for _, ctrl := range i.controls {
		ctrl.reset()
	}
	i.group = group
	if ctrl, ok := i.controls[IDGroup]; ok {
		ctrl.store(string(group))
	}
}

// Valid reports whether every control passes its validator chain.
func (i *Instance) Valid() bool {
	for _, ctrl := range i.controls {
		if ctrl.Validate() != nil {
			return false
		}
	}
	return true
}
