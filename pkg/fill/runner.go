// Package fill walks a capture session's visible sections and fields as an
// interactive terminal questionnaire, committing each answer into the form
// instance as it goes.
package fill

import (
	"context"
	"fmt"
	"strings"

	"github.com/datalab/go-crf/pkg/form"
	"github.com/datalab/go-crf/pkg/schema"
	"github.com/datalab/go-crf/pkg/session"
)

// skipOption is offered on optional choice prompts so the field can stay
// unanswered.
const skipOption = "(omitir)"

// Runner drives a prompt session over a form.
type Runner struct {
	driver Driver
}

// NewRunner constructs a Runner; a nil driver defaults to the survey one.
func NewRunner(driver Driver) *Runner {
	if driver == nil {
		driver = NewSurveyDriver()
	}
	return &Runner{driver: driver}
}

// Run prompts the group selection, the baseline demographics, and then
// every visible field in schema order. Group selection happens first since
// it decides which sections and fields appear at all. Existing values show
// up as prompt defaults, so resumed drafts only need the gaps filled.
func (r *Runner) Run(ctx context.Context, sess *session.Session) error {
	inst := sess.Instance()

	if err := r.promptGroup(ctx, inst); err != nil {
		return err
	}
	if err := r.promptDemographics(ctx, inst); err != nil {
		return err
	}

	group := inst.Group()
	vis := sess.Visibility()
	for _, section := range sess.Schema().Sections {
		if !vis.ShowSection(section, group) {
			continue
		}
		if err := r.driver.Info(ctx, "\n── "+section.Title+" ──"); err != nil {
			return err
		}
		for _, field := range section.Fields {
			if !vis.ShowField(field, group) {
				continue
			}
			ctrl, ok := inst.Control(field.ID)
			if !ok || ctrl.Disabled() {
				continue
			}
			if err := r.promptField(ctx, field, ctrl); err != nil {
				return err
			}
			ctrl.Touch()
		}
	}
	return nil
}

func (r *Runner) promptGroup(ctx context.Context, inst *form.Instance) error {
	choice, err := r.driver.Select(ctx, SelectConfig{
		Message:  "Grupo del participante",
		Options:  []string{string(schema.GroupControl), string(schema.GroupCase)},
		Defaults: []string{string(inst.Group())},
	})
	if err != nil {
		return err
	}
	inst.SetGroup(schema.ParseGroup(choice))
	return nil
}

func (r *Runner) promptDemographics(ctx context.Context, inst *form.Instance) error {
	prompts := []struct {
		id      string
		message string
	}{
		{form.IDFullName, "Nombre completo"},
		{form.IDPhone, "Teléfono"},
		{form.IDAddress, "Dirección"},
	}
	for _, p := range prompts {
		ctrl, ok := inst.Control(p.id)
		if !ok {
			continue
		}
		// Schema-declared demographics are prompted with their section.
		if _, declared := inst.Schema().FieldByID(p.id); declared {
			continue
		}
		value, err := r.driver.Input(ctx, InputConfig{
			Message: p.message,
			Default: asString(ctrl.Value()),
		})
		if err != nil {
			return err
		}
		ctrl.SetValue(strings.TrimSpace(value))
	}
	return nil
}

func (r *Runner) promptField(ctx context.Context, field schema.Field, ctrl *form.Control) error {
	message := field.Label
	if field.Required {
		message += " *"
	}

	switch field.Type {
	case schema.FieldTypeRadio, schema.FieldTypeSelect:
		options := field.Options
		if !field.Required {
			options = append([]string{skipOption}, options...)
		}
		choice, err := r.driver.Select(ctx, SelectConfig{
			Message:  message,
			Options:  options,
			Defaults: defaultsFor(ctrl),
			Help:     field.Placeholder,
		})
		if err != nil {
			return err
		}
		if choice != skipOption {
			ctrl.SetValue(choice)
		}
		return nil

	case schema.FieldTypeCheckbox:
		selected, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  message,
			Options:  field.Options,
			Defaults: defaultsFor(ctrl),
			Help:     field.Placeholder,
		})
		if err != nil {
			return err
		}
		ctrl.SetValue(selected)
		return nil

	case schema.FieldTypeTextarea:
		value, err := r.driver.TextArea(ctx, InputConfig{
			Message:   message,
			Default:   asString(ctrl.Value()),
			Validator: checkString(ctrl),
		})
		if err != nil {
			return err
		}
		ctrl.SetValue(value)
		return nil

	default:
		value, err := r.driver.Input(ctx, InputConfig{
			Message:   message,
			Default:   asString(ctrl.Value()),
			Help:      field.Placeholder,
			Validator: checkString(ctrl),
		})
		if err != nil {
			return err
		}
		ctrl.SetValue(strings.TrimSpace(value))
		return nil
	}
}

func checkString(ctrl *form.Control) func(string) error {
	return func(s string) error {
		return ctrl.Check(strings.TrimSpace(s))
	}
}

func defaultsFor(ctrl *form.Control) []string {
	switch v := ctrl.Value().(type) {
	case []string:
		return v
	case string:
		if v != "" {
			return []string{v}
		}
	}
	return nil
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []string:
		return strings.Join(v, ",")
	default:
		return fmt.Sprint(v)
	}
}
