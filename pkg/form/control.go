package form

import (
	"slices"
	"sync"
)

// Validator checks a single control value. Validators compose conjunctively;
// a value is valid only when every validator accepts it.
type Validator func(value any) error

// Control is a typed input slot inside a form instance. Multi-choice
// controls hold an ordered, duplicate-free selection list; every other
// control holds a scalar. Subscribers fire on every value change.
//
// Control state is mutex-guarded: the autosaver snapshots values from its
// own goroutine while the interactive driver writes them.
type Control struct {
	id         string
	multi      bool
	validators []Validator

	mu            sync.Mutex
	value         any
	disabled      bool
	touched       bool
	forcedInvalid bool
	subscribers   []func(value any)
}

func newControl(id string, multi bool, validators ...Validator) *Control {
	return &Control{id: id, multi: multi, validators: validators}
}

// ID returns the field identifier the control is bound to.
func (c *Control) ID() string { return c.id }

// Multi reports whether the control models a multi-choice selection.
func (c *Control) Multi() bool { return c.multi }

// Value returns the current value: a scalar, or []string for multi-choice.
func (c *Control) Value() any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.valueLocked()
}

func (c *Control) valueLocked() any {
	if c.multi {
		sel, _ := c.value.([]string)
		return slices.Clone(sel)
	}
	return c.value
}

// SetValue stores a new value and notifies subscribers. Programmatic writes
// reach disabled controls too; the interactive layers are responsible for
// blocking direct user edits on them.
func (c *Control) SetValue(value any) {
	if c.multi {
		value = normalizeSelections(value)
	}
	c.mu.Lock()
	c.value = value
	c.forcedInvalid = false
	current := c.valueLocked()
	subs := slices.Clone(c.subscribers)
	c.mu.Unlock()

	// Subscribers run outside the lock so they can read other controls.
	for _, fn := range subs {
		fn(current)
	}
}

// store writes a value without clearing flags or notifying subscribers.
func (c *Control) store(value any) {
	c.mu.Lock()
	c.value = value
	c.mu.Unlock()
}

// Toggle adds or removes an option from a multi-choice selection, keeping
// selection order and rejecting duplicates.
func (c *Control) Toggle(option string, on bool) {
	if !c.multi {
		return
	}
	current, _ := c.Value().([]string)
	if on {
		if slices.Contains(current, option) {
			return
		}
		c.SetValue(append(current, option))
		return
	}
	idx := slices.Index(current, option)
	if idx < 0 {
		return
	}
	c.SetValue(slices.Delete(current, idx, idx+1))
}

// Subscribe registers a change callback fired on every SetValue.
func (c *Control) Subscribe(fn func(value any)) {
	if fn == nil {
		return
	}
	c.mu.Lock()
	c.subscribers = append(c.subscribers, fn)
	c.mu.Unlock()
}

// Disable locks the control against direct edits in interactive layers.
func (c *Control) Disable() {
	c.mu.Lock()
	c.disabled = true
	c.mu.Unlock()
}

// Disabled reports whether the control is locked for direct user input.
func (c *Control) Disabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.disabled
}

// Touch marks the control as visited by the user.
func (c *Control) Touch() {
	c.mu.Lock()
	c.touched = true
	c.mu.Unlock()
}

// Touched reports whether the user has visited the control.
func (c *Control) Touched() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.touched
}

// Check runs the validator chain against a candidate value without storing
// it. Interactive drivers use it to validate input before committing.
func (c *Control) Check(value any) error {
	if c.multi {
		value = normalizeSelections(value)
	}
	for _, v := range c.validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// Validate runs the validator chain and returns the first failure.
func (c *Control) Validate() error {
	value := c.Value()
	for _, v := range c.validators {
		if err := v(value); err != nil {
			return err
		}
	}
	return nil
}

// Invalid reports whether the control currently fails validation, or has
// been explicitly flagged by the strict completeness audit.
func (c *Control) Invalid() bool {
	c.mu.Lock()
	forced := c.forcedInvalid
	c.mu.Unlock()
	return forced || c.Validate() != nil
}

// MarkInvalid flags the control for visual feedback until its next write.
func (c *Control) MarkInvalid() {
	c.mu.Lock()
	c.forcedInvalid = true
	c.mu.Unlock()
}

func (c *Control) reset() {
	c.mu.Lock()
	if c.multi {
		c.value = []string(nil)
	} else {
		c.value = nil
	}
	c.touched = false
	c.forcedInvalid = false
	c.mu.Unlock()
}

// normalizeSelections coerces the accepted multi-choice input shapes into an
// ordered duplicate-free []string. Drafts and server preloads historically
// deliver either a list or a comma-joined string.
func normalizeSelections(value any) []string {
	var raw []string
	switch v := value.(type) {
	case nil:
		return nil
	case []string:
		raw = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	case string:
		raw = splitCSV(v)
	default:
		return nil
	}
	var out []string
	for _, s := range raw {
		if s == "" || slices.Contains(out, s) {
			continue
		}
		out = append(out, s)
	}
	return out
}
