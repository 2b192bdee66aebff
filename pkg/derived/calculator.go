package derived

import (
	"strconv"
	"strings"

	"github.com/datalab/go-crf/pkg/form"
)

// heightUnitThreshold separates meters from centimeters: a height above it
// is assumed to be centimeters and divided by 100 before use.
const heightUnitThreshold = 3

// Attach wires the derived-value computation into a form instance. When any
// role is unbound, or a bound control is missing, the calculator is inert:
// no error, nothing runs. Otherwise the derived control is locked against
// direct edits, computed once immediately to reflect preloaded values, and
// recomputed on every change of either source control. Returns whether the
// calculator is active.
func Attach(inst *form.Instance, roles Roles) bool {
	if !roles.Complete() {
		return false
	}
	weight, ok := inst.Control(roles.Weight)
	if !ok {
		return false
	}
	height, ok := inst.Control(roles.Height)
	if !ok {
		return false
	}
	target, ok := inst.Control(roles.Derived)
	if !ok {
		return false
	}

	target.Disable()

	recompute := func(any) {
		target.SetValue(Compute(stringOf(weight.Value()), stringOf(height.Value())))
	}
	recompute(nil)
	weight.Subscribe(recompute)
	height.Subscribe(recompute)
	return true
}

// Compute parses the two source values and returns weight/height² formatted
// to two decimals, or "" when either input is not a positive number. Both
// "." and "," are accepted as decimal separators, and a height above the
// unit threshold is normalized from centimeters to meters.
func Compute(weight, height string) string {
	w, okW := parseDecimal(weight)
	h, okH := parseDecimal(height)
	if !okW || !okH || w <= 0 || h <= 0 {
		return ""
	}
	if h > heightUnitThreshold {
		h = h / 100
	}
	return strconv.FormatFloat(w/(h*h), 'f', 2, 64)
}

func parseDecimal(raw string) (float64, bool) {
	s := strings.TrimSpace(strings.ReplaceAll(raw, ",", "."))
	if s == "" {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func stringOf(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	switch v := value.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	}
	return ""
}
