// Package derived wires the body-mass-index style computed field: it finds
// the weight, height, and derived-metric fields by heuristic matching and
// keeps the derived control recomputed from the other two.
package derived

import (
	"strings"

	"github.com/datalab/go-crf/pkg/schema"
)

// Roles holds the field identifiers detected for the computation. Zero
// values mean the role was not found.
type Roles struct {
	Weight  string
	Height  string
	Derived string
}

// Complete reports whether every role was bound.
func (r Roles) Complete() bool {
	return r.Weight != "" && r.Height != "" && r.Derived != ""
}

var (
	weightIDs     = []string{"PESO", "WEIGHT", "KG"}
	weightLabels  = []string{"PESO", "WEIGHT"}
	heightIDs     = []string{"TALLA", "ESTATURA", "ALTURA", "HEIGHT"}
	heightLabels  = []string{"TALLA", "ESTATURA", "ALTURA", "HEIGHT"}
	derivedIDs    = []string{"IMC", "BMI"}
	derivedLabels = []string{"IMC", "BMI"}
)

// DetectRoles scans the schema in section/field order and binds each role to
// the first field whose identifier matches a synonym exactly or whose label
// contains one, case-insensitively. Scan order means earlier fields win.
func DetectRoles(s schema.Schema) Roles {
	var roles Roles
	for _, sec := range s.Sections {
		for _, f := range sec.Fields {
			if roles.Weight == "" && matches(f, weightIDs, weightLabels) {
				roles.Weight = f.ID
			}
			if roles.Height == "" && matches(f, heightIDs, heightLabels) {
				roles.Height = f.ID
			}
			if roles.Derived == "" && matches(f, derivedIDs, derivedLabels) {
				roles.Derived = f.ID
			}
		}
	}
	return roles
}

func matches(f schema.Field, ids, labels []string) bool {
	id := strings.ToUpper(strings.TrimSpace(f.ID))
	for _, candidate := range ids {
		if id == candidate {
			return true
		}
	}
	label := strings.ToUpper(strings.TrimSpace(f.Label))
	if label == "" {
		return false
	}
	for _, candidate := range labels {
		if strings.Contains(label, candidate) {
			return true
		}
	}
	return false
}
