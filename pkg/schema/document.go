package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// DecodeDocument decodes a schema document in section/field form. JSON and
// YAML payloads are both accepted; JSON is tried first so that schemas saved
// from the API round-trip without surprises. Field type tags are normalized
// through the closed enumeration on the way in.
func DecodeDocument(raw []byte) (Schema, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return Schema{}, fmt.Errorf("schema: empty document")
	}

	var s Schema
	jsonErr := json.Unmarshal(raw, &s)
	if jsonErr != nil {
		if yamlErr := yaml.Unmarshal(raw, &s); yamlErr != nil {
			return Schema{}, fmt.Errorf("schema: decode document: %w", jsonErr)
		}
	}

	for si := range s.Sections {
		for fi := range s.Sections[si].Fields {
			f := &s.Sections[si].Fields[fi]
			f.Type = NormalizeType(string(f.Type))
			if f.Label == "" {
				f.Label = f.ID
			}
		}
	}
	return s, nil
}
