// Package schema derives a machine-readable JSON schema from the workload
// specification model, for editor completion and validation of spec files.
// The schema is reflected from the model's struct tags, so it can never
// drift from what the loader actually accepts.
package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/arkilian/loadgen/internal/spec"
)

// Generate returns the pretty-printed JSON schema for workload spec
// documents.
func Generate() (string, error) {
	r := &jsonschema.Reflector{
		// Optional operation bundles are pointers in the model; the schema
		// should describe the document shape, not Go's nil semantics.
		DoNotReference: false,
		ExpandedStruct: true,
	}

	s := r.Reflect(&spec.WorkloadSpec{})
	s.Title = "WorkloadSpec"
	s.Description = "Declarative key-value workload specification"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("schema: failed to marshal: %w", err)
	}
	return string(data), nil
}
