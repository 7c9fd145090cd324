package spec

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arkilian/loadgen/internal/errors"
)

// IsSpecFile reports whether a path looks like a workload spec document.
func IsSpecFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}

// LoadFile reads, parses, defaults, and validates a workload spec from a
// JSON or YAML file.
func LoadFile(path string) (*WorkloadSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.CodeOpenFailed, "reading workload spec "+path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return Parse(data)
	}
}

// Parse parses, defaults, and validates a JSON workload spec document.
func Parse(data []byte) (*WorkloadSpec, error) {
	var w WorkloadSpec
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&w); err != nil {
		return nil, errors.NewParseError("parsing workload spec JSON", err)
	}
	return finish(&w)
}

// ParseYAML parses, defaults, and validates a YAML workload spec document.
func ParseYAML(data []byte) (*WorkloadSpec, error) {
	var w WorkloadSpec
	if err := yaml.Unmarshal(data, &w); err != nil {
		return nil, errors.NewParseError("parsing workload spec YAML", err)
	}
	return finish(&w)
}

func finish(w *WorkloadSpec) (*WorkloadSpec, error) {
	w.ApplyDefaults()
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}
