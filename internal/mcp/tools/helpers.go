// Package tools contains MCP tool implementations for Kismet.
package tools

import (
	"fmt"

	"github.com/usestring/kismetrest/pkg/client"
	"github.com/usestring/kismetrest/pkg/fieldpath"
)

// FieldInput selects one field of a device record.
type FieldInput struct {
	Path  string `json:"path" jsonschema:"Field path, with nested fields separated by '/' (e.g. kismet.device.base.signal/kismet.common.signal.last_signal)"`
	Alias string `json:"alias,omitempty" jsonschema:"Key to store the value under (default: last path segment)"`
}

// RegexInput is one term of a device regex filter.
type RegexInput struct {
	Field   string `json:"field" jsonschema:"Field path to match"`
	Pattern string `json:"pattern" jsonschema:"Regular expression the field must match"`
}

// toFields converts tool input to a simplification list. Nil input returns
// nil so whole records are requested.
func toFields(in []FieldInput) (client.Fields, error) {
	if in == nil {
		return nil, nil
	}
	fields := make(client.Fields, 0, len(in))
	for i, f := range in {
		if f.Path == "" {
			return nil, ErrInvalidInput(fmt.Sprintf("fields[%d]: path is required", i))
		}
		fields = append(fields, fieldpath.As(f.Path, f.Alias))
	}
	return fields, nil
}

// toRegex converts tool input to a regex filter, checking that every
// pattern compiles.
func toRegex(in []RegexInput) (client.Regex, error) {
	if len(in) == 0 {
		return nil, nil
	}
	rx := make(client.Regex, 0, len(in))
	for i, t := range in {
		if t.Field == "" || t.Pattern == "" {
			return nil, ErrInvalidInput(fmt.Sprintf("regex[%d]: field and pattern are required", i))
		}
		rx = append(rx, fieldpath.Match(t.Field, t.Pattern))
	}
	if _, err := fieldpath.CompileFilter(rx); err != nil {
		return nil, ErrInvalidInput(err.Error())
	}
	return rx, nil
}
