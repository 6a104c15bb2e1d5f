// Package schema validates JSON values against JSON Schemas, either given
// as documents or reflected from Go types.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ValidationResult contains the result of validating a single value.
type ValidationResult struct {
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// Err returns nil for a valid result and an error listing every violation
// otherwise.
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return fmt.Errorf("schema validation failed: %s", strings.Join(r.Errors, "; "))
}

// Validator validates JSON data against a schema.
type Validator struct {
	schema *jsonschema.Schema
	source any
}

// NewValidator creates a validator from a JSON Schema document.
func NewValidator(schemaJSON []byte) (*Validator, error) {
	var doc any
	if err := json.Unmarshal(schemaJSON, &doc); err != nil {
		return nil, fmt.Errorf("parsing JSON Schema: %w", err)
	}
	return compileSchema(doc)
}

// ForType creates a validator for the JSON encoding of v's type. Fields
// without omitempty are required and unknown properties are rejected.
func ForType(v any) (*Validator, error) {
	r := &invopop.Reflector{
		DoNotReference: true,
		Anonymous:      true,
	}
	reflected := r.Reflect(v)

	// Convert to JSON and back to get a clean map[string]any
	schemaJSON, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("marshaling schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(schemaJSON, &doc); err != nil {
		return nil, fmt.Errorf("unmarshaling schema: %w", err)
	}
	return compileSchema(doc)
}

// compileSchema compiles a decoded schema document into a validator.
func compileSchema(doc any) (*Validator, error) {
	compiler := jsonschema.NewCompiler()

	// Add the schema as a resource (doc must be valid json value, not io.Reader)
	if err := compiler.AddResource("schema.json", doc); err != nil {
		return nil, fmt.Errorf("adding schema resource: %w", err)
	}

	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return nil, fmt.Errorf("compiling schema: %w", err)
	}

	return &Validator{schema: compiled, source: doc}, nil
}

// Validate validates raw JSON against the schema.
func (v *Validator) Validate(data []byte) *ValidationResult {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []string{fmt.Sprintf("invalid JSON: %s", err.Error())},
		}
	}
	return v.ValidateValue(value)
}

// ValidateValue validates an already-parsed value against the schema.
func (v *Validator) ValidateValue(value any) *ValidationResult {
	if v == nil || v.schema == nil {
		return &ValidationResult{
			Valid:  false,
			Errors: []string{"schema not compiled"},
		}
	}

	err := v.schema.Validate(value)
	if err == nil {
		return &ValidationResult{Valid: true}
	}
	return &ValidationResult{
		Valid:  false,
		Errors: extractValidationErrors(err),
	}
}

// Document returns the schema document the validator was compiled from.
func (v *Validator) Document() any {
	return v.source
}

// extractValidationErrors extracts human-readable error messages from a validation error.
func extractValidationErrors(err error) []string {
	var validationErr *jsonschema.ValidationError
	if errors.As(err, &validationErr) {
		return extractDetailedErrors(validationErr)
	}
	return []string{err.Error()}
}

// printer is a default English printer for localized error messages.
var printer = message.NewPrinter(language.English)

// extractDetailedErrors flattens a ValidationError tree into one message per
// path and error, sorted by path.
func extractDetailedErrors(err *jsonschema.ValidationError) []string {
	errorsByPath := make(map[string][]string)
	collectErrors(err, errorsByPath)

	paths := make([]string, 0, len(errorsByPath))
	for path := range errorsByPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var result []string
	for _, path := range paths {
		seen := make(map[string]bool)
		for _, msg := range errorsByPath[path] {
			if seen[msg] {
				continue
			}
			seen[msg] = true
			if path != "" {
				result = append(result, fmt.Sprintf("%s: %s", path, msg))
			} else {
				result = append(result, msg)
			}
		}
	}
	return result
}

// collectErrors recursively collects leaf errors (those without causes).
func collectErrors(err *jsonschema.ValidationError, errorsByPath map[string][]string) {
	instancePath := ""
	if len(err.InstanceLocation) > 0 {
		instancePath = "/" + strings.Join(err.InstanceLocation, "/")
	}

	if err.ErrorKind != nil && len(err.Causes) == 0 {
		errMsg := err.ErrorKind.LocalizedString(printer)
		// Skip $ref and schema reference messages - they're not useful errors
		if !strings.HasPrefix(errMsg, "$ref ") && !strings.HasPrefix(errMsg, "doesn't validate with") {
			errorsByPath[instancePath] = append(errorsByPath[instancePath], errMsg)
		}
	}

	for _, cause := range err.Causes {
		collectErrors(cause, errorsByPath)
	}
}
