package schema

import (
	"strings"
	"testing"
)

func TestValidator_JSONSchema(t *testing.T) {
	schemaStr := `{"type": "object", "properties": {"name": {"type": "string"}, "age": {"type": "integer"}}, "required": ["name"]}`

	validator, err := NewValidator([]byte(schemaStr))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Valid data
	result := validator.Validate([]byte(`{"name": "Alice", "age": 30}`))
	if !result.Valid {
		t.Errorf("expected valid, got errors: %v", result.Errors)
	}

	// Invalid data - missing required field
	result = validator.Validate([]byte(`{"age": 30}`))
	if result.Valid {
		t.Error("expected invalid for missing required field")
	}

	// Invalid data - wrong type
	result = validator.Validate([]byte(`{"name": "Alice", "age": "thirty"}`))
	if result.Valid {
		t.Error("expected invalid for wrong type")
	}
	if result.Err() == nil {
		t.Error("expected Err() to report the violation")
	}
}

func TestValidator_InvalidSchema(t *testing.T) {
	if _, err := NewValidator([]byte(`{"type": 12}`)); err == nil {
		t.Error("expected compile error for a non-string type")
	}
	if _, err := NewValidator([]byte(`{not json`)); err == nil {
		t.Error("expected parse error")
	}
}

type sensorReading struct {
	Sensor  string   `json:"sensor"`
	Signal  int      `json:"signal"`
	Channel string   `json:"channel,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

func TestForType(t *testing.T) {
	validator, err := ForType(&sensorReading{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := []struct {
		name  string
		data  string
		valid bool
	}{
		{"complete", `{"sensor": "north", "signal": -48, "channel": "6", "tags": ["ap"]}`, true},
		{"optional omitted", `{"sensor": "north", "signal": -48}`, true},
		{"required missing", `{"sensor": "north"}`, false},
		{"fractional integer", `{"sensor": "north", "signal": -48.5}`, false},
		{"unknown property", `{"sensor": "north", "signal": -48, "extra": true}`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := validator.Validate([]byte(tt.data))
			if result.Valid != tt.valid {
				t.Errorf("Valid = %v, want %v (errors: %v)", result.Valid, tt.valid, result.Errors)
			}
		})
	}
}

func TestValidator_ErrorPaths(t *testing.T) {
	validator, err := ForType(&sensorReading{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result := validator.ValidateValue(map[string]any{
		"sensor": "north",
		"signal": float64(-48),
		"tags":   []any{"ap", float64(3)},
	})
	if result.Valid {
		t.Fatal("expected invalid")
	}
	found := false
	for _, msg := range result.Errors {
		if strings.HasPrefix(msg, "/tags/1: ") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an error at /tags/1, got %v", result.Errors)
	}
}

func TestValidator_InvalidJSON(t *testing.T) {
	validator, err := NewValidator([]byte(`{"type": "object"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	result := validator.Validate([]byte(`{broken`))
	if result.Valid || len(result.Errors) != 1 || !strings.HasPrefix(result.Errors[0], "invalid JSON") {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestValidator_Nil(t *testing.T) {
	var v *Validator
	if v.ValidateValue(map[string]any{}).Valid {
		t.Error("nil validator must not accept values")
	}
}
