package tools

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// AddTool registers a tool after checking that its input and output types
// describe the JSON that actually crosses the wire.
//
// Panics if either type would produce a schema the SDK cannot honor.
func AddTool[In, Out any](srv *sdkmcp.Server, t *sdkmcp.Tool, h sdkmcp.ToolHandlerFor[In, Out]) {
	CheckToolTypes[In, Out](t.Name)
	sdkmcp.AddTool(srv, t, h)
}

// CheckToolTypes runs the registration checks for a tool's input and
// output types.
//
// The SDK infers both schemas by reflecting over struct fields, so a type
// with its own MarshalJSON is described by its Go fields rather than its
// encoding. fieldpath.Field, for one, encodes as "path" or ["path", "alias"]
// but reflects as an object. Such fields are rejected in both directions.
// The zero value of Out must also pass its schema, which catches nil slices
// encoded as null where an array is required.
func CheckToolTypes[In, Out any](toolName string) {
	checkWireTypes(toolName, "input", reflect.TypeFor[In]())
	checkWireTypes(toolName, "output", reflect.TypeFor[Out]())
	CheckOutputSchema[Out](toolName)
}

// CheckOutputSchema panics if the zero value of T fails the schema the SDK
// would infer for it. It no-ops for untyped output and when inference
// itself fails, which the SDK reports on its own.
func CheckOutputSchema[T any](toolName string) {
	rt := reflect.TypeFor[T]()
	if rt == reflect.TypeFor[any]() {
		return
	}
	elem := rt
	if elem.Kind() == reflect.Pointer {
		elem = elem.Elem()
	}

	schema, err := jsonschema.ForType(elem, &jsonschema.ForOptions{})
	if err != nil {
		return
	}
	resolved, err := schema.Resolve(&jsonschema.ResolveOptions{})
	if err != nil {
		return
	}

	data, err := json.Marshal(reflect.Zero(elem).Interface())
	if err != nil {
		return
	}
	var v map[string]any
	if err := json.Unmarshal(data, &v); err != nil {
		return
	}

	if err := resolved.Validate(&v); err != nil {
		panic(fmt.Sprintf(
			"AddTool %q: zero value of output type %s fails schema validation: %v\n"+
				"  JSON: %s\n"+
				"  Fix: add `omitzero` to slice fields that may be nil, or initialize them to empty slices",
			toolName, elem, err, data,
		))
	}
}

func checkWireTypes(toolName, role string, t reflect.Type) {
	if t == reflect.TypeFor[any]() {
		return
	}
	paths := customEncodedFields(t, nil, make(map[reflect.Type]bool))
	if len(paths) == 0 {
		return
	}
	panic(fmt.Sprintf(
		"AddTool %q: %s type %s has custom JSON encoding at %s\n"+
			"  the inferred schema follows the Go fields, not the encoded form\n"+
			"  Fix: use plain input structs (FieldInput, RegexInput) and convert in the handler,\n"+
			"  or declare the field as any and fill it with query.Normalize(value)",
		toolName, role, t, strings.Join(paths, ", "),
	))
}

var (
	jsonMarshaler   = reflect.TypeFor[json.Marshaler]()
	jsonUnmarshaler = reflect.TypeFor[json.Unmarshaler]()
)

// schemaKnown are types with custom encodings the schema generator maps to
// their encoded form.
var schemaKnown = map[reflect.Type]bool{
	reflect.TypeFor[time.Time]():  true,
	reflect.TypeFor[slog.Level](): true,
}

func encodesItself(t reflect.Type) bool {
	if schemaKnown[t] {
		return false
	}
	pt := reflect.PointerTo(t)
	return t.Implements(jsonMarshaler) || pt.Implements(jsonMarshaler) || pt.Implements(jsonUnmarshaler)
}

// customEncodedFields walks t and returns the paths of values whose type
// encodes itself.
func customEncodedFields(t reflect.Type, path []string, visited map[reflect.Type]bool) []string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() == reflect.Interface {
		return nil
	}
	if encodesItself(t) {
		if len(path) == 0 {
			return []string{t.String()}
		}
		return []string{strings.Join(path, ".")}
	}

	if visited[t] {
		return nil
	}
	visited[t] = true
	defer delete(visited, t)

	var found []string
	switch t.Kind() {
	case reflect.Struct:
		for i := range t.NumField() {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			found = append(found, customEncodedFields(f.Type, append(path, f.Name), visited)...)
		}
	case reflect.Slice, reflect.Array:
		found = append(found, customEncodedFields(t.Elem(), append(path, "[]"), visited)...)
	case reflect.Map:
		found = append(found, customEncodedFields(t.Elem(), append(path, "[value]"), visited)...)
	}
	return found
}
