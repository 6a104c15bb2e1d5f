// Package query provides JQ-based querying for decoded Kismet records.
package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// Engine executes JQ queries against decoded JSON values.
type Engine struct{}

// NewEngine creates a new query engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Result contains the results of a JQ query.
type Result struct {
	Values    []any    `json:"values"`              // Extracted values
	Errors    []string `json:"errors,omitempty"`    // Per-record errors (e.g., type mismatch)
	RawCount  int      `json:"raw_count"`           // Count before deduplication
	Records   int      `json:"records"`             // Records fed to the program
	Matched   int      `json:"matched"`             // Records that produced at least one value
	Truncated bool     `json:"truncated,omitempty"` // Stopped at the result limit
}

// Program is a compiled JQ expression. A Program is safe to run on many
// records; each Run starts a fresh iterator.
type Program struct {
	expr string
	code *gojq.Code
}

// Compile parses and compiles a JQ expression.
func (e *Engine) Compile(expression string) (*Program, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return &Program{expr: expression, code: code}, nil
}

// String returns the source expression.
func (p *Program) String() string {
	return p.expr
}

// Run executes the program against one decoded value and returns every
// non-null output. Runtime errors are returned separately, formatted with
// label, and do not stop the iteration.
func (p *Program) Run(label string, input any) ([]any, []string) {
	var values []any
	var errs []string

	iter := p.code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			errs = append(errs, formatJQError(label, err))
			continue
		}
		// Skip nil values
		if v == nil {
			continue
		}
		values = append(values, v)
	}
	return values, errs
}

// Keep reports whether the program yields at least one truthy value for
// input, which makes expressions like `select(.type == "Wi-Fi AP")` usable
// as record predicates.
func (p *Program) Keep(input any) bool {
	iter := p.code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			return false
		}
		if _, isErr := v.(error); isErr {
			continue
		}
		if v != nil && v != false {
			return true
		}
	}
}

// Accumulator feeds records to a program one at a time and gathers the
// results, so it can sit behind a streaming visitor without the records
// themselves ever being held.
type Accumulator struct {
	prog        *Program
	deduplicate bool
	maxResults  int

	result     *Result
	seen       map[string]bool
	seenErrors map[string]bool
}

// NewAccumulator creates an accumulator for prog. A nil prog passes records
// through unchanged. maxResults <= 0 means unlimited.
func NewAccumulator(prog *Program, deduplicate bool, maxResults int) *Accumulator {
	return &Accumulator{
		prog:        prog,
		deduplicate: deduplicate,
		maxResults:  maxResults,
		result: &Result{
			Values: make([]any, 0),
			Errors: make([]string, 0),
		},
		seen:       make(map[string]bool),
		seenErrors: make(map[string]bool),
	}
}

// Full reports whether the result limit has been reached.
func (a *Accumulator) Full() bool {
	return a.maxResults > 0 && len(a.result.Values) >= a.maxResults
}

// Add runs the program against one record. It returns false when output had
// to be discarded because the result limit was reached; the caller should
// stop feeding records.
func (a *Accumulator) Add(label string, record any) bool {
	if a.Full() {
		a.result.Truncated = true
		return false
	}
	a.result.Records++

	values := []any{record}
	if a.prog != nil {
		var errs []string
		values, errs = a.prog.Run(label, record)
		for _, msg := range errs {
			// Deduplicate similar errors
			if !a.seenErrors[msg] {
				a.result.Errors = append(a.result.Errors, msg)
				a.seenErrors[msg] = true
			}
		}
	}
	if len(values) > 0 {
		a.result.Matched++
	}

	for _, v := range values {
		if a.Full() {
			a.result.Truncated = true
			return false
		}
		a.result.RawCount++

		// Handle deduplication
		if a.deduplicate {
			key := valueKey(v)
			if a.seen[key] {
				continue
			}
			a.seen[key] = true
		}
		a.result.Values = append(a.result.Values, v)
	}
	return true
}

// Result returns the gathered result.
func (a *Accumulator) Result() *Result {
	return a.result
}

// Normalize converts a typed Go value into the generic JSON shape gojq
// operates on, by round-tripping it through encoding/json.
func Normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encoding query input: %w", err)
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("decoding query input: %w", err)
	}
	return out, nil
}

// formatJQError creates a helpful error message for JQ execution errors.
// It adds contextual hints to help users fix common issues.
//
// Note: Runtime JQ errors (like "cannot iterate over: null") are plain errors
// without typed wrappers in gojq, so string matching is used for user-facing
// hints only, never for control flow.
func formatJQError(label string, err error) string {
	// Check for typed errors first
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return fmt.Sprintf("%s: query halted", label)
		}
		return fmt.Sprintf("%s: query halted with: %v", label, haltErr.Value())
	}

	errStr := err.Error()

	var hint string
	switch {
	case strings.Contains(errStr, "cannot iterate over: null"):
		hint = " (the field may not exist on this record)"
	case strings.Contains(errStr, "cannot index") && strings.Contains(errStr, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(errStr, "object") && strings.Contains(errStr, "cannot be iterated"):
		hint = " (expected array but got object, try removing '[]')"
	case strings.Contains(errStr, "array") && strings.Contains(errStr, "cannot be indexed"):
		hint = " (expected object but got array, try adding '[]')"
	}

	return fmt.Sprintf("%s: %s%s", label, errStr, hint)
}

// valueKey creates a string key for deduplication.
func valueKey(v any) string {
	switch val := v.(type) {
	case string:
		return "s:" + val
	case float64:
		return fmt.Sprintf("n:%v", val)
	case bool:
		return fmt.Sprintf("b:%v", val)
	case nil:
		return "null"
	default:
		// For complex types, marshal to JSON
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("?:%v", val)
		}
		return "j:" + string(b)
	}
}
