package client

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Mode selects how a response body is decoded.
type Mode int

const (
	// ModeDocument parses the whole body as a single JSON value (*.json).
	ModeDocument Mode = iota
	// ModeStream parses the body as ekjson: one complete JSON document per
	// line (*.ekjson). Kismet emits each element of a vector response as its
	// own line so large results never have to be held in memory at once.
	ModeStream
)

// Visitor receives decoded objects one at a time. Returning an error stops
// decoding and that error is returned to the caller.
type Visitor func(obj any) error

// Decode reads a JSON or ekjson body.
//
// Without a visitor every decoded object is returned in order; a document
// body always yields exactly one element. With a visitor each object is
// handed over as soon as it is decoded and nothing is accumulated, so the
// returned slice is nil and memory use stays flat regardless of response
// size.
//
// In stream mode each line is one object; a line containing an array is
// delivered as a single array, never split. A line that fails to parse
// aborts decoding with a *MalformedResponseError and no partial result.
// Blank lines are skipped.
func Decode(r io.Reader, mode Mode, visit Visitor) ([]any, error) {
	if mode == ModeStream {
		return decodeStream(r, visit)
	}
	return decodeDocument(r, visit)
}

func decodeDocument(r io.Reader, visit Visitor) ([]any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	var obj any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, &MalformedResponseError{Raw: data, Err: err}
	}

	if visit != nil {
		return nil, visit(obj)
	}
	return []any{obj}, nil
}

func decodeStream(r io.Reader, visit Visitor) ([]any, error) {
	br := bufio.NewReader(r)
	var out []any

	for {
		line, readErr := br.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return nil, fmt.Errorf("reading response: %w", readErr)
		}

		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			var obj any
			if err := json.Unmarshal(trimmed, &obj); err != nil {
				return nil, &MalformedResponseError{Raw: trimmed, Err: err}
			}
			if visit != nil {
				if err := visit(obj); err != nil {
					return nil, err
				}
			} else {
				out = append(out, obj)
			}
		}

		if readErr != nil {
			break
		}
	}

	if visit == nil && out == nil {
		out = []any{}
	}
	return out, nil
}
