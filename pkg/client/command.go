package client

import (
	"encoding/json"

	"github.com/usestring/kismetrest/pkg/fieldpath"
)

// Field simplification and regex filter types, re-exported from fieldpath so
// callers of the client rarely need to import both packages.
type (
	Field  = fieldpath.Field
	Fields = fieldpath.Fields
	Term   = fieldpath.Term
	Regex  = fieldpath.Regex
)

// Command is the JSON object posted to parameterized endpoints in the "json"
// form field.
type Command map[string]any

// NewCommand builds a command carrying the field simplification and regex
// filter lists.
//
// A nil list leaves its key out entirely. A non-nil empty list is sent as
// []: Kismet treats an absent "fields" as "return everything" but an empty
// one as "return no fields", so the distinction is kept.
func NewCommand(fields Fields, regex Regex) Command {
	cmd := Command{}
	if fields != nil {
		cmd["fields"] = fields
	}
	if regex != nil {
		cmd["regex"] = regex
	}
	return cmd
}

// Set adds key to the command and returns it for chaining.
func (c Command) Set(key string, value any) Command {
	c[key] = value
	return c
}

// encode returns the form value for the command; a nil command encodes as
// an empty string.
func (c Command) encode() (string, error) {
	if c == nil {
		return "", nil
	}
	b, err := json.Marshal(map[string]any(c))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
