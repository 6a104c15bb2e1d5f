// Package fieldpath implements the Kismet field simplification and regex
// filter specifications.
//
// Kismet field names are dotted ("kismet.device.base.channel"), so a path is
// split only on '/', which descends into a nested object addressed by the next
// name:
//
//	kismet.device.base.signal/kismet.common.signal.last_signal
//
// A field entry is either a bare path or a (path, alias) pair. On the wire a
// bare path encodes as a JSON string and an aliased one as a two-element
// array:
//
//	["kismet.device.base.channel", ["kismet.device.base.name", "name"]]
//
// A regex filter is a list of (multifield, pattern) pairs. Multifield paths
// expand value-maps and vectors found along the way, so
//
//	dot11.device/dot11.device.advertised_ssid_map/dot11.advertisedssid.ssid
//
// reaches every advertised SSID of a device. A record passes a filter if any
// pair matches.
package fieldpath

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Separator divides path segments.
const Separator = "/"

// Field is one entry of a field simplification list.
type Field struct {
	Path  string
	Alias string // empty when the field keeps its own name
}

// F returns an unaliased field entry.
func F(path string) Field {
	return Field{Path: path}
}

// As returns a field entry renamed to alias in simplified records.
func As(path, alias string) Field {
	return Field{Path: path, Alias: alias}
}

// Name returns the key the field is stored under in a simplified record:
// the alias when set, otherwise the last segment of the path.
func (f Field) Name() string {
	if f.Alias != "" {
		return f.Alias
	}
	segs := Split(f.Path)
	if len(segs) == 0 {
		return f.Path
	}
	return segs[len(segs)-1]
}

// MarshalJSON encodes the entry as "path" or ["path", "alias"].
func (f Field) MarshalJSON() ([]byte, error) {
	if f.Alias == "" {
		return json.Marshal(f.Path)
	}
	return json.Marshal([2]string{f.Path, f.Alias})
}

// UnmarshalJSON accepts either wire form.
func (f *Field) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		*f = Field{Path: path}
		return nil
	}

	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("field must be a string or [path, alias]: %w", err)
	}
	switch len(pair) {
	case 1:
		*f = Field{Path: pair[0]}
	case 2:
		*f = Field{Path: pair[0], Alias: pair[1]}
	default:
		return fmt.Errorf("field array must have 1 or 2 elements, got %d", len(pair))
	}
	return nil
}

// Fields is an ordered field simplification list.
//
// A nil Fields means "no simplification"; an empty non-nil Fields asks for
// zero fields. The two are encoded differently by the client.
type Fields []Field

// Term is one (multifield, pattern) pair of a regex filter.
type Term struct {
	Field   string
	Pattern string
}

// Match returns a regex term.
func Match(field, pattern string) Term {
	return Term{Field: field, Pattern: pattern}
}

// MarshalJSON encodes the term as ["multifield", "pattern"].
func (t Term) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{t.Field, t.Pattern})
}

// UnmarshalJSON decodes ["multifield", "pattern"].
func (t *Term) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("regex term must be [field, pattern]: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("regex term must have 2 elements, got %d", len(pair))
	}
	*t = Term{Field: pair[0], Pattern: pair[1]}
	return nil
}

// Regex is an ordered regex filter list. Nil and empty both mean "match all"
// when evaluated locally, but only a nil Regex is omitted on the wire.
type Regex []Term

// Split breaks a path into its segments, dropping empty ones.
func Split(path string) []string {
	parts := strings.Split(path, Separator)
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}
