// Package jsoncompact shrinks decoded Kismet records for display by
// trimming long arrays and strings and dropping history fields.
package jsoncompact

import (
	"fmt"
	"strings"
)

// Options controls compaction.
type Options struct {
	MaxArrayItems int      // Trim arrays to N items (0 = no limit)
	MaxStringLen  int      // Truncate strings longer than N chars (0 = no limit)
	MaxDepth      int      // Max recursion depth (0 = unlimited)
	DropPrefixes  []string // Remove object keys starting with any of these
}

// Default values for compaction options.
const (
	DefaultMaxArrayItems = 5
	DefaultMaxStringLen  = 256
	DefaultMaxDepth      = 0 // unlimited
)

// DefaultDropPrefixes are the round-robin history series Kismet attaches to
// devices and signal records. They hold hundreds of samples each and rarely
// matter when reading a single record.
var DefaultDropPrefixes = []string{
	"kismet.common.rrd",
	"kismet.device.base.packets.rrd",
	"kismet.device.base.datasize.rrd",
}

// DefaultOptions returns the default compaction settings.
func DefaultOptions() *Options {
	return &Options{
		MaxArrayItems: DefaultMaxArrayItems,
		MaxStringLen:  DefaultMaxStringLen,
		MaxDepth:      DefaultMaxDepth,
		DropPrefixes:  DefaultDropPrefixes,
	}
}

// CompactValue compacts a decoded JSON value. The input is not modified.
// If opts is nil, DefaultOptions() is used.
func CompactValue(v any, opts *Options) any {
	if opts == nil {
		opts = DefaultOptions()
	}
	return compactRecursive(v, opts, 0)
}

func compactRecursive(v any, opts *Options, depth int) any {
	if opts.MaxDepth > 0 && depth >= opts.MaxDepth {
		return "[max depth]"
	}

	switch val := v.(type) {
	case []any:
		return compactArray(val, opts, depth)
	case map[string]any:
		return compactObject(val, opts, depth)
	case string:
		return compactString(val, opts)
	default:
		return v
	}
}

func compactString(s string, opts *Options) string {
	if opts.MaxStringLen <= 0 || len(s) <= opts.MaxStringLen {
		return s
	}
	return s[:opts.MaxStringLen] + fmt.Sprintf("... (%d more chars)", len(s)-opts.MaxStringLen)
}

func compactArray(arr []any, opts *Options, depth int) []any {
	n := len(arr)
	if opts.MaxArrayItems > 0 && n > opts.MaxArrayItems {
		n = opts.MaxArrayItems
	}

	result := make([]any, n, n+1)
	for i := range n {
		result[i] = compactRecursive(arr[i], opts, depth+1)
	}
	if n < len(arr) {
		result = append(result, fmt.Sprintf("... (%d more items)", len(arr)-n))
	}
	return result
}

func compactObject(obj map[string]any, opts *Options, depth int) map[string]any {
	result := make(map[string]any, len(obj))
	for k, v := range obj {
		if dropped(k, opts.DropPrefixes) {
			continue
		}
		result[k] = compactRecursive(v, opts, depth+1)
	}
	return result
}

func dropped(key string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(key, p) {
			return true
		}
	}
	return false
}
