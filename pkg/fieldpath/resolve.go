package fieldpath

import (
	"sort"
)

// Resolve walks path through nested objects and returns the value found.
// Every segment must name a key of the current object; vectors and
// value-maps are not expanded. Use Expand for multifield semantics.
func Resolve(v any, path string) (any, bool) {
	cur := v
	for _, seg := range Split(path) {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = obj[seg]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Expand walks a multifield path and returns every value it reaches.
//
// At each segment a node yields its own child of that name when it has one.
// Otherwise a vector node, or an object used as a value-map, is expanded one
// level: each element or value that is an object contributes its child of
// that name. A terminal vector is flattened one level. Collections nested
// inside collections are not expanded further.
//
// Values reached through value-maps are ordered by map key.
func Expand(v any, path string) []any {
	nodes := []any{v}
	for _, seg := range Split(path) {
		var next []any
		for _, n := range nodes {
			next = appendChildren(next, n, seg)
		}
		if len(next) == 0 {
			return nil
		}
		nodes = next
	}

	out := make([]any, 0, len(nodes))
	for _, n := range nodes {
		if list, ok := n.([]any); ok {
			out = append(out, list...)
			continue
		}
		out = append(out, n)
	}
	return out
}

func appendChildren(dst []any, node any, seg string) []any {
	switch n := node.(type) {
	case map[string]any:
		if child, ok := n[seg]; ok {
			return append(dst, child)
		}
		keys := make([]string, 0, len(n))
		for k := range n {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			dst = appendMember(dst, n[k], seg)
		}
	case []any:
		for _, elem := range n {
			dst = appendMember(dst, elem, seg)
		}
	}
	return dst
}

func appendMember(dst []any, member any, seg string) []any {
	obj, ok := member.(map[string]any)
	if !ok {
		return dst
	}
	if child, ok := obj[seg]; ok {
		dst = append(dst, child)
	}
	return dst
}

// Simplify reduces record to the listed fields, each stored under
// Field.Name. Fields that do not resolve are left out.
//
// A nil fields list returns record unchanged. A record that is not an object
// simplifies to an empty object.
func Simplify(record any, fields Fields) any {
	if fields == nil {
		return record
	}
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := Resolve(record, f.Path); ok {
			out[f.Name()] = v
		}
	}
	return out
}
