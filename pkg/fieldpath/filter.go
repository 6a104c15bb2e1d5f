package fieldpath

import (
	"fmt"
	"regexp"
	"strconv"

	lru "github.com/hashicorp/golang-lru/v2"
)

// patternCacheSize bounds the number of compiled patterns kept around.
// Filters are usually rebuilt per request from the same handful of patterns.
const patternCacheSize = 256

var patternCache = mustPatternCache()

func mustPatternCache() *lru.Cache[string, *regexp.Regexp] {
	c, err := lru.New[string, *regexp.Regexp](patternCacheSize)
	if err != nil {
		panic(err)
	}
	return c
}

// compile returns the cached regexp for pattern, compiling it on a miss.
func compile(pattern string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Get(pattern); ok {
		return re, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, err
	}
	patternCache.Add(pattern, re)
	return re, nil
}

type compiledTerm struct {
	field string
	re    *regexp.Regexp
}

// Filter is a compiled regex filter.
type Filter struct {
	terms []compiledTerm
}

// CompileFilter compiles every pattern of rx. Patterns use Go RE2 syntax,
// which covers the PCRE subset Kismet filters use in practice.
func CompileFilter(rx Regex) (*Filter, error) {
	f := &Filter{terms: make([]compiledTerm, 0, len(rx))}
	for i, t := range rx {
		re, err := compile(t.Pattern)
		if err != nil {
			return nil, fmt.Errorf("regex term %d (%s): %w", i, t.Field, err)
		}
		f.terms = append(f.terms, compiledTerm{field: t.Field, re: re})
	}
	return f, nil
}

// Len returns the number of terms.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.terms)
}

// Match reports whether record matches any term. An empty filter matches
// every record.
func (f *Filter) Match(record any) bool {
	if f.Len() == 0 {
		return true
	}
	for _, t := range f.terms {
		for _, v := range Expand(record, t.field) {
			if s, ok := scalarString(v); ok && t.re.MatchString(s) {
				return true
			}
		}
	}
	return false
}

// scalarString renders JSON scalars for matching. Objects, vectors and null
// never match.
func scalarString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(val), true
	case interface{ String() string }:
		return val.String(), true
	default:
		return "", false
	}
}
