// Package filter implements dupscan's include/exclude pattern matching:
// PatternSet evaluates compiled regular expressions against a file's name
// and full path, with optional DOS-glob shorthand translation.
package filter

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mkessler/dupscan/internal/types"
)

// PatternSet holds the four ordered pattern lists used by Valid.
type PatternSet struct {
	IncludeName []*regexp.Regexp
	ExcludeName []*regexp.Regexp
	IncludePath []*regexp.Regexp
	ExcludePath []*regexp.Regexp
}

// New returns an empty PatternSet (include-all, exclude-none).
func New() *PatternSet {
	return &PatternSet{}
}

// AddIncludeName compiles and appends a name-level include pattern.
func (ps *PatternSet) AddIncludeName(pat string, rawRegex bool) error {
	return add(&ps.IncludeName, pat, rawRegex)
}

// AddExcludeName compiles and appends a name-level exclude pattern.
func (ps *PatternSet) AddExcludeName(pat string, rawRegex bool) error {
	return add(&ps.ExcludeName, pat, rawRegex)
}

// AddIncludePath compiles and appends a path-level include pattern.
func (ps *PatternSet) AddIncludePath(pat string, rawRegex bool) error {
	return add(&ps.IncludePath, pat, rawRegex)
}

// AddExcludePath compiles and appends a path-level exclude pattern.
func (ps *PatternSet) AddExcludePath(pat string, rawRegex bool) error {
	return add(&ps.ExcludePath, pat, rawRegex)
}

// add compiles pat and appends it to list. Patterns are anchored to match
// the entire string, matching regex_match's whole-string semantics rather
// than an unanchored substring search.
func add(list *[]*regexp.Regexp, pat string, rawRegex bool) error {
	if !rawRegex {
		pat = globToRegex(pat)
	}
	re, err := regexp.Compile(`^(?:` + pat + `)$`)
	if err != nil {
		return fmt.Errorf("pattern %q: %w", pat, err)
	}
	*list = append(*list, re)
	return nil
}

// globToRegex translates DOS-style glob shorthand to regex syntax: '*' -> ".*",
// '?' -> ".". Other regex metacharacters in pat are passed through
// unescaped: this is a raw textual substitution, not a full glob compiler.
func globToRegex(pat string) string {
	var b strings.Builder
	for _, r := range pat {
		switch r {
		case '*':
			b.WriteString(".*")
		case '?':
			b.WriteByte('.')
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid implements a five-step precedence chain:
//  1. name non-empty
//  2. name not matched by excludeName
//  3. name matched by includeName (empty list == match)
//  4. fullPath not matched by excludePath
//  5. fullPath matched by includePath (empty list == match)
//
// Any failure increments counters.SkipCnt.
func (ps *PatternSet) Valid(name, fullPath string, counters *types.Counters) bool {
	ok := name != "" &&
		!anyMatch(ps.ExcludeName, name) &&
		matchOrEmpty(ps.IncludeName, name) &&
		!anyMatch(ps.ExcludePath, fullPath) &&
		matchOrEmpty(ps.IncludePath, fullPath)

	if !ok && counters != nil {
		counters.SkipCnt++
	}
	return ok
}

func anyMatch(list []*regexp.Regexp, s string) bool {
	for _, re := range list {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func matchOrEmpty(list []*regexp.Regexp, s string) bool {
	if len(list) == 0 {
		return true
	}
	return anyMatch(list, s)
}
