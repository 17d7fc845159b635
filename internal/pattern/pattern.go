// Package pattern implements HTS-style label pattern matching and decision
// tree descent. A Pattern is compiled once from its source
// string into one of three representations — All, Contains, or a fully
// anchored regular expression — so the hot tree-walk path avoids regex
// overhead whenever the pattern is structurally simple.
package pattern

import (
	"fmt"
	"regexp"
	"strings"
)

// kind distinguishes the compiled representation of a Pattern.
type kind int

const (
	kindAll kind = iota
	kindContains
	kindRegex
)

// Pattern is a compiled label-matching pattern. Matching is always
// case-sensitive and anchored to the full label string.
type Pattern struct {
	kind     kind
	contains string
	re       *regexp.Regexp
	src      string
}

// Compile parses a pattern string into its fastest matching representation.
// "*" compiles to All. "*substr*" with no interior wildcard compiles to
// Contains. Everything else compiles to an anchored regular expression,
// where '+', '^', '|' are escaped, '*' becomes ".*" and '?' becomes ".".
func Compile(src string) (Pattern, error) {
	if src == "*" {
		return Pattern{kind: kindAll, src: src}, nil
	}

	if strings.HasPrefix(src, "*") && strings.HasSuffix(src, "*") && len(src) >= 2 {
		inner := src[1 : len(src)-1]
		if !strings.ContainsAny(inner, "*?") {
			return Pattern{kind: kindContains, contains: inner, src: src}, nil
		}
	}

	escaped := strings.NewReplacer(
		"+", "\\+",
		"^", "\\^",
		"|", "\\|",
		"*", ".*",
		"?", ".",
	).Replace(src)

	re, err := regexp.Compile("^" + escaped + "$")
	if err != nil {
		return Pattern{}, fmt.Errorf("pattern: compile %q: %w", src, err)
	}

	return Pattern{kind: kindRegex, re: re, src: src}, nil
}

// MustCompile is like Compile but panics on error; intended for tests and
// programmatically constructed voices where the pattern is known-good.
func MustCompile(src string) Pattern {
	p, err := Compile(src)
	if err != nil {
		panic(err)
	}

	return p
}

// Match reports whether label matches the pattern.
func (p Pattern) Match(label string) bool {
	switch p.kind {
	case kindAll:
		return true
	case kindContains:
		return strings.Contains(label, p.contains)
	case kindRegex:
		return p.re.MatchString(label)
	default:
		return false
	}
}

// String returns the original pattern source.
func (p Pattern) String() string { return p.src }

// MatchAny reports whether any pattern in the list matches label. An empty
// list never matches.
func MatchAny(patterns []Pattern, label string) bool {
	for _, p := range patterns {
		if p.Match(label) {
			return true
		}
	}

	return false
}

// CompileAll compiles a list of pattern source strings, returning the first
// compile error encountered.
func CompileAll(srcs []string) ([]Pattern, error) {
	out := make([]Pattern, len(srcs))

	for i, s := range srcs {
		p, err := Compile(s)
		if err != nil {
			return nil, err
		}

		out[i] = p
	}

	return out, nil
}
