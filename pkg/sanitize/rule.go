package sanitize

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// groupRefPattern matches $1, ${1} and ${name} references in a replacement template.
var groupRefPattern = regexp.MustCompile(`\$(\{[A-Za-z0-9_]+\}|[A-Za-z0-9_]+)`)

// ErrDuplicateGroupRef is returned when a replacement references the same group twice.
var ErrDuplicateGroupRef = errors.New("replacement references a group more than once")

// Rule is a single text rewrite step: every match of Pattern is replaced by
// Replacement, expanded with regexp template syntax.
type Rule struct {
	// ID is the stable identifier (e.g. "SAN001").
	ID string

	// Name is the human-readable identifier (e.g. "nan-to-null").
	Name string

	// Description says what the rule rewrites.
	Description string

	// Pattern is the source regular expression.
	Pattern string

	// Replacement is the expansion template.
	Replacement string

	re *regexp.Regexp

	// minWidth and maxWidth bound the byte length of any match.
	minWidth int
	maxWidth int

	// growth bounds how many bytes a single replacement can add.
	growth int
}

// NewRule compiles a rule. The pattern must have a bounded match width so
// that a streaming carry buffer can be sized to contain any match.
func NewRule(id, name, description, pattern, replacement string) (*Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("rule %s: compile: %w", id, err)
	}

	minWidth, maxWidth, minOutside, err := patternWidths(pattern)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", id, err)
	}

	literal, err := templateLiteralLen(replacement)
	if err != nil {
		return nil, fmt.Errorf("rule %s: %w", id, err)
	}

	return &Rule{
		ID:          id,
		Name:        name,
		Description: description,
		Pattern:     pattern,
		Replacement: replacement,
		re:          re,
		minWidth:    max(minWidth, 1),
		maxWidth:    maxWidth,
		growth:      max(literal-minOutside, 0),
	}, nil
}

// MustRule is like NewRule but panics on error. It is meant for built-in rules.
func MustRule(id, name, description, pattern, replacement string) *Rule {
	rule, err := NewRule(id, name, description, pattern, replacement)
	if err != nil {
		panic(err)
	}
	return rule
}

// MaxWidth returns the largest number of bytes a single match can span.
func (r *Rule) MaxWidth() int {
	return r.maxWidth
}

// Reach returns the largest span, in bytes, that a single match can occupy
// either before or after replacement.
func (r *Rule) Reach() int {
	return r.maxWidth + r.growth
}

// Apply rewrites every match in src and returns the result and match count.
func (r *Rule) Apply(src string) (string, int) {
	matches := r.re.FindAllStringSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return src, 0
	}
	return r.expand(src, 0, len(src), matches), len(matches)
}

// expand copies src[from:to], substituting each of matches (which must lie
// inside the range and be expressed in src coordinates).
func (r *Rule) expand(src string, from, to int, matches [][]int) string {
	if len(matches) == 0 {
		return src[from:to]
	}

	var out strings.Builder
	out.Grow(to - from + len(matches)*r.growth)

	var scratch []byte
	cursor := from
	for _, m := range matches {
		out.WriteString(src[cursor:m[0]])
		scratch = r.re.ExpandString(scratch[:0], r.Replacement, src, m)
		out.Write(scratch)
		cursor = m[1]
	}
	out.WriteString(src[cursor:to])

	return out.String()
}

// templateLiteralLen returns the length of template excluding group references.
func templateLiteralLen(template string) (int, error) {
	seen := make(map[string]bool)
	for _, ref := range groupRefPattern.FindAllStringSubmatch(template, -1) {
		name := strings.Trim(ref[1], "{}")
		if seen[name] {
			return 0, fmt.Errorf("%w: %s", ErrDuplicateGroupRef, name)
		}
		seen[name] = true
	}
	return len(groupRefPattern.ReplaceAllString(template, "")), nil
}
