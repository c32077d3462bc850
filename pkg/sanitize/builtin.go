package sanitize

import (
	"strconv"
	"strings"
)

const (
	// MaxWhitespace is the longest run of optional whitespace, in runes, a
	// rule accepts between the tokens it recognizes.
	MaxWhitespace = 1024

	// MaxElement is the longest array element, in runes, that the bracket
	// literal rules convert.
	MaxElement = 1024

	// maxRepeat is the largest repeat count the regexp parser accepts.
	maxRepeat = 1000
)

// spaceClass matches the whitespace of JSON exporters: ASCII space and
// control whitespace, vertical tab, Unicode space separators, line and
// paragraph separators, and the byte order mark.
const spaceClass = `[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]`

// Built-in rule IDs in pipeline order.
const (
	RuleNaNToNull          = "SAN001"
	RuleArrayOpenQuote     = "SAN002"
	RuleArrayCloseQuote    = "SAN003"
	RuleArraySeparator     = "SAN004"
	RuleSingleElementArray = "SAN005"
	RuleTwoElementArray    = "SAN006"
)

// BuiltinRules returns fresh copies of the built-in rules in the order they must run.
func BuiltinRules() []*Rule {
	ws := upTo(spaceClass, MaxWhitespace)
	elem := `(` + upTo(`[^']`, MaxElement) + `)`

	return []*Rule{
		MustRule(RuleNaNToNull, "nan-to-null",
			"Replace an unquoted NaN value with null",
			`:`+ws+`NaN(`+ws+`[,}\]])`,
			`: null${1}`),
		MustRule(RuleArrayOpenQuote, "array-open-quote",
			`Rewrite "[' to "[" at the start of a quoted single-quoted array`,
			`"\[`+ws+`'`,
			`"["`),
		MustRule(RuleArrayCloseQuote, "array-close-quote",
			`Rewrite ']" to "]" at the end of a quoted single-quoted array`,
			`'`+ws+`\]"`,
			`"]"`),
		MustRule(RuleArraySeparator, "array-separator",
			`Rewrite ',' element separators to ","`,
			`'`+ws+`,`+ws+`'`,
			`","`),
		MustRule(RuleSingleElementArray, "single-element-array",
			`Rewrite ['text'] to ["text"]`,
			`\[`+ws+`'`+elem+`'`+ws+`\]`,
			`["${1}"]`),
		MustRule(RuleTwoElementArray, "two-element-array",
			`Rewrite ['a','b'] to ["a","b"]`,
			`\[`+ws+`'`+elem+`'`+ws+`,`+ws+`'`+elem+`'`+ws+`\]`,
			`["${1}","${2}"]`),
	}
}

// upTo returns a pattern matching between zero and n repetitions of atom,
// split into groups the regexp parser accepts.
func upTo(atom string, n int) string {
	var b strings.Builder
	b.WriteString("(?:")
	for n > 0 {
		count := min(n, maxRepeat)
		b.WriteString(atom + `{0,` + strconv.Itoa(count) + `}`)
		n -= count
	}
	b.WriteString(")")
	return b.String()
}
