package sanitize

import (
	"errors"
	"fmt"
	"regexp/syntax"
	"unicode/utf8"
)

// ErrUnboundedPattern is returned for patterns whose matches have no upper length bound.
var ErrUnboundedPattern = errors.New("pattern has unbounded width")

// patternWidths reports the minimum and maximum byte length of any match of
// expr, and the minimum byte length contributed by text outside capture groups.
func patternWidths(expr string) (minWidth, maxWidth, minOutside int, err error) {
	re, err := syntax.Parse(expr, syntax.Perl)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("parse pattern: %w", err)
	}

	maxWidth, err = maxBytes(re)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("%w: %s", err, expr)
	}

	return minBytes(re, true), maxWidth, minBytes(re, false), nil
}

func maxBytes(re *syntax.Regexp) (int, error) {
	switch re.Op {
	case syntax.OpLiteral:
		total := 0
		for _, r := range re.Rune {
			total += runeBytes(r)
		}
		return total, nil
	case syntax.OpCharClass:
		widest := 0
		for i := 1; i < len(re.Rune); i += 2 {
			widest = max(widest, runeBytes(re.Rune[i]))
		}
		return widest, nil
	case syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		return utf8.UTFMax, nil
	case syntax.OpStar, syntax.OpPlus:
		return 0, ErrUnboundedPattern
	case syntax.OpRepeat:
		if re.Max < 0 {
			return 0, ErrUnboundedPattern
		}
		sub, err := maxBytes(re.Sub[0])
		if err != nil {
			return 0, err
		}
		return sub * re.Max, nil
	case syntax.OpQuest, syntax.OpCapture:
		return maxBytes(re.Sub[0])
	case syntax.OpConcat:
		total := 0
		for _, sub := range re.Sub {
			width, err := maxBytes(sub)
			if err != nil {
				return 0, err
			}
			total += width
		}
		return total, nil
	case syntax.OpAlternate:
		widest := 0
		for _, sub := range re.Sub {
			width, err := maxBytes(sub)
			if err != nil {
				return 0, err
			}
			widest = max(widest, width)
		}
		return widest, nil
	default:
		// Anchors, word boundaries and empty matches consume nothing.
		return 0, nil
	}
}

func minBytes(re *syntax.Regexp, countCaptures bool) int {
	switch re.Op {
	case syntax.OpLiteral:
		total := 0
		for _, r := range re.Rune {
			total += runeBytes(r)
		}
		return total
	case syntax.OpCharClass, syntax.OpAnyChar, syntax.OpAnyCharNotNL:
		return 1
	case syntax.OpPlus:
		return minBytes(re.Sub[0], countCaptures)
	case syntax.OpRepeat:
		return minBytes(re.Sub[0], countCaptures) * re.Min
	case syntax.OpCapture:
		if !countCaptures {
			return 0
		}
		return minBytes(re.Sub[0], countCaptures)
	case syntax.OpConcat:
		total := 0
		for _, sub := range re.Sub {
			total += minBytes(sub, countCaptures)
		}
		return total
	case syntax.OpAlternate:
		narrowest := -1
		for _, sub := range re.Sub {
			width := minBytes(sub, countCaptures)
			if narrowest < 0 || width < narrowest {
				narrowest = width
			}
		}
		return max(narrowest, 0)
	default:
		return 0
	}
}

func runeBytes(r rune) int {
	if n := utf8.RuneLen(r); n > 0 {
		return n
	}
	return utf8.UTFMax
}
