package sanitize

import "unicode/utf8"

// Counts holds per-rule substitution counts, indexed like Pipeline.Rules.
type Counts []int

// Total returns the sum of all counts.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Add accumulates other into c. Both must come from the same pipeline.
func (c Counts) Add(other Counts) {
	for i := range c {
		if i < len(other) {
			c[i] += other[i]
		}
	}
}

// Pipeline applies an ordered list of rules, each to the output of the previous one.
type Pipeline struct {
	rules []*Rule

	// tails[k] is the number of bytes that must follow a cut in the text seen
	// by pass k for that pass to match exactly as it would on the full input.
	tails []int

	// horizon is the furthest any rewrite can reach back from the window end.
	horizon int
}

// NewPipeline builds a pipeline that runs rules in the given order.
func NewPipeline(rules ...*Rule) *Pipeline {
	p := &Pipeline{
		rules: rules,
		tails: make([]int, len(rules)),
	}

	// The trailing region that may differ from the full input grows by one
	// match width per pass, scaled by the worst-case growth of replacements.
	unstable := 0
	for k, rule := range rules {
		p.tails[k] = unstable + rule.maxWidth
		unstable = p.tails[k] + ceilDiv(p.tails[k]*rule.growth, rule.minWidth)
	}
	p.horizon = unstable

	return p
}

// DefaultPipeline returns a pipeline over every rule in DefaultRegistry.
func DefaultPipeline() *Pipeline {
	return NewPipeline(DefaultRegistry.Rules()...)
}

// Rules returns the pipeline's rules in execution order.
func (p *Pipeline) Rules() []*Rule {
	return p.rules
}

// Len returns the number of rules.
func (p *Pipeline) Len() int {
	return len(p.rules)
}

// Horizon returns the smallest carry size, in bytes, that lets a streaming
// run produce the same output as processing the input in one piece.
func (p *Pipeline) Horizon() int {
	return p.horizon
}

// Apply runs every rule over text in order.
func (p *Pipeline) Apply(text string) (string, Counts) {
	counts := make(Counts, len(p.rules))
	for i, rule := range p.rules {
		text, counts[i] = rule.Apply(text)
	}
	return text, counts
}

// Split finds the largest cut at or below limit at which window can be
// divided without changing the result, and returns the cut together with the
// rewritten text before it. A cut of zero means no safe split exists yet.
func (p *Pipeline) Split(window string, limit int) (int, string, Counts) {
	cut := min(limit, len(window))
	for cut > 0 {
		cut = runeStart(window, cut)
		if cut == 0 {
			break
		}

		head, counts, back := p.trySplit(window, cut)
		if back == 0 {
			return cut, head, counts
		}
		cut -= back
	}
	return 0, "", make(Counts, len(p.rules))
}

// trySplit runs every pass over window, tracking where cut lands. It returns
// a positive back-off if a match straddles the cut or too little text follows
// it; otherwise it returns the rewritten head.
func (p *Pipeline) trySplit(window string, cut int) (string, Counts, int) {
	counts := make(Counts, len(p.rules))
	text, pos := window, cut

	for k, rule := range p.rules {
		if short := p.tails[k] - (len(text) - pos); short > 0 {
			return "", nil, short
		}

		matches := rule.re.FindAllStringSubmatchIndex(text, -1)

		split := len(matches)
		for i, m := range matches {
			if m[1] <= pos {
				continue
			}
			if m[0] < pos {
				return "", nil, pos - m[0]
			}
			split = i
			break
		}

		head := rule.expand(text, 0, pos, matches[:split])
		tail := rule.expand(text, pos, len(text), matches[split:])
		counts[k] = split
		text, pos = head+tail, len(head)
	}

	return text[:pos], counts, 0
}

// runeStart moves cut back to the start of the UTF-8 sequence it falls in.
func runeStart(s string, cut int) int {
	for i := 0; i < utf8.UTFMax && cut > 0 && cut < len(s) && !utf8.RuneStart(s[cut]); i++ {
		cut--
	}
	return cut
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
