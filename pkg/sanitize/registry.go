package sanitize

import (
	"fmt"
	"sync"
)

// Registry holds rules in the order they run.
type Registry struct {
	mu     sync.RWMutex
	order  []*Rule
	byID   map[string]*Rule
	byName map[string]*Rule
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[string]*Rule),
		byName: make(map[string]*Rule),
	}
}

// Register appends a rule to the end of the run order.
// If a rule with the same ID already exists, it is replaced in place.
func (r *Registry) Register(rule *Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byID[rule.ID]; ok {
		for i, candidate := range r.order {
			if candidate == existing {
				r.order[i] = rule
			}
		}
		delete(r.byName, existing.Name)
	} else {
		r.order = append(r.order, rule)
	}

	r.byID[rule.ID] = rule
	r.byName[rule.Name] = rule
}

// Get retrieves a rule by ID or name.
func (r *Registry) Get(key string) (*Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rule, ok := r.byID[key]; ok {
		return rule, true
	}
	rule, ok := r.byName[key]
	return rule, ok
}

// Resolve returns the canonical ID for a rule ID or name.
func (r *Registry) Resolve(key string) (string, bool) {
	rule, ok := r.Get(key)
	if !ok {
		return "", false
	}
	return rule.ID, true
}

// Rules returns all registered rules in run order.
func (r *Registry) Rules() []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Rule, len(r.order))
	copy(result, r.order)
	return result
}

// IDs returns all registered rule IDs in run order.
func (r *Registry) IDs() []string {
	rules := r.Rules()
	ids := make([]string, 0, len(rules))
	for _, rule := range rules {
		ids = append(ids, rule.ID)
	}
	return ids
}

// Pipeline builds a pipeline from the registered rules, skipping any whose
// ID or name appears in disabled. Unknown keys are reported as an error.
func (r *Registry) Pipeline(disabled ...string) (*Pipeline, error) {
	skip := make(map[string]bool, len(disabled))
	for _, key := range disabled {
		id, ok := r.Resolve(key)
		if !ok {
			return nil, fmt.Errorf("unknown rule %q", key)
		}
		skip[id] = true
	}

	var rules []*Rule
	for _, rule := range r.Rules() {
		if !skip[rule.ID] {
			rules = append(rules, rule)
		}
	}
	return NewPipeline(rules...), nil
}

// DefaultRegistry is the global registry for built-in rules.
//
//nolint:gochecknoglobals // Global registry is intentional for rule registration.
var DefaultRegistry = newDefaultRegistry()

func newDefaultRegistry() *Registry {
	reg := NewRegistry()
	for _, rule := range BuiltinRules() {
		reg.Register(rule)
	}
	return reg
}
