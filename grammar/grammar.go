// Package grammar holds the context-free grammar model consumed by the
// Earley parser: symbols, terminal matchers, rules and a grammar indexed by
// left-hand side.
package grammar

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoRules is returned when a start symbol has no rules to seed a parse.
var ErrNoRules = errors.New("start symbol has no rules")

// Grammar is an immutable, ordered list of rules with a designated start
// symbol. It is safe to share between parsers and goroutines.
type Grammar struct {
	start    string
	rules    []*Rule
	byLHS    map[string][]*Rule
	nullable map[string]bool
}

// New builds a grammar from rules in declaration order. The order is kept
// within each left-hand side and decides the order in which alternatives are
// predicted.
func New(start string, rules ...Rule) (*Grammar, error) {
	g := &Grammar{
		start: start,
		rules: make([]*Rule, len(rules)),
		byLHS: make(map[string][]*Rule),
	}
	for i, r := range rules {
		rule := &Rule{
			LHS: r.LHS,
			RHS: append([]Symbol(nil), r.RHS...),
			id:  i,
		}
		g.rules[i] = rule
		g.byLHS[rule.LHS] = append(g.byLHS[rule.LHS], rule)
	}
	g.nullable = findNullable(g.rules)

	if err := g.CheckStart(start); err != nil {
		return nil, err
	}
	return g, nil
}

// MustNew is like New but panics on error. It is meant for grammars declared
// in code.
func MustNew(start string, rules ...Rule) *Grammar {
	g, err := New(start, rules...)
	if err != nil {
		panic(err.Error())
	}
	return g
}

// WithStart returns a grammar sharing g's rules with a different start
// symbol.
func (g *Grammar) WithStart(start string) (*Grammar, error) {
	if err := g.CheckStart(start); err != nil {
		return nil, err
	}
	cp := *g
	cp.start = start
	return &cp, nil
}

// CheckStart reports whether name can seed a parse.
func (g *Grammar) CheckStart(name string) error {
	if len(g.byLHS[name]) == 0 {
		return fmt.Errorf("grammar: %q: %w", name, ErrNoRules)
	}
	return nil
}

func (g *Grammar) Start() string {
	return g.start
}

// Rules returns every rule in declaration order. The slice must not be
// modified.
func (g *Grammar) Rules() []*Rule {
	return g.rules
}

// RulesFor returns the rules whose left-hand side is name, in declaration
// order. Unknown names yield nil.
func (g *Grammar) RulesFor(name string) []*Rule {
	return g.byLHS[name]
}

// Nullable reports whether the nonterminal name derives the empty string.
func (g *Grammar) Nullable(name string) bool {
	return g.nullable[name]
}

func (g *Grammar) String() string {
	var sb strings.Builder
	for _, r := range g.rules {
		sb.WriteString(r.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// findNullable computes, by fixpoint, the nonterminals that can derive ε.
func findNullable(rules []*Rule) map[string]bool {
	nullable := make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for _, r := range rules {
			if nullable[r.LHS] {
				continue
			}
			empty := true
			for _, s := range r.RHS {
				if s.IsTerminal() || !nullable[s.Name()] {
					empty = false
					break
				}
			}
			if empty {
				nullable[r.LHS] = true
				changed = true
			}
		}
	}
	return nullable
}
