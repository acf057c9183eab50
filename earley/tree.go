package earley

import (
	"fmt"
	"strings"

	"github.com/dhamidi/earley/grammar"
)

// Node is one node of a derivation tree. Leaves carry the terminal symbol and
// the token it matched; interior nodes carry a nonterminal and one child per
// right-hand-side symbol of the rule that produced it.
type Node struct {
	Symbol   grammar.Symbol
	Rule     *grammar.Rule // nil for leaves
	Token    string
	Start    int // first token index covered
	End      int // one past the last token index covered
	Children []*Node
}

func (n *Node) IsTerminal() bool {
	return n.Symbol.IsTerminal()
}

// Leaves returns the matched tokens in order.
func (n *Node) Leaves() []string {
	if n.IsTerminal() {
		return []string{n.Token}
	}
	var out []string
	for _, c := range n.Children {
		out = append(out, c.Leaves()...)
	}
	return out
}

func (n *Node) String() string {
	if n.IsTerminal() {
		return fmt.Sprintf("%q", n.Token)
	}
	parts := make([]string, len(n.Children))
	for i, c := range n.Children {
		if c.IsTerminal() {
			parts[i] = c.String()
		} else {
			parts[i] = c.Symbol.String()
		}
	}
	if len(parts) == 0 {
		return n.Symbol.String() + " -> ε"
	}
	return n.Symbol.String() + " -> " + strings.Join(parts, " ")
}

// Parse runs a full parse of tokens for the start symbol, replacing the
// parser's chart. An empty start uses the parser's configured symbol.
//
// ok is false when tokens are not a sentence of start; that is not an error.
// Errors come from a start symbol without rules or from terminal matchers.
func (p *Parser) Parse(tokens []string, start string) (tree *Node, ok bool, err error) {
	if start == "" {
		start = p.start
	}
	if err := p.seed(start); err != nil {
		return nil, false, err
	}
	for i := 0; i <= len(tokens); i++ {
		var next *Column
		if i < len(tokens) {
			next = p.chart.add(tokens[i])
		}
		if err := p.close(p.chart.Column(i), next); err != nil {
			return nil, false, err
		}
	}

	tree, ok = p.Tree()
	if !ok {
		p.log.Debugf("no complete %s spanning %d tokens", start, len(tokens))
	}
	return tree, ok, nil
}

// Parse is a one-shot parse with a throwaway parser.
func Parse(g *grammar.Grammar, tokens []string) (*Node, bool, error) {
	p, err := New(g)
	if err != nil {
		return nil, false, err
	}
	return p.Parse(tokens, "")
}

// Tree reconstructs one derivation of the start symbol spanning everything
// consumed so far. The earliest-declared rule wins at every choice point,
// then the longest child span. ok is false when no complete derivation
// exists.
func (p *Parser) Tree() (*Node, bool) {
	b := builder{
		g:      p.grammar,
		chart:  &p.chart,
		active: make(map[span]bool),
	}
	end := p.chart.Len() - 1
	for _, r := range p.grammar.RulesFor(p.seeded) {
		if !p.chart.last().Has(NewItem(r, r.Len(), 0)) {
			continue
		}
		if n, ok := b.build(r, 0, end); ok {
			return n, true
		}
	}
	return nil, false
}

type span struct {
	rule   *grammar.Rule
	origin int
	end    int
}

type builder struct {
	g      *grammar.Grammar
	chart  *Chart
	active map[span]bool
}

// build reconstructs a complete item of rule spanning [origin, end]. It
// refuses to re-enter a span already being built, which cuts cycles through
// unit and empty rules.
func (b *builder) build(rule *grammar.Rule, origin, end int) (*Node, bool) {
	key := span{rule: rule, origin: origin, end: end}
	if b.active[key] {
		return nil, false
	}
	b.active[key] = true
	defer delete(b.active, key)

	children := make([]*Node, rule.Len())
	if !b.fill(rule, origin, rule.Len(), end, children) {
		return nil, false
	}
	return &Node{
		Symbol:   grammar.NT(rule.LHS),
		Rule:     rule,
		Start:    origin,
		End:      end,
		Children: children,
	}, true
}

// fill walks backward over rule.RHS[:dot], which is known to span
// [origin, end] because item (rule, dot, origin) is in column end.
func (b *builder) fill(rule *grammar.Rule, origin, dot, end int, children []*Node) bool {
	if dot == 0 {
		return end == origin
	}
	prev := NewItem(rule, dot-1, origin)
	sym := rule.RHS[dot-1]

	if sym.IsTerminal() {
		if end <= origin || !b.chart.Column(end-1).Has(prev) {
			return false
		}
		children[dot-1] = &Node{
			Symbol: sym,
			Token:  b.chart.Column(end).token,
			Start:  end - 1,
			End:    end,
		}
		return b.fill(rule, origin, dot-1, end-1, children)
	}

	for _, r := range b.g.RulesFor(sym.Name()) {
		for split := end; split >= origin; split-- {
			if !b.chart.Column(split).Has(prev) || !b.chart.Column(end).Has(NewItem(r, r.Len(), split)) {
				continue
			}
			child, ok := b.build(r, split, end)
			if !ok {
				continue
			}
			if b.fill(rule, origin, dot-1, split, children) {
				children[dot-1] = child
				return true
			}
		}
	}
	return false
}
