// Package earley implements Earley chart parsing over token strings, with a
// cheap extend-and-rollback probe for grammar-constrained generation.
package earley

import (
	"github.com/tliron/commonlog"

	"github.com/dhamidi/earley/grammar"
)

// Parser owns a chart for a single token stream. It is not safe for
// concurrent use; give each stream its own Parser.
type Parser struct {
	grammar *grammar.Grammar
	start   string // configured start symbol
	seeded  string // start symbol of the current chart
	chart   Chart
	log     commonlog.Logger
}

type Option func(*Parser)

// WithStart seeds the parser with name instead of the grammar's start symbol.
func WithStart(name string) Option {
	return func(p *Parser) {
		p.start = name
	}
}

func WithLogger(log commonlog.Logger) Option {
	return func(p *Parser) {
		p.log = log
	}
}

// New returns a parser with column 0 seeded and closed. It fails if the
// start symbol has no rules.
func New(g *grammar.Grammar, opts ...Option) (*Parser, error) {
	p := &Parser{
		grammar: g,
		start:   g.Start(),
		log:     commonlog.GetLogger("earley"),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.seed(p.start); err != nil {
		return nil, err
	}
	if err := p.close(p.chart.Column(0), nil); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Parser) Grammar() *grammar.Grammar {
	return p.grammar
}

// Start is the symbol the current chart was seeded with.
func (p *Parser) Start() string {
	return p.seeded
}

// Chart exposes the chart for inspection.
func (p *Parser) Chart() *Chart {
	return &p.chart
}

// Len returns the number of tokens consumed.
func (p *Parser) Len() int {
	return p.chart.Len() - 1
}

// Tokens returns the consumed tokens in order.
func (p *Parser) Tokens() []string {
	tokens := make([]string, 0, p.Len())
	for _, col := range p.chart.columns[1:] {
		tokens = append(tokens, col.token)
	}
	return tokens
}

// Extend tries to consume tokens in order. It reports whether every token
// kept at least one derivation alive. When it returns false, or an error,
// the chart is exactly as it was before the call.
//
// A true result means the consumed tokens form a prefix of some sentence;
// use Complete to ask whether they form a whole sentence.
func (p *Parser) Extend(tokens ...string) (bool, error) {
	mark := p.chart.Len()
	for _, token := range tokens {
		prev := p.chart.last()
		next := p.chart.add(token)
		if err := p.scanInto(prev, next); err != nil {
			p.chart.truncate(mark)
			return false, err
		}
		if next.Len() == 0 {
			p.log.Debugf("rejected %q at column %d, rolling back to %d", token, next.index, mark-1)
			p.chart.truncate(mark)
			return false, nil
		}
		if err := p.close(next, nil); err != nil {
			p.chart.truncate(mark)
			return false, err
		}
	}
	return true, nil
}

// Complete reports whether the consumed tokens form a sentence of the start
// symbol.
func (p *Parser) Complete() bool {
	_, ok := p.completed(p.seeded)
	return ok
}

// Rewind drops the last n consumed tokens. Earlier columns are not
// recomputed.
func (p *Parser) Rewind(n int) {
	if n <= 0 {
		return
	}
	keep := p.chart.Len() - n
	if keep < 1 {
		keep = 1
	}
	p.chart.truncate(keep)
}

// Reset rewinds to the seeded column 0.
func (p *Parser) Reset() {
	p.chart.truncate(1)
}

// Expected returns the distinct terminals that may follow the consumed
// tokens, in the order they were first predicted.
func (p *Parser) Expected() []grammar.Symbol {
	var out []grammar.Symbol
	seen := make(map[string]bool)
	for _, it := range p.chart.last().items {
		sym, ok := it.Peek()
		if !ok || !sym.IsTerminal() {
			continue
		}
		key := sym.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, sym)
	}
	return out
}

func (p *Parser) String() string {
	return p.chart.String()
}

// seed starts a fresh chart whose column 0 holds the initial items of start.
func (p *Parser) seed(start string) error {
	if err := p.grammar.CheckStart(start); err != nil {
		return err
	}
	p.seeded = start
	p.chart.truncate(0)
	col := p.chart.add("")
	for _, r := range p.grammar.RulesFor(start) {
		col.Add(NewItem(r, 0, 0))
	}
	p.log.Debugf("seeded %d items for %s", col.Len(), start)
	return nil
}

// completed finds a complete item for name spanning the whole chart,
// preferring the earliest-declared rule.
func (p *Parser) completed(name string) (Item, bool) {
	col := p.chart.last()
	for _, r := range p.grammar.RulesFor(name) {
		it := NewItem(r, r.Len(), 0)
		if col.Has(it) {
			return it, true
		}
	}
	return Item{}, false
}
