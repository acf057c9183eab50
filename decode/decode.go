// Package decode constrains token-by-token generation to a grammar. A
// Processor keeps one incremental parser per sequence of a batch and, at
// every step, picks the best-scored candidate each parser accepts.
package decode

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/emirpasic/gods/queues/priorityqueue"
	"github.com/tliron/commonlog"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/earley/earley"
	"github.com/dhamidi/earley/grammar"
)

var (
	ErrBatchSize = errors.New("candidate rows do not match batch size")
	ErrNoEOS     = errors.New("end-of-sequence token not in vocabulary")
)

// Candidate is a token proposed for the next position with its score.
// Higher scores are tried first.
type Candidate struct {
	Token string
	Score float64
}

// Processor constrains a batch of sequences. Each sequence is owned by its
// own parser, so sequences are processed in parallel.
type Processor struct {
	parsers  []*earley.Parser
	finished []bool
	eos      string
	log      commonlog.Logger
}

type Option func(*config)

type config struct {
	parser []earley.Option
	log    commonlog.Logger
}

// WithStart parses every sequence as the given start symbol.
func WithStart(start string) Option {
	return func(c *config) {
		c.parser = append(c.parser, earley.WithStart(start))
	}
}

func WithLogger(log commonlog.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// New returns a processor for batch sequences of g. eos is the token chosen
// when a sequence cannot continue.
func New(g *grammar.Grammar, batch int, eos string, opts ...Option) (*Processor, error) {
	c := config{log: commonlog.GetLogger("decode")}
	for _, opt := range opts {
		opt(&c)
	}

	p := &Processor{
		parsers:  make([]*earley.Parser, batch),
		finished: make([]bool, batch),
		eos:      eos,
		log:      c.log,
	}
	for i := range p.parsers {
		parser, err := earley.New(g, c.parser...)
		if err != nil {
			return nil, fmt.Errorf("create parser: %w", err)
		}
		p.parsers[i] = parser
	}
	return p, nil
}

// Len returns the batch size.
func (p *Processor) Len() int {
	return len(p.parsers)
}

func (p *Processor) EOS() string {
	return p.eos
}

// Finished reports whether sequence i has chosen end-of-sequence.
func (p *Processor) Finished(i int) bool {
	return p.finished[i]
}

// Done reports whether every sequence is finished.
func (p *Processor) Done() bool {
	for _, f := range p.finished {
		if !f {
			return false
		}
	}
	return true
}

// Sequence returns the tokens accepted for sequence i.
func (p *Processor) Sequence(i int) []string {
	return p.parsers[i].Tokens()
}

// Sequences returns the accepted tokens of every sequence.
func (p *Processor) Sequences() [][]string {
	out := make([][]string, len(p.parsers))
	for i := range p.parsers {
		out[i] = p.Sequence(i)
	}
	return out
}

// Complete reports whether sequence i is a full sentence of the grammar.
func (p *Processor) Complete(i int) bool {
	return p.parsers[i].Complete()
}

// Parser exposes the parser of sequence i.
func (p *Processor) Parser(i int) *earley.Parser {
	return p.parsers[i]
}

// Reset empties every sequence.
func (p *Processor) Reset() {
	for i, parser := range p.parsers {
		parser.Reset()
		p.finished[i] = false
	}
}

// Select chooses the next token of every sequence from its candidates, one
// row per sequence. A sequence whose parser accepts none of its candidates
// gets the end-of-sequence token and is finished. An end-of-sequence
// candidate is accepted only when the sequence is complete.
func (p *Processor) Select(ctx context.Context, candidates [][]Candidate) ([]string, error) {
	chosen, err := p.choose(ctx, candidates)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(chosen))
	for i, c := range chosen {
		if c < 0 {
			out[i] = p.eos
		} else {
			out[i] = candidates[i][c].Token
		}
	}
	return out, nil
}

// Mask is Select for a vocabulary-wide score matrix. Every entry of a row
// except the chosen one is set to -Inf in place, and the chosen vocabulary
// ids are returned. Empty vocabulary entries are never chosen.
func (p *Processor) Mask(ctx context.Context, logits [][]float64, vocab []string) ([]int, error) {
	eosID := -1
	for id, tok := range vocab {
		if tok == p.eos {
			eosID = id
			break
		}
	}
	if eosID < 0 {
		return nil, fmt.Errorf("%q: %w", p.eos, ErrNoEOS)
	}

	candidates := make([][]Candidate, len(logits))
	ids := make([][]int, len(logits))
	for n, row := range logits {
		if len(row) != len(vocab) {
			return nil, fmt.Errorf("row %d has %d scores for %d tokens", n, len(row), len(vocab))
		}
		for id, tok := range vocab {
			if tok == "" {
				continue
			}
			candidates[n] = append(candidates[n], Candidate{Token: tok, Score: row[id]})
			ids[n] = append(ids[n], id)
		}
	}

	chosen, err := p.choose(ctx, candidates)
	if err != nil {
		return nil, err
	}

	out := make([]int, len(chosen))
	for n, c := range chosen {
		out[n] = eosID
		if c >= 0 {
			out[n] = ids[n][c]
		}
		for id := range logits[n] {
			if id != out[n] {
				logits[n][id] = math.Inf(-1)
			}
		}
	}
	return out, nil
}

// choose returns, per sequence, the index of the accepted candidate or -1
// for end-of-sequence.
func (p *Processor) choose(ctx context.Context, candidates [][]Candidate) ([]int, error) {
	if len(candidates) != len(p.parsers) {
		return nil, fmt.Errorf("%d rows for %d sequences: %w", len(candidates), len(p.parsers), ErrBatchSize)
	}

	chosen := make([]int, len(p.parsers))
	g, ctx := errgroup.WithContext(ctx)
	for i := range p.parsers {
		g.Go(func() error {
			c, err := p.chooseOne(ctx, i, candidates[i])
			if err != nil {
				return fmt.Errorf("sequence %d: %w", i, err)
			}
			chosen[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return chosen, nil
}

type ranked struct {
	index int
	score float64
}

// byScore orders candidates by descending score, ties in input order.
func byScore(a, b any) int {
	x, y := a.(ranked), b.(ranked)
	if c := cmp.Compare(y.score, x.score); c != 0 {
		return c
	}
	return cmp.Compare(x.index, y.index)
}

func (p *Processor) chooseOne(ctx context.Context, i int, candidates []Candidate) (int, error) {
	if p.finished[i] {
		return -1, nil
	}
	parser := p.parsers[i]

	q := priorityqueue.NewWith(byScore)
	for j, c := range candidates {
		q.Enqueue(ranked{index: j, score: c.Score})
	}

	for !q.Empty() {
		if err := ctx.Err(); err != nil {
			return -1, err
		}
		v, _ := q.Dequeue()
		j := v.(ranked).index
		tok := candidates[j].Token

		if tok == p.eos {
			if parser.Complete() {
				p.finished[i] = true
				p.log.Debugf("sequence %d: complete after %d tokens", i, parser.Len())
				return j, nil
			}
			continue
		}

		ok, err := parser.Extend(tok)
		if err != nil {
			return -1, err
		}
		if ok {
			return j, nil
		}
	}

	p.finished[i] = true
	p.log.Debugf("sequence %d: no candidate accepted after %d tokens", i, parser.Len())
	return -1, nil
}

// Scorer proposes scored candidates for the next token of each sequence.
type Scorer interface {
	Score(ctx context.Context, sequences [][]string) ([][]Candidate, error)
}

// Generate runs Select until every sequence is finished or maxTokens steps
// have been taken, and returns the accepted tokens.
func Generate(ctx context.Context, p *Processor, scorer Scorer, maxTokens int) ([][]string, error) {
	for step := 0; step < maxTokens && !p.Done(); step++ {
		candidates, err := scorer.Score(ctx, p.Sequences())
		if err != nil {
			return nil, fmt.Errorf("score step %d: %w", step, err)
		}
		if _, err := p.Select(ctx, candidates); err != nil {
			return nil, fmt.Errorf("select step %d: %w", step, err)
		}
	}
	return p.Sequences(), nil
}
