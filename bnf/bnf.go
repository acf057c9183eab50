// Package bnf lowers EBNF grammars into the flat rule form used by the
// Earley parser.
//
// Lower-case productions become nonterminals. Upper-case productions are
// lexical: references to them become terminals matched by the production
// itself. Groups, options and repetitions are expanded into auxiliary
// nonterminals named after the production they occur in.
package bnf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/earley/ebnflex"
	"github.com/dhamidi/earley/grammar"
)

var (
	ErrUndefined = errors.New("undefined production")
	ErrRange     = errors.New("invalid character range")
	ErrNoStart   = errors.New("no syntactic production")
)

// Separator joins a production name and the number of an auxiliary
// nonterminal derived from it.
const Separator = "·"

// LoadFile parses the EBNF file at path and lowers it. The returned
// ebnf.Grammar is the source grammar, needed to tokenize input.
func LoadFile(path, start string) (*grammar.Grammar, ebnf.Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()
	return Parse(path, f, start)
}

// Parse reads an EBNF grammar from r and lowers it.
func Parse(filename string, r io.Reader, start string) (*grammar.Grammar, ebnf.Grammar, error) {
	src, err := ebnf.Parse(filename, r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse grammar: %w", err)
	}
	g, err := Lower(src, start)
	if err != nil {
		return nil, nil, err
	}
	return g, src, nil
}

// Lower converts src into a grammar. An empty start selects the first
// syntactic production in source order.
func Lower(src ebnf.Grammar, start string) (*grammar.Grammar, error) {
	prods := syntactic(src)
	if start == "" {
		if len(prods) == 0 {
			return nil, ErrNoStart
		}
		start = prods[0].Name.String
	}

	var rules []grammar.Rule
	for _, prod := range prods {
		l := lowerer{src: src, name: prod.Name.String}
		if err := l.define(l.name, prod.Expr); err != nil {
			return nil, fmt.Errorf("%s: %s: %w", prod.Pos(), prod.Name.String, err)
		}
		rules = append(rules, l.rules...)
	}
	return grammar.New(start, rules...)
}

// syntactic returns the nonterminal productions in source order.
func syntactic(src ebnf.Grammar) []*ebnf.Production {
	var prods []*ebnf.Production
	for name, prod := range src {
		if !ebnflex.IsLexical(name) {
			prods = append(prods, prod)
		}
	}
	sort.Slice(prods, func(i, j int) bool {
		return prods[i].Pos().Offset < prods[j].Pos().Offset
	})
	return prods
}

type lowerer struct {
	src   ebnf.Grammar
	name  string
	aux   int
	rules []grammar.Rule
}

// define adds one rule for lhs per top-level alternative of expr.
func (l *lowerer) define(lhs string, expr ebnf.Expression, tail ...grammar.Symbol) error {
	alts, ok := expr.(ebnf.Alternative)
	if !ok {
		alts = ebnf.Alternative{expr}
	}
	for _, alt := range alts {
		rhs, err := l.sequence(alt)
		if err != nil {
			return err
		}
		l.rules = append(l.rules, grammar.NewRule(lhs, append(rhs, tail...)...))
	}
	return nil
}

func (l *lowerer) fresh() string {
	l.aux++
	return fmt.Sprintf("%s%s%d", l.name, Separator, l.aux)
}

// sequence lowers expr into the symbols of one right-hand side.
func (l *lowerer) sequence(expr ebnf.Expression) ([]grammar.Symbol, error) {
	switch e := expr.(type) {
	case nil:
		return nil, nil

	case ebnf.Sequence:
		var out []grammar.Symbol
		for _, item := range e {
			syms, err := l.sequence(item)
			if err != nil {
				return nil, err
			}
			out = append(out, syms...)
		}
		return out, nil

	case *ebnf.Token:
		if e.String == "" {
			return nil, nil
		}
		return []grammar.Symbol{token(e.String)}, nil

	case *ebnf.Range:
		lo, hi, err := bounds(e)
		if err != nil {
			return nil, err
		}
		return []grammar.Symbol{grammar.T(grammar.Range(lo, hi))}, nil

	case *ebnf.Name:
		if _, ok := l.src[e.String]; !ok {
			return nil, fmt.Errorf("%s: %s: %w", e.Pos(), e.String, ErrUndefined)
		}
		if ebnflex.IsLexical(e.String) {
			return []grammar.Symbol{grammar.T(ebnflex.Production(l.src, e.String))}, nil
		}
		return []grammar.Symbol{grammar.NT(e.String)}, nil

	case *ebnf.Group:
		name := l.fresh()
		return []grammar.Symbol{grammar.NT(name)}, l.define(name, e.Body)

	case ebnf.Alternative:
		name := l.fresh()
		return []grammar.Symbol{grammar.NT(name)}, l.define(name, e)

	case *ebnf.Option:
		name := l.fresh()
		if err := l.define(name, e.Body); err != nil {
			return nil, err
		}
		l.rules = append(l.rules, grammar.NewRule(name))
		return []grammar.Symbol{grammar.NT(name)}, nil

	case *ebnf.Repetition:
		name := l.fresh()
		if err := l.define(name, e.Body, grammar.NT(name)); err != nil {
			return nil, err
		}
		l.rules = append(l.rules, grammar.NewRule(name))
		return []grammar.Symbol{grammar.NT(name)}, nil

	default:
		return nil, fmt.Errorf("unsupported expression %T", expr)
	}
}

// token turns a literal into a terminal. Literals written as /re/ are
// regular expressions.
func token(text string) grammar.Symbol {
	if len(text) > 2 && strings.HasPrefix(text, "/") && strings.HasSuffix(text, "/") {
		return grammar.Pat(text[1 : len(text)-1])
	}
	return grammar.Lit(text)
}

func bounds(r *ebnf.Range) (rune, rune, error) {
	lo, n := utf8.DecodeRuneInString(r.Begin.String)
	if n == 0 || n != len(r.Begin.String) {
		return 0, 0, fmt.Errorf("%s: %q: %w", r.Pos(), r.Begin.String, ErrRange)
	}
	hi, m := utf8.DecodeRuneInString(r.End.String)
	if m == 0 || m != len(r.End.String) {
		return 0, 0, fmt.Errorf("%s: %q: %w", r.Pos(), r.End.String, ErrRange)
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("%s: %q … %q: %w", r.Pos(), r.Begin.String, r.End.String, ErrRange)
	}
	return lo, hi, nil
}
