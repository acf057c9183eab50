package ebnflex

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/earley/grammar"
)

// memoKey is used for memoization of match results.
type memoKey struct {
	name   string
	offset int
}

const noMatch = -1

// scanner greedily matches expressions against one input string. Results
// for named productions are memoised per offset.
type scanner struct {
	grammar  ebnf.Grammar
	input    string
	memo     map[memoKey]int
	visiting map[memoKey]bool
}

func newScanner(g ebnf.Grammar, input string) *scanner {
	return &scanner{
		grammar:  g,
		input:    input,
		memo:     make(map[memoKey]int),
		visiting: make(map[memoKey]bool),
	}
}

// match returns the length matched by expr at offset, or noMatch.
func (s *scanner) match(expr ebnf.Expression, offset int) int {
	switch e := expr.(type) {
	case nil:
		return 0

	case *ebnf.Token:
		if strings.HasPrefix(s.input[offset:], e.String) {
			return len(e.String)
		}
		return noMatch

	case *ebnf.Range:
		lo, _ := utf8.DecodeRuneInString(e.Begin.String)
		hi, _ := utf8.DecodeRuneInString(e.End.String)
		r, size := utf8.DecodeRuneInString(s.input[offset:])
		if size == 0 || r < lo || r > hi {
			return noMatch
		}
		return size

	case ebnf.Sequence:
		total := 0
		for _, item := range e {
			n := s.match(item, offset+total)
			if n == noMatch {
				return noMatch
			}
			total += n
		}
		return total

	case ebnf.Alternative:
		best := noMatch
		for _, alt := range e {
			if n := s.match(alt, offset); n > best {
				best = n
			}
		}
		return best

	case *ebnf.Repetition:
		total := 0
		for {
			n := s.match(e.Body, offset+total)
			if n <= 0 {
				return total
			}
			total += n
		}

	case *ebnf.Option:
		if n := s.match(e.Body, offset); n != noMatch {
			return n
		}
		return 0

	case *ebnf.Group:
		return s.match(e.Body, offset)

	case *ebnf.Name:
		return s.matchName(e.String, offset)

	default:
		return noMatch
	}
}

// matchName matches a named production with memoization and cycle
// detection. Left recursion at the same offset fails.
func (s *scanner) matchName(name string, offset int) int {
	key := memoKey{name: name, offset: offset}
	if result, ok := s.memo[key]; ok {
		return result
	}
	if s.visiting[key] {
		return noMatch
	}

	prod, ok := s.grammar[name]
	if !ok || prod.Expr == nil {
		s.memo[key] = noMatch
		return noMatch
	}

	s.visiting[key] = true
	result := s.match(prod.Expr, offset)
	delete(s.visiting, key)

	s.memo[key] = result
	return result
}

// ProductionMatcher accepts tokens that a lexical production matches in
// full.
type ProductionMatcher struct {
	grammar ebnf.Grammar
	name    string
}

// Production returns a terminal matcher for the production called name.
func Production(g ebnf.Grammar, name string) *ProductionMatcher {
	return &ProductionMatcher{grammar: g, name: name}
}

func (m *ProductionMatcher) Match(token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	return newScanner(m.grammar, token).matchName(m.name, 0) == len(token), nil
}

func (m *ProductionMatcher) Name() string {
	return m.name
}

func (m *ProductionMatcher) String() string {
	return "<" + m.name + ">"
}

var _ grammar.Matcher = (*ProductionMatcher)(nil)
