package grammar

import "fmt"

type symbolKind uint8

const (
	nonTerminal symbolKind = iota
	terminal
)

// Symbol is either a nonterminal, identified by name, or a terminal carrying
// the Matcher that decides which tokens it accepts.
type Symbol struct {
	kind    symbolKind
	name    string
	matcher Matcher
}

// NT returns the nonterminal symbol called name.
func NT(name string) Symbol {
	return Symbol{kind: nonTerminal, name: name}
}

// T returns a terminal symbol matched by m.
func T(m Matcher) Symbol {
	return Symbol{kind: terminal, matcher: m}
}

// Pat returns a terminal matched by the anchored pattern expr.
func Pat(expr string) Symbol {
	return T(Regexp(expr))
}

// Lit returns a terminal matching exactly s.
func Lit(s string) Symbol {
	return T(Literal(s))
}

func (s Symbol) IsTerminal() bool {
	return s.kind == terminal
}

// Name returns the nonterminal name, or "" for terminals.
func (s Symbol) Name() string {
	return s.name
}

// Matcher returns the terminal's matcher, or nil for nonterminals.
func (s Symbol) Matcher() Matcher {
	return s.matcher
}

// Match tests token against a terminal symbol. Nonterminals never match.
func (s Symbol) Match(token string) (bool, error) {
	if s.kind != terminal || s.matcher == nil {
		return false, nil
	}
	return s.matcher.Match(token)
}

// Equal compares symbols by value. Terminals are equal when their matchers
// describe themselves identically.
func (s Symbol) Equal(o Symbol) bool {
	if s.kind != o.kind {
		return false
	}
	if s.kind == nonTerminal {
		return s.name == o.name
	}
	if s.matcher == nil || o.matcher == nil {
		return s.matcher == nil && o.matcher == nil
	}
	return s.matcher.String() == o.matcher.String()
}

func (s Symbol) String() string {
	if s.kind == nonTerminal {
		return s.name
	}
	if s.matcher == nil {
		return "<nil>"
	}
	return fmt.Sprint(s.matcher)
}
