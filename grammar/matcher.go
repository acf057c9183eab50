package grammar

import (
	"fmt"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// A Matcher decides whether a terminal accepts one whole token.
//
// Matchers are shared by every parser built from a grammar and must be safe
// for concurrent use.
type Matcher interface {
	Match(token string) (bool, error)
	String() string
}

// PatternError reports a terminal pattern that failed to compile. It is only
// produced the first time the pattern is tested against a token.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid terminal pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// RegexpMatcher matches tokens against an anchored regular expression.
type RegexpMatcher struct {
	expr string

	once sync.Once
	re   *regexp2.Regexp
	err  error
}

// Regexp returns a matcher accepting tokens that expr matches in full. The
// expression is compiled on first use.
func Regexp(expr string) *RegexpMatcher {
	return &RegexpMatcher{expr: expr}
}

func (m *RegexpMatcher) compile() {
	m.re, m.err = regexp2.Compile(`\A(?:`+m.expr+`)\z`, regexp2.None)
	if m.err != nil {
		m.err = &PatternError{Pattern: m.expr, Err: m.err}
	}
}

func (m *RegexpMatcher) Match(token string) (bool, error) {
	m.once.Do(m.compile)
	if m.err != nil {
		return false, m.err
	}
	ok, err := m.re.MatchString(token)
	if err != nil {
		return false, fmt.Errorf("match %s against %q: %w", m, token, err)
	}
	return ok, nil
}

// Expr returns the unanchored pattern source.
func (m *RegexpMatcher) Expr() string {
	return m.expr
}

func (m *RegexpMatcher) String() string {
	return "/" + m.expr + "/"
}

type literalMatcher struct {
	text string
}

// Literal returns a matcher accepting exactly text.
func Literal(text string) Matcher {
	return &literalMatcher{text: text}
}

func (m *literalMatcher) Match(token string) (bool, error) {
	return token == m.text, nil
}

func (m *literalMatcher) String() string {
	return strconv.Quote(m.text)
}

// LiteralText reports the text of a matcher built by Literal.
func LiteralText(m Matcher) (string, bool) {
	if l, ok := m.(*literalMatcher); ok {
		return l.text, true
	}
	return "", false
}

type rangeMatcher struct {
	lo, hi rune
}

// Range returns a matcher accepting single-rune tokens between lo and hi
// inclusive.
func Range(lo, hi rune) Matcher {
	return &rangeMatcher{lo: lo, hi: hi}
}

func (m *rangeMatcher) Match(token string) (bool, error) {
	r, size := utf8.DecodeRuneInString(token)
	if size == 0 || size != len(token) || r == utf8.RuneError {
		return false, nil
	}
	return r >= m.lo && r <= m.hi, nil
}

func (m *rangeMatcher) String() string {
	return fmt.Sprintf("%q … %q", string(m.lo), string(m.hi))
}

type funcMatcher struct {
	name string
	fn   func(string) bool
}

// Func wraps an arbitrary predicate. name is used when the terminal is
// printed and when symbols are compared.
func Func(name string, fn func(token string) bool) Matcher {
	return &funcMatcher{name: name, fn: fn}
}

func (m *funcMatcher) Match(token string) (bool, error) {
	return m.fn(token), nil
}

func (m *funcMatcher) String() string {
	return "<" + m.name + ">"
}
