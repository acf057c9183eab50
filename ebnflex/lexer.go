// Package ebnflex provides lexical scanning based on EBNF grammars.
//
// Productions whose name starts with an upper-case letter are lexical: the
// Lexer splits input into tokens of those kinds, and Production turns one of
// them into a terminal matcher for the parser.
package ebnflex

import (
	"fmt"
	"io"
	"os"
	"sort"
	"unicode"
	"unicode/utf8"

	"golang.org/x/exp/ebnf"
)

// Position represents a location in source code.
type Position struct {
	Filename string
	Offset   int
	Line     int
	Column   int
}

func (p Position) String() string {
	if p.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", p.Filename, p.Line, p.Column)
	}
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token represents a lexical token with its position.
type Token struct {
	Kind     string
	Literal  string
	Position Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Position, t.Kind, t.Literal)
}

// Kinds emitted for end of input, for bytes no production matches and for
// white-space separated fields.
const (
	KindEOF   = "EOF"
	KindError = "ERROR"
	KindField = "FIELD"
)

// DefaultSkip lists the token kinds treated as trivia by Literals.
var DefaultSkip = []string{"WhiteSpace", "Comment"}

// IsLexical reports whether a production name denotes a token kind.
func IsLexical(name string) bool {
	r, _ := utf8.DecodeRuneInString(name)
	return unicode.IsUpper(r)
}

// LexicalNames returns the lexical production names of g in sorted order.
func LexicalNames(g ebnf.Grammar) []string {
	var names []string
	for name, prod := range g {
		if prod.Expr != nil && IsLexical(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Lexer tokenizes input based on an EBNF grammar.
type Lexer struct {
	grammar  ebnf.Grammar
	kinds    []string
	input    []byte
	filename string
	pos      int
	line     int
	column   int
}

// NewLexer creates a lexer for the given grammar and input.
func NewLexer(grammar ebnf.Grammar, input []byte, filename string) *Lexer {
	return &Lexer{
		grammar:  grammar,
		kinds:    LexicalNames(grammar),
		input:    input,
		filename: filename,
		line:     1,
		column:   1,
	}
}

// LoadGrammar loads an EBNF grammar from a file.
func LoadGrammar(filename string) (ebnf.Grammar, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("open grammar: %w", err)
	}
	defer f.Close()

	grammar, err := ebnf.Parse(filename, f)
	if err != nil {
		return nil, fmt.Errorf("parse grammar: %w", err)
	}

	return grammar, nil
}

// Position returns the current position in the input.
func (l *Lexer) Position() Position {
	return Position{
		Filename: l.filename,
		Offset:   l.pos,
		Line:     l.line,
		Column:   l.column,
	}
}

func (l *Lexer) advance(n int) {
	for _, ch := range string(l.input[l.pos : l.pos+n]) {
		if ch == '\n' {
			l.line++
			l.column = 1
		} else {
			l.column++
		}
	}
	l.pos += n
}

// NextToken returns the next token from the input: the longest match among
// the lexical productions, ties going to the alphabetically first kind. At
// end of input it returns an EOF token and io.EOF.
func (l *Lexer) NextToken() (Token, error) {
	if l.pos >= len(l.input) {
		return Token{Kind: KindEOF, Position: l.Position()}, io.EOF
	}

	startPos := l.Position()
	s := newScanner(l.grammar, string(l.input[l.pos:]))

	var bestKind string
	bestLen := 0
	for _, name := range l.kinds {
		if n := s.matchName(name, 0); n > bestLen {
			bestLen = n
			bestKind = name
		}
	}

	if bestLen == 0 {
		_, size := utf8.DecodeRune(l.input[l.pos:])
		lit := string(l.input[l.pos : l.pos+size])
		l.advance(size)
		return Token{Kind: KindError, Literal: lit, Position: startPos}, nil
	}

	lit := string(l.input[l.pos : l.pos+bestLen])
	l.advance(bestLen)
	return Token{Kind: bestKind, Literal: lit, Position: startPos}, nil
}

// Tokenize reads all tokens from input, ending with the EOF token.
func (l *Lexer) Tokenize() ([]Token, error) {
	var tokens []Token
	for {
		tok, err := l.NextToken()
		if err == io.EOF {
			tokens = append(tokens, tok)
			break
		}
		if err != nil {
			return tokens, err
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}

// Scan tokenizes input with the lexical productions of g. Grammars without
// lexical productions split input at white space instead.
func Scan(g ebnf.Grammar, input []byte, filename string) ([]Token, error) {
	if len(LexicalNames(g)) == 0 {
		return Fields(input, filename), nil
	}
	return NewLexer(g, input, filename).Tokenize()
}

// Fields splits input at white space into tokens of kind KindField, ending
// with the EOF token.
func Fields(input []byte, filename string) []Token {
	l := &Lexer{input: input, filename: filename, line: 1, column: 1}
	var tokens []Token
	for l.pos < len(input) {
		r, size := utf8.DecodeRune(input[l.pos:])
		if unicode.IsSpace(r) {
			l.advance(size)
			continue
		}
		start := l.Position()
		end := l.pos
		for end < len(input) {
			r, size := utf8.DecodeRune(input[end:])
			if unicode.IsSpace(r) {
				break
			}
			end += size
		}
		lit := string(input[l.pos:end])
		l.advance(end - l.pos)
		tokens = append(tokens, Token{Kind: KindField, Literal: lit, Position: start})
	}
	return append(tokens, Token{Kind: KindEOF, Position: l.Position()})
}

// Significant drops EOF and the skipped kinds from tokens. With no skip
// kinds DefaultSkip is used.
func Significant(tokens []Token, skip ...string) []Token {
	if len(skip) == 0 {
		skip = DefaultSkip
	}
	drop := map[string]bool{KindEOF: true}
	for _, k := range skip {
		drop[k] = true
	}
	out := make([]Token, 0, len(tokens))
	for _, tok := range tokens {
		if !drop[tok.Kind] {
			out = append(out, tok)
		}
	}
	return out
}

// Literals returns the texts of the significant tokens, ready to feed the
// parser.
func Literals(tokens []Token, skip ...string) []string {
	sig := Significant(tokens, skip...)
	out := make([]string, len(sig))
	for i, tok := range sig {
		out[i] = tok.Literal
	}
	return out
}

// End returns the position just past the token.
func (t Token) End() Position {
	pos := t.Position
	pos.Offset += len(t.Literal)
	for _, ch := range t.Literal {
		if ch == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	return pos
}
