package lsp

import (
	"fmt"
	"strings"

	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/earley/bnf"
	"github.com/dhamidi/earley/config"
	"github.com/dhamidi/earley/earley"
	"github.com/dhamidi/earley/ebnflex"
	"github.com/dhamidi/earley/grammar"
)

// Language is a loaded grammar together with what is needed to tokenize
// documents and propose completions.
type Language struct {
	Grammar    *grammar.Grammar
	Lexicon    ebnf.Grammar
	Skip       []string
	Vocabulary []string
}

// LoadLanguage reads the grammar named by cfg.
func LoadLanguage(cfg config.Config) (*Language, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	g, src, err := bnf.LoadFile(cfg.Grammar, cfg.Start)
	if err != nil {
		return nil, err
	}
	return &Language{
		Grammar:    g,
		Lexicon:    src,
		Skip:       cfg.Skip,
		Vocabulary: cfg.Vocabulary,
	}, nil
}

// Point is a zero-based line and column, columns counted in characters.
type Point struct {
	Line   int
	Column int
}

func (p Point) before(q Point) bool {
	return p.Line < q.Line || (p.Line == q.Line && p.Column <= q.Column)
}

func point(pos ebnflex.Position) Point {
	return Point{Line: pos.Line - 1, Column: pos.Column - 1}
}

// Problem is a diagnostic for the range [Start, End).
type Problem struct {
	Start   Point
	End     Point
	Message string
}

func (l *Language) tokens(text string) ([]ebnflex.Token, ebnflex.Token, error) {
	all, err := ebnflex.Scan(l.Lexicon, []byte(text), "")
	if err != nil {
		return nil, ebnflex.Token{}, err
	}
	return ebnflex.Significant(all, l.Skip...), all[len(all)-1], nil
}

// Check feeds the document through a parser one token at a time. It
// reports the first token that cannot continue the input, or that the
// input ends before a sentence is complete.
func (l *Language) Check(text string) ([]Problem, error) {
	tokens, eof, err := l.tokens(text)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	p, err := earley.New(l.Grammar)
	if err != nil {
		return nil, err
	}

	for _, tok := range tokens {
		ok, err := p.Extend(tok.Literal)
		if err != nil {
			return []Problem{problemAt(tok, err.Error())}, nil
		}
		if !ok {
			return []Problem{problemAt(tok, unexpected(tok.Literal, p.Expected()))}, nil
		}
	}

	if !p.Complete() {
		end := point(eof.Position)
		return []Problem{{Start: end, End: end, Message: unexpected("", p.Expected())}}, nil
	}
	return nil, nil
}

func problemAt(tok ebnflex.Token, msg string) Problem {
	return Problem{Start: point(tok.Position), End: point(tok.End()), Message: msg}
}

func unexpected(tok string, expected []grammar.Symbol) string {
	var sb strings.Builder
	if tok == "" {
		sb.WriteString("incomplete input")
	} else {
		fmt.Fprintf(&sb, "unexpected token %q", tok)
	}
	if len(expected) > 0 {
		names := make([]string, len(expected))
		for i, s := range expected {
			names[i] = s.String()
		}
		sb.WriteString(", expected ")
		sb.WriteString(strings.Join(names, ", "))
	}
	return sb.String()
}

// Complete returns the tokens that may be inserted at the cursor: the
// configured vocabulary and the literal terminals the parser expects, each
// probed against the tokens ending before the cursor.
func (l *Language) Complete(text string, at Point) ([]string, error) {
	tokens, _, err := l.tokens(text)
	if err != nil {
		return nil, fmt.Errorf("tokenize: %w", err)
	}
	p, err := earley.New(l.Grammar)
	if err != nil {
		return nil, err
	}

	for _, tok := range tokens {
		if !point(tok.End()).before(at) {
			break
		}
		ok, err := p.Extend(tok.Literal)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}

	candidates := append([]string(nil), l.Vocabulary...)
	for _, sym := range p.Expected() {
		if lit, ok := grammar.LiteralText(sym.Matcher()); ok {
			candidates = append(candidates, lit)
		}
	}

	seen := make(map[string]bool)
	var out []string
	for _, c := range candidates {
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		ok, err := p.Extend(c)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, c)
			p.Rewind(1)
		}
	}
	return out, nil
}
