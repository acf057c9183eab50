package ebnflex

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/exp/ebnf"
)

const lexicon = `
Ident = letter { letter | digit } .
Number = digit { digit } .
Op = "+" | "-" | "*" | "/" | "(" | ")" .
WhiteSpace = ( " " | "\n" ) { " " | "\n" } .
letter = "a" … "z" .
digit = "0" … "9" .
`

func loadLexicon(t *testing.T) ebnf.Grammar {
	t.Helper()
	g, err := ebnf.Parse("lexicon.ebnf", strings.NewReader(lexicon))
	if err != nil {
		t.Fatalf("parse lexicon: %v", err)
	}
	return g
}

func TestTokenize(t *testing.T) {
	g := loadLexicon(t)
	tokens, err := NewLexer(g, []byte("x1 + 42\n(y)"), "input").Tokenize()
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}

	var kinds []string
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind+":"+tok.Literal)
	}
	want := []string{
		"Ident:x1", "WhiteSpace: ", "Op:+", "WhiteSpace: ", "Number:42",
		"WhiteSpace:\n", "Op:(", "Ident:y", "Op:)", "EOF:",
	}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}

	open := tokens[6]
	if open.Position.Line != 2 || open.Position.Column != 1 {
		t.Errorf("position of %q = %s", open.Literal, open.Position)
	}
	if got := open.Position.String(); got != "input:2:1" {
		t.Errorf("position string = %q", got)
	}
}

func TestTokenize_ErrorToken(t *testing.T) {
	g := loadLexicon(t)
	tokens, err := NewLexer(g, []byte("a#b"), "").Tokenize()
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if len(tokens) != 4 {
		t.Fatalf("expected 4 tokens, got %v", tokens)
	}
	if tokens[1].Kind != KindError || tokens[1].Literal != "#" {
		t.Errorf("expected an error token for '#', got %s", tokens[1])
	}
}

func TestLiterals(t *testing.T) {
	g := loadLexicon(t)
	tokens, err := NewLexer(g, []byte("1 + 2"), "").Tokenize()
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if diff := cmp.Diff([]string{"1", "+", "2"}, Literals(tokens)); diff != "" {
		t.Errorf("literals mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"1", " ", "+", " ", "2"}, Literals(tokens, "Comment")); diff != "" {
		t.Errorf("literals with custom skip mismatch (-want +got):\n%s", diff)
	}
}

func TestProduction(t *testing.T) {
	g := loadLexicon(t)
	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"Number", "42", true},
		{"Number", "4a", false},
		{"Number", "", false},
		{"Ident", "abc9", true},
		{"Ident", "9abc", false},
		{"Op", "*", true},
		{"Op", "**", false},
		{"Missing", "x", false},
	}
	for _, tt := range tests {
		got, err := Production(g, tt.name).Match(tt.token)
		if err != nil {
			t.Fatalf("%s.Match(%q): %v", tt.name, tt.token, err)
		}
		if got != tt.want {
			t.Errorf("%s.Match(%q) = %v, want %v", tt.name, tt.token, got, tt.want)
		}
	}

	if got := Production(g, "Number").String(); got != "<Number>" {
		t.Errorf("String() = %q", got)
	}
}

func TestLexicalNames(t *testing.T) {
	g := loadLexicon(t)
	want := []string{"Ident", "Number", "Op", "WhiteSpace"}
	if diff := cmp.Diff(want, LexicalNames(g)); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
}

func TestScanner_LeftRecursionFails(t *testing.T) {
	g, err := ebnf.Parse("rec.ebnf", strings.NewReader(`A = A "x" | "y" .`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if n := newScanner(g, "yx").matchName("A", 0); n != 1 {
		t.Errorf("expected the non-recursive alternative to match 1 byte, got %d", n)
	}
}

func TestScan_FallsBackToFields(t *testing.T) {
	g, err := ebnf.Parse("syntax.ebnf", strings.NewReader(`s = "a" .`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	tokens, err := Scan(g, []byte("  yes\tno\n  maybe "), "doc")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if diff := cmp.Diff([]string{"yes", "no", "maybe"}, Literals(tokens)); diff != "" {
		t.Errorf("fields mismatch (-want +got):\n%s", diff)
	}
	maybe := tokens[2]
	if maybe.Kind != KindField || maybe.Position.Line != 2 || maybe.Position.Column != 3 {
		t.Errorf("unexpected token %s", maybe)
	}
	if end := maybe.End(); end.Line != 2 || end.Column != 8 || end.Offset != maybe.Position.Offset+5 {
		t.Errorf("end of %q = %+v", maybe.Literal, end)
	}
	if last := tokens[len(tokens)-1]; last.Kind != KindEOF || last.Position.Line != 2 {
		t.Errorf("expected EOF on line 2, got %s", last)
	}
}

func TestSignificant_KeepsPositions(t *testing.T) {
	g := loadLexicon(t)
	tokens, err := Scan(g, []byte("a +\nb"), "")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	sig := Significant(tokens)
	if len(sig) != 3 {
		t.Fatalf("expected 3 significant tokens, got %v", sig)
	}
	if b := sig[2]; b.Literal != "b" || b.Position.Line != 2 || b.Position.Column != 1 {
		t.Errorf("unexpected token %s", b)
	}
}
