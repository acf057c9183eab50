package earley

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dhamidi/earley/grammar"
)

func arithmetic(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, err := grammar.New("Sum",
		grammar.NewRule("Sum", grammar.NT("Sum"), grammar.Pat("[+-]"), grammar.NT("Product")),
		grammar.NewRule("Sum", grammar.NT("Product")),
		grammar.NewRule("Product", grammar.NT("Product"), grammar.Pat("[*/]"), grammar.NT("Factor")),
		grammar.NewRule("Product", grammar.NT("Factor")),
		grammar.NewRule("Factor", grammar.Pat(`\(`), grammar.NT("Sum"), grammar.Pat(`\)`)),
		grammar.NewRule("Factor", grammar.NT("Number")),
		grammar.NewRule("Number", grammar.Pat("[0-9]"), grammar.NT("Number")),
		grammar.NewRule("Number", grammar.Pat("[0-9]")),
	)
	if err != nil {
		t.Fatalf("build grammar: %v", err)
	}
	return g
}

func newParser(t *testing.T, g *grammar.Grammar, opts ...Option) *Parser {
	t.Helper()
	p, err := New(g, opts...)
	if err != nil {
		t.Fatalf("new parser: %v", err)
	}
	return p
}

type columnSnapshot struct {
	Token string
	Items []string
}

func snapshot(p *Parser) []columnSnapshot {
	var out []columnSnapshot
	for _, col := range p.Chart().Columns() {
		s := columnSnapshot{Token: col.Token()}
		for _, it := range col.Items() {
			s.Items = append(s.Items, it.String())
		}
		out = append(out, s)
	}
	return out
}

func mustExtend(t *testing.T, p *Parser, tokens ...string) bool {
	t.Helper()
	ok, err := p.Extend(tokens...)
	if err != nil {
		t.Fatalf("extend %q: %v", tokens, err)
	}
	return ok
}

func TestExtend_ArithmeticScenario(t *testing.T) {
	p := newParser(t, arithmetic(t))

	for _, tok := range []string{"1", "+"} {
		if !mustExtend(t, p, tok) {
			t.Fatalf("expected %q to be accepted\n%s", tok, p)
		}
	}
	if p.Chart().Len() != 3 {
		t.Fatalf("expected 3 columns, got %d", p.Chart().Len())
	}

	if mustExtend(t, p, "+") {
		t.Fatal(`expected "1++" to be rejected`)
	}
	if p.Chart().Len() != 3 {
		t.Errorf("rejected extend changed column count to %d", p.Chart().Len())
	}

	for _, tok := range []string{"(", "2", "*", "3"} {
		if !mustExtend(t, p, tok) {
			t.Fatalf("expected %q to be accepted", tok)
		}
		if p.Complete() {
			t.Errorf("prefix ending in %q must not be complete", tok)
		}
	}
	if !mustExtend(t, p, ")") {
		t.Fatal(`expected ")" to be accepted`)
	}
	if !p.Complete() {
		t.Errorf("expected a complete Sum spanning %q\n%s", p.Tokens(), p)
	}
	if diff := cmp.Diff([]string{"1", "+", "(", "2", "*", "3", ")"}, p.Tokens()); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestExtend_RollbackIsExact(t *testing.T) {
	p := newParser(t, arithmetic(t))
	mustExtend(t, p, "1", "*", "(")

	before := snapshot(p)
	for _, bad := range [][]string{{")"}, {"+"}, {"2", "2", ")", ")"}, {"x"}} {
		if mustExtend(t, p, bad...) {
			t.Fatalf("expected %q to be rejected", bad)
		}
		if diff := cmp.Diff(before, snapshot(p)); diff != "" {
			t.Errorf("chart changed after rejected %q (-before +after):\n%s", bad, diff)
		}
	}

	if !mustExtend(t, p, "4", ")") {
		t.Fatal("expected the parser to keep working after rollbacks")
	}
	if !p.Complete() {
		t.Error(`expected "1*(4)" to be complete`)
	}
}

func TestExtend_BatchingEquivalence(t *testing.T) {
	g := arithmetic(t)

	batched := newParser(t, g)
	stepped := newParser(t, g)
	tokens := []string{"1", "+", "2", "*", "3"}

	if !mustExtend(t, batched, tokens...) {
		t.Fatal("batched extend rejected")
	}
	for _, tok := range tokens {
		if !mustExtend(t, stepped, tok) {
			t.Fatalf("stepped extend rejected %q", tok)
		}
	}
	if diff := cmp.Diff(snapshot(stepped), snapshot(batched)); diff != "" {
		t.Errorf("charts differ (-stepped +batched):\n%s", diff)
	}

	before := snapshot(batched)
	if mustExtend(t, batched, "+", "4", "*", "*") {
		t.Fatal("expected the batch to be rejected as a whole")
	}
	if diff := cmp.Diff(before, snapshot(batched)); diff != "" {
		t.Errorf("partial batch survived (-before +after):\n%s", diff)
	}
}

func TestExtend_EmptyCall(t *testing.T) {
	p := newParser(t, arithmetic(t))
	if !mustExtend(t, p) {
		t.Error("extending with no tokens keeps the seeded column alive")
	}
	if p.Len() != 0 {
		t.Errorf("expected no tokens consumed, got %d", p.Len())
	}
}

func TestExtend_ConsistentWithParse(t *testing.T) {
	g := arithmetic(t)
	inputs := [][]string{
		{"1"},
		{"1", "+"},
		{"(", "1"},
		{"(", "1", ")"},
		{"1", "2", "*", "3"},
		{"4", "/", "(", "5", "-", "6", ")"},
	}
	for _, w := range inputs {
		p := newParser(t, g)
		if !mustExtend(t, p, w...) {
			t.Fatalf("prefix %q rejected", w)
		}

		_, parsed, err := newParser(t, g).Parse(w, "")
		if err != nil {
			t.Fatalf("parse %q: %v", w, err)
		}
		if parsed != p.Complete() {
			t.Errorf("%q: parse says %v, extend completeness says %v", w, parsed, p.Complete())
		}
	}
}

func TestNew_StartWithoutRules(t *testing.T) {
	g := arithmetic(t)
	if _, err := New(g, WithStart("Term")); !errors.Is(err, grammar.ErrNoRules) {
		t.Fatalf("expected ErrNoRules, got %v", err)
	}

	p := newParser(t, g)
	if _, _, err := p.Parse([]string{"1"}, "Term"); !errors.Is(err, grammar.ErrNoRules) {
		t.Errorf("parse: expected ErrNoRules, got %v", err)
	}
}

func TestExtend_MatcherErrorRollsBack(t *testing.T) {
	g := grammar.MustNew("S",
		grammar.NewRule("S", grammar.Lit("a"), grammar.NT("T")),
		grammar.NewRule("T", grammar.Pat("[b")),
	)
	p := newParser(t, g)
	mustExtend(t, p, "a")
	before := snapshot(p)

	ok, err := p.Extend("b")
	var perr *grammar.PatternError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PatternError, got ok=%v err=%v", ok, err)
	}
	if diff := cmp.Diff(before, snapshot(p)); diff != "" {
		t.Errorf("chart changed after matcher error:\n%s", diff)
	}
}

func TestExtend_UndeclaredNonterminalIsSilent(t *testing.T) {
	g := grammar.MustNew("S",
		grammar.NewRule("S", grammar.NT("Missing")),
		grammar.NewRule("S", grammar.Lit("x")),
	)
	p := newParser(t, g)
	if !mustExtend(t, p, "x") || !p.Complete() {
		t.Errorf("expected x to be a sentence\n%s", p)
	}
}

func TestExtend_SharedPrefixAlternatives(t *testing.T) {
	g := grammar.MustNew("S",
		grammar.NewRule("S", grammar.Lit("a"), grammar.Lit("b")),
		grammar.NewRule("S", grammar.Lit("a"), grammar.Lit("c")),
	)
	p := newParser(t, g)
	if !mustExtend(t, p, "a") {
		t.Fatal("a rejected")
	}
	col := p.Chart().Column(1)
	if col.Len() != 2 {
		t.Fatalf("expected 2 items in column 1, got %d\n%s", col.Len(), col)
	}
	for i, want := range []string{`S -> "a" • "b" (0)`, `S -> "a" • "c" (0)`} {
		if got := col.Items()[i].String(); got != want {
			t.Errorf("item %d = %s, want %s", i, got, want)
		}
	}
	if !mustExtend(t, p, "c") || !p.Complete() {
		t.Error(`expected "a c" to be complete`)
	}
}

func TestExtend_NullableRules(t *testing.T) {
	g := grammar.MustNew("S",
		grammar.NewRule("S", grammar.NT("A"), grammar.NT("B"), grammar.Lit("x")),
		grammar.NewRule("A"),
		grammar.NewRule("B", grammar.NT("A")),
		grammar.NewRule("B", grammar.Lit("b")),
	)
	for _, w := range [][]string{{"x"}, {"b", "x"}} {
		p := newParser(t, g)
		if !mustExtend(t, p, w...) || !p.Complete() {
			t.Errorf("%q should be a sentence\n%s", w, p)
		}
	}
}

func TestRewindAndReset(t *testing.T) {
	p := newParser(t, arithmetic(t))
	mustExtend(t, p, "1")
	after1 := snapshot(p)

	mustExtend(t, p, "+", "2")
	p.Rewind(2)
	if diff := cmp.Diff(after1, snapshot(p)); diff != "" {
		t.Errorf("rewind did not restore the chart:\n%s", diff)
	}

	// reused columns must not leak stale items
	mustExtend(t, p, "*")
	if p.Chart().Column(2).Token() != "*" {
		t.Errorf("column 2 token = %q", p.Chart().Column(2).Token())
	}
	for _, it := range p.Chart().Column(2).Items() {
		if it.Origin() > 2 {
			t.Errorf("stale item %s in reused column", it)
		}
	}

	p.Reset()
	if p.Len() != 0 || p.Chart().Len() != 1 {
		t.Errorf("reset left %d tokens", p.Len())
	}
	p.Rewind(10)
	if p.Chart().Len() != 1 {
		t.Error("rewind must keep column 0")
	}
}

func TestExpected(t *testing.T) {
	p := newParser(t, arithmetic(t))
	var got []string
	for _, s := range p.Expected() {
		got = append(got, s.String())
	}
	if diff := cmp.Diff([]string{`/\(/`, "/[0-9]/"}, got); diff != "" {
		t.Errorf("expected terminals mismatch (-want +got):\n%s", diff)
	}

	mustExtend(t, p, "1")
	got = got[:0]
	for _, s := range p.Expected() {
		got = append(got, s.String())
	}
	sort.Strings(got)
	if diff := cmp.Diff([]string{"/[*/]/", "/[+-]/", "/[0-9]/"}, got); diff != "" {
		t.Errorf("expected terminals after 1 mismatch (-want +got):\n%s", diff)
	}
}

func TestColumn_AddIsIdempotent(t *testing.T) {
	g := arithmetic(t)
	col := newColumn(0, "")
	it := NewItem(g.Rules()[0], 0, 0)

	if !col.Add(it) {
		t.Fatal("first add should report a new item")
	}
	if col.Add(it) {
		t.Error("duplicate add should report false")
	}
	if col.Add(NewItem(g.Rules()[0], 0, 0)) {
		t.Error("equal item built separately should be a duplicate")
	}
	if col.Len() != 1 || len(col.set) != 1 {
		t.Errorf("expected 1 item, got %d items and %d set entries", col.Len(), len(col.set))
	}
	if !col.Add(it.Advance()) {
		t.Error("advanced item is distinct")
	}
}

// TestClose_OrderIndependent recomputes column 0 with a naive fixpoint that
// visits items newest first and compares the resulting item sets.
func TestClose_OrderIndependent(t *testing.T) {
	g := arithmetic(t)
	p := newParser(t, g)
	mustExtend(t, p, "(", "1", "+")

	for i, orig := range p.Chart().Columns() {
		alt := newColumn(i, orig.Token())
		seeds := orig.Items()
		for j := len(seeds) - 1; j >= 0; j-- {
			it := seeds[j]
			// keep only items scanned in from the previous column
			if it.Dot() == 0 || !it.Rule().RHS[it.Dot()-1].IsTerminal() {
				continue
			}
			alt.Add(it)
		}
		if i == 0 {
			for _, r := range g.RulesFor("Sum") {
				alt.Add(NewItem(r, 0, 0))
			}
		}

		p.chart.columns[i] = alt
		for grown := true; grown; {
			before := alt.Len()
			for j := alt.Len() - 1; j >= 0; j-- {
				it := alt.Items()[j]
				sym, ok := it.Peek()
				switch {
				case !ok:
					p.complete(it, alt)
				case !sym.IsTerminal():
					p.predict(it, sym.Name(), alt)
				}
			}
			grown = alt.Len() != before
		}
		p.chart.columns[i] = orig

		want := itemSet(orig)
		got := itemSet(alt)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("column %d differs (-worklist +naive):\n%s", i, diff)
		}
	}
}

func itemSet(c *Column) []string {
	out := make([]string, 0, c.Len())
	for _, it := range c.Items() {
		out = append(out, it.String())
	}
	sort.Strings(out)
	return out
}

func TestChartString(t *testing.T) {
	g := grammar.MustNew("S", grammar.NewRule("S", grammar.Lit("a")))
	p := newParser(t, g)
	mustExtend(t, p, "a")

	want := "Chart\n\n" +
		"------------------------------\nColumn 0 for token ``:\n------------------------------\n" +
		"S -> • \"a\" (0)\n" +
		"\n" +
		"------------------------------\nColumn 1 for token `a`:\n------------------------------\n" +
		"S -> \"a\" • (0)\n"
	if diff := cmp.Diff(want, p.String()); diff != "" {
		t.Errorf("chart rendering mismatch (-want +got):\n%s", diff)
	}
}
