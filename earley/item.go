package earley

import (
	"fmt"
	"strings"

	"github.com/dhamidi/earley/grammar"
)

// Cursor marks the dot position when items are printed.
const Cursor = "•"

// Item is a dotted rule: how much of a rule's right-hand side has been
// matched, and in which column that match started. Items are comparable with
// == and usable as map keys.
type Item struct {
	rule   *grammar.Rule
	dot    int
	origin int
}

// NewItem returns the item for rule with the dot at position dot.
func NewItem(rule *grammar.Rule, dot, origin int) Item {
	return Item{rule: rule, dot: dot, origin: origin}
}

func (it Item) Rule() *grammar.Rule {
	return it.rule
}

func (it Item) Dot() int {
	return it.dot
}

func (it Item) Origin() int {
	return it.origin
}

// Complete reports whether the dot is past the last symbol.
func (it Item) Complete() bool {
	return it.dot >= len(it.rule.RHS)
}

// Peek returns the symbol after the dot. ok is false for complete items.
func (it Item) Peek() (sym grammar.Symbol, ok bool) {
	if it.Complete() {
		return grammar.Symbol{}, false
	}
	return it.rule.RHS[it.dot], true
}

// Advance returns the item with the dot moved over one symbol.
func (it Item) Advance() Item {
	return Item{rule: it.rule, dot: it.dot + 1, origin: it.origin}
}

// Dotted renders the rule with the cursor at the dot, without the origin.
func (it Item) Dotted() string {
	parts := make([]string, 0, len(it.rule.RHS)+1)
	for i, s := range it.rule.RHS {
		if i == it.dot {
			parts = append(parts, Cursor)
		}
		parts = append(parts, s.String())
	}
	if it.Complete() {
		parts = append(parts, Cursor)
	}
	return it.rule.LHS + " -> " + strings.Join(parts, " ")
}

func (it Item) String() string {
	return fmt.Sprintf("%s (%d)", it.Dotted(), it.origin)
}
