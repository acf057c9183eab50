package grammar

import "strings"

// A Rule rewrites the nonterminal LHS into the symbols of RHS.
type Rule struct {
	LHS string
	RHS []Symbol

	id int
}

// NewRule is shorthand for a Rule literal.
func NewRule(lhs string, rhs ...Symbol) Rule {
	return Rule{LHS: lhs, RHS: rhs}
}

// ID is the rule's position in the grammar's declaration order. It is only
// meaningful for rules obtained from a Grammar.
func (r *Rule) ID() int {
	return r.id
}

func (r *Rule) Len() int {
	return len(r.RHS)
}

func (r *Rule) String() string {
	var sb strings.Builder
	sb.WriteString(r.LHS)
	sb.WriteString(" ->")
	if len(r.RHS) == 0 {
		sb.WriteString(" ε")
	}
	for _, s := range r.RHS {
		sb.WriteByte(' ')
		sb.WriteString(s.String())
	}
	return sb.String()
}
