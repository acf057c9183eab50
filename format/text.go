package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/earley/earley"
)

// TextEncoder writes an indented tree, one node per line. Leaves show the
// terminal followed by the token it matched.
type TextEncoder struct {
	w      io.Writer
	indent string
}

func NewTextEncoder(w io.Writer) *TextEncoder {
	return &TextEncoder{w: w, indent: "  "}
}

func (e *TextEncoder) Encode(tree *earley.Node) error {
	text, err := e.MarshalText(tree)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TextEncoder) MarshalText(tree *earley.Node) ([]byte, error) {
	var sb strings.Builder
	var walk func(n *earley.Node, depth int)
	walk = func(n *earley.Node, depth int) {
		sb.WriteString(strings.Repeat(e.indent, depth))
		if n.IsTerminal() {
			fmt.Fprintf(&sb, "%s %q\n", n.Symbol, n.Token)
			return
		}
		sb.WriteString(n.Symbol.String())
		if len(n.Children) == 0 {
			sb.WriteString(" ε")
		}
		sb.WriteByte('\n')
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(tree, 0)
	return []byte(sb.String()), nil
}
