package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/earley/earley"
)

// LineEncoder writes one tab-separated line per node in preorder:
// start, end, depth, then the rule for interior nodes or the symbol and
// token for leaves.
type LineEncoder struct {
	w io.Writer
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(tree *earley.Node) error {
	text, err := e.MarshalText(tree)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText(tree *earley.Node) ([]byte, error) {
	var sb strings.Builder
	var walk func(n *earley.Node, depth int)
	walk = func(n *earley.Node, depth int) {
		if n.IsTerminal() {
			fmt.Fprintf(&sb, "%d\t%d\t%d\t%s\t%q\n", n.Start, n.End, depth, n.Symbol, n.Token)
			return
		}
		fmt.Fprintf(&sb, "%d\t%d\t%d\t%s\n", n.Start, n.End, depth, n.Rule)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(tree, 0)
	return []byte(sb.String()), nil
}
