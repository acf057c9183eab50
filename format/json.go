package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/earley/earley"
)

type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(tree *earley.Node) error {
	text, err := e.MarshalText(tree)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *JSONEncoder) MarshalText(tree *earley.Node) ([]byte, error) {
	return json.MarshalIndent(nodeToJSON(tree), "", "  ")
}

type jsonNode struct {
	Symbol   string      `json:"symbol"`
	Rule     string      `json:"rule,omitempty"`
	Token    string      `json:"token,omitempty"`
	Start    int         `json:"start"`
	End      int         `json:"end"`
	Children []*jsonNode `json:"children,omitempty"`
}

func nodeToJSON(n *earley.Node) *jsonNode {
	jn := &jsonNode{
		Symbol: n.Symbol.String(),
		Token:  n.Token,
		Start:  n.Start,
		End:    n.End,
	}
	if n.Rule != nil {
		jn.Rule = n.Rule.String()
	}

	if len(n.Children) > 0 {
		jn.Children = make([]*jsonNode, len(n.Children))
		for i, child := range n.Children {
			jn.Children[i] = nodeToJSON(child)
		}
	}

	return jn
}
