// Package format renders derivation trees and charts.
package format

import (
	"fmt"
	"io"

	"github.com/dhamidi/earley/earley"
)

type Encoder interface {
	Encode(tree *earley.Node) error
}

// New returns the encoder registered under name: text, json or line.
func New(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "", "text":
		return NewTextEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "line":
		return NewLineEncoder(w), nil
	default:
		return nil, fmt.Errorf("unknown format %q", name)
	}
}
