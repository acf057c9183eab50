package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/earley/earley"
	"github.com/dhamidi/earley/format"
)

var errRejected = errors.New("input rejected")

func newParseCmd(opts *options) *cobra.Command {
	var outputFormat string
	var input string

	cmd := &cobra.Command{
		Use:   "parse [tokens...]",
		Short: "Parse tokens and print a derivation tree",
		Long: `Parse tokens given as arguments, or the tokenized contents of --input,
and print one derivation tree of the start production.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, src, err := opts.load()
			if err != nil {
				return err
			}
			tokens, err := opts.tokens(src, args, input)
			if err != nil {
				return err
			}
			encoder, err := format.New(outputFormat, cmd.OutOrStdout())
			if err != nil {
				return err
			}

			p, err := earley.New(g, earley.WithLogger(opts.log))
			if err != nil {
				return err
			}
			tree, ok, err := p.Parse(tokens, "")
			if err != nil {
				return fmt.Errorf("parse: %w", err)
			}
			if !ok {
				return rejection(p, tokens)
			}

			if err := encoder.Encode(tree); err != nil {
				return fmt.Errorf("encode: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format (text, json, line)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "file to tokenize instead of arguments (- for stdin)")

	return cmd
}

// rejection explains why tokens are not a sentence: either a token cannot
// continue the prefix before it, or the input stops early.
func rejection(p *earley.Parser, tokens []string) error {
	p.Reset()
	for i, tok := range tokens {
		ok, err := p.Extend(tok)
		if err != nil {
			return fmt.Errorf("token %d %q: %w", i+1, tok, err)
		}
		if !ok {
			return fmt.Errorf("token %d %q: %w, expected %s", i+1, tok, errRejected, expected(p))
		}
	}
	return fmt.Errorf("incomplete after %d tokens: %w, expected %s", len(tokens), errRejected, expected(p))
}

func expected(p *earley.Parser) string {
	syms := p.Expected()
	if len(syms) == 0 {
		return "nothing"
	}
	names := make([]string, len(syms))
	for i, sym := range syms {
		names[i] = sym.String()
	}
	return strings.Join(names, ", ")
}
