package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dhamidi/earley/earley"
	"github.com/dhamidi/earley/format"
)

func newChartCmd(opts *options) *cobra.Command {
	var input string
	var raw bool

	cmd := &cobra.Command{
		Use:          "chart [tokens...]",
		Short:        "Extend a parser token by token and print its chart",
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

			p, err := earley.New(g, earley.WithLogger(opts.log))
			if err != nil {
				return err
			}

			var rejected error
			for i, tok := range tokens {
				ok, err := p.Extend(tok)
				if err != nil {
					return fmt.Errorf("token %d %q: %w", i+1, tok, err)
				}
				if !ok {
					rejected = fmt.Errorf("token %d %q: %w", i+1, tok, errRejected)
					break
				}
			}

			out := cmd.OutOrStdout()
			if raw {
				fmt.Fprint(out, p)
			} else {
				format.WriteChart(out, p.Chart())
			}
			fmt.Fprintf(out, "\ncomplete: %v\n", p.Complete())
			return rejected
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "file to tokenize instead of arguments (- for stdin)")
	cmd.Flags().BoolVar(&raw, "raw", false, "print the plain chart dump instead of a table")

	return cmd
}
