package main

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/exp/ebnf"

	"github.com/dhamidi/earley/ebnflex"
)

func newCheckCmd(opts *options) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:           "check [grammar]",
		Short:         "Parse and lower an EBNF grammar, printing its rules",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.cfg.Grammar = args[0]
			}

			g, src, err := opts.load()
			if err != nil {
				printErrors(err)
				return err
			}

			if strict {
				if err := ebnf.Verify(src, g.Start()); err != nil {
					printErrors(err)
					return err
				}
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "start: %s\n", g.Start())
			if names := ebnflex.LexicalNames(src); len(names) > 0 {
				fmt.Fprintf(out, "tokens: %s\n", strings.Join(names, ", "))
			}
			fmt.Fprintln(out)
			fmt.Fprint(out, g)
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "also run ebnf.Verify, which treats lower-case productions as lexical")

	return cmd
}

// printErrors prints each error of an ebnf error list on its own line.
func printErrors(err error) {
	v := reflect.ValueOf(err)
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			fmt.Println(v.Index(i).Interface())
		}
	} else {
		fmt.Println(err)
	}
}
