package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/dhamidi/earley/earley"
)

func newProbeCmd(opts *options) *cobra.Command {
	var direct bool

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "Feed tokens to a parser interactively",
		Long: `Read lines of tokens and extend a parser with each line, reporting
accept or reject. Rejected lines leave the parser unchanged. Type :help for
the list of commands.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := opts.load()
			if err != nil {
				return err
			}
			p, err := earley.New(g, earley.WithLogger(opts.log))
			if err != nil {
				return err
			}

			var in lineReader
			if !direct && cmd.InOrStdin() == os.Stdin {
				in, err = newInteractiveReader(g.Start() + "> ")
				if err != nil {
					return err
				}
			} else {
				in = newDirectReader(cmd.InOrStdin())
			}
			defer in.Close()

			s := &session{p: p, out: cmd.OutOrStdout()}
			return s.run(in)
		},
	}

	cmd.Flags().BoolVarP(&direct, "direct", "d", false, "read standard input directly instead of through readline")

	return cmd
}
