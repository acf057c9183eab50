package main

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dhamidi/earley/decode"
	"github.com/dhamidi/earley/grammar"
)

func newGenerateCmd(opts *options) *cobra.Command {
	var batch int
	var maxTokens int
	var seed uint64
	var vocab []string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate random sentences constrained by the grammar",
		Long: `Run constrained decoding with a random scorer standing in for a model.
Each step every sequence proposes the whole vocabulary with random scores and
keeps the best token the grammar accepts.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, _, err := opts.load()
			if err != nil {
				return err
			}

			if len(vocab) == 0 {
				vocab = opts.cfg.Vocabulary
			}
			if len(vocab) == 0 {
				vocab = literals(g)
			}
			if len(vocab) == 0 {
				return fmt.Errorf("no vocabulary: set vocabulary in the configuration or pass --vocab")
			}

			p, err := decode.New(g, batch, opts.cfg.EOS)
			if err != nil {
				return err
			}
			scorer := newRandomScorer(seed, vocab, opts.cfg.EOS)

			sequences, err := decode.Generate(context.Background(), p, scorer, maxTokens)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, seq := range sequences {
				status := "incomplete"
				if p.Complete(i) {
					status = "complete"
				}
				fmt.Fprintf(out, "%d\t%s\t%s\n", i, status, strings.Join(seq, " "))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&batch, "batch", "n", 1, "number of sequences")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 32, "maximum tokens per sequence")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed")
	cmd.Flags().StringSliceVar(&vocab, "vocab", nil, "vocabulary (defaults to the configuration, then the grammar's literals)")

	return cmd
}

// literals collects the literal terminals of g in rule order.
func literals(g *grammar.Grammar) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range g.Rules() {
		for _, sym := range r.RHS {
			if text, ok := grammar.LiteralText(sym.Matcher()); ok && !seen[text] {
				seen[text] = true
				out = append(out, text)
			}
		}
	}
	return out
}

// randomScorer proposes every vocabulary entry and the end-of-sequence
// token with uniformly random scores.
type randomScorer struct {
	rng   *rand.Rand
	vocab []string
}

func newRandomScorer(seed uint64, vocab []string, eos string) *randomScorer {
	return &randomScorer{
		rng:   rand.New(rand.NewPCG(seed, seed)),
		vocab: append(append([]string(nil), vocab...), eos),
	}
}

func (s *randomScorer) Score(ctx context.Context, sequences [][]string) ([][]decode.Candidate, error) {
	out := make([][]decode.Candidate, len(sequences))
	for i := range sequences {
		row := make([]decode.Candidate, len(s.vocab))
		for j, tok := range s.vocab {
			row[j] = decode.Candidate{Token: tok, Score: s.rng.Float64()}
		}
		out[i] = row
	}
	return out, nil
}
