package cmd

import (
	"github.com/spf13/cobra"
)

func (a *app) genCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen",
		Short: "Expand the pattern and print the ordered candidates",
		Long: `gen expands --pattern into candidates, random samples by default or the
whole bounded language with --exhaustive, applies --sort and writes one
candidate per line to stdout or --output.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := a.newRunner()
			defer r.Close()
			return r.Gen(cmd.Context())
		},
	}
}

func (a *app) checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [url...]",
		Short: "Probe literal URLs and write a run log",
		Long: `check probes URLs given as arguments, read from --input, or piped on
stdin. Literal input keeps its order unless --sort is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.opts.Args = args
			r := a.newRunner()
			defer r.Close()
			_, err := r.Check(cmd.Context())
			return err
		},
	}
}

func (a *app) matchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "match [candidate...]",
		Short: "Print the input candidates fully matched by the pattern",
		Long: `match reads candidates like check and prints those matched in full by
--pattern. Lookarounds and backreferences are supported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.opts.Args = args
			r := a.newRunner()
			defer r.Close()
			return r.Match(cmd.Context())
		},
	}
}

func (a *app) runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Generate candidates and probe them in one pass",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := a.newRunner()
			defer r.Close()
			_, err := r.Run(cmd.Context())
			return err
		},
	}
}
