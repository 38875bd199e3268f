package main

import (
	"errors"

	"memscan/process"
	"memscan/report"
	"memscan/search"

	"github.com/spf13/cobra"
)

// PathsOptions holds flags for the paths command.
type PathsOptions struct {
	TargetOptions
	MatchOptions

	Base       string
	Depth      int
	StructSize uint64
	Max        int
}

// NewPathsCommand creates the paths command.
func NewPathsCommand(root *RootOptions) *cobra.Command {
	opts := &PathsOptions{}

	cmd := &cobra.Command{
		Use:   "paths",
		Short: "Find pointer paths from a base address to matching values",
		Long: `Walk structures reachable from --base by following pointers and report
every path at which the predicate matches. Paths print in the form
"memscan read --addr BASE --path OFFSETS" accepts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaths(cmd, root, opts)
		},
	}

	opts.TargetOptions.addFlags(cmd)
	opts.MatchOptions.addFlags(cmd)
	cmd.Flags().StringVar(&opts.Base, "base", "", "address the search starts from")
	cmd.Flags().IntVar(&opts.Depth, "depth", 3, "maximum number of pointers to follow")
	cmd.Flags().Uint64Var(&opts.StructSize, "struct-size", 256, "bytes searched behind each pointer")
	cmd.Flags().IntVar(&opts.Max, "max", 100, "maximum paths to report, 0 for no limit")

	return cmd
}

func runPaths(cmd *cobra.Command, root *RootOptions, opts *PathsOptions) error {
	if opts.Base == "" {
		return errors.New("--base is required")
	}
	base, err := parseAddress(opts.Base)
	if err != nil {
		return err
	}

	t, err := opts.open(root)
	if err != nil {
		return err
	}
	defer t.Close()

	m, err := opts.matcher(t)
	if err != nil {
		return err
	}

	results, err := search.Paths(cmd.Context(), t, base, m,
		search.WithMaxDepth(opts.Depth),
		search.WithMaxStructSize(process.ProcessMemorySize(opts.StructSize)),
		search.WithMaxResults(opts.Max),
		search.WithLogger(root.log),
	)
	if err != nil {
		return err
	}

	return report.Paths(cmd.OutOrStdout(), base, results, m.Trait(), t.IsLittleEndian())
}
