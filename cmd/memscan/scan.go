package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"memscan/process"
	"memscan/report"
	"memscan/search"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ScanOptions holds flags for the scan command.
type ScanOptions struct {
	TargetOptions
	MatchOptions

	Max          int
	Workers      int
	WritableOnly bool
	ChunkSize    uint64
	Previous     string
	Save         string
}

// NewScanCommand creates the scan command.
func NewScanCommand(root *RootOptions) *cobra.Command {
	opts := &ScanOptions{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Search target memory for values matching a predicate",
		Long: `Search every readable region of the target for values matching a predicate.

A first scan steps through memory by the alignment of --type. Pass
--previous with a file written by --save to narrow an earlier result set;
change predicates (changed, unchanged, increased, decreased) only work this
way.

Example:
  memscan scan --name game --type int32 --value 100 --save hp.yaml
  memscan scan --name game --type int32 --predicate decreased --previous hp.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScan(cmd, root, opts)
		},
	}

	opts.TargetOptions.addFlags(cmd)
	opts.MatchOptions.addFlags(cmd)
	cmd.Flags().IntVar(&opts.Max, "max", 100, "maximum results to print, 0 for no limit; --save keeps every match")
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent region readers, 0 for one per CPU")
	cmd.Flags().BoolVar(&opts.WritableOnly, "writable", false, "only scan writable regions")
	cmd.Flags().Uint64Var(&opts.ChunkSize, "chunk-size", 0, "bytes read per request, 0 for the default")
	cmd.Flags().StringVar(&opts.Previous, "previous", "", "results file from an earlier scan to narrow")
	cmd.Flags().StringVar(&opts.Save, "save", "", "write the results to this file")

	return cmd
}

func runScan(cmd *cobra.Command, root *RootOptions, opts *ScanOptions) error {
	t, err := opts.open(root)
	if err != nil {
		return err
	}
	defer t.Close()

	m, err := opts.matcher(t)
	if err != nil {
		return err
	}

	options := []search.Option{search.WithLogger(root.log)}
	if opts.Save == "" {
		// a saved set holds every match
		options = append(options, search.WithMaxResults(opts.Max))
	}
	if opts.Workers > 0 {
		options = append(options, search.WithWorkers(opts.Workers))
	}
	if opts.WritableOnly {
		options = append(options, search.WithWritableOnly())
	}
	if opts.ChunkSize > 0 {
		options = append(options, search.WithChunkSize(process.ProcessMemorySize(opts.ChunkSize)))
	}

	var results []search.Result
	if opts.Previous != "" {
		previous, err := loadResults(opts.Previous, m.Trait().Name())
		if err != nil {
			return err
		}
		results, err = search.Next(cmd.Context(), t, m, previous, options...)
		if err != nil {
			return err
		}
	} else {
		results, err = search.First(cmd.Context(), t, m, options...)
		if err != nil {
			return err
		}
	}

	if opts.Save != "" {
		if err := saveResults(opts.Save, m.Trait().Name(), results); err != nil {
			return err
		}
		root.verbose("Saved", len(results), "results to", opts.Save)
	}

	shown := results
	if opts.Max > 0 && len(shown) > opts.Max {
		shown = shown[:opts.Max]
	}
	return report.Results(cmd.OutOrStdout(), shown, m.Trait(), t.IsLittleEndian())
}

// resultsFile is the on-disk form of a result set, kept for rescans.
type resultsFile struct {
	Type    string        `yaml:"type"`
	Results []savedResult `yaml:"results"`
}

type savedResult struct {
	Address string `yaml:"address"`
	Raw     string `yaml:"raw"`
}

func saveResults(path, typeName string, results []search.Result) error {
	out := resultsFile{Type: typeName}
	for _, r := range results {
		out.Results = append(out.Results, savedResult{
			Address: r.Address.ToString(),
			Raw:     hex.EncodeToString(r.Raw),
		})
	}

	data, err := yaml.Marshal(out)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}
	return nil
}

// loadResults reads a results file and checks it was written for typeName.
func loadResults(path, typeName string) ([]search.Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read results: %w", err)
	}

	var in resultsFile
	if err := yaml.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to parse results %s: %w", path, err)
	}
	if in.Type != typeName {
		return nil, fmt.Errorf("results in %s are %s values, not %s", path, in.Type, typeName)
	}

	results := make([]search.Result, 0, len(in.Results))
	for _, r := range in.Results {
		addr, err := parseAddress(r.Address)
		if err != nil {
			return nil, err
		}
		raw, err := hex.DecodeString(r.Raw)
		if err != nil {
			return nil, fmt.Errorf("invalid raw bytes at %s: %w", r.Address, err)
		}
		results = append(results, search.Result{Address: addr, Raw: raw})
	}
	return results, nil
}
