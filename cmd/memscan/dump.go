package main

import (
	"errors"
	"fmt"

	"memscan/process_blob"

	"github.com/spf13/cobra"
)

// NewDumpCommand creates the dump command.
func NewDumpCommand(root *RootOptions) *cobra.Command {
	opts := &TargetOptions{}
	var output string

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Save the readable memory of a target for later --from use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				return errors.New("--output is required")
			}

			t, err := opts.open(root)
			if err != nil {
				return err
			}
			defer t.Close()

			stats, err := process_blob.Save(cmd.Context(), t, output)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved %d regions to %s (%d unreadable, %d too large, %d read errors)\n",
				stats.Saved, output, stats.SkippedUnreadable, stats.SkippedTooLarge, stats.ReadErrors)
			return nil
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "directory to write the dump to")

	return cmd
}
