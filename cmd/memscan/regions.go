package main

import (
	"memscan/process"
	"memscan/process/memory_map"
	"memscan/report"

	"github.com/spf13/cobra"
)

// NewRegionsCommand creates the regions command.
func NewRegionsCommand(root *RootOptions) *cobra.Command {
	opts := &TargetOptions{}
	var readableOnly bool

	cmd := &cobra.Command{
		Use:   "regions",
		Short: "List the mapped memory regions of the target",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := opts.open(root)
			if err != nil {
				return err
			}
			defer t.Close()

			var items []memory_map.MemoryMapItem
			err = process.Regions(cmd.Context(), t, func(item memory_map.MemoryMapItem) error {
				if !readableOnly || item.IsReadable() {
					items = append(items, item)
				}
				return nil
			})
			if err != nil {
				return err
			}

			return report.Regions(cmd.OutOrStdout(), items)
		},
	}

	opts.addFlags(cmd)
	cmd.Flags().BoolVar(&readableOnly, "readable", false, "only list readable regions")

	return cmd
}
