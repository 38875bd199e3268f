package main

import (
	"memscan/report"
	"memscan/scan_variant"

	"github.com/spf13/cobra"
)

// NewTypesCommand creates the types command.
func NewTypesCommand(root *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the value types a scan can search for",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return report.Traits(cmd.OutOrStdout(), scan_variant.Default().All())
		},
	}
}
