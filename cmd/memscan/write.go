package main

import (
	"errors"
	"fmt"

	"memscan/process"
	"memscan/scan_variant"

	"github.com/spf13/cobra"
)

// WriteOptions holds flags for the write command.
type WriteOptions struct {
	TargetOptions
	AddressOptions

	Type  string
	Value string
}

// NewWriteCommand creates the write command.
func NewWriteCommand(root *RootOptions) *cobra.Command {
	opts := &WriteOptions{}

	cmd := &cobra.Command{
		Use:   "write",
		Short: "Parse and write one value",
		Long: `Parse --value as --type and write it at --addr in the target's byte order.
Strings are written with their terminator.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrite(cmd, root, opts)
		},
	}

	opts.TargetOptions.addFlags(cmd)
	opts.AddressOptions.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.Type, "type", "t", "int32", "value type, see memscan types")
	cmd.Flags().StringVar(&opts.Value, "value", "", "value to write")

	return cmd
}

func runWrite(cmd *cobra.Command, root *RootOptions, opts *WriteOptions) error {
	if !cmd.Flags().Changed("value") {
		return errors.New("--value is required")
	}

	t, err := opts.open(root)
	if err != nil {
		return err
	}
	defer t.Close()

	trait, err := resolveTrait(t, opts.Type)
	if err != nil {
		return err
	}

	v, err := scan_variant.FromString(trait, opts.Value)
	if err != nil {
		return err
	}

	addr, err := opts.resolve(t)
	if err != nil {
		return err
	}

	if err := process.WriteVariant(t, addr, v); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s %s at %s\n", trait.Name(), v.String(), addr.ToString())
	return nil
}
