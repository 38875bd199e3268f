package main

import (
	"fmt"

	"memscan/hexdump"
	"memscan/process"

	"github.com/spf13/cobra"
)

// ReadOptions holds flags for the read command.
type ReadOptions struct {
	TargetOptions
	AddressOptions

	Type string
	Size uint64
	Dump uint64
}

// NewReadCommand creates the read command.
func NewReadCommand(root *RootOptions) *cobra.Command {
	opts := &ReadOptions{}

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read and format one value",
		Long: `Read one value of --type at --addr, following --path if given.

Example:
  memscan read --pid 1234 --addr 0x7ffd1000 --path 0x10,0x8 --type float
  memscan read --from dump --addr 0x400000 --type "ascii string" --size 32 --dump 64`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(cmd, root, opts)
		},
	}

	opts.TargetOptions.addFlags(cmd)
	opts.AddressOptions.addFlags(cmd)
	cmd.Flags().StringVarP(&opts.Type, "type", "t", "int32", "value type, see memscan types")
	cmd.Flags().Uint64Var(&opts.Size, "size", 0, "bytes to read for string types")
	cmd.Flags().Uint64Var(&opts.Dump, "dump", 0, "also hexdump this many bytes at the address")

	return cmd
}

func runRead(cmd *cobra.Command, root *RootOptions, opts *ReadOptions) error {
	t, err := opts.open(root)
	if err != nil {
		return err
	}
	defer t.Close()

	trait, err := resolveTrait(t, opts.Type)
	if err != nil {
		return err
	}

	addr, err := opts.resolve(t)
	if err != nil {
		return err
	}

	v, err := process.ReadVariant(t, addr, trait, process.ProcessMemorySize(opts.Size))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s = %s\n", addr.ToString(), trait.Name(), v.String())

	if opts.Dump > 0 {
		return hexdump.Target(out, t, addr, process.ProcessMemorySize(opts.Dump), hexdump.DefaultOptions())
	}
	return nil
}
