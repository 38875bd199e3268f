package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"memscan/process"
	"memscan/process_blob"
	"memscan/scan_variant"

	"github.com/spf13/cobra"
)

var errNoTarget = errors.New("one of --pid, --name or --from is required")

// TargetOptions selects the process or dump a command runs against.
type TargetOptions struct {
	PID  int
	Name string
	From string
}

func (o *TargetOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&o.PID, "pid", "p", 0, "process ID to attach to")
	cmd.Flags().StringVarP(&o.Name, "name", "n", "", "process name to attach to")
	cmd.Flags().StringVar(&o.From, "from", "", "dump directory to load instead of a live process")
}

// open attaches to the selected target. A dump wins over a live process.
func (o *TargetOptions) open(root *RootOptions) (process.ScannerTarget, error) {
	if o.From != "" {
		root.verbose("Loading dump", o.From)
		snapshot, err := process_blob.Load(o.From)
		if err != nil {
			return nil, err
		}
		return snapshot, nil
	}
	if o.PID == 0 && o.Name == "" {
		return nil, errNoTarget
	}
	return attachProcess(o.PID, o.Name)
}

// resolveTrait looks a trait up by name. "pointer" resolves to the pointer
// trait matching the target's pointer width.
func resolveTrait(t process.ScannerTarget, name string) (scan_variant.Trait, error) {
	if strings.EqualFold(strings.TrimSpace(name), scan_variant.TypePointer.String()) {
		return process.PointerTrait(t)
	}
	trait, ok := scan_variant.Default().ByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (see memscan types)", scan_variant.ErrUnknownType, name)
	}
	return trait, nil
}

// parseUint reads 0x-prefixed text as hex and anything else as decimal, so a
// leading zero never switches to octal.
func parseUint(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return strconv.ParseUint(s[2:], 16, 64)
	}
	return strconv.ParseUint(s, 10, 64)
}

func parseAddress(s string) (process.ProcessMemoryAddress, error) {
	v, err := parseUint(s)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return process.ProcessMemoryAddress(v), nil
}

// parseOffsets reads a comma separated offset list such as "0x10,8,0x1c".
func parseOffsets(s string) ([]process.ProcessMemorySize, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	var offsets []process.ProcessMemorySize
	for _, part := range strings.Split(s, ",") {
		v, err := parseUint(part)
		if err != nil {
			return nil, fmt.Errorf("invalid offset %q: %w", part, err)
		}
		offsets = append(offsets, process.ProcessMemorySize(v))
	}
	return offsets, nil
}

// AddressOptions locate a value: an address, optionally followed by a
// pointer path.
type AddressOptions struct {
	Addr string
	Path string
}

func (o *AddressOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Addr, "addr", "a", "", "address (hex with 0x prefix or decimal)")
	cmd.Flags().StringVar(&o.Path, "path", "", "pointer path offsets from --addr, comma separated (hex with 0x prefix or decimal)")
}

func (o *AddressOptions) resolve(t process.ScannerTarget) (process.ProcessMemoryAddress, error) {
	if o.Addr == "" {
		return 0, errors.New("--addr is required")
	}
	base, err := parseAddress(o.Addr)
	if err != nil {
		return 0, err
	}
	offsets, err := parseOffsets(o.Path)
	if err != nil {
		return 0, err
	}
	return process.ReadPath(t, base, offsets...)
}
