package main

import (
	"fmt"

	"memscan/process"
	"memscan/scan_variant"

	"github.com/spf13/cobra"
)

// MatchOptions describe the predicate a scan evaluates.
type MatchOptions struct {
	Type      string
	Predicate string
	Value     string
	Upper     string
}

func (o *MatchOptions) addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Type, "type", "t", "int32", "value type, see memscan types")
	cmd.Flags().StringVar(&o.Predicate, "predicate", "eq", "eq, ne, gt, lt, range, changed, unchanged, increased or decreased")
	cmd.Flags().StringVar(&o.Value, "value", "", "value to compare against, lower bound for range")
	cmd.Flags().StringVar(&o.Upper, "upper", "", "upper bound for range")
}

// matcher builds a matcher for memory in t's byte order.
func (o *MatchOptions) matcher(t process.ScannerTarget) (*scan_variant.Matcher, error) {
	trait, err := resolveTrait(t, o.Type)
	if err != nil {
		return nil, err
	}

	pred, err := scan_variant.ParsePredicate(o.Predicate)
	if err != nil {
		return nil, err
	}

	texts := []string{o.Value, o.Upper}[:pred.Operands()]
	var operands []*scan_variant.ScanVariant
	for i, text := range texts {
		if text == "" {
			return nil, fmt.Errorf("predicate %s needs %s", pred, []string{"--value", "--upper"}[i])
		}
		v, err := scan_variant.FromString(trait, text)
		if err != nil {
			return nil, err
		}
		operands = append(operands, v)
	}

	return scan_variant.NewMatcher(trait, pred, t.IsLittleEndian(), operands...)
}
