package main

import (
	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	ConfigPath string

	log *logger.Logger
}

// verbose logs through the command logger when --verbose is set.
func (o *RootOptions) verbose(v ...interface{}) {
	if o.Verbose {
		o.log.Infoln(v...)
	}
}

// NewRootCommand creates the memscan command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "memscan")),
	}

	cmd := &cobra.Command{
		Use:   "memscan",
		Short: "Typed memory scanner",
		Long: `Scan the memory of a live process or a saved dump for typed values.

Targets are selected with --pid or --name for a running process, or --from
for a directory written by "memscan dump".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.ConfigPath == "" {
				return nil
			}
			cfg, err := LoadConfig(opts.ConfigPath)
			if err != nil {
				return err
			}
			opts.verbose("Loaded config", opts.ConfigPath)
			return cfg.Apply(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "yaml file with flag defaults")

	cmd.AddCommand(NewTypesCommand(opts))
	cmd.AddCommand(NewScanCommand(opts))
	cmd.AddCommand(NewPathsCommand(opts))
	cmd.AddCommand(NewReadCommand(opts))
	cmd.AddCommand(NewWriteCommand(opts))
	cmd.AddCommand(NewRegionsCommand(opts))
	cmd.AddCommand(NewDumpCommand(opts))

	return cmd
}
