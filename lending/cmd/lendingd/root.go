package main

import (
	"github.com/spf13/cobra"

	"github.com/library-lending/lending-ledger/lending/shell/config"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "lendingd",
		Short:        "Library lending ledger service",
		Version:      version,
		SilenceUsage: true,
	}

	cmd.AddCommand(serveCmd())
	cmd.AddCommand(feeCmd())
	cmd.AddCommand(membersCmd())

	return cmd
}

// stringFlag maps a command-line flag onto a configuration key.
type stringFlag struct {
	name  string
	key   string
	usage string
	value string
}

func overridesFrom(flags []*stringFlag) config.Overrides {
	overrides := make(config.Overrides, len(flags))
	for _, f := range flags {
		if f.value != "" {
			overrides[f.key] = f.value
		}
	}

	return overrides
}

func bindStringFlags(cmd *cobra.Command, flags []*stringFlag) {
	for _, f := range flags {
		cmd.Flags().StringVar(&f.value, f.name, "", f.usage)
	}
}
