package main

import (
	"github.com/spf13/cobra"

	"github.com/backmassage/bitcap/internal/config"
)

// configFlags binds the config flags as persistent flags so every
// subcommand accepts them.
func configFlags(rootCmd *cobra.Command) *config.Flags {
	return config.BindFlags(rootCmd.PersistentFlags())
}
