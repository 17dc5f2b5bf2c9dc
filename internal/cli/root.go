// Package cli defines the menuboard command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// RootOptions holds global flags shared by all commands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool
}

// NewRootCommand creates the root command for the menuboard CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "menuboard",
		Short: "Menu schedule engine and admin API",
		Long: `Menuboard runs the menu scheduling service: a JSON-snapshot entity
store, a background engine that activates menu presets on schedule, and
the HTTP API the display board and admin UI talk to.`,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "menuboard.yaml", "path to YAML config file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewHashPasswordCommand(opts))

	return cmd
}
