package cli

import (
	"fmt"
	"strings"

	"github.com/harrisonrobin/baronboard/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(o *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and manage configuration",
		Long: `View and manage baronboard configuration.

Settings are resolved in this order:
  1. Command-line flags
  2. Environment variables (BARONBOARD_*)
  3. ~/.config/baronboard/config.yaml (or --config)
  4. Built-in defaults

Keys: ` + strings.Join(config.Keys(), ", "),
	}

	cmd.AddCommand(newConfigShowCmd(o))
	cmd.AddCommand(newConfigSetCmd(o))
	return cmd
}

func newConfigShowCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config(cmd)
			if err != nil {
				return err
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}

func newConfigSetCmd(o *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "set KEY VALUE",
		Short:   "Set a value in the config file",
		Example: "  baronboard config set calendar \"Baron tasks\"\n  baronboard config set header_row 2",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Set(o.cfgFile, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s set to %s\n", args[0], args[1])
			return nil
		},
	}
}
