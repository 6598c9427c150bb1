package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration as YAML",
		Long: `Print the configuration after merging the defaults, the environment overlay,
the configuration file, environment variables and flags.

Examples:
  bitesized config
  bitesized config --env production
  BITESIZED_BASE_URL=/preview/ bitesized config`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(a.cfg); err != nil {
				return fmt.Errorf("error encoding configuration: %w", err)
			}
			return enc.Close()
		},
	}
}
