package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/activities/internal/config"
	"github.com/mesh-intelligence/activities/internal/paths"
	"github.com/mesh-intelligence/activities/pkg/types"
)

func newInitCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a default configuration file",
		Long:  "Create the configuration directory and write config.yaml with default values.\nAn existing config.yaml is left untouched.",
		Args:  usageArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := paths.ResolveConfigDir(flags.configDir)
			if err != nil {
				return userError("resolve config directory: %w", err)
			}

			cfg := types.DefaultConfig()
			if flags.apiURL != "" {
				cfg.APIURL = flags.apiURL
			}
			if flags.logLevel != "" {
				cfg.LogLevel = flags.logLevel
			}
			if err := cfg.Validate(); err != nil {
				return userError("invalid config: %w", err)
			}

			written, err := config.WriteDefault(dir, cfg)
			if err != nil {
				return sysError("%w", err)
			}
			path := config.Path(dir)
			if written {
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", path)
			}
			return nil
		},
	}
}
