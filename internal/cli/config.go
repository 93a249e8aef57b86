package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/activities/internal/config"
)

func newConfigCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  usageArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, dir, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			if flags.jsonMode {
				return writeJSON(cmd, config.FileFrom(cfg))
			}
			data, err := config.Marshal(cfg)
			if err != nil {
				return sysError("%w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", config.Path(dir), data)
			return nil
		},
	}
}
