package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the client release, overridden at build time with
// -ldflags "-X github.com/mesh-intelligence/activities/internal/cli.Version=...".
var Version = "0.1.0"

const modulePath = "github.com/mesh-intelligence/activities"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the activities version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "activities v%s\nmodule: %s\n", Version, modulePath)
			return nil
		},
	}
}
