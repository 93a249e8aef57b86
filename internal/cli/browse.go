package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/activities/internal/router"
	"github.com/mesh-intelligence/activities/internal/tui"
)

func newBrowseCmd(flags *rootFlags) *cobra.Command {
	var start string
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse activities interactively",
		Long: "Start the interactive browser. Type a location such as /activities to\n" +
			"navigate, \"set <field>=<value>\" and \"submit\" on a form, \"delete <id>\",\n" +
			"or \"quit\". The screen redraws whenever the activity store changes.",
		Args: usageArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.shell.Close()

			if start != router.PathHome {
				a.shell.Navigate(cmd.Context(), start)
			}
			if err := tui.Run(cmd.Context(), a.shell, a.store, cmd.InOrStdin(), cmd.OutOrStdout()); err != nil {
				return sysError("browser: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&start, "start", router.PathActivities, "location to open first")
	return cmd
}
