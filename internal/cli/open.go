package cli

import (
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/activities/internal/router"
)

func newOpenCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "open <path>",
		Short: "Navigate to a location and render it once",
		Long: "Navigate to a client location such as /activities, /activities/<id>,\n" +
			"/createActivity or /manage/<id>, run the view's loads, and print the screen.",
		Args: usageArgs(1, "path"),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.shell.Close()
			return openLocation(cmd, flags, a, args[0], func() any { return a.store.Snapshot() })
		},
	}
}

func newListCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List activities sorted by date",
		Args:  usageArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.shell.Close()
			return openLocation(cmd, flags, a, router.PathActivities, func() any { return a.store.ActivitiesSorted() })
		},
	}
}

func newShowCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one activity",
		Args:  usageArgs(1, "id"),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := activityArg(args)
			if err != nil {
				return err
			}
			a, err := newApp(cmd, flags)
			if err != nil {
				return err
			}
			defer a.shell.Close()
			return openLocation(cmd, flags, a, router.ActivityPath(id), func() any {
				sel, _ := a.store.Selected()
				return sel
			})
		},
	}
}

// openLocation navigates, renders, and maps the outcome to an exit code.
// jsonValue is evaluated after navigation settles.
func openLocation(cmd *cobra.Command, flags *rootFlags, a *app, location string, jsonValue func() any) error {
	m := a.shell.Navigate(cmd.Context(), location)
	if failed := a.failed(); failed != nil {
		a.shell.Render(cmd.ErrOrStderr())
		return failed
	}
	if m.Kind == router.KindNotFound {
		a.shell.Render(cmd.ErrOrStderr())
		return userError("no view for %s", m.Path)
	}
	return a.render(cmd, flags, jsonValue())
}
