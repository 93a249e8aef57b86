package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/activities/internal/router"
	"github.com/mesh-intelligence/activities/internal/shell"
	"github.com/mesh-intelligence/activities/internal/views"
	"github.com/mesh-intelligence/activities/pkg/types"
)

// addFieldFlags registers one string flag per editable form field.
func addFieldFlags(cmd *cobra.Command) {
	for _, field := range views.FormFields {
		usage := "activity " + field
		switch field {
		case "category":
			usage = fmt.Sprintf("activity category (%s)", strings.Join(types.Categories, ", "))
		case "date":
			usage = "activity date, e.g. 2026-05-01T19:30:00"
		}
		cmd.Flags().String(field, "", usage)
	}
}

// applyFieldFlags copies every field flag the user set into the mounted
// form and returns how many were applied.
func applyFieldFlags(cmd *cobra.Command, sh *shell.Shell) (int, error) {
	n := 0
	for _, field := range views.FormFields {
		if !cmd.Flags().Changed(field) {
			continue
		}
		value, err := cmd.Flags().GetString(field)
		if err != nil {
			return n, userError("read --%s: %w", field, err)
		}
		if err := sh.SetField(field, value); err != nil {
			return n, userError("%w", err)
		}
		n++
	}
	return n, nil
}

// submitForm submits the mounted form and renders the saved activity.
func submitForm(cmd *cobra.Command, flags *rootFlags, a *app) error {
	saved, err := a.shell.Submit(cmd.Context())
	if err != nil {
		a.shell.Render(cmd.ErrOrStderr())
		if errors.Is(err, views.ErrSubmitFailed) {
			return sysError("save activity: %w", err)
		}
		return userError("%w", err)
	}
	return a.render(cmd, flags, saved)
}

func newCreateCmd(flags *rootFlags) *cobra.Command {
	var id string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an activity",
		Long:  "Create an activity through the create form. The id is a new UUID v7 unless --id is given.",
		Args:  usageArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []shell.Option
			if cmd.Flags().Changed("id") {
				if err := types.CheckID(id); err != nil {
					return userError("--id: %w", err)
				}
				opts = append(opts, shell.WithFormOptions(views.WithIDGenerator(func() string { return id })))
			}
			a, err := newApp(cmd, flags, opts...)
			if err != nil {
				return err
			}
			defer a.shell.Close()

			a.shell.Navigate(cmd.Context(), router.PathCreate)
			if _, err := applyFieldFlags(cmd, a.shell); err != nil {
				return err
			}
			return submitForm(cmd, flags, a)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "id for the new activity (default: generated)")
	addFieldFlags(cmd)
	return cmd
}

func newEditCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit an activity",
		Long:  "Load an activity into the edit form, overlay the given field flags, and save it.",
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

			a.shell.Navigate(cmd.Context(), router.ManagePath(id))
			if failed := a.failed(); failed != nil {
				a.shell.Render(cmd.ErrOrStderr())
				return failed
			}
			n, err := applyFieldFlags(cmd, a.shell)
			if err != nil {
				return err
			}
			if n == 0 {
				return userError("nothing to change: pass at least one of --%s", strings.Join(views.FormFields, ", --"))
			}
			return submitForm(cmd, flags, a)
		},
	}
	addFieldFlags(cmd)
	return cmd
}

func newDeleteCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an activity",
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

			if err := a.shell.Delete(cmd.Context(), id); err != nil {
				a.shell.Render(cmd.ErrOrStderr())
				return sysError("delete %s: %w", id, err)
			}
			return a.render(cmd, flags, map[string]string{"deleted": id})
		},
	}
}
