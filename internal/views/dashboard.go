package views

import (
	"context"
	"fmt"
	"io"

	"github.com/mesh-intelligence/activities/internal/router"
	"github.com/mesh-intelligence/activities/internal/store"
	"github.com/mesh-intelligence/activities/pkg/types"
)

// Dashboard lists every cached activity in date order.
type Dashboard struct {
	store Store
}

// NewDashboard creates the dashboard view.
func NewDashboard(s Store) *Dashboard {
	return &Dashboard{store: s}
}

// DeleteTarget names the delete control of the row for id.
func DeleteTarget(id string) string {
	return "delete-" + id
}

// Mount implements View by loading the activity list.
func (d *Dashboard) Mount(ctx context.Context) {
	d.store.LoadAll(ctx)
}

// Delete removes the activity shown in the row for id.
func (d *Dashboard) Delete(ctx context.Context, id string) {
	d.store.Delete(ctx, id, DeleteTarget(id))
}

// Render implements View.
func (d *Dashboard) Render(w io.Writer, st store.State) {
	if st.LoadingInitial && len(st.Activities) == 0 {
		fmt.Fprintln(w, Styles.Muted.Render("Loading activities..."))
		return
	}
	if len(st.Activities) == 0 {
		fmt.Fprintln(w, Styles.Muted.Render("No activities yet. Create one at "+router.PathCreate+"."))
		return
	}
	for _, a := range st.Activities {
		fmt.Fprintln(w, Styles.Card.Render(activityRow(a, st.Target == DeleteTarget(a.ID))))
	}
}

func activityRow(a types.Activity, deleting bool) string {
	row := Styles.Title.Render(a.Title) + "\n" +
		Styles.Muted.Render(a.Date) + "\n"
	if a.Description != "" {
		row += a.Description + "\n"
	}
	row += fmt.Sprintf("%s, %s  [%s]\n", a.City, a.Venue, a.Category)
	row += Styles.Heading.Render("view "+router.ActivityPath(a.ID))
	if deleting {
		row += "  " + Styles.Warning.Render("deleting...")
	} else {
		row += "  " + Styles.Muted.Render(DeleteTarget(a.ID))
	}
	return row
}
