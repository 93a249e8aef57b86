package views

import (
	"context"
	"fmt"
	"io"

	"github.com/mesh-intelligence/activities/internal/router"
	"github.com/mesh-intelligence/activities/internal/store"
)

// Details shows the selected activity.
type Details struct {
	store Store
	id    string
}

// NewDetails creates the details view for id.
func NewDetails(s Store, id string) *Details {
	return &Details{store: s, id: id}
}

// Mount implements View by selecting the activity.
func (d *Details) Mount(ctx context.Context) {
	d.store.LoadOne(ctx, d.id)
}

// Render implements View.
func (d *Details) Render(w io.Writer, st store.State) {
	sel := st.Selected
	if sel == nil || sel.ID != d.id {
		if st.LoadingInitial {
			fmt.Fprintln(w, Styles.Muted.Render("Loading activity..."))
		} else {
			fmt.Fprintln(w, Styles.Warning.Render(fmt.Sprintf("Activity %q could not be loaded.", d.id)))
		}
		return
	}

	body := Styles.Title.Render(sel.Title) + "\n" +
		Styles.Muted.Render(sel.Date) + "\n\n"
	if sel.Description != "" {
		body += sel.Description + "\n\n"
	}
	body += fmt.Sprintf("Category: %s\nCity:     %s\nVenue:    %s\n\n", sel.Category, sel.City, sel.Venue)
	body += Styles.Heading.Render("edit " + router.ManagePath(sel.ID))
	body += "  " + Styles.Heading.Render("back "+router.PathActivities)
	fmt.Fprintln(w, Styles.Card.Render(body))
}
