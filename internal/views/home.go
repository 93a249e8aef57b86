package views

import (
	"context"
	"fmt"
	"io"

	"github.com/mesh-intelligence/activities/internal/router"
	"github.com/mesh-intelligence/activities/internal/store"
)

// Home is the landing page shown at the root location.
type Home struct{}

// Mount implements View. The landing page needs no data.
func (h *Home) Mount(context.Context) {}

// Render implements View.
func (h *Home) Render(w io.Writer, _ store.State) {
	fmt.Fprintln(w, Styles.Title.Render("Reactivities"))
	fmt.Fprintln(w, "Take me to the activities: "+Styles.Heading.Render(router.PathActivities))
}

// NotFound is shown for locations no route accepts.
type NotFound struct {
	path string
}

// Mount implements View.
func (n *NotFound) Mount(context.Context) {}

// Render implements View.
func (n *NotFound) Render(w io.Writer, _ store.State) {
	fmt.Fprintln(w, Styles.Warning.Render("Oops - we've looked everywhere but couldn't find "+n.path+"."))
	fmt.Fprintln(w, "Return to the activities page: "+Styles.Heading.Render(router.PathActivities))
}
