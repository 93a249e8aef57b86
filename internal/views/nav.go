package views

import (
	"fmt"
	"io"

	"github.com/mesh-intelligence/activities/internal/router"
)

// RenderNav writes the navigation frame shown on every interior location.
func RenderNav(w io.Writer, m router.Match) {
	link := func(label, path string) string {
		if m.Path == path {
			return Styles.Title.Render(label)
		}
		return Styles.Heading.Render(label) + Styles.Muted.Render(" "+path)
	}
	bar := fmt.Sprintf("%s  %s  %s",
		Styles.Bold.Render("Reactivities"),
		link("Activities", router.PathActivities),
		link("Create Activity", router.PathCreate),
	)
	fmt.Fprintln(w, Styles.Nav.Render(bar))
}
