// Package views holds the screens the shell mounts for each route. Views
// read store snapshots to render and call store actions when mounted or when
// the user acts; they never touch the store's cache directly.
package views

import (
	"context"
	"io"

	"github.com/mesh-intelligence/activities/internal/router"
	"github.com/mesh-intelligence/activities/internal/store"
	"github.com/mesh-intelligence/activities/pkg/types"
)

// View is a screen bound to one location. A view is created for a single
// navigation and discarded when the location changes.
type View interface {
	// Mount runs the store actions the view needs. It returns once those
	// actions have settled or ctx is done.
	Mount(ctx context.Context)

	// Render writes the view for the given store snapshot.
	Render(w io.Writer, st store.State)
}

// Store is the part of the Activity Store that views use.
type Store interface {
	LoadAll(ctx context.Context)
	LoadOne(ctx context.Context, id string)
	ClearSelected()
	Create(ctx context.Context, activity types.Activity)
	Edit(ctx context.Context, activity types.Activity)
	Delete(ctx context.Context, id, target string)
	Get(id string) (types.Activity, bool)
	Selected() (types.Activity, bool)
}

var _ Store = (*store.Store)(nil)

// For returns a fresh view for the location m resolved to.
func For(m router.Match, s Store, opts ...FormOption) View {
	switch m.Kind {
	case router.KindHome:
		return &Home{}
	case router.KindDashboard:
		return NewDashboard(s)
	case router.KindDetails:
		return NewDetails(s, m.Param(router.ParamID))
	case router.KindForm:
		return NewForm(s, m.Param(router.ParamID), opts...)
	default:
		return &NotFound{path: m.Path}
	}
}
