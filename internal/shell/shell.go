// Package shell composes the client's screens. It resolves a location
// through the router, mounts exactly one view for it, and frames interior
// locations with the navigation bar. A single toast layer sits above every
// route.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/activities/internal/router"
	"github.com/mesh-intelligence/activities/internal/store"
	"github.com/mesh-intelligence/activities/internal/views"
	"github.com/mesh-intelligence/activities/pkg/types"
)

// Mode is the shell's top-level state.
type Mode int

const (
	// ModeRoot renders the landing page without navigation chrome.
	ModeRoot Mode = iota
	// ModeInterior renders the navigation chrome plus one view.
	ModeInterior
)

func (m Mode) String() string {
	if m == ModeRoot {
		return "root"
	}
	return "interior"
}

// Option configures a Shell.
type Option func(*Shell)

// WithRouter replaces the default route table.
func WithRouter(r *router.Router) Option {
	return func(s *Shell) { s.router = r }
}

// WithLogger sets the shell's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Shell) { s.logger = logger }
}

// WithFormOptions passes options to every form view the shell mounts.
func WithFormOptions(opts ...views.FormOption) Option {
	return func(s *Shell) { s.formOpts = append(s.formOpts, opts...) }
}

// Shell is the view router. Safe for concurrent use: navigation may run on
// one goroutine while another renders.
type Shell struct {
	store    *store.Store
	toasts   *Toaster
	router   *router.Router
	logger   *slog.Logger
	formOpts []views.FormOption

	mu     sync.Mutex
	match  router.Match
	view   views.View
	cancel context.CancelFunc
}

// New creates a shell positioned at the root location. toasts must be the
// toaster the store reports its failures to.
func New(st *store.Store, toasts *Toaster, opts ...Option) *Shell {
	s := &Shell{
		store:  st,
		toasts: toasts,
		router: router.New(),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.match = s.router.Match(router.PathHome)
	s.view = views.For(s.match, st, s.formOpts...)
	return s
}

// Navigate moves to location: the previous view's in-flight requests are
// canceled, a fresh view is mounted, and its store actions run on the
// calling goroutine. Navigate returns the resolved match once mounting has
// settled.
func (s *Shell) Navigate(ctx context.Context, location string) router.Match {
	m := s.router.Match(location)
	v := views.For(m, s.store, s.formOpts...)

	mctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.match, s.view, s.cancel = m, v, cancel
	s.mu.Unlock()

	s.logger.Debug("navigate", "path", m.Path, "view", m.Kind.String())
	v.Mount(mctx)
	return m
}

// Close cancels the mounted view's requests.
func (s *Shell) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// Location returns the current match.
func (s *Shell) Location() router.Match {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.match
}

// Mode reports whether the shell is on the landing page or inside the frame.
func (s *Shell) Mode() Mode {
	if s.Location().Interior() {
		return ModeInterior
	}
	return ModeRoot
}

// View returns the mounted view.
func (s *Shell) View() views.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// Toasts returns the notification layer.
func (s *Shell) Toasts() *Toaster {
	return s.toasts
}

// Render writes the current frame: navigation chrome on interior locations,
// the mounted view, and the active toasts.
func (s *Shell) Render(w io.Writer) {
	s.mu.Lock()
	m, v := s.match, s.view
	s.mu.Unlock()

	if m.Interior() {
		views.RenderNav(w, m)
	}
	v.Render(w, s.store.Snapshot())
	s.toasts.Render(w)
}

// SetField changes one field of the mounted form.
func (s *Shell) SetField(field, value string) error {
	f, err := s.form()
	if err != nil {
		return err
	}
	if err := f.Set(field, value); err != nil {
		s.toasts.Error(err.Error())
		return err
	}
	return nil
}

// Submit submits the mounted form and, on success, navigates to the saved
// activity. Validation errors are raised as toasts and returned.
func (s *Shell) Submit(ctx context.Context) (types.Activity, error) {
	f, err := s.form()
	if err != nil {
		return types.Activity{}, err
	}
	next, err := f.Submit(ctx)
	if err != nil {
		if !errors.Is(err, views.ErrSubmitFailed) {
			// Store failures already raised their own toast.
			s.toasts.Error(err.Error())
		}
		return types.Activity{}, err
	}
	saved := f.Draft()
	s.toasts.Success(fmt.Sprintf("saved %q", saved.Title))
	s.Navigate(ctx, next)
	return saved, nil
}

// Delete removes an activity from the dashboard. The dashboard is mounted
// first when the shell is elsewhere.
func (s *Shell) Delete(ctx context.Context, id string) error {
	d, ok := s.View().(*views.Dashboard)
	if !ok {
		s.Navigate(ctx, router.PathActivities)
		if d, ok = s.View().(*views.Dashboard); !ok {
			return ErrWrongView
		}
	}
	before := s.toasts.Errors()
	d.Delete(ctx, id)
	if s.toasts.Errors() > before {
		return ErrActionFailed
	}
	s.toasts.Success(fmt.Sprintf("deleted %s", id))
	return nil
}

func (s *Shell) form() (*views.Form, error) {
	f, ok := s.View().(*views.Form)
	if !ok {
		return nil, ErrWrongView
	}
	return f, nil
}
