// Package store implements the Activity Store: an in-memory cache of
// activities synchronized with the remote API through types.Client.
//
// The store is the single source of truth for activity data in a client
// session. Views read from it and invoke its actions; they never mutate the
// cache directly. Every action applies its state changes in at most two
// atomic steps (a flag flip before the network call and a batch update after
// it), and subscribers are notified synchronously after each step with a
// snapshot of the resulting state. Intermediate states during a network wait
// are never published.
//
// Actions never return errors. A failed API call resets the busy flags, is
// logged, and is reported to the optional failure handler. Calls canceled
// through their context only reset the flags.
//
// Responses that arrive after the user has moved on are discarded: every
// list load carries a list generation and every selection change bumps a
// selection generation, and a response whose generation is no longer
// current does not write into the store.
package store

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/mesh-intelligence/activities/pkg/types"
)

// Action names reported in Failure.Op and in log records.
const (
	OpLoadAll = "load activities"
	OpLoadOne = "load activity"
	OpCreate  = "create activity"
	OpEdit    = "edit activity"
	OpDelete  = "delete activity"
)

// State is an immutable snapshot of the store taken after a transition.
type State struct {
	Activities     []types.Activity `json:"activities"` // cache values sorted by date
	Selected       *types.Activity  `json:"selected"`   // nil when nothing is selected
	LoadingInitial bool             `json:"loading_initial"`
	Submitting     bool             `json:"submitting"`
	Target         string           `json:"target,omitempty"` // name of the control that started an in-flight delete
}

// Failure describes an API error caught at an action boundary.
type Failure struct {
	Op  string
	ID  string
	Err error
}

// Listener receives a snapshot after every state transition. Listeners run
// on the goroutine that performed the transition and must not call store
// actions synchronously.
type Listener func(State)

type subscription struct {
	id int
	fn Listener
}

// Store is the Activity Store. It is safe for concurrent use.
type Store struct {
	client    types.Client
	logger    *slog.Logger
	onFailure func(Failure)

	// notifyMu serializes transitions together with their notifications so
	// listeners observe them in commit order. Always taken before mu.
	notifyMu sync.Mutex

	mu         sync.Mutex
	registry   map[string]types.Activity
	selected   *types.Activity
	loading    int
	submitting bool
	target     string
	listGen    uint64
	appliedGen uint64 // generation of the last list written to the cache
	selectGen  uint64
	listeners  []subscription
	nextSubID  int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger that receives action failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithFailureHandler registers fn to be called, outside any store lock, for
// every failed API call.
func WithFailureHandler(fn func(Failure)) Option {
	return func(s *Store) { s.onFailure = fn }
}

// New creates an empty store backed by client.
func New(client types.Client, opts ...Option) *Store {
	s := &Store{
		client:   client,
		logger:   slog.New(slog.DiscardHandler),
		registry: make(map[string]types.Activity),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers fn for state notifications and returns a function that
// removes it. The returned function is idempotent.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			s.listeners = slices.DeleteFunc(s.listeners, func(sub subscription) bool {
				return sub.id == id
			})
		})
	}
}

// commit applies fn atomically and then notifies every listener with the
// resulting snapshot.
func (s *Store) commit(fn func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	fn()
	snap := s.snapshotLocked()
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	for _, sub := range listeners {
		sub.fn(snap)
	}
}

func (s *Store) fail(op, id string, err error) {
	if errors.Is(err, context.Canceled) {
		s.logger.Debug("store action canceled", "op", op, "id", id)
		return
	}
	s.logger.Error("store action failed", "op", op, "id", id, "error", err)
	if s.onFailure != nil {
		s.onFailure(Failure{Op: op, ID: id, Err: err})
	}
}

// LoadAll fetches every activity, normalizes its date, and upserts it into
// the cache. LoadingInitial is set for the duration of the request.
func (s *Store) LoadAll(ctx context.Context) {
	var gen uint64
	s.commit(func() {
		s.loading++
		s.listGen++
		gen = s.listGen
	})

	activities, err := s.client.List(ctx)
	if err != nil {
		s.commit(func() { s.loading-- })
		s.fail(OpLoadAll, "", err)
		return
	}

	s.commit(func() {
		s.loading--
		if gen < s.appliedGen {
			s.logger.Debug("discarding stale activity list", "generation", gen, "applied", s.appliedGen)
			return
		}
		s.appliedGen = gen
		for _, a := range activities {
			a = a.Normalized()
			s.registry[a.ID] = a
		}
	})
}

// LoadOne selects the activity with the given ID. A cached activity is
// selected immediately without a network call. Otherwise the activity is
// fetched, committed to the cache, and selected, unless the selection changed
// while the request was in flight.
func (s *Store) LoadOne(ctx context.Context, id string) {
	var (
		gen uint64
		hit bool
	)
	s.commit(func() {
		s.selectGen++
		gen = s.selectGen
		if a, ok := s.registry[id]; ok {
			s.selected = &a
			hit = true
			return
		}
		s.loading++
	})
	if hit {
		return
	}

	a, err := s.client.Details(ctx, id)
	if err != nil {
		s.commit(func() { s.loading-- })
		s.fail(OpLoadOne, id, err)
		return
	}

	s.commit(func() {
		s.loading--
		if gen != s.selectGen {
			s.logger.Debug("discarding stale activity", "id", id, "generation", gen, "current", s.selectGen)
			return
		}
		if a.ID == "" {
			a.ID = id
		}
		a = a.Normalized()
		s.registry[a.ID] = a
		s.selected = &a
	})
}

// ClearSelected drops the current selection.
func (s *Store) ClearSelected() {
	s.commit(func() {
		s.selectGen++
		s.selected = nil
	})
}

// Create sends a new activity and inserts it into the cache once the API
// accepts it.
func (s *Store) Create(ctx context.Context, activity types.Activity) {
	s.commit(func() { s.submitting = true })

	if err := s.client.Create(ctx, activity); err != nil {
		s.commit(func() { s.submitting = false })
		s.fail(OpCreate, activity.ID, err)
		return
	}

	s.commit(func() {
		s.registry[activity.ID] = activity
		s.submitting = false
	})
}

// Edit sends an update and, once the API accepts it, replaces the cache
// entry and selects the updated activity. The selection is left alone if it
// changed while the request was in flight.
func (s *Store) Edit(ctx context.Context, activity types.Activity) {
	var gen uint64
	s.commit(func() {
		s.submitting = true
		gen = s.selectGen
	})

	if err := s.client.Update(ctx, activity); err != nil {
		s.commit(func() { s.submitting = false })
		s.fail(OpEdit, activity.ID, err)
		return
	}

	s.commit(func() {
		s.registry[activity.ID] = activity
		if gen == s.selectGen {
			a := activity
			s.selected = &a
		}
		s.submitting = false
	})
}

// Delete removes an activity. target names the control that requested the
// deletion so a view can mark it busy; it is cleared when the call settles.
// A deleted activity that is currently selected is deselected.
func (s *Store) Delete(ctx context.Context, id, target string) {
	s.commit(func() {
		s.submitting = false
		s.target = target
	})

	if err := s.client.Delete(ctx, id); err != nil {
		s.commit(func() {
			s.submitting = false
			s.target = ""
		})
		s.fail(OpDelete, id, err)
		return
	}

	s.commit(func() {
		delete(s.registry, id)
		if s.selected != nil && s.selected.ID == id {
			s.selectGen++
			s.selected = nil
		}
		s.submitting = false
		s.target = ""
	})
}

// Get returns the cached activity with the given ID.
func (s *Store) Get(id string) (types.Activity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.registry[id]
	return a, ok
}

// ActivitiesSorted returns the cached activities ordered by date. The slice
// is rebuilt on every call.
func (s *Store) ActivitiesSorted() []types.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

// Selected returns the selected activity, if any.
func (s *Store) Selected() (types.Activity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selected == nil {
		return types.Activity{}, false
	}
	return *s.selected, true
}

// LoadingInitial reports whether a list or detail load is in flight.
func (s *Store) LoadingInitial() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading > 0
}

// Submitting reports whether a create or edit is in flight.
func (s *Store) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Target returns the name of the control whose delete is in flight.
func (s *Store) Target() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

// Snapshot returns the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() State {
	st := State{
		Activities:     s.sortedLocked(),
		LoadingInitial: s.loading > 0,
		Submitting:     s.submitting,
		Target:         s.target,
	}
	if s.selected != nil {
		a := *s.selected
		st.Selected = &a
	}
	return st
}

func (s *Store) sortedLocked() []types.Activity {
	out := make([]types.Activity, 0, len(s.registry))
	for _, a := range s.registry {
		out = append(out, a)
	}
	slices.SortFunc(out, types.CompareByDate)
	return out
}
