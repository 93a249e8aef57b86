package shell

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/activities/internal/router"
	"github.com/mesh-intelligence/activities/internal/store"
	"github.com/mesh-intelligence/activities/internal/views"
	"github.com/mesh-intelligence/activities/pkg/types"
)

// apiStub is an in-memory types.Client. A non-nil block channel makes
// Details wait until it is closed or the request context ends.
type apiStub struct {
	mu    sync.Mutex
	items map[string]types.Activity
	fail  error
	block chan struct{}
}

func newAPIStub(acts ...types.Activity) *apiStub {
	s := &apiStub{items: make(map[string]types.Activity)}
	for _, a := range acts {
		s.items[a.ID] = a
	}
	return s
}

func (a *apiStub) List(context.Context) ([]types.Activity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail != nil {
		return nil, a.fail
	}
	out := make([]types.Activity, 0, len(a.items))
	for _, v := range a.items {
		out = append(out, v)
	}
	return out, nil
}

func (a *apiStub) Details(ctx context.Context, id string) (types.Activity, error) {
	if a.block != nil {
		select {
		case <-a.block:
		case <-ctx.Done():
			return types.Activity{}, ctx.Err()
		}
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	v, ok := a.items[id]
	if !ok {
		return types.Activity{}, types.ErrNotFound
	}
	return v, nil
}

func (a *apiStub) Create(_ context.Context, v types.Activity) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail != nil {
		return a.fail
	}
	a.items[v.ID] = v
	return nil
}

func (a *apiStub) Update(ctx context.Context, v types.Activity) error { return a.Create(ctx, v) }

func (a *apiStub) Delete(_ context.Context, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.fail != nil {
		return a.fail
	}
	delete(a.items, id)
	return nil
}

func concert() types.Activity {
	return types.Activity{
		ID:       "c1",
		Title:    "Concert",
		Category: types.CategoryMusic,
		Date:     "2020-09-09T20:00:00",
		City:     "Vienna",
		Venue:    "Musikverein",
	}
}

func newTestShell(api *apiStub, opts ...Option) *Shell {
	toasts := NewToaster(0)
	st := store.New(api, store.WithFailureHandler(toasts.StoreFailure))
	return New(st, toasts, opts...)
}

func frame(s *Shell) string {
	var buf bytes.Buffer
	s.Render(&buf)
	return buf.String()
}

func TestShell_StartsAtRoot(t *testing.T) {
	s := newTestShell(newAPIStub())
	assert.Equal(t, ModeRoot, s.Mode())
	assert.IsType(t, &views.Home{}, s.View())
	assert.NotContains(t, frame(s), "Create Activity", "no chrome on the landing page")
}

func TestShell_NavigateModes(t *testing.T) {
	s := newTestShell(newAPIStub(concert()))
	ctx := context.Background()

	tests := []struct {
		location string
		mode     Mode
		view     views.View
	}{
		{location: "/activities", mode: ModeInterior, view: &views.Dashboard{}},
		{location: "/activities/c1", mode: ModeInterior, view: &views.Details{}},
		{location: "/createActivity", mode: ModeInterior, view: &views.Form{}},
		{location: "/manage/c1", mode: ModeInterior, view: &views.Form{}},
		{location: "/elsewhere", mode: ModeInterior, view: &views.NotFound{}},
		{location: "/", mode: ModeRoot, view: &views.Home{}},
	}
	for _, tt := range tests {
		t.Run(tt.location, func(t *testing.T) {
			s.Navigate(ctx, tt.location)
			assert.Equal(t, tt.mode, s.Mode())
			assert.IsType(t, tt.view, s.View())
			if tt.mode == ModeInterior {
				assert.Contains(t, frame(s), "Create Activity")
			}
		})
	}
}

func TestShell_DashboardAndDetails(t *testing.T) {
	s := newTestShell(newAPIStub(concert()))
	ctx := context.Background()

	m := s.Navigate(ctx, "/activities")
	assert.Equal(t, router.KindDashboard, m.Kind)
	assert.Contains(t, frame(s), "Concert")

	s.Navigate(ctx, router.ActivityPath("c1"))
	out := frame(s)
	assert.Contains(t, out, "Musikverein")
}

func TestShell_CreateFlow(t *testing.T) {
	api := newAPIStub()
	s := newTestShell(api, WithFormOptions(views.WithIDGenerator(func() string { return "new1" })))
	ctx := context.Background()

	s.Navigate(ctx, router.PathCreate)
	for field, value := range map[string]string{
		"title": "Walk", "category": types.CategoryTravel, "date": "2020-04-04T09:00:00",
		"city": "Oslo", "venue": "Harbour",
	} {
		require.NoError(t, s.SetField(field, value))
	}

	saved, err := s.Submit(ctx)
	require.NoError(t, err)
	assert.Equal(t, "new1", saved.ID)
	assert.Equal(t, "/activities/new1", s.Location().Path)
	assert.IsType(t, &views.Details{}, s.View())
	out := frame(s)
	assert.Contains(t, out, "Harbour")
	assert.Contains(t, out, `saved "Walk"`)
}

func TestShell_SubmitValidationRaisesToast(t *testing.T) {
	s := newTestShell(newAPIStub())
	ctx := context.Background()
	s.Navigate(ctx, router.PathCreate)

	_, err := s.Submit(ctx)
	assert.ErrorIs(t, err, types.ErrInvalidData)
	assert.Equal(t, 1, s.Toasts().Errors())
	assert.Equal(t, router.PathCreate, s.Location().Path)
}

func TestShell_SubmitStoreFailureRaisesSingleToast(t *testing.T) {
	api := newAPIStub(concert())
	s := newTestShell(api)
	ctx := context.Background()
	s.Navigate(ctx, router.ManagePath("c1"))
	require.NoError(t, s.SetField("title", "Encore"))

	api.mu.Lock()
	api.fail = errors.New("unavailable")
	api.mu.Unlock()

	_, err := s.Submit(ctx)
	assert.ErrorIs(t, err, views.ErrSubmitFailed)
	assert.Equal(t, 1, s.Toasts().Errors())
	assert.Contains(t, frame(s), "edit activity c1 failed: unavailable")
}

func TestShell_FormActionsOnWrongView(t *testing.T) {
	s := newTestShell(newAPIStub())
	assert.ErrorIs(t, s.SetField("title", "x"), ErrWrongView)
	_, err := s.Submit(context.Background())
	assert.ErrorIs(t, err, ErrWrongView)
}

func TestShell_Delete(t *testing.T) {
	api := newAPIStub(concert())
	s := newTestShell(api)
	ctx := context.Background()

	require.NoError(t, s.Delete(ctx, "c1"))
	assert.IsType(t, &views.Dashboard{}, s.View())
	assert.NotContains(t, frame(s), "Musikverein")

	api.mu.Lock()
	api.items["c2"] = concert()
	api.fail = errors.New("locked")
	api.mu.Unlock()
	assert.ErrorIs(t, s.Delete(ctx, "c2"), ErrActionFailed)
}

func TestShell_NavigateCancelsPreviousMount(t *testing.T) {
	api := newAPIStub(concert())
	api.block = make(chan struct{})
	s := newTestShell(api)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		s.Navigate(ctx, "/activities/c1")
		close(done)
	}()

	require.Eventually(t, func() bool {
		return s.Location().Kind == router.KindDetails
	}, time.Second, 5*time.Millisecond)
	s.Navigate(ctx, "/")

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("details mount was not canceled by navigation")
	}
	assert.Equal(t, ModeRoot, s.Mode())
	_, ok := s.store.Selected()
	assert.False(t, ok)
}

func TestToaster(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tt := NewToaster(5 * time.Second)
	tt.now = func() time.Time { return now }

	tt.Error("first")
	now = now.Add(3 * time.Second)
	tt.Success("second")
	assert.Len(t, tt.Active(), 2)

	now = now.Add(3 * time.Second)
	active := tt.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "second", active[0].Message)
	assert.Equal(t, 1, tt.Errors(), "expiry does not reset the error count")

	tt.Dismiss()
	assert.Empty(t, tt.Active())
}

func TestToaster_StoreFailure(t *testing.T) {
	tt := NewToaster(0)
	tt.StoreFailure(store.Failure{Op: store.OpLoadAll, Err: errors.New("offline")})
	tt.StoreFailure(store.Failure{Op: store.OpDelete, ID: "9", Err: errors.New("locked")})

	var buf bytes.Buffer
	tt.Render(&buf)
	assert.Contains(t, buf.String(), "load activities failed: offline")
	assert.Contains(t, buf.String(), "delete activity 9 failed: locked")
	assert.Equal(t, 2, tt.Errors())
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "root", ModeRoot.String())
	assert.Equal(t, "interior", ModeInterior.String())
}
