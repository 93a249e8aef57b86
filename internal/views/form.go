package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/activities/internal/router"
	"github.com/mesh-intelligence/activities/internal/store"
	"github.com/mesh-intelligence/activities/pkg/types"
)

// Form errors.
var (
	ErrUnknownField  = errors.New("unknown form field")
	ErrNotLoaded     = errors.New("activity is not loaded")
	ErrSubmitFailed  = errors.New("activity was not saved")
	ErrSubmitPending = errors.New("a submission is already in progress")
)

// FormFields lists the editable fields in display order.
var FormFields = []string{"title", "description", "category", "date", "city", "venue"}

// FormOption configures a Form.
type FormOption func(*Form)

// WithIDGenerator overrides how new activities get their ID.
func WithIDGenerator(fn func() string) FormOption {
	return func(f *Form) { f.newID = fn }
}

// Form creates a new activity (no id) or edits an existing one.
type Form struct {
	store Store
	id    string
	newID func() string

	mu         sync.Mutex
	draft      types.Activity
	loaded     bool
	submitting bool
}

// NewForm creates the form for id; an empty id means create.
func NewForm(s Store, id string, opts ...FormOption) *Form {
	f := &Form{store: s, id: id, newID: newActivityID}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// newActivityID returns a time-ordered UUID v7, falling back to v4.
func newActivityID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Editing reports whether the form edits an existing activity.
func (f *Form) Editing() bool {
	return f.id != ""
}

// Mount implements View. A create form clears the selection and starts from
// an empty draft; an edit form loads the activity into the draft.
func (f *Form) Mount(ctx context.Context) {
	if !f.Editing() {
		f.store.ClearSelected()
		f.mu.Lock()
		f.draft = types.Activity{ID: f.newID()}
		f.loaded = true
		f.mu.Unlock()
		return
	}

	f.store.LoadOne(ctx, f.id)
	a, ok := f.store.Selected()
	if !ok || a.ID != f.id {
		return
	}
	f.mu.Lock()
	f.draft = a
	f.loaded = true
	f.mu.Unlock()
}

// Draft returns the current form values.
func (f *Form) Draft() types.Activity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Set changes one field of the draft. The ID cannot be changed.
func (f *Form) Set(field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.loaded {
		return ErrNotLoaded
	}
	switch strings.ToLower(field) {
	case "title":
		f.draft.Title = value
	case "description":
		f.draft.Description = value
	case "category":
		f.draft.Category = value
	case "date":
		f.draft.Date = value
	case "city":
		f.draft.City = value
	case "venue":
		f.draft.Venue = value
	default:
		return fmt.Errorf("%w: %q (valid: %s)", ErrUnknownField, field, strings.Join(FormFields, ", "))
	}
	return nil
}

// Submit validates the draft and sends it through the store. On success it
// returns the details location of the saved activity.
func (f *Form) Submit(ctx context.Context) (string, error) {
	f.mu.Lock()
	if !f.loaded {
		f.mu.Unlock()
		return "", ErrNotLoaded
	}
	if f.submitting {
		f.mu.Unlock()
		return "", ErrSubmitPending
	}
	draft := f.draft
	f.submitting = true
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.submitting = false
		f.mu.Unlock()
	}()

	if err := draft.Validate(); err != nil {
		return "", err
	}
	if f.Editing() {
		f.store.Edit(ctx, draft)
	} else {
		f.store.Create(ctx, draft)
	}

	// Store actions do not report errors; a saved draft is in the cache.
	if got, ok := f.store.Get(draft.ID); !ok || got != draft {
		return "", ErrSubmitFailed
	}
	return router.ActivityPath(draft.ID), nil
}

// Render implements View.
func (f *Form) Render(w io.Writer, st store.State) {
	f.mu.Lock()
	draft, loaded := f.draft, f.loaded
	f.mu.Unlock()

	title := "Create activity"
	if f.Editing() {
		title = "Edit activity"
	}
	fmt.Fprintln(w, Styles.Title.Render(title))

	if !loaded {
		if st.LoadingInitial {
			fmt.Fprintln(w, Styles.Muted.Render("Loading activity..."))
		} else {
			fmt.Fprintln(w, Styles.Warning.Render(fmt.Sprintf("Activity %q could not be loaded.", f.id)))
		}
		return
	}

	values := map[string]string{
		"title":       draft.Title,
		"description": draft.Description,
		"category":    draft.Category,
		"date":        draft.Date,
		"city":        draft.City,
		"venue":       draft.Venue,
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-12s %s\n", "id", Styles.Muted.Render(draft.ID))
	for _, field := range FormFields {
		fmt.Fprintf(&b, "%-12s %s\n", field, values[field])
	}
	fmt.Fprintf(&b, "%s", Styles.Muted.Render("categories: "+strings.Join(types.Categories, ", ")))
	fmt.Fprintln(w, Styles.Card.Render(b.String()))

	if st.Submitting {
		fmt.Fprintln(w, Styles.Warning.Render("Submitting..."))
	}
}
