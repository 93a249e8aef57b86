package shell

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mesh-intelligence/activities/internal/store"
	"github.com/mesh-intelligence/activities/internal/views"
)

// Level is the severity of a toast.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// Toast is a transient notification.
type Toast struct {
	Level   Level
	Message string
	At      time.Time
}

// Toaster is the notification layer. It is mounted once per shell and
// survives navigation. Safe for concurrent use.
type Toaster struct {
	ttl time.Duration
	now func() time.Time

	mu     sync.Mutex
	toasts []Toast
	errors int
}

// NewToaster creates a toaster whose toasts expire after ttl. A ttl of zero
// keeps toasts until they are dismissed.
func NewToaster(ttl time.Duration) *Toaster {
	return &Toaster{ttl: ttl, now: time.Now}
}

// Push adds a toast.
func (t *Toaster) Push(level Level, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.toasts = append(t.toasts, Toast{Level: level, Message: msg, At: t.now()})
	if level == LevelError {
		t.errors++
	}
}

// Error adds an error toast.
func (t *Toaster) Error(msg string) { t.Push(LevelError, msg) }

// Success adds a success toast.
func (t *Toaster) Success(msg string) { t.Push(LevelSuccess, msg) }

// StoreFailure turns a store failure into an error toast. It is meant to be
// passed to store.WithFailureHandler.
func (t *Toaster) StoreFailure(f store.Failure) {
	msg := fmt.Sprintf("%s failed: %v", f.Op, f.Err)
	if f.ID != "" {
		msg = fmt.Sprintf("%s %s failed: %v", f.Op, f.ID, f.Err)
	}
	t.Error(msg)
}

// Active returns the toasts that have not expired, oldest first, and drops
// the expired ones.
func (t *Toaster) Active() []Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.ttl > 0 {
		cutoff := t.now().Add(-t.ttl)
		kept := t.toasts[:0]
		for _, ts := range t.toasts {
			if ts.At.After(cutoff) {
				kept = append(kept, ts)
			}
		}
		t.toasts = kept
	}
	return append([]Toast(nil), t.toasts...)
}

// Dismiss removes every toast.
func (t *Toaster) Dismiss() {
	t.mu.Lock()
	t.toasts = nil
	t.mu.Unlock()
}

// Errors returns how many error toasts were pushed since creation.
func (t *Toaster) Errors() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errors
}

// Render writes the active toasts.
func (t *Toaster) Render(w io.Writer) {
	for _, ts := range t.Active() {
		switch ts.Level {
		case LevelError:
			fmt.Fprintln(w, views.Styles.Error.Render("✗ "+ts.Message))
		case LevelSuccess:
			fmt.Fprintln(w, views.Styles.Success.Render("✓ "+ts.Message))
		default:
			fmt.Fprintln(w, views.Styles.Muted.Render("• "+ts.Message))
		}
	}
}
