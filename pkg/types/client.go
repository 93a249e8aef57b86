package types

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Client performs CRUD requests against the remote activities resource.
// Every method may fail with a transport or validation error; callers treat
// those errors as opaque.
type Client interface {
	// List returns every activity known to the backend.
	List(ctx context.Context) ([]Activity, error)

	// Details returns the activity with the given ID.
	// Returns ErrNotFound if the backend has no such activity.
	Details(ctx context.Context, id string) (Activity, error)

	// Create sends a new activity. The activity carries its own ID.
	Create(ctx context.Context, activity Activity) error

	// Update replaces the stored activity with the same ID.
	Update(ctx context.Context, activity Activity) error

	// Delete removes the activity with the given ID.
	Delete(ctx context.Context, id string) error
}

// Client operation errors.
var (
	ErrNotFound    = errors.New("activity not found")
	ErrInvalidID   = errors.New("invalid activity ID")
	ErrInvalidData = errors.New("invalid activity data")
	ErrInvalidDate = errors.New("invalid activity date")
)

// CheckID returns ErrInvalidID for ids that cannot name an activity: blank
// ids and the dot segments "." and "..".
func CheckID(id string) error {
	if strings.TrimSpace(id) == "" || id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
