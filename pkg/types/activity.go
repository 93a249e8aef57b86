package types

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout is the wire format of Activity.Date after normalization.
const DateLayout = "2006-01-02T15:04:05"

// Activity categories offered by the form.
const (
	CategoryDrinks  = "drinks"
	CategoryCulture = "culture"
	CategoryFilm    = "film"
	CategoryFood    = "food"
	CategoryMusic   = "music"
	CategoryTravel  = "travel"
)

// Categories lists the known categories in display order.
var Categories = []string{
	CategoryDrinks,
	CategoryCulture,
	CategoryFilm,
	CategoryFood,
	CategoryMusic,
	CategoryTravel,
}

// Activity is a single event record served by the activities API.
// ID is assigned by the creator and never changes afterwards.
type Activity struct {
	ID          string `json:"id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Category    string `json:"category" validate:"required,oneof=drinks culture film food music travel"`
	Date        string `json:"date" validate:"required"`
	City        string `json:"city" validate:"required"`
	Venue       string `json:"venue" validate:"required"`
}

// parseLayouts are tried in order by ParsedDate.
var parseLayouts = []string{
	DateLayout,
	"2006-01-02T15:04:05.999999999",
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02",
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NormalizeDate drops sub-second precision from a backend date string by
// cutting it at the first '.'. Strings without a fractional part are
// returned unchanged.
func NormalizeDate(date string) string {
	before, _, _ := strings.Cut(date, ".")
	return before
}

// Normalized returns a copy of the activity with its date normalized.
func (a Activity) Normalized() Activity {
	a.Date = NormalizeDate(a.Date)
	return a
}

// ParsedDate parses Date using the backend's local date-time format, falling
// back to RFC 3339 and date-only forms.
func (a Activity) ParsedDate() (time.Time, error) {
	for _, layout := range parseLayouts {
		if t, err := time.Parse(layout, a.Date); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, a.Date)
}

// Validate checks required fields and the category. It returns an error
// wrapping ErrInvalidData or ErrInvalidDate.
func (a Activity) Validate() error {
	if err := validate.Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidData, strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if _, err := a.ParsedDate(); err != nil {
		return err
	}
	return nil
}

// CompareByDate orders activities ascending by parsed date. Unparseable
// dates sort before every valid one; equal dates are ordered by ID.
func CompareByDate(a, b Activity) int {
	ta, _ := a.ParsedDate()
	tb, _ := b.ParsedDate()
	if c := ta.Compare(tb); c != 0 {
		return c
	}
	return cmp.Compare(a.ID, b.ID)
}
