package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrMissingInput      = errors.New("not enough activity days for the rendered window")
	ErrMalformedDay      = errors.New("malformed activity day")
	ErrNonContiguous     = errors.New("activity days are not contiguous")
	ErrInvalidWindowSize = errors.New("invalid window size (must be 6 or 7)")
)

const (
	WindowSix     = 6
	WindowSeven   = 7
	DefaultWindow = WindowSeven
	DateLayout    = "2006-01-02"
)

var weekdayNames = [7]string{"SUN", "MON", "TUE", "WED", "THU", "FRI", "SAT"}

// ActivityDay is one point of the contribution series.
type ActivityDay struct {
	Date    time.Time `json:"date" db:"day"`
	Weekday int       `json:"weekday" db:"weekday"`
	Count   int       `json:"count" db:"count"`
}

// Calendar is a full series as returned by a source.
type Calendar struct {
	Username  string        `json:"username"`
	Total     int           `json:"total"`
	Days      []ActivityDay `json:"days"`
	FetchedAt time.Time     `json:"fetched_at"`
}

type Totals struct {
	Total int
	Today int
}

func NewActivityDay(date time.Time, count int) ActivityDay {
	d := truncateDay(date)
	return ActivityDay{
		Date:    d,
		Weekday: int(d.Weekday()),
		Count:   count,
	}
}

// WeekdayName returns the three letter label drawn on the city.
func (d ActivityDay) WeekdayName() string {
	if d.Weekday < 0 || d.Weekday > 6 {
		return "???"
	}
	return weekdayNames[d.Weekday]
}

func (d ActivityDay) Validate() error {
	if d.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrMalformedDay)
	}
	if d.Weekday < 0 || d.Weekday > 6 {
		return fmt.Errorf("%w: weekday %d out of range", ErrMalformedDay, d.Weekday)
	}
	if int(d.Date.Weekday()) != d.Weekday {
		return fmt.Errorf("%w: weekday %d does not match %s", ErrMalformedDay, d.Weekday, d.Date.Format(DateLayout))
	}
	if d.Count < 0 {
		return fmt.Errorf("%w: count cannot be negative", ErrMalformedDay)
	}
	return nil
}

func ValidWindowSize(size int) bool {
	return size == WindowSix || size == WindowSeven
}

// Window returns the trailing size days of the series.
func Window(days []ActivityDay, size int) ([]ActivityDay, error) {
	if size <= 0 {
		return nil, ErrInvalidWindowSize
	}
	if len(days) < size {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrMissingInput, len(days), size)
	}
	out := make([]ActivityDay, size)
	copy(out, days[len(days)-size:])
	return out, nil
}

// PadWindow behaves like Window but prepends zero-count days when the series
// is too short. An empty series is still an error since there is no anchor date.
func PadWindow(days []ActivityDay, size int) ([]ActivityDay, error) {
	if size <= 0 {
		return nil, ErrInvalidWindowSize
	}
	if len(days) == 0 {
		return nil, fmt.Errorf("%w: empty series", ErrMissingInput)
	}
	if len(days) >= size {
		return Window(days, size)
	}

	missing := size - len(days)
	first := truncateDay(days[0].Date)

	out := make([]ActivityDay, 0, size)
	for i := missing; i > 0; i-- {
		out = append(out, NewActivityDay(first.AddDate(0, 0, -i), 0))
	}
	return append(out, days...), nil
}

// ValidateWindow checks every day and that dates advance one calendar day at a time.
func ValidateWindow(days []ActivityDay) error {
	if len(days) == 0 {
		return ErrMissingInput
	}
	for i, d := range days {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("day %d: %w", i, err)
		}
		if i == 0 {
			continue
		}
		want := truncateDay(days[i-1].Date).AddDate(0, 0, 1)
		if !truncateDay(d.Date).Equal(want) {
			return fmt.Errorf("%w: %s follows %s", ErrNonContiguous,
				d.Date.Format(DateLayout), days[i-1].Date.Format(DateLayout))
		}
	}
	return nil
}

// Validate checks a full calendar before it is stored or rendered.
func (c *Calendar) Validate() error {
	if c == nil {
		return ErrMissingInput
	}
	if c.Username == "" {
		return fmt.Errorf("%w: username is required", ErrInvalidUsername)
	}
	if c.Total < 0 {
		return fmt.Errorf("%w: total cannot be negative", ErrMalformedDay)
	}
	return ValidateWindow(c.Days)
}

// TotalsFor takes "today" from the last day of the window.
func TotalsFor(total int, window []ActivityDay) Totals {
	t := Totals{Total: total}
	if len(window) > 0 {
		t.Today = window[len(window)-1].Count
	}
	return t
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
