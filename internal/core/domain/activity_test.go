package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna11/ReadMe3D/internal/core/domain"
)

func series(start time.Time, counts ...int) []domain.ActivityDay {
	days := make([]domain.ActivityDay, 0, len(counts))
	for i, c := range counts {
		days = append(days, domain.NewActivityDay(start.AddDate(0, 0, i), c))
	}
	return days
}

func TestNewActivityDay(t *testing.T) {
	d := domain.NewActivityDay(time.Date(2024, 1, 7, 15, 30, 0, 0, time.UTC), 4)

	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC), d.Date)
	assert.Equal(t, 0, d.Weekday)
	assert.Equal(t, "SUN", d.WeekdayName())
	assert.NoError(t, d.Validate())
}

func TestActivityDay_Validate(t *testing.T) {
	sunday := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		day  domain.ActivityDay
	}{
		{"Zero date", domain.ActivityDay{Weekday: 0, Count: 1}},
		{"Weekday out of range", domain.ActivityDay{Date: sunday, Weekday: 7}},
		{"Weekday mismatch", domain.ActivityDay{Date: sunday, Weekday: 3}},
		{"Negative count", domain.ActivityDay{Date: sunday, Weekday: 0, Count: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.day.Validate(), domain.ErrMalformedDay)
		})
	}
}

func TestWindow(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	full := series(start, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	t.Run("Trailing seven days", func(t *testing.T) {
		w, err := domain.Window(full, domain.WindowSeven)
		require.NoError(t, err)
		require.Len(t, w, 7)
		assert.Equal(t, full[3:], w)
	})

	t.Run("Trailing six days", func(t *testing.T) {
		w, err := domain.Window(full, domain.WindowSix)
		require.NoError(t, err)
		require.Len(t, w, 6)
		assert.Equal(t, 5, w[0].Count)
		assert.Equal(t, 10, w[5].Count)
	})

	t.Run("Result does not alias the input", func(t *testing.T) {
		w, err := domain.Window(full, domain.WindowSix)
		require.NoError(t, err)
		w[0].Count = 99
		assert.Equal(t, 5, full[4].Count)
	})

	t.Run("Too few days", func(t *testing.T) {
		_, err := domain.Window(full[:3], domain.WindowSeven)
		assert.ErrorIs(t, err, domain.ErrMissingInput)
	})

	t.Run("Invalid size", func(t *testing.T) {
		_, err := domain.Window(full, 0)
		assert.ErrorIs(t, err, domain.ErrInvalidWindowSize)
	})
}

func TestPadWindow(t *testing.T) {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("Pads earlier days with zero counts", func(t *testing.T) {
		w, err := domain.PadWindow(series(start, 5, 6), domain.WindowSeven)
		require.NoError(t, err)
		require.Len(t, w, 7)

		assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), w[0].Date)
		for _, d := range w[:5] {
			assert.Equal(t, 0, d.Count)
		}
		assert.Equal(t, 6, w[6].Count)
		assert.NoError(t, domain.ValidateWindow(w))
	})

	t.Run("Long series is just windowed", func(t *testing.T) {
		w, err := domain.PadWindow(series(start, 1, 2, 3, 4, 5, 6, 7, 8), domain.WindowSix)
		require.NoError(t, err)
		assert.Equal(t, 3, w[0].Count)
	})

	t.Run("Empty series fails", func(t *testing.T) {
		_, err := domain.PadWindow(nil, domain.WindowSeven)
		assert.ErrorIs(t, err, domain.ErrMissingInput)
	})
}

func TestValidateWindow(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	t.Run("Contiguous series passes", func(t *testing.T) {
		assert.NoError(t, domain.ValidateWindow(series(start, 0, 1, 2)))
	})

	t.Run("Gap is rejected", func(t *testing.T) {
		days := series(start, 0, 1, 2)
		days[2] = domain.NewActivityDay(start.AddDate(0, 0, 5), 2)
		assert.ErrorIs(t, domain.ValidateWindow(days), domain.ErrNonContiguous)
	})

	t.Run("Malformed day is rejected", func(t *testing.T) {
		days := series(start, 0, 1, 2)
		days[1].Count = -4
		assert.ErrorIs(t, domain.ValidateWindow(days), domain.ErrMalformedDay)
	})

	t.Run("Empty window is missing input", func(t *testing.T) {
		assert.ErrorIs(t, domain.ValidateWindow(nil), domain.ErrMissingInput)
	})
}

func TestTotalsFor(t *testing.T) {
	w := series(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 3, 0, 12)

	totals := domain.TotalsFor(23, w)
	assert.Equal(t, 23, totals.Total)
	assert.Equal(t, 12, totals.Today)

	assert.Equal(t, 0, domain.TotalsFor(5, nil).Today)
}

func TestCalendar_Validate(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	valid := &domain.Calendar{Username: "octocat", Total: 4, Days: series(start, 1, 3)}
	assert.NoError(t, valid.Validate())

	var missing *domain.Calendar
	assert.ErrorIs(t, missing.Validate(), domain.ErrMissingInput)

	noUser := &domain.Calendar{Days: series(start, 1)}
	assert.ErrorIs(t, noUser.Validate(), domain.ErrInvalidUsername)

	negative := &domain.Calendar{Username: "octocat", Total: -1, Days: series(start, 1)}
	assert.ErrorIs(t, negative.Validate(), domain.ErrMalformedDay)

	gap := &domain.Calendar{Username: "octocat", Days: []domain.ActivityDay{
		domain.NewActivityDay(start, 1),
		domain.NewActivityDay(start.AddDate(0, 0, 2), 1),
	}}
	assert.ErrorIs(t, gap.Validate(), domain.ErrNonContiguous)
}

func TestNormalizeUsername(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"Octocat", "octocat", false},
		{"  mna11 ", "mna11", false},
		{"a-b-c", "a-b-c", false},
		{"-leading", "", true},
		{"trailing-", "", true},
		{"double--hyphen", "", true},
		{"under_score", "", true},
		{"", "", true},
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.NormalizeUsername(tt.in)
			if tt.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidUsername)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
