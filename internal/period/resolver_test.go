package period

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLoc = LoadLocation(DefaultTimezone)

// 2025-10-16 is a Thursday.
func fixedResolver() *Resolver {
	now := time.Date(2025, time.October, 16, 10, 30, 0, 0, testLoc)
	return NewResolver(testLoc).WithClock(func() time.Time { return now })
}

func TestResolver_Month(t *testing.T) {
	r := fixedResolver()

	w, err := r.Month("2025-02")
	require.NoError(t, err)

	assert.Equal(t, "2025-02", w.Text)
	assert.Equal(t, time.Date(2025, time.February, 1, 0, 0, 0, 0, testLoc), w.Start)
	assert.Equal(t, time.Date(2025, time.February, 28, 23, 59, 59, 0, testLoc), w.End)
	assert.Equal(t, GranularityMonth, w.Granularity)
	assert.Equal(t, time.Date(2025, time.February, 28, 0, 0, 0, 0, testLoc), w.ReferenceDate())

	leap, err := r.Month("2024-02")
	require.NoError(t, err)
	assert.Equal(t, 29, leap.End.Day())

	dec, err := r.Month("2025-12")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.December, 31, 23, 59, 59, 0, testLoc), dec.End)
}

func TestResolver_Month_Invalid(t *testing.T) {
	r := fixedResolver()

	for _, input := range []string{"2025-13", "2025-00", "2025/10", "25-10", "octubre", ""} {
		t.Run(input, func(t *testing.T) {
			_, err := r.Month(input)
			require.Error(t, err)

			var vErr *ValidationError
			assert.True(t, errors.As(err, &vErr))
			assert.True(t, errors.Is(err, ErrInvalidPeriod))
			assert.Equal(t, "month", vErr.Field)
		})
	}
}

func TestResolver_Explicit(t *testing.T) {
	r := fixedResolver()

	t.Run("dates default the label to YYYY-MM", func(t *testing.T) {
		w, err := r.Explicit("2025-06-13", "2025-06-20", "")
		require.NoError(t, err)
		assert.Equal(t, "2025-06", w.Text)
		assert.Equal(t, time.Date(2025, time.June, 13, 0, 0, 0, 0, testLoc), w.Start)
		assert.Equal(t, time.Date(2025, time.June, 20, 0, 0, 0, 0, testLoc), w.End)
		assert.Equal(t, SourceParam, w.Source)
	})

	t.Run("RFC3339 is converted into the resolver zone", func(t *testing.T) {
		w, err := r.Explicit("2025-06-01T06:00:00Z", "2025-06-30T23:59:59-06:00", "junio")
		require.NoError(t, err)
		assert.Equal(t, "junio", w.Text)
		assert.True(t, w.Start.Equal(time.Date(2025, time.June, 1, 0, 0, 0, 0, testLoc)))
		assert.Equal(t, 1, w.Start.Day())
		assert.Equal(t, 30, w.End.Day())
	})

	t.Run("start after end", func(t *testing.T) {
		_, err := r.Explicit("2025-06-20", "2025-06-13", "")
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("unparsable start", func(t *testing.T) {
		_, err := r.Explicit("yesterday", "2025-06-13", "")
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "start", vErr.Field)
	})

	t.Run("missing end", func(t *testing.T) {
		_, err := r.Resolve(Request{Start: "2025-06-13"})
		var vErr *ValidationError
		require.True(t, errors.As(err, &vErr))
		assert.Equal(t, "end", vErr.Field)
	})
}

func TestResolver_Resolve_Precedence(t *testing.T) {
	r := fixedResolver()

	t.Run("explicit wins over month", func(t *testing.T) {
		w, err := r.Resolve(Request{Start: "2025-01-01", End: "2025-01-15", Month: "2025-03"})
		require.NoError(t, err)
		assert.Equal(t, time.January, w.Start.Month())
		assert.Equal(t, SourceParam, w.Source)
	})

	t.Run("month wins over natural text", func(t *testing.T) {
		w, err := r.Resolve(Request{Month: "2025-03", Natural: "agosto 2024"})
		require.NoError(t, err)
		assert.Equal(t, "2025-03", w.Text)
	})

	t.Run("natural text", func(t *testing.T) {
		w, err := r.Resolve(Request{Natural: "ventas de agosto 2024"})
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, time.August, 1, 0, 0, 0, 0, testLoc), w.Start)
		assert.Equal(t, SourceNatural, w.Source)
	})

	t.Run("nothing resolves to current month", func(t *testing.T) {
		w, err := r.Resolve(Request{})
		require.NoError(t, err)
		assert.Equal(t, "2025-10", w.Text)
		assert.Equal(t, time.Date(2025, time.October, 1, 0, 0, 0, 0, testLoc), w.Start)
		assert.Equal(t, time.Date(2025, time.October, 31, 23, 59, 59, 0, testLoc), w.End)
		assert.Equal(t, SourceDefault, w.Source)
	})

	t.Run("unrecognised natural text falls to current month", func(t *testing.T) {
		w, err := r.Resolve(Request{Natural: "cuanto nos deben"})
		require.NoError(t, err)
		assert.Equal(t, SourceDefault, w.Source)
	})

	t.Run("malformed month is reported, not corrected", func(t *testing.T) {
		_, err := r.Resolve(Request{Month: "2025-13"})
		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})
}

func TestResolver_ResolveOrCurrent(t *testing.T) {
	r := fixedResolver()

	w, err := r.ResolveOrCurrent(Request{Month: "2025-99"})
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	assert.Equal(t, "2025-10", w.Text)

	w, err = r.ResolveOrCurrent(Request{Month: "2025-09"})
	require.NoError(t, err)
	assert.Equal(t, "2025-09", w.Text)
}

func TestWindow_YearMonth(t *testing.T) {
	w, err := fixedResolver().Month("2025-10")
	require.NoError(t, err)
	assert.Equal(t, "2025-10", w.YearMonth())
}

func TestRequest_IsZero(t *testing.T) {
	assert.True(t, Request{}.IsZero())
	assert.True(t, Request{Natural: "   "}.IsZero())
	assert.True(t, Request{AsOf: "2025-10-15"}.IsZero())
	assert.False(t, Request{Month: "2025-10"}.IsZero())
	assert.False(t, Request{End: "2025-10-15"}.IsZero())
}

func TestResolver_EmptyRequestKeepsAsOf(t *testing.T) {
	w, err := fixedResolver().Resolve(Request{Natural: "  ", AsOf: "2025-10-15"})
	require.NoError(t, err)

	assert.Equal(t, SourceDefault, w.Source)
	assert.Equal(t, GranularityMonth, w.Granularity)
	require.NotNil(t, w.AsOf)
	assert.Equal(t, 15, w.ReferenceDate().Day())
}

func TestWindow_ContainsDate(t *testing.T) {
	r := fixedResolver()
	w, err := r.Month("2025-10")
	require.NoError(t, err)

	// a calendar date stored as UTC midnight is still the first of the month
	assert.True(t, w.ContainsDate(time.Date(2025, time.October, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.ContainsDate(time.Date(2025, time.October, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, w.ContainsDate(time.Date(2025, time.September, 30, 0, 0, 0, 0, time.UTC)))
	assert.False(t, w.ContainsDate(time.Date(2025, time.November, 1, 0, 0, 0, 0, time.UTC)))
}

func TestResolver_AsOf(t *testing.T) {
	r := fixedResolver()

	w, err := r.Resolve(Request{Month: "2025-09", AsOf: "2025-10-05"})
	require.NoError(t, err)
	require.NotNil(t, w.AsOf)
	assert.Equal(t, "2025-09", w.Text)
	assert.Equal(t, time.Date(2025, time.October, 5, 0, 0, 0, 0, testLoc), w.ReferenceDate())

	_, err = r.Resolve(Request{Month: "2025-09", AsOf: "5 de octubre"})
	assert.ErrorIs(t, err, ErrInvalidPeriod)

	w, err = r.Resolve(Request{Month: "2025-09"})
	require.NoError(t, err)
	assert.Nil(t, w.AsOf)
	assert.Equal(t, time.Date(2025, time.September, 30, 0, 0, 0, 0, testLoc), w.ReferenceDate())
}
