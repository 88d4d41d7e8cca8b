package datenum

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func utc(y int, mo time.Month, d, h, mi, s int) time.Time {
	return time.Date(y, mo, d, h, mi, s, 0, time.UTC)
}

// TestToTimeReferenceVectors pins conversions against known calendar instants.
func TestToTimeReferenceVectors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   float64
		want time.Time
	}{
		{"millennium midnight", 730486, utc(2000, time.January, 1, 0, 0, 0)},
		{"millennium noon", 730486.5, utc(2000, time.January, 1, 12, 0, 0)},
		{"quarter day", 737498.25, utc(2019, time.March, 14, 6, 0, 0)},
		{"afternoon", 737498 + (13*3600+7*60+42)/86400.0, utc(2019, time.March, 14, 13, 7, 42)},
		{"first representable day", 367, utc(1, time.January, 1, 0, 0, 0)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := ToTime(tc.in)
			require.NoError(t, err)
			require.True(t, tc.want.Equal(got), "got %s want %s", got, tc.want)
		})
	}
}

// TestToTimeRoundsSecondsIntoNextDay covers 23:59:59.6 rolling over to midnight.
func TestToTimeRoundsSecondsIntoNextDay(t *testing.T) {
	t.Parallel()

	got, err := ToTime(730486 + 86399.6/86400)
	require.NoError(t, err)
	require.Equal(t, utc(2000, time.January, 2, 0, 0, 0), got)
}

// TestToTimeRejectsUnrepresentable checks NaN, infinities and pre-epoch values.
func TestToTimeRejectsUnrepresentable(t *testing.T) {
	t.Parallel()

	for _, d := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), 0, -5, 366.99} {
		_, err := ToTime(d)
		require.ErrorIs(t, err, ErrOutOfRange, "%v", d)
	}

	require.Panics(t, func() { MustTime(math.NaN()) })
}

// TestFromTimeIsCanonical verifies the re-encoding converts back to the same instant.
func TestFromTimeIsCanonical(t *testing.T) {
	t.Parallel()

	require.InDelta(t, 730486.0, FromTime(utc(2000, time.January, 1, 0, 0, 0)), 0)
	require.InDelta(t, 730486.5, FromTime(utc(2000, time.January, 1, 12, 0, 0)), 1e-9)

	inputs := []float64{730486, 730486.123456, 737498.5470138888, 738000.999, 745123.000001}
	for _, d := range inputs {
		first := MustTime(d)
		again := MustTime(FromTime(first))
		require.True(t, first.Equal(again), "%v: %s != %s", d, first, again)
	}
}

// TestToTimes reports the failing element.
func TestToTimes(t *testing.T) {
	t.Parallel()

	got, err := ToTimes([]float64{730486, 730486.5})
	require.NoError(t, err)
	require.Len(t, got, 2)

	empty, err := ToTimes(nil)
	require.NoError(t, err)
	require.Empty(t, empty)

	_, err = ToTimes([]float64{730486, math.NaN()})
	require.ErrorIs(t, err, ErrOutOfRange)
	require.Contains(t, err.Error(), "element 1")
}
