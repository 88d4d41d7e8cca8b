package bundle_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pollynet/longterm-cali/internal/datenum"
	"github.com/pollynet/longterm-cali/internal/domain/calibration"
	"github.com/pollynet/longterm-cali/internal/matfile"
	"github.com/pollynet/longterm-cali/internal/repository/bundle"
	"github.com/pollynet/longterm-cali/internal/service/sample"
)

func writeArrays(t *testing.T, arrays []*matfile.Array) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "bundle.mat")
	require.NoError(t, sample.Write(path, true, arrays...))

	return path
}

// without drops the named top-level variables.
func without(arrays []*matfile.Array, names ...string) []*matfile.Array {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}

	var out []*matfile.Array

	for _, a := range arrays {
		if !drop[a.Name] {
			out = append(out, a)
		}
	}

	return out
}

// replace swaps in a for the variable of the same name.
func replace(arrays []*matfile.Array, a *matfile.Array) []*matfile.Array {
	return append(without(arrays, a.Name), a)
}

// TestLoad_Sample reads the synthetic bundle back.
func TestLoad_Sample(t *testing.T) {
	t.Parallel()

	start := time.Date(2019, time.January, 10, 0, 0, 0, 0, time.UTC)
	path := writeArrays(t, sample.Arrays(sample.Spec{Start: start, Days: 40, DPI: 120}))

	repo := bundle.NewFileRepository(path)
	require.Equal(t, path, repo.Path())

	b, err := repo.Load(context.Background())
	require.NoError(t, err)

	require.Equal(t, "PollyXT_DWD", b.Instrument)
	require.Equal(t, "Hohenpeissenberg", b.Location)
	require.Equal(t, "1.0", b.ProgramVersion)
	require.Equal(t, "DejaVu Sans", b.FontName)
	require.InDelta(t, 120, b.DPI, 0)
	require.Equal(t, start, b.StartTime)
	require.Equal(t, start.AddDate(0, 0, 39).Add(23*time.Hour), b.DataTime)

	require.Len(t, b.CalibrationTimes, 40)
	require.Equal(t, start.Add(21*time.Hour), b.CalibrationTimes[0])

	for _, ch := range calibration.LidarChannels() {
		require.Len(t, b.History[ch], 40)
		require.Len(t, b.Status[ch], 40)
	}

	require.NotEmpty(t, b.Logbook)
	require.True(t, b.Logbook[0].Overlap)
	require.Len(t, b.Else, 1)
	require.Equal(t, "laser maintenance", b.Else[0].Label)
	require.Equal(t, "laser maintenance", b.ElseLabel())
	require.Len(t, b.DepolTimes, len(b.DepolConst))
	require.True(t, b.YLim355.Usable())
	require.True(t, b.DepolLim532.Usable())
}

// TestLoad_NDChangeResolvedPerChannel checks the selector-column mapping.
func TestLoad_NDChangeResolvedPerChannel(t *testing.T) {
	t.Parallel()

	arrays := sample.Arrays(sample.Spec{Days: 5})

	// Two events, three columns: column 0 is 355, column 1 is shared by 387 and 532X, column 2 is 607.
	arrays = replace(arrays, matfile.NewDouble(bundle.FieldLogbookTime,
		datenum.FromTime(time.Date(2019, time.January, 11, 0, 0, 0, 0, time.UTC)),
		datenum.FromTime(time.Date(2019, time.January, 12, 0, 0, 0, 0, time.UTC)),
	))
	arrays = replace(arrays, matfile.NewMatrix(bundle.FieldNDChange, 2, 3, []float64{
		1, 0, // column 0
		0, 1, // column 1
		0, 0, // column 2
	}))
	arrays = replace(arrays, matfile.NewDouble(bundle.SelectorField(calibration.Channel355), 1, 0, 0))
	arrays = replace(arrays, matfile.NewDouble(bundle.SelectorField(calibration.Channel532), 0, 0, 0))
	arrays = replace(arrays, matfile.NewDouble(bundle.SelectorField(calibration.Channel1064)))
	arrays = replace(arrays, matfile.NewDouble(bundle.SelectorField(calibration.Channel387), 0, 1, 0))
	arrays = replace(arrays, matfile.NewDouble(bundle.SelectorField(calibration.Channel607), 0, 0, 1))
	arrays = replace(arrays, matfile.NewDouble(bundle.SelectorField(calibration.Channel532Cross), 0, 1, 0))
	// Short flag arrays leave the remaining events unflagged.
	arrays = replace(arrays, matfile.NewDouble(bundle.FieldRestart, 1))
	arrays = without(arrays, bundle.FieldOverlap)

	b, err := bundle.NewFileRepository(writeArrays(t, arrays)).Load(context.Background())
	require.NoError(t, err)
	require.Len(t, b.Logbook, 2)

	first, second := b.Logbook[0], b.Logbook[1]

	require.True(t, first.Fires(calibration.EventNDChange, calibration.Channel355))
	require.False(t, first.Fires(calibration.EventNDChange, calibration.Channel387))
	require.True(t, first.Fires(calibration.EventNDChange, calibration.Channel355, calibration.Channel387))
	require.True(t, first.Restart)
	require.False(t, first.Overlap)

	require.False(t, second.Fires(calibration.EventNDChange, calibration.Channel355))
	require.True(t, second.Fires(calibration.EventNDChange, calibration.Channel387))
	require.True(t, second.Fires(calibration.EventNDChange, calibration.Channel532Cross))
	require.False(t, second.Fires(calibration.EventNDChange, calibration.Channel607, calibration.Channel1064))
	require.False(t, second.Restart)
}

// TestLoad_OptionalFieldsMayBeAbsent treats missing optional arrays as empty.
func TestLoad_OptionalFieldsMayBeAbsent(t *testing.T) {
	t.Parallel()

	arrays := without(sample.Arrays(sample.Spec{Days: 12}),
		bundle.FieldLogbookTime, bundle.FieldNDChange, bundle.FieldElseTime, bundle.FieldElseLabel,
		bundle.FieldDepolTime532, bundle.FieldDepolConst532, bundle.FieldYLim355, bundle.FieldDepolLim532,
	)
	arrays = replace(arrays, matfile.NewDouble(bundle.FieldYLim532))

	b, err := bundle.NewFileRepository(writeArrays(t, arrays)).Load(context.Background())
	require.NoError(t, err)
	require.Empty(t, b.Logbook)
	require.Empty(t, b.Else)
	require.Empty(t, b.DepolTimes)
	require.False(t, b.YLim355.Set)
	require.False(t, b.YLim532.Set)
	require.True(t, b.YLim1064.Set)
	require.Equal(t, "else", b.ElseLabel())
}

// TestLoad_Malformed covers every way a bundle is rejected.
func TestLoad_Malformed(t *testing.T) {
	t.Parallel()

	base := sample.Arrays(sample.Spec{Days: 6})

	cases := map[string][]*matfile.Array{
		"missing dpi":          without(base, bundle.FieldDPI),
		"missing history":      without(base, bundle.HistoryField(calibration.Channel1064)),
		"missing status":       without(base, bundle.StatusField(calibration.Channel607)),
		"missing process info": without(base, bundle.FieldProcessInfo),
		"missing task field": replace(base, matfile.NewStruct(bundle.FieldTaskInfo,
			matfile.NewDouble("other", 1))),
		"zero dpi":        replace(base, matfile.NewDouble(bundle.FieldDPI, 0)),
		"text dpi":        replace(base, matfile.NewChar(bundle.FieldDPI, "150")),
		"short status":    replace(base, matfile.NewDouble(bundle.StatusField(calibration.Channel355), 2, 2)),
		"three limits":    replace(base, matfile.NewDouble(bundle.FieldYLim1064, 0, 1, 2)),
		"matrix time":     replace(base, matfile.NewMatrix(bundle.FieldLCTime, 2, 3, make([]float64, 6))),
		"pre-epoch time":  replace(base, matfile.NewDouble(bundle.FieldElseTime, 3)),
		"ragged depol":    replace(base, matfile.NewDouble(bundle.FieldDepolConst532, 1)),
		"char nd matrix":  replace(base, matfile.NewChar(bundle.FieldNDChange, "yes")),
		"numeric name": replace(base, matfile.NewStruct(bundle.FieldCampaignInfo,
			matfile.NewDouble(bundle.FieldName, 1),
			matfile.NewChar(bundle.FieldLocation, "x"),
			matfile.NewDouble(bundle.FieldStartTime, 737000))),
	}

	for name, arrays := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := bundle.NewFileRepository(writeArrays(t, arrays)).Load(context.Background())
			require.ErrorIs(t, err, bundle.ErrMalformed)
		})
	}
}

// TestLoad_NotFoundAndGarbage separates missing files from unreadable ones.
func TestLoad_NotFoundAndGarbage(t *testing.T) {
	t.Parallel()

	_, err := bundle.NewFileRepository(filepath.Join(t.TempDir(), "nope.mat")).Load(context.Background())
	require.ErrorIs(t, err, bundle.ErrNotFound)

	garbage := filepath.Join(t.TempDir(), "garbage.mat")
	require.NoError(t, os.WriteFile(garbage, []byte("definitely not a MAT file"), 0o600))

	_, err = bundle.NewFileRepository(garbage).Load(context.Background())
	require.ErrorIs(t, err, bundle.ErrMalformed)
	require.ErrorIs(t, err, matfile.ErrNotMAT)

	empty := filepath.Join(t.TempDir(), "empty.mat")
	require.NoError(t, sample.Write(empty, false))

	// A header with no variables lacks every required field.
	_, err = bundle.NewFileRepository(empty).Load(context.Background())
	require.ErrorIs(t, err, bundle.ErrMalformed)
}
