package longterm_test

import (
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pollynet/longterm-cali/internal/logger"
	"github.com/pollynet/longterm-cali/internal/matfile"
	"github.com/pollynet/longterm-cali/internal/repository/bundle"
	"github.com/pollynet/longterm-cali/internal/service/longterm"
	"github.com/pollynet/longterm-cali/internal/service/sample"
)

func observed() (context.Context, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)

	return logger.ToContext(context.Background(), zap.New(core).Sugar()), logs
}

func messages(logs *observer.ObservedLogs) []string {
	var out []string
	for _, e := range logs.All() {
		out = append(out, e.Message)
	}

	return out
}

// TestRunWritesFigure renders a synthetic bundle into a directory that does not exist yet.
func TestRunWritesFigure(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "cali.mat")
	spec := sample.Spec{Start: time.Date(2019, time.January, 10, 0, 0, 0, 0, time.UTC), Days: 60, DPI: 40}
	require.NoError(t, sample.Write(input, true, sample.Arrays(spec)...))

	ctx, logs := observed()
	out := filepath.Join(dir, "pics", "2019")

	path, err := longterm.Run(ctx, &longterm.Options{InputPath: input, OutputDir: out})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(out, "20190310_long_term_cali_results.png"), path)

	f, err := os.Open(path)
	require.NoError(t, err)

	defer func() { _ = f.Close() }()

	img, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, 400, img.Bounds().Dx())
	require.Equal(t, 480, img.Bounds().Dy())

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	require.Contains(t, messages(logs), "Figure written")
}

// TestRunMissingInput reports the missing file and writes nothing.
func TestRunMissingInput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "absent.mat")
	out := filepath.Join(dir, "out")

	ctx, logs := observed()

	_, err := longterm.Run(ctx, &longterm.Options{InputPath: input, OutputDir: out})
	require.ErrorIs(t, err, bundle.ErrNotFound)
	require.Contains(t, messages(logs), input+" does not exist.")

	_, err = os.Stat(out)
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestRunMalformedInput reports the cause and leaves the output directory untouched.
func TestRunMalformedInput(t *testing.T) {
	t.Parallel()

	var withoutDPI []*matfile.Array

	for _, a := range sample.Arrays(sample.Spec{}) {
		if a.Name != bundle.FieldDPI {
			withoutDPI = append(withoutDPI, a)
		}
	}

	cases := map[string]func(path string) error{
		"garbage": func(path string) error {
			return os.WriteFile(path, []byte("not a bundle"), 0o600)
		},
		"missing required field": func(path string) error {
			return sample.Write(path, true, withoutDPI...)
		},
	}

	for name, write := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			dir := t.TempDir()
			input := filepath.Join(dir, "broken.mat")
			require.NoError(t, write(input))

			out := filepath.Join(dir, "out")
			require.NoError(t, os.Mkdir(out, 0o755))

			ctx, logs := observed()

			_, err := longterm.Run(ctx, &longterm.Options{InputPath: input, OutputDir: out})
			require.ErrorIs(t, err, bundle.ErrMalformed)

			var found bool

			for _, m := range messages(logs) {
				if strings.HasPrefix(m, "Failed reading "+input) {
					found = true
				}
			}

			require.True(t, found)

			entries, err := os.ReadDir(out)
			require.NoError(t, err)
			require.Empty(t, entries)
		})
	}
}

// TestRunBadConfig fails before touching the input.
func TestRunBadConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := longterm.Run(context.Background(), &longterm.Options{
		InputPath:  filepath.Join(dir, "cali.mat"),
		OutputDir:  dir,
		ConfigPath: filepath.Join(dir, "missing.yaml"),
	})
	require.ErrorContains(t, err, "load configuration")
}
