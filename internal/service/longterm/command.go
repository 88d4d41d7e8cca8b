package longterm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pollynet/longterm-cali/internal/config"
	"github.com/pollynet/longterm-cali/internal/logger"
	"github.com/pollynet/longterm-cali/internal/render"
	"github.com/pollynet/longterm-cali/internal/repository/bundle"
)

// Options controls one rendering run.
type Options struct {
	// InputPath is the MAT bundle to read.
	InputPath string
	// OutputDir receives the figure; it is created when missing.
	OutputDir string
	// ConfigPath is an optional settings YAML file.
	ConfigPath string
	// LogLevel overrides the level from the settings file when set.
	LogLevel string
}

// Run renders the bundle at opts.InputPath and returns the written figure path.
// Nothing is written unless the figure was rendered completely.
func Run(ctx context.Context, opts *Options) (string, error) {
	ctx = logger.WithName(ctx, "longterm-cali")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return "", fmt.Errorf("load configuration: %w", err)
	}

	applyLogLevel(ctx, opts.LogLevel, cfg.LogLevel)

	b, err := bundle.NewFileRepository(opts.InputPath).Load(ctx)
	if err != nil {
		if errors.Is(err, bundle.ErrNotFound) {
			logger.Errorf(ctx, "%s does not exist.", opts.InputPath)
		} else {
			logger.Errorf(ctx, "Failed reading %s: %v", opts.InputPath, err)
		}

		return "", err
	}

	renderer := render.NewRenderer(render.OptionsFromConfig(cfg))

	logger.DebugKV(ctx, "Rendering figure",
		"instrument", b.Instrument,
		"location", b.Location,
		"dpi", renderer.DPI(b),
		"font", b.FontName,
	)

	img, err := renderer.Render(b)
	if err != nil {
		return "", fmt.Errorf("render figure: %w", err)
	}

	data, err := render.Encode(img)
	if err != nil {
		return "", err
	}

	path, err := writeFile(opts.OutputDir, b.OutputName(), data)
	if err != nil {
		return "", err
	}

	logger.InfoKV(ctx, "Figure written", "path", path)

	return path, nil
}

// applyLogLevel sets the first valid level of candidates.
func applyLogLevel(ctx context.Context, candidates ...string) {
	for _, s := range candidates {
		if s == "" {
			continue
		}

		level, ok := logger.ParseLogLevel(s)
		if !ok {
			logger.Warnf(ctx, "Unknown log level %q, keeping %s", s, logger.Level())
			continue
		}

		logger.SetLevel(level)

		return
	}
}

// writeFile stores data as dir/name through a temporary file in dir, so the
// target either holds the whole figure or does not change.
func writeFile(dir, name string, data []byte) (string, error) {
	dir = filepath.Clean(dir)

	if err := os.MkdirAll(dir, config.DefaultDirPermissions); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("create temporary file: %w", err)
	}

	tmpPath := tmp.Name()

	cleanup := func(cause error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)

		return "", cause
	}

	if _, err = tmp.Write(data); err != nil {
		return cleanup(fmt.Errorf("write figure: %w", err))
	}

	if err = tmp.Chmod(config.DefaultFilePermissions); err != nil {
		return cleanup(fmt.Errorf("set figure permissions: %w", err))
	}

	if err = tmp.Close(); err != nil {
		return cleanup(fmt.Errorf("close figure: %w", err))
	}

	path := filepath.Join(dir, name)
	if err = os.Rename(tmpPath, path); err != nil {
		return cleanup(fmt.Errorf("move figure into place: %w", err))
	}

	return path, nil
}
