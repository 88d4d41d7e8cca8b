package sample

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pollynet/longterm-cali/internal/config"
	"github.com/pollynet/longterm-cali/internal/logger"
	"github.com/pollynet/longterm-cali/internal/matfile"
)

// Options controls the sample command.
type Options struct {
	// OutputPath is the MAT file to create.
	OutputPath string
	// Spec describes the generated history.
	Spec Spec
	// Uncompressed disables zlib compression of the variables.
	Uncompressed bool
}

// Write encodes arrays into the MAT file at path.
func Write(path string, compress bool, arrays ...*matfile.Array) error {
	var buf bytes.Buffer
	if err := matfile.Encode(&buf, matfile.EncodeOptions{Compress: compress}, arrays...); err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), buf.Bytes(), config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write bundle: %w", err)
	}

	return nil
}

// Run writes the synthetic bundle described by opts.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "sample")

	spec := opts.Spec.withDefaults()

	if err := Write(opts.OutputPath, !opts.Uncompressed, Arrays(spec)...); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Sample bundle written",
		"path", opts.OutputPath,
		"days", spec.Days,
		"start", spec.Start.Format("2006-01-02"),
	)

	return nil
}
