package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds figure layout settings shared by the render and sample commands.
type Config struct {
	// FigureWidth is the width of the whole figure in inches.
	FigureWidth float64 `yaml:"figure_width_in"`
	// FigureHeight is the height of the whole figure in inches.
	FigureHeight float64 `yaml:"figure_height_in"`
	// FallbackDPI is used only when a caller renders without bundle metadata.
	FallbackDPI float64 `yaml:"fallback_dpi"`
	// PointSize is the diameter of a calibration point in pixels.
	PointSize float64 `yaml:"point_size"`
	// MarkerWidth is the stroke width of event markers in pixels.
	MarkerWidth float64 `yaml:"marker_width"`
	// MarkerDash is the on/off dash pattern of event markers.
	MarkerDash []float64 `yaml:"marker_dash"`
	// TimePadDays widens the time axis on both sides of the campaign window.
	TimePadDays int `yaml:"time_pad_days"`
	// LogLevel sets the minimum level written to the console.
	LogLevel string `yaml:"log_level"`
}

const (
	// DefaultFigureWidth matches the reference 10 inch wide figure.
	DefaultFigureWidth = 10
	// DefaultFigureHeight matches the reference 12 inch tall figure.
	DefaultFigureHeight = 12
	// DefaultDPI is used when neither the bundle nor the settings give one.
	DefaultDPI = 80
	// DefaultPointSize is the calibration point diameter.
	DefaultPointSize = 3
	// DefaultMarkerWidth is the event marker stroke width.
	DefaultMarkerWidth = 1
	// DefaultTimePadDays is the margin around [start, dataTime].
	DefaultTimePadDays = 2

	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o644
	// DefaultDirPermissions is used when the output folder has to be created.
	DefaultDirPermissions = 0o755
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNegative is returned for sizes that cannot be negative.
	errNegative = errors.New("value must not be negative")
	// errBadDash is returned for dash patterns that cannot be drawn.
	errBadDash = errors.New("marker dash needs an even number of positive lengths")
)

// Default returns a validated configuration with every default applied.
func Default() *Config {
	cfg := new(Config)
	_ = Validate(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates it.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate rejects impossible values and fills zero values with defaults.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	for name, v := range map[string]float64{
		"figure_width_in":  cfg.FigureWidth,
		"figure_height_in": cfg.FigureHeight,
		"fallback_dpi":     cfg.FallbackDPI,
		"point_size":       cfg.PointSize,
		"marker_width":     cfg.MarkerWidth,
	} {
		if v < 0 {
			return fmt.Errorf("%s: %w", name, errNegative)
		}
	}

	if cfg.TimePadDays < 0 {
		return fmt.Errorf("time_pad_days: %w", errNegative)
	}

	if len(cfg.MarkerDash)%2 != 0 {
		return errBadDash
	}

	for _, d := range cfg.MarkerDash {
		if d <= 0 {
			return errBadDash
		}
	}

	if cfg.FigureWidth == 0 {
		cfg.FigureWidth = DefaultFigureWidth
	}

	if cfg.FigureHeight == 0 {
		cfg.FigureHeight = DefaultFigureHeight
	}

	if cfg.FallbackDPI == 0 {
		cfg.FallbackDPI = DefaultDPI
	}

	if cfg.PointSize == 0 {
		cfg.PointSize = DefaultPointSize
	}

	if cfg.MarkerWidth == 0 {
		cfg.MarkerWidth = DefaultMarkerWidth
	}

	if len(cfg.MarkerDash) == 0 {
		cfg.MarkerDash = []float64{4, 3}
	}

	if cfg.TimePadDays == 0 {
		cfg.TimePadDays = DefaultTimePadDays
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	return nil
}
