package bundle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pollynet/longterm-cali/internal/datenum"
	"github.com/pollynet/longterm-cali/internal/domain/calibration"
	"github.com/pollynet/longterm-cali/internal/logger"
	"github.com/pollynet/longterm-cali/internal/matfile"
)

// Repository loads calibration bundles.
type Repository interface {
	Load(ctx context.Context) (*calibration.Bundle, error)
}

// FileRepository reads a bundle from a MAT file on disk.
type FileRepository struct {
	// path is the filesystem location of the MAT file.
	path string
}

var (
	// ErrNotFound is returned when the input file does not exist.
	ErrNotFound = errors.New("input does not exist")
	// ErrMalformed is returned when the file cannot be turned into a bundle.
	ErrMalformed = errors.New("malformed input")

	errMissing = errors.New("missing required field")
	errShape   = errors.New("unexpected shape")
	errValue   = errors.New("invalid value")
)

// NewFileRepository creates a repository reading the MAT file at path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Path returns the file the repository reads.
func (r *FileRepository) Path() string {
	return r.path
}

// Load reads and validates the bundle.
func (r *FileRepository) Load(ctx context.Context) (*calibration.Bundle, error) {
	if _, err := os.Stat(r.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("stat input: %w", err)
	}

	f, err := matfile.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	b, err := decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	logger.DebugKV(ctx, "Bundle loaded",
		"path", r.path,
		"instrument", b.Instrument,
		"samples", len(b.CalibrationTimes),
		"logbook_events", len(b.Logbook),
		"else_events", len(b.Else),
		"depol_samples", len(b.DepolTimes),
		"font", b.FontName,
	)

	return b, nil
}

//nolint:cyclop,funlen // Straight-line field mapping.
func decode(f *matfile.File) (*calibration.Bundle, error) {
	r := reader{f: f}

	meta, err := r.metadata()
	if err != nil {
		return nil, err
	}

	b := &calibration.Bundle{
		Metadata: meta,
		History:  make(map[calibration.Channel][]float64),
		Status:   make(map[calibration.Channel][]float64),
	}

	if b.CalibrationTimes, err = r.times(FieldLCTime, true); err != nil {
		return nil, err
	}

	for _, ch := range calibration.LidarChannels() {
		if b.History[ch], err = r.numbers(HistoryField(ch), true); err != nil {
			return nil, err
		}

		if b.Status[ch], err = r.numbers(StatusField(ch), true); err != nil {
			return nil, err
		}
	}

	if b.Logbook, err = r.logbook(); err != nil {
		return nil, err
	}

	if b.Else, b.ElseLegend, err = r.elseEvents(); err != nil {
		return nil, err
	}

	if b.DepolTimes, err = r.times(FieldDepolTime532, false); err != nil {
		return nil, err
	}

	if b.DepolConst, err = r.numbers(FieldDepolConst532, false); err != nil {
		return nil, err
	}

	limits := map[string]*calibration.Limits{
		FieldYLim355:     &b.YLim355,
		FieldYLim532:     &b.YLim532,
		FieldYLim1064:    &b.YLim1064,
		FieldDepolLim532: &b.DepolLim532,
	}
	for name, dst := range limits {
		if *dst, err = r.limits(name); err != nil {
			return nil, err
		}
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}

	return b, nil
}

type reader struct {
	f *matfile.File
}

func (r reader) array(name string, required bool) (*matfile.Array, error) {
	a := r.f.Var(name)
	if a == nil && required {
		return nil, fmt.Errorf("%w: %s", errMissing, name)
	}

	return a, nil
}

// numbers returns a numeric vector; absent optional and empty arrays are zero-length.
func (r reader) numbers(name string, required bool) ([]float64, error) {
	a, err := r.array(name, required)
	if err != nil || a.IsEmpty() {
		return nil, err
	}

	if a.Rows() != 1 && a.Cols() != 1 {
		return nil, fmt.Errorf("%w: %s is %v, want a vector", errShape, name, a.Dims)
	}

	values, err := a.Float64s()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return values, nil
}

func (r reader) times(name string, required bool) ([]time.Time, error) {
	values, err := r.numbers(name, required)
	if err != nil {
		return nil, err
	}

	times, err := datenum.ToTimes(values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	return times, nil
}

func (r reader) flags(name string) ([]bool, error) {
	values, err := r.numbers(name, false)
	if err != nil {
		return nil, err
	}

	out := make([]bool, len(values))
	for i, v := range values {
		out[i] = v != 0
	}

	return out, nil
}

func (r reader) limits(name string) (calibration.Limits, error) {
	values, err := r.numbers(name, false)
	if err != nil {
		return calibration.Limits{}, err
	}

	switch len(values) {
	case 0:
		return calibration.Limits{}, nil
	case 2:
		return calibration.NewLimits(values[0], values[1]), nil
	default:
		return calibration.Limits{}, fmt.Errorf("%w: %s has %d elements, want 2", errShape, name, len(values))
	}
}

func (r reader) metadata() (calibration.Metadata, error) {
	var (
		meta calibration.Metadata
		err  error
	)

	dpi, err := r.array(FieldDPI, true)
	if err != nil {
		return meta, err
	}

	if meta.DPI, err = dpi.Scalar(); err != nil {
		return meta, fmt.Errorf("%s: %w", FieldDPI, err)
	}

	if meta.DPI <= 0 {
		return meta, fmt.Errorf("%w: %s = %v", errValue, FieldDPI, meta.DPI)
	}

	texts := []struct {
		dst           *string
		parent, field string
	}{
		{&meta.Instrument, FieldCampaignInfo, FieldName},
		{&meta.Location, FieldCampaignInfo, FieldLocation},
		{&meta.ProgramVersion, FieldProcessInfo, FieldProgramVersion},
		{&meta.FontName, FieldProcessInfo, FieldFontName},
	}
	for _, t := range texts {
		a, err := r.field(t.parent, t.field)
		if err != nil {
			return meta, err
		}

		if *t.dst, err = text(a); err != nil {
			return meta, fmt.Errorf("%s.%s: %w", t.parent, t.field, err)
		}
	}

	stamps := []struct {
		dst           *time.Time
		parent, field string
	}{
		{&meta.StartTime, FieldCampaignInfo, FieldStartTime},
		{&meta.DataTime, FieldTaskInfo, FieldDataTime},
	}
	for _, s := range stamps {
		a, err := r.field(s.parent, s.field)
		if err != nil {
			return meta, err
		}

		d, err := a.Scalar()
		if err != nil {
			return meta, fmt.Errorf("%s.%s: %w", s.parent, s.field, err)
		}

		if *s.dst, err = datenum.ToTime(d); err != nil {
			return meta, fmt.Errorf("%s.%s: %w", s.parent, s.field, err)
		}
	}

	return meta, nil
}

func (r reader) field(parent, name string) (*matfile.Array, error) {
	s, err := r.array(parent, true)
	if err != nil {
		return nil, err
	}

	a, err := s.Field(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s.%s: %w", errMissing, parent, name, err)
	}

	return a, nil
}

// text reads a char array, or the first cell of a cell array of chars.
func text(a *matfile.Array) (string, error) {
	if a.Class == matfile.ClassCell {
		cells, err := a.Cells()
		if err != nil || len(cells) == 0 {
			return "", err
		}

		return text(cells[0])
	}

	if a.IsEmpty() {
		return "", nil
	}

	return a.String()
}

// labels reads a cell array of chars or the rows of a char matrix.
func labels(a *matfile.Array) ([]string, error) {
	if a == nil || a.IsEmpty() {
		return nil, nil
	}

	if a.Class == matfile.ClassChar {
		return a.Strings()
	}

	cells, err := a.Cells()
	if err != nil {
		return nil, err
	}

	out := make([]string, len(cells))
	for i, c := range cells {
		if out[i], err = text(c); err != nil {
			return nil, fmt.Errorf("cell %d: %w", i, err)
		}
	}

	return out, nil
}

func (r reader) elseEvents() ([]calibration.AuxEvent, string, error) {
	times, err := r.times(FieldElseTime, false)
	if err != nil {
		return nil, "", err
	}

	names, err := labels(r.f.Var(FieldElseLabel))
	if err != nil {
		return nil, "", fmt.Errorf("%s: %w", FieldElseLabel, err)
	}

	events := make([]calibration.AuxEvent, len(times))
	for i, t := range times {
		events[i].Time = t
		if i < len(names) {
			events[i].Label = names[i]
		}
	}

	var legend string
	if len(names) > 0 {
		legend = names[0]
	}

	return events, legend, nil
}

//nolint:cyclop // One flag array per event kind.
func (r reader) logbook() ([]calibration.LogbookEvent, error) {
	times, err := r.times(FieldLogbookTime, false)
	if err != nil {
		return nil, err
	}

	flagArrays := make(map[string][]bool)
	for _, name := range []string{FieldOverlap, FieldWindowWipe, FieldFlashlamps, FieldPulsePower, FieldRestart} {
		if flagArrays[name], err = r.flags(name); err != nil {
			return nil, err
		}
	}

	nd, err := r.ndResolver()
	if err != nil {
		return nil, err
	}

	at := func(name string, i int) bool {
		f := flagArrays[name]

		return i < len(f) && f[i]
	}

	events := make([]calibration.LogbookEvent, len(times))
	for i, t := range times {
		events[i] = calibration.LogbookEvent{
			Time:       t,
			Overlap:    at(FieldOverlap, i),
			WindowWipe: at(FieldWindowWipe, i),
			Flashlamps: at(FieldFlashlamps, i),
			PulsePower: at(FieldPulsePower, i),
			Restart:    at(FieldRestart, i),
			NDChange:   nd(i),
		}
	}

	return events, nil
}

// ndResolver turns the event-by-column ND-change matrix into per-channel flags.
// A channel's flag for event i is set when any column its selector marks with
// 1 is non-zero in row i.
func (r reader) ndResolver() (func(i int) map[calibration.Channel]bool, error) {
	matrix := r.f.Var(FieldNDChange)
	if matrix != nil && !matrix.IsEmpty() && !matrix.Class.IsNumeric() {
		return nil, fmt.Errorf("%w: %s is %s", errShape, FieldNDChange, matrix.Class)
	}

	columns := make(map[calibration.Channel][]int)

	for _, ch := range calibration.AllChannels() {
		sel, err := r.numbers(SelectorField(ch), false)
		if err != nil {
			return nil, err
		}

		for j, v := range sel {
			if v == 1 {
				columns[ch] = append(columns[ch], j)
			}
		}
	}

	return func(i int) map[calibration.Channel]bool {
		out := make(map[calibration.Channel]bool)

		if matrix.IsEmpty() || i >= matrix.Rows() {
			return out
		}

		for ch, cols := range columns {
			for _, j := range cols {
				if j < matrix.Cols() && matrix.At(i, j) != 0 {
					out[ch] = true

					break
				}
			}
		}

		return out
	}, nil
}
