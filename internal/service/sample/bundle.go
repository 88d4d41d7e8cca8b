package sample

import (
	"math"
	"time"

	"github.com/pollynet/longterm-cali/internal/datenum"
	"github.com/pollynet/longterm-cali/internal/domain/calibration"
	"github.com/pollynet/longterm-cali/internal/matfile"
	"github.com/pollynet/longterm-cali/internal/repository/bundle"
)

// Spec describes the synthetic bundle.
type Spec struct {
	// Start is the campaign start.
	Start time.Time
	// Days is the length of the history; one calibration per day.
	Days int
	// DPI is written as the figure resolution.
	DPI float64
	// Instrument and Location end up in the figure title.
	Instrument string
	Location   string
}

const (
	// DefaultDays is the history length used when Spec.Days is zero.
	DefaultDays = 60
	// DefaultDPI is the figure resolution used when Spec.DPI is zero.
	DefaultDPI = 80
)

// withDefaults fills the zero fields of s.
func (s Spec) withDefaults() Spec {
	if s.Start.IsZero() {
		s.Start = time.Date(2019, time.January, 10, 0, 0, 0, 0, time.UTC)
	}

	if s.Days <= 0 {
		s.Days = DefaultDays
	}

	if s.DPI <= 0 {
		s.DPI = DefaultDPI
	}

	if s.Instrument == "" {
		s.Instrument = "PollyXT_DWD"
	}

	if s.Location == "" {
		s.Location = "Hohenpeissenberg"
	}

	return s
}

// Arrays builds every variable of the bundle described by s.
//
//nolint:funlen // Flat list of fields.
func Arrays(s Spec) []*matfile.Array {
	s = s.withDefaults()

	var (
		lcTime  = make([]float64, s.Days)
		history = make(map[calibration.Channel][]float64)
		status  = make(map[calibration.Channel][]float64)
		scale   = map[calibration.Channel]float64{
			calibration.Channel355:  4.0e14,
			calibration.Channel532:  9.0e14,
			calibration.Channel1064: 2.5e14,
			calibration.Channel387:  6.0e14,
			calibration.Channel607:  1.2e15,
		}
	)

	for i := range s.Days {
		// Calibrations run at 21:00.
		lcTime[i] = datenum.FromTime(s.Start.AddDate(0, 0, i).Add(21 * time.Hour))
	}

	for k, ch := range calibration.LidarChannels() {
		h := make([]float64, s.Days)
		st := make([]float64, s.Days)

		for i := range s.Days {
			drift := 1 - 0.002*float64(i)
			wave := 1 + 0.05*math.Sin(float64(i)/5+float64(k))
			h[i] = scale[ch] * drift * wave

			switch {
			case (i+k)%7 == 3:
				st[i] = 1
			case (i+2*k)%11 == 5:
				st[i] = 0
			default:
				st[i] = calibration.StatusValid
			}
		}

		history[ch] = h
		status[ch] = st
	}

	// Logbook: one entry every nine days, rotating through the flags.
	var (
		logTime                                  []float64
		overlap, wipe, lamps, power, restart, nd []float64
	)

	selectors := calibration.AllChannels()

	for i := 4; i < s.Days; i += 9 {
		n := len(logTime)
		logTime = append(logTime, datenum.FromTime(s.Start.AddDate(0, 0, i).Add(10*time.Hour)))
		overlap = append(overlap, b2f(n%6 == 0))
		wipe = append(wipe, b2f(n%6 == 1))
		lamps = append(lamps, b2f(n%6 == 2))
		power = append(power, b2f(n%6 == 3))
		restart = append(restart, b2f(n%6 == 4))

		for j := range selectors {
			nd = append(nd, b2f(n%6 == 5 && j == n%len(selectors)))
		}
	}

	// nd was filled row by row; the file stores it column-major.
	rows, cols := len(logTime), len(selectors)
	ndColMajor := make([]float64, rows*cols)

	for r := range rows {
		for c := range cols {
			ndColMajor[c*rows+r] = nd[r*cols+c]
		}
	}

	mid := s.Start.AddDate(0, 0, s.Days/2).Add(12 * time.Hour)
	dataTime := s.Start.AddDate(0, 0, s.Days-1).Add(23 * time.Hour)

	depolTime := make([]float64, 0, s.Days/3)
	depolConst := make([]float64, 0, s.Days/3)

	for i := 1; i < s.Days; i += 3 {
		depolTime = append(depolTime, datenum.FromTime(s.Start.AddDate(0, 0, i).Add(3*time.Hour)))
		depolConst = append(depolConst, 0.08+0.004*math.Cos(float64(i)/4))
	}

	vars := []*matfile.Array{
		matfile.NewDouble(bundle.FieldDPI, s.DPI),
		matfile.NewDouble(bundle.FieldLCTime, lcTime...),
	}

	for _, ch := range calibration.LidarChannels() {
		vars = append(vars,
			matfile.NewDouble(bundle.HistoryField(ch), history[ch]...),
			matfile.NewDouble(bundle.StatusField(ch), status[ch]...),
		)
	}

	for j, ch := range selectors {
		sel := make([]float64, len(selectors))
		sel[j] = 1
		vars = append(vars, matfile.NewDouble(bundle.SelectorField(ch), sel...))
	}

	vars = append(vars,
		matfile.NewDouble(bundle.FieldLogbookTime, logTime...),
		matfile.NewDouble(bundle.FieldOverlap, overlap...),
		matfile.NewDouble(bundle.FieldWindowWipe, wipe...),
		matfile.NewDouble(bundle.FieldFlashlamps, lamps...),
		matfile.NewDouble(bundle.FieldPulsePower, power...),
		matfile.NewDouble(bundle.FieldRestart, restart...),
		matfile.NewMatrix(bundle.FieldNDChange, rows, cols, ndColMajor),
		matfile.NewDouble(bundle.FieldElseTime, datenum.FromTime(mid)),
		matfile.NewCell(bundle.FieldElseLabel, matfile.NewChar("", "laser maintenance")),
		matfile.NewDouble(bundle.FieldDepolTime532, depolTime...),
		matfile.NewDouble(bundle.FieldDepolConst532, depolConst...),
		matfile.NewDouble(bundle.FieldYLim355, 0, 6e14),
		matfile.NewDouble(bundle.FieldYLim532, 0, 1.2e15),
		matfile.NewDouble(bundle.FieldYLim1064, 0, 4e14),
		matfile.NewDouble(bundle.FieldDepolLim532, 0, 0.15),
		matfile.NewStruct(bundle.FieldCampaignInfo,
			matfile.NewChar(bundle.FieldName, s.Instrument),
			matfile.NewChar(bundle.FieldLocation, s.Location),
			matfile.NewDouble(bundle.FieldStartTime, datenum.FromTime(s.Start)),
		),
		matfile.NewStruct(bundle.FieldTaskInfo,
			matfile.NewDouble(bundle.FieldDataTime, datenum.FromTime(dataTime)),
		),
		matfile.NewStruct(bundle.FieldProcessInfo,
			matfile.NewChar(bundle.FieldProgramVersion, "1.0"),
			matfile.NewChar(bundle.FieldFontName, "DejaVu Sans"),
		),
	)

	return vars
}

func b2f(b bool) float64 {
	if b {
		return 1
	}

	return 0
}
