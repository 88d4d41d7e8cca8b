package render

import (
	"math"
	"strconv"
	"time"

	"github.com/wcharczuk/go-chart/v2"
)

const (
	day = 24 * time.Hour

	// yTickTarget is the desired number of y ticks per panel.
	yTickTarget = 5
	// maxTimeTicks caps the x ticks of the shared time axis.
	maxTimeTicks = 16
	// dateLayout renders x tick labels as mm-dd.
	dateLayout = "01-02"
	// maxDecimals bounds the precision of fixed-point tick labels.
	maxDecimals = 6
)

// niceAxisBounds expands [lo, hi] by a small margin and rounds outward to the
// order of magnitude of the span.
func niceAxisBounds(lo, hi float64) (float64, float64) {
	if hi <= lo {
		if lo == 0 {
			return -1, 1
		}

		pad := math.Abs(lo) * 0.1
		lo, hi = lo-pad, hi+pad
	}

	span := hi - lo
	a := lo - span*0.05
	b := hi + span*0.05

	mag := math.Pow(10, math.Floor(math.Log10(span)))
	if !math.IsInf(mag, 0) && mag > 0 {
		a = math.Floor(a/mag) * mag
		b = math.Ceil(b/mag) * mag
	}

	return a, b
}

// niceStep picks a 1, 2, 2.5 or 5 multiple of a power of ten that splits
// [lo, hi] into roughly n intervals.
func niceStep(lo, hi float64, n int) float64 {
	span := hi - lo
	mag := math.Pow(10, math.Floor(math.Log10(span/float64(n))))

	best, bestScore := mag, math.MaxFloat64

	for _, c := range []float64{1, 2, 2.5, 5, 10} {
		step := c * mag
		score := math.Abs(math.Floor(span/step) - float64(n))

		if score < bestScore {
			best, bestScore = step, score
		}
	}

	return best
}

// valueTicks returns the nice ticks inside [lo, hi].
func valueTicks(lo, hi float64, n int) []chart.Tick {
	if n < 1 || !(hi > lo) || math.IsInf(hi-lo, 0) {
		return nil
	}

	step := niceStep(lo, hi, n)
	first := math.Ceil(lo/step - 1e-9)
	eps := step * 1e-9

	var ticks []chart.Tick

	for i := first; ; i++ {
		v := i * step
		if v > hi+eps {
			break
		}

		if math.Abs(v) < eps {
			v = 0
		}

		ticks = append(ticks, chart.Tick{Value: v, Label: formatTick(v, step)})
	}

	return ticks
}

// formatTick prints v with as many decimals as the step needs; very large or
// very small magnitudes switch to exponent notation.
func formatTick(v, step float64) string {
	if v == 0 {
		return "0"
	}

	av := math.Abs(v)
	if av >= 1e5 || av < 1e-3 {
		return strconv.FormatFloat(v, 'e', 1, 64)
	}

	decimals := 0
	for scaled := step; decimals < maxDecimals && math.Abs(scaled-math.Round(scaled)) > 1e-6*scaled; decimals++ {
		scaled *= 10
	}

	return strconv.FormatFloat(v, 'f', decimals, 64)
}

// pickDayStep selects how many days separate two time ticks.
func pickDayStep(span time.Duration) int {
	switch {
	case span <= 14*day:
		return 1
	case span <= 30*day:
		return 2
	case span <= 75*day:
		return 5
	case span <= 120*day:
		return 7
	case span <= 240*day:
		return 14
	default:
		return int(math.Ceil(span.Hours() / 24 / maxTimeTicks))
	}
}

// timeTicks returns midnight-aligned mm-dd ticks inside [from, to].
func timeTicks(from, to time.Time) []chart.Tick {
	if !to.After(from) {
		return nil
	}

	step := pickDayStep(to.Sub(from))

	start := from.UTC().Truncate(day)
	if start.Before(from) {
		start = start.Add(day)
	}

	var ticks []chart.Tick

	for t := start; !t.After(to); t = t.AddDate(0, 0, step) {
		ticks = append(ticks, chart.Tick{Value: chart.TimeToFloat64(t), Label: t.Format(dateLayout)})
	}

	return ticks
}
