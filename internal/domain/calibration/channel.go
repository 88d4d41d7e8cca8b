package calibration

import "time"

// Channel identifies a detection channel by wavelength.
type Channel string

// Detection channels.
const (
	Channel355  Channel = "355"
	Channel532  Channel = "532"
	Channel1064 Channel = "1064"
	Channel387  Channel = "387"
	Channel607  Channel = "607"
	// Channel532Cross is the cross-polarized 532 nm channel used for depolarization.
	Channel532Cross Channel = "532X"
)

// StatusValid marks an accepted calibration sample.
const StatusValid = 2

// LidarChannels are the channels that carry a lidar-constant history.
func LidarChannels() []Channel {
	return []Channel{Channel355, Channel532, Channel1064, Channel387, Channel607}
}

// AllChannels are every channel a neutral-density filter change can be booked for.
func AllChannels() []Channel {
	return append(LidarChannels(), Channel532Cross)
}

// Point is one plotted sample.
type Point struct {
	Time  time.Time
	Value float64
}

// ValidMask marks the samples whose status equals StatusValid.
func ValidMask(status []float64) []bool {
	mask := make([]bool, len(status))
	for i, s := range status {
		mask[i] = s == StatusValid
	}

	return mask
}

// JointMask is the element-wise AND of two masks, cut to the shorter one.
func JointMask(a, b []bool) []bool {
	mask := make([]bool, min(len(a), len(b)))
	for i := range mask {
		mask[i] = a[i] && b[i]
	}

	return mask
}

// Select returns the samples whose mask entry is set.
func Select(times []time.Time, values []float64, mask []bool) []Point {
	var points []Point

	for i, ok := range mask {
		if ok && i < len(times) && i < len(values) {
			points = append(points, Point{Time: times[i], Value: values[i]})
		}
	}

	return points
}

// Ratio returns num/den for the samples whose mask entry is set.
// Zero denominators are not guarded; the result may be infinite or NaN.
func Ratio(times []time.Time, num, den []float64, mask []bool) []Point {
	var points []Point

	for i, ok := range mask {
		if ok && i < len(times) && i < len(num) && i < len(den) {
			points = append(points, Point{Time: times[i], Value: num[i] / den[i]})
		}
	}

	return points
}
