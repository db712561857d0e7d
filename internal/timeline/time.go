package timeline

import "fmt"

// TimeUs is a timestamp or duration counted in microseconds. Every position
// stored in the data model is a TimeUs; arithmetic stays in integers so
// repeated edits never accumulate floating-point drift. Conversion to seconds
// exists only for ffmpeg arguments and display.
type TimeUs int64

const microsPerSecond = 1_000_000

// FromSeconds converts fractional seconds to microseconds.
func FromSeconds(s float64) TimeUs {
	return TimeUs(s * microsPerSecond)
}

// Seconds converts to fractional seconds.
func (t TimeUs) Seconds() float64 {
	return float64(t) / microsPerSecond
}

// Mul multiplies by an integer scalar.
func (t TimeUs) Mul(n int64) TimeUs {
	return TimeUs(int64(t) * n)
}

// Div divides by an integer scalar (truncating).
func (t TimeUs) Div(n int64) TimeUs {
	return TimeUs(int64(t) / n)
}

// Abs returns the absolute value.
func (t TimeUs) Abs() TimeUs {
	if t < 0 {
		return -t
	}
	return t
}

// String formats as HH:MM:SS.mmm, with a leading minus for negative values.
func (t TimeUs) String() string {
	totalMs := int64(t.Abs()) / 1_000
	ms := totalMs % 1_000
	totalSecs := totalMs / 1_000
	secs := totalSecs % 60
	totalMins := totalSecs / 60
	mins := totalMins % 60
	hours := totalMins / 60
	if t < 0 {
		return fmt.Sprintf("-%02d:%02d:%02d.%03d", hours, mins, secs, ms)
	}
	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, mins, secs, ms)
}
