package dsp

import (
	"github.com/tphakala/simd/f64"
)

// MovingAverage applies a trailing moving average of the given window
// to data and returns a new slice of the same length.
//
// The averaged run is window-1 samples shorter than the input, so the
// result is edge-padded: (window-1)/2 copies of the first averaged
// value in front and window/2 copies of the last at the back. A window
// larger than the input is clamped to the input length.
func MovingAverage(data []float64, window int) []float64 {
	n := len(data)
	out := make([]float64, n)

	if n == 0 {
		return out
	}
	if window < 1 {
		window = 1
	}
	if window > n {
		window = n
	}
	if window == 1 {
		copy(out, data)
		return out
	}

	inv := 1 / float64(window)
	frontPad := (window - 1) / 2

	// Running sum over the trailing window.
	sum := f64.Sum(data[:window])
	first := sum * inv

	for i := 0; i <= frontPad; i++ {
		out[i] = first
	}
	for i := window; i < n; i++ {
		sum += data[i] - data[i-window]
		out[i-window+1+frontPad] = sum * inv
	}

	last := sum * inv
	for i := n - window + 1 + frontPad; i < n; i++ {
		out[i] = last
	}

	return out
}
