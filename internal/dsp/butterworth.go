package dsp

import (
	"fmt"
	"math"
)

const (
	minFilterOrder = 1
	maxFilterOrder = 16
)

// validateDesign checks the shared Butterworth design parameters.
func validateDesign(order int, cutoff, sampleRate float64) error {
	if order < minFilterOrder || order > maxFilterOrder {
		return fmt.Errorf("invalid filter order %d (must be %d-%d)", order, minFilterOrder, maxFilterOrder)
	}
	if sampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %f (must be positive)", sampleRate)
	}
	if cutoff <= 0 || cutoff >= sampleRate/2 {
		return fmt.Errorf("invalid cutoff %f Hz (must be in (0, %f))", cutoff, sampleRate/2)
	}
	return nil
}

// poleAngles returns the Butterworth prototype pole-pair angles for the
// given order, measured from the negative real axis. An order with an
// odd number of poles additionally has one real pole at -1, which the
// callers emit as a first-order section.
func poleAngles(order int) []float64 {
	angles := make([]float64, 0, order/2)

	// Prototype poles sit at -exp(j*pi*m/(2N)) for
	// m = -N+1, -N+3, ..., N-1. Conjugate pairs share |m|.
	first := 1
	if order%2 == 1 {
		first = 2
	}
	for m := first; m <= order-1; m += 2 {
		angles = append(angles, math.Pi*float64(m)/float64(2*order))
	}
	return angles
}

// LowPass designs a digital Butterworth lowpass filter as a cascade of
// second-order sections via the bilinear transform. The cascade has
// unity gain at DC and is monotonic in the passband.
func LowPass(order int, cutoff, sampleRate float64) (Cascade, error) {
	if err := validateDesign(order, cutoff, sampleRate); err != nil {
		return nil, err
	}

	// Prewarped analog cutoff.
	wa := math.Tan(math.Pi * cutoff / sampleRate)
	wa2 := wa * wa

	cascade := make(Cascade, 0, (order+1)/2)

	for _, angle := range poleAngles(order) {
		// Analog section: wa^2 / (s^2 + c*wa*s + wa^2)
		c := 2 * math.Cos(angle)
		a0 := 1 + c*wa + wa2
		cascade = append(cascade, Section{
			B0: wa2 / a0,
			B1: 2 * wa2 / a0,
			B2: wa2 / a0,
			A1: (2*wa2 - 2) / a0,
			A2: (1 - c*wa + wa2) / a0,
		})
	}

	if order%2 == 1 {
		// Real prototype pole: wa / (s + wa)
		a0 := 1 + wa
		cascade = append(cascade, Section{
			B0: wa / a0,
			B1: wa / a0,
			A1: (wa - 1) / a0,
		})
	}

	return cascade, nil
}

// HighPass designs a digital Butterworth highpass filter as a cascade
// of second-order sections via the bilinear transform. The cascade has
// unity gain at the Nyquist frequency and fully rejects DC.
func HighPass(order int, cutoff, sampleRate float64) (Cascade, error) {
	if err := validateDesign(order, cutoff, sampleRate); err != nil {
		return nil, err
	}

	wa := math.Tan(math.Pi * cutoff / sampleRate)
	wa2 := wa * wa

	cascade := make(Cascade, 0, (order+1)/2)

	for _, angle := range poleAngles(order) {
		// Analog section: s^2 / (s^2 + c*wa*s + wa^2)
		c := 2 * math.Cos(angle)
		a0 := 1 + c*wa + wa2
		cascade = append(cascade, Section{
			B0: 1 / a0,
			B1: -2 / a0,
			B2: 1 / a0,
			A1: (2*wa2 - 2) / a0,
			A2: (1 - c*wa + wa2) / a0,
		})
	}

	if order%2 == 1 {
		// Real prototype pole: s / (s + wa)
		a0 := 1 + wa
		cascade = append(cascade, Section{
			B0: 1 / a0,
			B1: -1 / a0,
			A1: (wa - 1) / a0,
		})
	}

	return cascade, nil
}

// LowPassFilter designs a Butterworth lowpass and applies it to data in
// a single causal pass, returning a new slice.
func LowPassFilter(data []float64, cutoff, sampleRate float64, order int) ([]float64, error) {
	cascade, err := LowPass(order, cutoff, sampleRate)
	if err != nil {
		return nil, err
	}
	return cascade.Process(data), nil
}

// HighPassFilter designs a Butterworth highpass and applies it to data
// in a single causal pass, returning a new slice.
func HighPassFilter(data []float64, cutoff, sampleRate float64, order int) ([]float64, error) {
	cascade, err := HighPass(order, cutoff, sampleRate)
	if err != nil {
		return nil, err
	}
	return cascade.Process(data), nil
}
