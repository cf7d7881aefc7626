// Package dsp provides the filter design and signal conditioning
// primitives used by the temperature estimators: cascaded second-order
// IIR sections, digital Butterworth design, and moving-average smoothing.
package dsp

// Section is one second-order IIR filter section (biquad) with
// normalized denominator (a0 = 1). First-order sections are expressed
// with B2 = A2 = 0.
type Section struct {
	B0, B1, B2 float64
	A1, A2     float64

	// Direct form II transposed delay state.
	d0, d1 float64
}

// ProcessSample filters one sample through the section.
//
// Direct form II transposed:
//
//	y  = b0*x + d0
//	d0 = b1*x - a1*y + d1
//	d1 = b2*x - a2*y
func (s *Section) ProcessSample(x float64) float64 {
	y := s.B0*x + s.d0
	s.d0 = s.B1*x - s.A1*y + s.d1
	s.d1 = s.B2*x - s.A2*y
	return y
}

// Reset clears the section's delay state.
func (s *Section) Reset() {
	s.d0, s.d1 = 0, 0
}

// Cascade is an ordered chain of second-order sections applied in
// series. A fresh Cascade has zero initial state.
type Cascade []Section

// Process filters input through every section in order and returns a
// newly allocated output slice of the same length. The input is not
// modified and the cascade state advances, so repeated calls continue
// the same filter run.
func (c Cascade) Process(input []float64) []float64 {
	output := make([]float64, len(input))
	copy(output, input)
	c.ProcessInPlace(output)
	return output
}

// ProcessInPlace filters data through every section in order,
// overwriting data with the result.
func (c Cascade) ProcessInPlace(data []float64) {
	for si := range c {
		s := &c[si]
		for i, x := range data {
			data[i] = s.ProcessSample(x)
		}
	}
}

// Reset clears the delay state of every section.
func (c Cascade) Reset() {
	for i := range c {
		c[i].Reset()
	}
}
