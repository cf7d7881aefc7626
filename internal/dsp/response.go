package dsp

import (
	"math"
	"math/cmplx"
)

// Magnitude evaluates the cascade's magnitude response at the given
// frequency. The cascade state is not touched; this evaluates the
// transfer function analytically.
func (c Cascade) Magnitude(freq, sampleRate float64) float64 {
	omega := 2 * math.Pi * freq / sampleRate
	z1 := cmplx.Exp(complex(0, -omega))
	z2 := z1 * z1

	h := complex(1, 0)
	for _, s := range c {
		num := complex(s.B0, 0) + complex(s.B1, 0)*z1 + complex(s.B2, 0)*z2
		den := complex(1, 0) + complex(s.A1, 0)*z1 + complex(s.A2, 0)*z2
		h *= num / den
	}
	return cmplx.Abs(h)
}

// MagnitudeDB converts a linear magnitude to decibels, clamping near
// zero to avoid log(0).
func MagnitudeDB(magnitude float64) float64 {
	const (
		minMagnitude = 1e-10
		dbMultiplier = 20.0
	)

	if magnitude < minMagnitude {
		magnitude = minMagnitude
	}
	return dbMultiplier * math.Log10(magnitude)
}
