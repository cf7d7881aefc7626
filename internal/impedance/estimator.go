// Package impedance estimates voice-coil temperature from the change
// in DC resistance observed through a continuous low-level pilot tone.
//
// The estimate is independent of the thermal model: the pilot band is
// isolated from both sense channels, the smoothed ratio of pilot-band
// voltage squared to pilot-band power yields the coil resistance by
// Ohm's law, and the relative resistance change maps linearly to
// temperature through the material's temperature coefficient.
package impedance

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/AsahiLinux/speakersafetyd/internal/dsp"
)

// Fixed constants of the estimator design. These are properties of the
// pilot tone scheme, not per-speaker configuration.
const (
	// Pilot tone isolation band.
	pilotLowPassCutoffHz  = 100.0
	pilotLowPassOrder     = 6
	pilotHighPassCutoffHz = 10.0
	pilotHighPassOrder    = 3

	// Two-stage power smoothing: a gentle lowpass followed by a
	// trailing moving average.
	smoothingCutoffHz = 10.0
	smoothingOrder    = 1
	smoothingWindow   = 4000

	// Reference calibration window, in seconds from capture start.
	// The first second tends to contain filter transients and is
	// discarded (and later overwritten with the reference value).
	calibrationStartSec = 1
	calibrationEndSec   = 2
)

// ErrPilotPowerZero reports that the pilot-band power estimate vanished
// for at least one sample, which makes the resistance ratio undefined.
// This indicates an unusable or silent capture segment.
var ErrPilotPowerZero = errors.New("pilot-band power is zero")

// ErrCaptureTooShort reports that the capture does not cover the
// reference calibration window.
var ErrCaptureTooShort = errors.New("capture too short for reference calibration")

// Params holds the per-speaker inputs of the estimator.
type Params struct {
	// SampleRate is the capture sample rate in Hz.
	SampleRate int

	// ZShunt is the series parasitic resistance in ohms.
	ZShunt float64

	// TempCoefficient is the selected resistance temperature
	// coefficient (1/°C).
	TempCoefficient float64

	// TRef is the absolute anchor temperature in °C, normally the
	// first ground-truth coil checkpoint of the capture.
	TRef float64
}

// Validate checks the estimator parameters.
func (p *Params) Validate() error {
	if p.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", p.SampleRate)
	}
	if p.TempCoefficient == 0 {
		return fmt.Errorf("temperature coefficient must be nonzero")
	}
	return nil
}

// Result holds the per-sample outputs of one estimator run.
type Result struct {
	// Temperature is the estimated coil temperature in °C.
	Temperature []float64

	// Resistance is the smoothed pilot-band resistance estimate in
	// ohms, with the first second overwritten by the reference value.
	Resistance []float64

	// Power is the smoothed raw power i*v in watts, for
	// reference-level overlays.
	Power []float64

	// RRef is the reference resistance averaged over the calibration
	// window.
	RRef float64
}

// pilotFilter isolates the pilot tone band: lowpass above the audio
// floor, then highpass to strip DC and sense offset drift. The same
// cascade is applied to current and voltage so the ratio is unbiased.
func pilotFilter(data []float64, sampleRate float64) ([]float64, error) {
	low, err := dsp.LowPassFilter(data, pilotLowPassCutoffHz, sampleRate, pilotLowPassOrder)
	if err != nil {
		return nil, err
	}
	return dsp.HighPassFilter(low, pilotHighPassCutoffHz, sampleRate, pilotHighPassOrder)
}

// smoothPower applies the two-stage smoothing that rejects both
// pilot-frequency ripple and residual high-frequency noise.
func smoothPower(data []float64, sampleRate float64) ([]float64, error) {
	low, err := dsp.LowPassFilter(data, smoothingCutoffHz, sampleRate, smoothingOrder)
	if err != nil {
		return nil, err
	}
	return dsp.MovingAverage(low, smoothingWindow), nil
}

// Estimate runs the estimator over one speaker's scaled sense channels
// for a full capture.
func Estimate(isense, vsense []float64, params Params) (*Result, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(isense) != len(vsense) {
		return nil, fmt.Errorf("sense length mismatch: %d current vs %d voltage samples", len(isense), len(vsense))
	}

	sr := params.SampleRate
	if len(isense) < calibrationEndSec*sr {
		return nil, fmt.Errorf("%w: have %d samples, need %d", ErrCaptureTooShort, len(isense), calibrationEndSec*sr)
	}

	fs := float64(sr)

	ipilot, err := pilotFilter(isense, fs)
	if err != nil {
		return nil, err
	}
	vpilot, err := pilotFilter(vsense, fs)
	if err != nil {
		return nil, err
	}

	n := len(isense)
	rawPower := make([]float64, n)
	pilotPower := make([]float64, n)
	pilotVoltSq := make([]float64, n)
	for x := range isense {
		rawPower[x] = isense[x] * vsense[x]
		pilotPower[x] = ipilot[x] * vpilot[x]
		pilotVoltSq[x] = vpilot[x] * vpilot[x]
	}

	power, err := smoothPower(rawPower, fs)
	if err != nil {
		return nil, err
	}
	pilotPower, err = smoothPower(pilotPower, fs)
	if err != nil {
		return nil, err
	}
	pilotVoltSq, err = smoothPower(pilotVoltSq, fs)
	if err != nil {
		return nil, err
	}

	// Squared voltage over power is resistance, via Ohm's law applied
	// to the pilot component.
	resistance := make([]float64, n)
	for x := range pilotVoltSq {
		if pilotPower[x] == 0 {
			return nil, fmt.Errorf("%w: sample %d", ErrPilotPowerZero, x)
		}
		resistance[x] = pilotVoltSq[x] / pilotPower[x]
	}

	rref := stat.Mean(resistance[calibrationStartSec*sr:calibrationEndSec*sr], nil)
	if rref == params.ZShunt {
		return nil, fmt.Errorf("%w: reference resistance equals shunt resistance", ErrPilotPowerZero)
	}

	// The first second contains startup garbage; pin it to the
	// reference so it cannot produce spurious temperature excursions.
	for x := range calibrationStartSec * sr {
		resistance[x] = rref
	}

	temperature := make([]float64, n)
	for x, r := range resistance {
		temperature[x] = ((r-params.ZShunt)/(rref-params.ZShunt)-1)/params.TempCoefficient + params.TRef
	}

	return &Result{
		Temperature: temperature,
		Resistance:  resistance,
		Power:       power,
		RRef:        rref,
	}, nil
}
