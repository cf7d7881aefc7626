// Package thermal implements the firmware's two-node lumped thermal
// model of a speaker: voice coil and magnet temperatures tracked as
// cascaded first-order lowpass updates driven by instantaneous
// electrical power. The magnet integrates toward ambient plus its share
// of the power; the coil integrates toward the magnet temperature plus
// its own share.
package thermal

import (
	"fmt"
	"math"
)

// Params holds the per-speaker constants of the thermal model.
type Params struct {
	// TRCoil and TRMagnet are the thermal resistances in °C/W.
	TRCoil   float64
	TRMagnet float64

	// TauCoil and TauMagnet are the thermal time constants in seconds.
	TauCoil   float64
	TauMagnet float64

	// TAmbient is the ambient temperature in °C, constant for a run.
	TAmbient float64

	// DT is the integration time step in seconds. This is always the
	// reciprocal of the overall capture sample rate, even when a block
	// declares a different nominal rate: all blocks share one playback
	// clock.
	DT float64
}

// Validate checks the model parameters.
func (p *Params) Validate() error {
	if p.TauCoil <= 0 {
		return fmt.Errorf("tau_coil must be positive, got %f", p.TauCoil)
	}
	if p.TauMagnet <= 0 {
		return fmt.Errorf("tau_magnet must be positive, got %f", p.TauMagnet)
	}
	if p.DT <= 0 {
		return fmt.Errorf("time step must be positive, got %f", p.DT)
	}
	return nil
}

// Model is the thermal tracker state: two scalars plus the update
// constants derived from Params. State persists across sample blocks;
// it is never reset mid-run.
type Model struct {
	params Params

	alphaCoil   float64
	alphaMagnet float64

	// TCoil and TMagnet are the current temperature estimates in °C.
	TCoil   float64
	TMagnet float64
}

// New creates a model seeded with the given initial coil and magnet
// temperatures, normally the first ground-truth checkpoint of a
// capture.
func New(params Params, tCoil, tMagnet float64) (*Model, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &Model{
		params:      params,
		alphaCoil:   params.DT / (params.DT + params.TauCoil),
		alphaMagnet: params.DT / (params.DT + params.TauMagnet),
		TCoil:       tCoil,
		TMagnet:     tMagnet,
	}, nil
}

// Alphas returns the per-sample smoothing factors. Both lie strictly
// inside (0, 1) for any positive time step and time constant.
func (m *Model) Alphas() (alphaCoil, alphaMagnet float64) {
	return m.alphaCoil, m.alphaMagnet
}

// Step advances the model by one sample given the instantaneous sense
// current and voltage, and returns the updated temperatures.
//
// The coil target is computed against the magnet temperature from
// before this step's magnet update: the magnet is the coil's thermal
// reference. Reversing the order changes the transient coupling.
func (m *Model) Step(i, v float64) (tCoil, tMagnet float64) {
	p := i * v

	coilTarget := m.TMagnet + p*m.params.TRCoil
	m.TCoil = coilTarget*m.alphaCoil + m.TCoil*(1-m.alphaCoil)

	magnetTarget := m.params.TAmbient + p*m.params.TRMagnet
	m.TMagnet = magnetTarget*m.alphaMagnet + m.TMagnet*(1-m.alphaMagnet)

	return m.TCoil, m.TMagnet
}

// Process runs the model over equal-length current and voltage sample
// slices, writing the per-sample temperature estimates into coilOut and
// magnetOut. All four slices must have the same length.
func (m *Model) Process(isense, vsense, coilOut, magnetOut []float64) error {
	if len(isense) != len(vsense) {
		return fmt.Errorf("sense length mismatch: %d current vs %d voltage samples", len(isense), len(vsense))
	}
	if len(coilOut) != len(isense) || len(magnetOut) != len(isense) {
		return fmt.Errorf("output length mismatch: got %d/%d, want %d", len(coilOut), len(magnetOut), len(isense))
	}

	for x, i := range isense {
		coilOut[x], magnetOut[x] = m.Step(i, vsense[x])
	}
	return nil
}

// Decay advances the model analytically over a period with no signal,
// using the closed-form solution of the coupled cooling pair. The
// firmware uses this to skip over stretches where no sense data was
// captured.
func (m *Model) Decay(seconds float64) {
	tCoil := m.TCoil - m.params.TAmbient
	tMagnet := m.TMagnet - m.params.TAmbient

	eta := 1 / (1 - m.params.TauCoil/m.params.TauMagnet)
	a := math.Exp(-seconds/m.params.TauCoil) * (tCoil - eta*tMagnet)
	b := math.Exp(-seconds/m.params.TauMagnet) * tMagnet

	m.TCoil = m.params.TAmbient + a + b*eta
	m.TMagnet = m.params.TAmbient + b
}

// StartupState returns the initial temperatures the firmware assumes
// when no checkpoint is available. On cold boot the coil is taken to be
// warm but just below the safe limit; otherwise the worst case
// (limit minus headroom) is assumed. The magnet starts at the steady
// state implied by the thermal resistance divider.
func StartupState(params Params, tSafeMax, tLimit, tHeadroom float64, coldBoot bool) (tCoil, tMagnet float64) {
	if coldBoot {
		tCoil = tSafeMax - 1
	} else {
		tCoil = tLimit - tHeadroom
	}
	tMagnet = params.TAmbient + (tCoil-params.TAmbient)*(params.TRMagnet/(params.TRMagnet+params.TRCoil))
	return tCoil, tMagnet
}
