package speakersafetyd

import (
	"errors"

	"github.com/AsahiLinux/speakersafetyd/internal/impedance"
)

// Error taxonomy of the analysis engine. All violations are detected
// eagerly at the boundary of the component that first observes them and
// surfaced to the caller unrecovered: this is an offline analysis tool
// over a fixed dataset, and a bad result is worse than a loud failure.
var (
	// ErrConfig indicates malformed or inconsistent speaker
	// configuration, such as a sense channel index out of range or a
	// non-positive time constant.
	ErrConfig = errors.New("invalid speaker configuration")

	// ErrCaptureShape indicates that the capture dimensions are
	// inconsistent: a sample count not divisible by the channel count,
	// or a block list that does not partition the capture exactly.
	ErrCaptureShape = errors.New("capture shape mismatch")

	// ErrPilotSilence indicates that the pilot-band power estimate
	// vanished, leaving the resistance ratio undefined. The capture
	// segment is unusable; the error is not recoverable in-engine.
	ErrPilotSilence = impedance.ErrPilotPowerZero

	// ErrMisalignedSeries indicates that the cross-validation join
	// failed because checkpoint block boundaries do not partition the
	// model's time axis exactly.
	ErrMisalignedSeries = errors.New("series misaligned")
)
