package speakersafetyd

import (
	"fmt"

	"github.com/tphakala/simd/f64"
)

// Capture is a fixed-rate, fixed-channel-count interleaved buffer of
// sense samples normalized to [-1, 1). It is immutable once created;
// concurrent reads are safe.
type Capture struct {
	data       []float64
	channels   int
	sampleRate int
	frames     int
}

// NewCapture wraps an interleaved normalized sample buffer. The sample
// count must divide evenly into frames of the given channel count.
func NewCapture(samples []float64, channels, sampleRate int) (*Capture, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("%w: channel count must be positive, got %d", ErrCaptureShape, channels)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrCaptureShape, sampleRate)
	}
	if len(samples)%channels != 0 {
		return nil, fmt.Errorf("%w: %d samples not divisible by %d channels", ErrCaptureShape, len(samples), channels)
	}
	return &Capture{
		data:       samples,
		channels:   channels,
		sampleRate: sampleRate,
		frames:     len(samples) / channels,
	}, nil
}

// Frames returns the number of frames (samples per channel).
func (c *Capture) Frames() int { return c.frames }

// Channels returns the interleaved channel count.
func (c *Capture) Channels() int { return c.channels }

// SampleRate returns the capture sample rate in Hz.
func (c *Capture) SampleRate() int { return c.sampleRate }

// SenseChannel extracts one channel over the frame range [off, off+cnt)
// and scales it to physical units. The capture is not mutated; the
// returned slice is freshly allocated.
func (c *Capture) SenseChannel(channel int, scale float64, off, cnt int) ([]float64, error) {
	if channel < 0 || channel >= c.channels {
		return nil, fmt.Errorf("%w: sense channel %d out of range (channels=%d)", ErrConfig, channel, c.channels)
	}
	if off < 0 || cnt < 0 || off+cnt > c.frames {
		return nil, fmt.Errorf("%w: frame range [%d, %d) outside capture of %d frames", ErrCaptureShape, off, off+cnt, c.frames)
	}

	out := make([]float64, cnt)
	for i := range out {
		out[i] = c.data[(off+i)*c.channels+channel]
	}
	f64.Scale(out, out, scale)
	return out, nil
}
