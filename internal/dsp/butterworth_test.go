package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsahiLinux/speakersafetyd/internal/testutil"
)

const testSampleRate = 48000.0

func TestDesignInvalidParams(t *testing.T) {
	tests := []struct {
		name       string
		order      int
		cutoff     float64
		sampleRate float64
	}{
		{"zero order", 0, 100, testSampleRate},
		{"negative order", -1, 100, testSampleRate},
		{"excessive order", 17, 100, testSampleRate},
		{"zero cutoff", 4, 0, testSampleRate},
		{"negative cutoff", 4, -100, testSampleRate},
		{"cutoff at nyquist", 4, testSampleRate / 2, testSampleRate},
		{"zero sample rate", 4, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LowPass(tt.order, tt.cutoff, tt.sampleRate)
			assert.Error(t, err)
			_, err = HighPass(tt.order, tt.cutoff, tt.sampleRate)
			assert.Error(t, err)
		})
	}
}

func TestSectionCount(t *testing.T) {
	for order := 1; order <= 8; order++ {
		c, err := LowPass(order, 100, testSampleRate)
		require.NoError(t, err)
		assert.Len(t, c, (order+1)/2, "order %d", order)
	}
}

func TestOddOrderHasFirstOrderSection(t *testing.T) {
	c, err := HighPass(3, 10, testSampleRate)
	require.NoError(t, err)
	require.Len(t, c, 2)

	last := c[len(c)-1]
	assert.Zero(t, last.B2)
	assert.Zero(t, last.A2)
}

func TestLowPassDCGain(t *testing.T) {
	for _, order := range []int{1, 2, 3, 6} {
		c, err := LowPass(order, 100, testSampleRate)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, c.Magnitude(0, testSampleRate), 1e-12, "order %d", order)
		// Nyquist is fully attenuated: the bilinear transform maps the
		// analog zero at infinity to z = -1.
		assert.InDelta(t, 0.0, c.Magnitude(testSampleRate/2, testSampleRate), 1e-12, "order %d", order)
	}
}

func TestHighPassGains(t *testing.T) {
	for _, order := range []int{1, 2, 3, 6} {
		c, err := HighPass(order, 10, testSampleRate)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, c.Magnitude(0, testSampleRate), 1e-12, "order %d", order)
		assert.InDelta(t, 1.0, c.Magnitude(testSampleRate/2, testSampleRate), 1e-12, "order %d", order)
	}
}

// A Butterworth filter of any order is 3 dB down at its cutoff.
func TestCutoffAttenuation(t *testing.T) {
	const wantDB = -3.0103
	for _, order := range []int{1, 2, 3, 4, 6} {
		lp, err := LowPass(order, 100, testSampleRate)
		require.NoError(t, err)
		assert.InDelta(t, wantDB, MagnitudeDB(lp.Magnitude(100, testSampleRate)), 0.01, "lowpass order %d", order)

		hp, err := HighPass(order, 100, testSampleRate)
		require.NoError(t, err)
		assert.InDelta(t, wantDB, MagnitudeDB(hp.Magnitude(100, testSampleRate)), 0.01, "highpass order %d", order)
	}
}

func TestMonotonicStopbandRolloff(t *testing.T) {
	c, err := LowPass(6, 100, testSampleRate)
	require.NoError(t, err)

	prev := c.Magnitude(100, testSampleRate)
	for _, freq := range []float64{200, 400, 800, 1600, 3200} {
		mag := c.Magnitude(freq, testSampleRate)
		assert.Less(t, mag, prev, "response must fall past cutoff at %f Hz", freq)
		prev = mag
	}
}

// The band-limiting cascade applied to an all-zero input yields an
// all-zero output.
func TestZeroInputZeroOutput(t *testing.T) {
	lp, err := LowPass(6, 100, testSampleRate)
	require.NoError(t, err)
	hp, err := HighPass(3, 10, testSampleRate)
	require.NoError(t, err)

	input := make([]float64, 2048)
	out := hp.Process(lp.Process(input))
	testutil.AssertAllNear(t, out, 0, 0)
}

func TestImpulseResponseDecays(t *testing.T) {
	c, err := LowPass(6, 100, testSampleRate)
	require.NoError(t, err)

	impulse := make([]float64, 48000)
	impulse[0] = 1
	out := c.Process(impulse)

	testutil.AssertNoNaNOrInf(t, out)

	// A stable filter's tail energy must be negligible after a second.
	var tail float64
	for _, v := range out[40000:] {
		if v < 0 {
			v = -v
		}
		tail += v
	}
	assert.Less(t, tail, 1e-6)
}

func TestPilotBandPassesPilotRejectsAudio(t *testing.T) {
	apply := func(data []float64) []float64 {
		lp, err := LowPass(6, 100, testSampleRate)
		require.NoError(t, err)
		hp, err := HighPass(3, 10, testSampleRate)
		require.NoError(t, err)
		return hp.Process(lp.Process(data))
	}

	const n = 48000
	pilot := apply(testutil.Sine(30, 1, testSampleRate, n))
	audio := apply(testutil.Sine(1000, 1, testSampleRate, n))

	peak := func(s []float64) float64 {
		var m float64
		for _, v := range s[n/2:] { // skip transient
			if v > m {
				m = v
			}
		}
		return m
	}

	assert.Greater(t, peak(pilot), 0.9)
	assert.Less(t, peak(audio), 0.01)
}

func TestFilterHelpers(t *testing.T) {
	data := testutil.Sine(30, 1, testSampleRate, 4096)

	low, err := LowPassFilter(data, 100, testSampleRate, 6)
	require.NoError(t, err)
	assert.Len(t, low, len(data))

	high, err := HighPassFilter(low, 10, testSampleRate, 3)
	require.NoError(t, err)
	assert.Len(t, high, len(data))

	_, err = LowPassFilter(data, -1, testSampleRate, 6)
	assert.Error(t, err)
}
