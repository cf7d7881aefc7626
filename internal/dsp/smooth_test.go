package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AsahiLinux/speakersafetyd/internal/testutil"
)

func TestMovingAverageKnownValues(t *testing.T) {
	tests := []struct {
		name   string
		data   []float64
		window int
		want   []float64
	}{
		{
			name:   "odd window",
			data:   []float64{1, 2, 3, 4, 5},
			window: 3,
			want:   []float64{2, 2, 3, 4, 4},
		},
		{
			name:   "even window",
			data:   []float64{1, 2, 3, 4, 5, 6},
			window: 4,
			want:   []float64{2.5, 2.5, 3.5, 4.5, 4.5, 4.5},
		},
		{
			name:   "window one copies",
			data:   []float64{3, 1, 4},
			window: 1,
			want:   []float64{3, 1, 4},
		},
		{
			name:   "window equals length",
			data:   []float64{1, 2, 3},
			window: 3,
			want:   []float64{2, 2, 2},
		},
		{
			name:   "window clamped to length",
			data:   []float64{1, 3},
			window: 10,
			want:   []float64{2, 2},
		},
		{
			name:   "empty input",
			data:   nil,
			window: 4,
			want:   []float64{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MovingAverage(tt.data, tt.window)
			assert.InDeltaSlice(t, tt.want, got, 1e-12)
		})
	}
}

func TestMovingAveragePreservesLengthAndConstants(t *testing.T) {
	const n = 10000
	data := make([]float64, n)
	for i := range data {
		data[i] = 2.5
	}

	out := MovingAverage(data, 4000)
	assert.Len(t, out, n)
	testutil.AssertAllNear(t, out, 2.5, 1e-9)
}

func TestMovingAverageDoesNotMutateInput(t *testing.T) {
	data := []float64{1, 2, 3, 4, 5}
	MovingAverage(data, 3)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, data)
}

func TestMovingAverageSmoothsRipple(t *testing.T) {
	// A full period of a sine averaged over exactly one period is ~0.
	const sampleRate = 4000.0
	const freq = 40.0 // 100-sample period
	data := testutil.Sine(freq, 1, sampleRate, 4000)

	out := MovingAverage(data, 100)
	testutil.AssertAllInRange(t, out[100:len(out)-100], -0.01, 0.01)
}
