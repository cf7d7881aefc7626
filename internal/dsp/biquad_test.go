package dsp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionPassthrough(t *testing.T) {
	s := Section{B0: 1}
	input := []float64{1, 0, -1, 0.5, 0.25}
	for i, x := range input {
		assert.InDelta(t, x, s.ProcessSample(x), 1e-15, "sample %d", i)
	}
}

// Hand-traced direct form II transposed sequence:
//
//	B0=0.25, B1=0.5, B2=0.25, A1=-0.2, A2=0.04
//	x = [1, 0, 0, 0]
//
//	n=0: y=0.25      d0=0.5+0.05=0.55        d1=0.25-0.01=0.24
//	n=1: y=0.55      d0=0.11+0.24=0.35       d1=-0.022
//	n=2: y=0.35      d0=0.07-0.022=0.048     d1=-0.014
//	n=3: y=0.048
func TestSectionHandTrace(t *testing.T) {
	s := Section{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}

	want := []float64{0.25, 0.55, 0.35, 0.048}
	for i, w := range want {
		var x float64
		if i == 0 {
			x = 1
		}
		assert.InDelta(t, w, s.ProcessSample(x), 1e-15, "sample %d", i)
	}
}

func TestSectionReset(t *testing.T) {
	s := Section{B0: 0.25, B1: 0.5, B2: 0.25, A1: -0.2, A2: 0.04}

	first := s.ProcessSample(1)
	s.Reset()
	second := s.ProcessSample(1)
	assert.Equal(t, first, second)
}

func TestCascadeProcessMatchesInPlace(t *testing.T) {
	design := func() Cascade {
		c, err := LowPass(4, 100, 48000)
		require.NoError(t, err)
		return c
	}

	input := []float64{1, 0.5, -0.3, 0.7, 0, -1, 0.2, 0.8}

	c1 := design()
	out := c1.Process(input)

	c2 := design()
	inPlace := append([]float64(nil), input...)
	c2.ProcessInPlace(inPlace)

	assert.Equal(t, inPlace, out)
	// Process must not touch its input.
	assert.Equal(t, []float64{1, 0.5, -0.3, 0.7, 0, -1, 0.2, 0.8}, input)
}

func TestCascadeStateContinuesAcrossCalls(t *testing.T) {
	input := make([]float64, 256)
	for i := range input {
		input[i] = float64(i%7) - 3
	}

	whole, err := LowPass(2, 100, 48000)
	require.NoError(t, err)
	wantOut := whole.Process(input)

	split, err := LowPass(2, 100, 48000)
	require.NoError(t, err)
	gotOut := split.Process(input[:100])
	gotOut = append(gotOut, split.Process(input[100:])...)

	assert.Equal(t, wantOut, gotOut)
}
