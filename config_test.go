package speakersafetyd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConf = `[Globals]
visense_pcm = 2
channels = 4
period = 4096
t_ambient = 22.0
t_safe_max = 95.0
t_hysteresis = 5.0

[Speaker/Right Tweeter]
group = 1
tr_coil = 24.8
tr_magnet = 9.19
tau_coil = 0.5340
tau_magnet = 0.7473
t_limit = 125.0
t_headroom = 10.0
z_nominal = 4.0
is_scale = 5.608
vs_scale = 14.0
a_t_20c = 0.003980
a_t_35c = 0.003776
is_chan = 3
vs_chan = 1

[Speaker/Left Woofer]
group = 0
tr_coil = 5.175
tr_magnet = 2.411
tau_coil = 2.617
tau_magnet = 110.5
t_limit = 125.0
t_headroom = 10.0
z_nominal = 3.99
z_shunt = 0.4
is_scale = 5.608
vs_scale = 14.0
a_t_20c = 0.004021
a_t_35c = 0.003784
is_chan = 2
vs_chan = 0
`

func TestParseMachineConfig(t *testing.T) {
	cfg, err := ParseMachineConfig([]byte(testConf))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Globals.VISensePCM)
	assert.Equal(t, 4, cfg.Globals.Channels)
	assert.Equal(t, 4096, cfg.Globals.Period)
	assert.Equal(t, 22.0, cfg.Globals.TAmbient)
	assert.Equal(t, 95.0, cfg.Globals.TSafeMax)
	assert.Equal(t, 5.0, cfg.Globals.THysteresis)

	// Speakers come back sorted by group, not file order.
	require.Len(t, cfg.Speakers, 2)
	woofer := cfg.Speakers[0]
	tweeter := cfg.Speakers[1]

	assert.Equal(t, "Left Woofer", woofer.Name)
	assert.Equal(t, 0, woofer.Group)
	assert.Equal(t, 5.175, woofer.TRCoil)
	assert.Equal(t, 110.5, woofer.TauMagnet)
	assert.Equal(t, 0.4, woofer.ZShunt)
	assert.Equal(t, 0.004021, woofer.AT20C)
	assert.Equal(t, 2, woofer.ISChan)
	assert.Equal(t, 0, woofer.VSChan)

	assert.Equal(t, "Right Tweeter", tweeter.Name)
	assert.Equal(t, 1, tweeter.Group)
	// z_shunt is optional and defaults to zero.
	assert.Zero(t, tweeter.ZShunt)
	assert.Equal(t, 0.003776, tweeter.AT35C)
}

func TestLoadMachineConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apple.conf")
	require.NoError(t, os.WriteFile(path, []byte(testConf), 0o644))

	cfg, err := LoadMachineConfig(path)
	require.NoError(t, err)
	assert.Len(t, cfg.Speakers, 2)

	_, err = LoadMachineConfig(filepath.Join(t.TempDir(), "missing.conf"))
	assert.ErrorIs(t, err, ErrConfig)
}

func TestParseMachineConfigRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		conf string
	}{
		{
			name: "missing channel count",
			conf: "[Globals]\nt_ambient = 22.0\n",
		},
		{
			name: "zero tau",
			conf: "[Globals]\nchannels = 2\n\n[Speaker/Bad]\ntau_coil = 0\ntau_magnet = 1\nz_nominal = 4\n",
		},
		{
			name: "sense channel out of range",
			conf: "[Globals]\nchannels = 2\n\n[Speaker/Bad]\ntau_coil = 1\ntau_magnet = 1\nz_nominal = 4\nis_chan = 2\nvs_chan = 0\n",
		},
		{
			name: "zero nominal impedance",
			conf: "[Globals]\nchannels = 2\n\n[Speaker/Bad]\ntau_coil = 1\ntau_magnet = 1\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMachineConfig([]byte(tt.conf))
			assert.ErrorIs(t, err, ErrConfig)
		})
	}
}

func TestSpeakerConfigCoefficient(t *testing.T) {
	cfg := SpeakerConfig{AT20C: 0.004, AT35C: 0.0038}
	assert.Equal(t, 0.004, cfg.Coefficient(CoeffAt20C))
	assert.Equal(t, 0.0038, cfg.Coefficient(CoeffAt35C))

	assert.Equal(t, "a_t_20c", CoeffAt20C.String())
	assert.Equal(t, "a_t_35c", CoeffAt35C.String())
}
