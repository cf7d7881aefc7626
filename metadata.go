package speakersafetyd

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Checkpoint is one speaker's ground-truth state logged by the firmware
// at a block boundary. The hysteresis and gain fields are recorded by
// the protection loop; the engine parses but does not model them.
type Checkpoint struct {
	TCoil       float64 `json:"t_coil"`
	TMagnet     float64 `json:"t_magnet"`
	TCoilHyst   float64 `json:"t_coil_hyst"`
	TMagnetHyst float64 `json:"t_magnet_hyst"`
	MinGain     float64 `json:"min_gain"`
	Gain        float64 `json:"gain"`
}

// Block describes a contiguous run of the capture sharing one nominal
// sample rate, plus the per-speaker checkpoint taken at its start.
type Block struct {
	SampleRate  int          `json:"sample_rate"`
	SampleCount int          `json:"sample_count"`
	Speakers    []Checkpoint `json:"speakers"`
}

// Metadata is the blackbox metadata record written alongside the raw
// sense data when the firmware preserves a capture.
type Metadata struct {
	// Message is the reason the capture was preserved, if any.
	Message string `json:"message"`

	// Machine is the machine identifier in "<vendor>,<model>" form,
	// used only to look up the amplifier output gain constant.
	Machine string `json:"machine"`

	SampleRate  int     `json:"sample_rate"`
	Channels    int     `json:"channels"`
	TAmbient    float64 `json:"t_ambient"`
	TSafeMax    float64 `json:"t_safe_max"`
	THysteresis float64 `json:"t_hysteresis"`

	// Blocks partition the capture exactly, in order, with no gaps or
	// overlap.
	Blocks []Block `json:"blocks"`
}

// Blackbox file extension pairs: the analysis naming and the daemon's
// own naming, tried in that order.
var blackboxExtensions = [][2]string{
	{".fdr", ".cvr"},
	{".meta", ".raw"},
}

const int16Norm = 32768.0

// LoadBlackbox reads a preserved blackbox capture given its path base
// (without extension). It accepts both the <base>.fdr/<base>.cvr pair
// and the daemon's <base>.meta/<base>.raw pair.
func LoadBlackbox(base string) (*Capture, *Metadata, error) {
	for _, ext := range blackboxExtensions {
		metaBytes, err := os.ReadFile(base + ext[0])
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, nil, fmt.Errorf("reading blackbox metadata: %w", err)
		}

		rawBytes, err := os.ReadFile(base + ext[1])
		if err != nil {
			return nil, nil, fmt.Errorf("reading blackbox data: %w", err)
		}

		return parseBlackbox(metaBytes, rawBytes)
	}
	return nil, nil, fmt.Errorf("no blackbox found at %q (tried .fdr/.cvr and .meta/.raw)", base)
}

func parseBlackbox(metaBytes, rawBytes []byte) (*Capture, *Metadata, error) {
	var meta Metadata
	if err := json.Unmarshal(metaBytes, &meta); err != nil {
		return nil, nil, fmt.Errorf("parsing blackbox metadata: %w", err)
	}

	if len(rawBytes)%2 != 0 {
		return nil, nil, fmt.Errorf("%w: raw data has odd byte count %d", ErrCaptureShape, len(rawBytes))
	}

	// Little-endian signed 16-bit PCM, normalized to [-1, 1).
	samples := make([]float64, len(rawBytes)/2)
	for i := range samples {
		samples[i] = float64(int16(binary.LittleEndian.Uint16(rawBytes[2*i:]))) / int16Norm
	}

	capture, err := NewCapture(samples, meta.Channels, meta.SampleRate)
	if err != nil {
		return nil, nil, err
	}
	return capture, &meta, nil
}
