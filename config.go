package speakersafetyd

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"gopkg.in/ini.v1"
)

// TempCoefficient selects which of the two calibrated resistance
// temperature coefficients the impedance estimator uses.
//
// The vendor calibration data carries coefficients referenced at two
// temperatures and uses only one of them, without documenting the
// selection rule. The engine therefore exposes both and requires the
// caller to choose.
type TempCoefficient int

const (
	// CoeffAt20C selects the coefficient referenced at 20 °C.
	CoeffAt20C TempCoefficient = iota

	// CoeffAt35C selects the coefficient referenced at 35 °C, the
	// usual choice for warm-running coils.
	CoeffAt35C
)

// String returns the selector name.
func (c TempCoefficient) String() string {
	switch c {
	case CoeffAt20C:
		return "a_t_20c"
	case CoeffAt35C:
		return "a_t_35c"
	default:
		return fmt.Sprintf("TempCoefficient(%d)", int(c))
	}
}

// Globals holds the machine-wide configuration shared by all speakers.
type Globals struct {
	// VISensePCM is the ALSA PCM device index carrying the sense
	// channels.
	VISensePCM int

	// Channels is the sense capture channel count.
	Channels int

	// Period is the capture period size in frames.
	Period int

	// TAmbient is the assumed ambient temperature in °C.
	TAmbient float64

	// TSafeMax is the temperature below which no protection is needed.
	TSafeMax float64

	// THysteresis is the hysteresis applied to protection decisions.
	THysteresis float64
}

// SpeakerConfig holds one speaker's immutable physical and calibration
// parameters plus its sense channel assignment. Produced externally
// (from the machine config file); read-only to the engine.
type SpeakerConfig struct {
	// Name identifies the speaker (driver name).
	Name string

	// Group orders speakers when assigning model indices; the firmware
	// processes speakers in ascending group order.
	Group int

	// TRCoil and TRMagnet are thermal resistances in °C/W.
	TRCoil   float64
	TRMagnet float64

	// TauCoil and TauMagnet are thermal time constants in seconds.
	TauCoil   float64
	TauMagnet float64

	// TLimit is the absolute maximum coil temperature in °C and
	// THeadroom the hard-limit headroom above the target.
	TLimit    float64
	THeadroom float64

	// ZNominal is the voice coil DC resistance in ohms at the
	// calibration temperature; ZShunt the series parasitic resistance
	// (0 if absent from the config).
	ZNominal float64
	ZShunt   float64

	// ISScale and VSScale convert normalized sense samples to amperes
	// and volts.
	ISScale float64
	VSScale float64

	// AT20C and AT35C are the resistance temperature coefficients
	// (1/°C) referenced at 20 °C and 35 °C. The caller selects one via
	// TempCoefficient.
	AT20C float64
	AT35C float64

	// ISChan and VSChan are 0-based current and voltage channel
	// indices into the interleaved capture.
	ISChan int
	VSChan int
}

// Validate checks the configuration against the capture channel count.
func (c *SpeakerConfig) Validate(channels int) error {
	if c.TauCoil <= 0 || c.TauMagnet <= 0 {
		return fmt.Errorf("%w: %s: time constants must be positive (tau_coil=%f, tau_magnet=%f)",
			ErrConfig, c.Name, c.TauCoil, c.TauMagnet)
	}
	if c.ZNominal <= 0 {
		return fmt.Errorf("%w: %s: z_nominal must be positive, got %f", ErrConfig, c.Name, c.ZNominal)
	}
	if c.ISChan < 0 || c.ISChan >= channels {
		return fmt.Errorf("%w: %s: is_chan %d out of range (channels=%d)", ErrConfig, c.Name, c.ISChan, channels)
	}
	if c.VSChan < 0 || c.VSChan >= channels {
		return fmt.Errorf("%w: %s: vs_chan %d out of range (channels=%d)", ErrConfig, c.Name, c.VSChan, channels)
	}
	return nil
}

// Coefficient returns the selected resistance temperature coefficient.
func (c *SpeakerConfig) Coefficient(sel TempCoefficient) float64 {
	if sel == CoeffAt20C {
		return c.AT20C
	}
	return c.AT35C
}

// MachineConfig is one machine's parsed configuration: the globals
// section plus all speaker sections, ordered ascending by group to
// match the order the firmware assigns model indices in.
type MachineConfig struct {
	Globals  Globals
	Speakers []SpeakerConfig
}

const speakerSectionPrefix = "Speaker/"

// LoadMachineConfig parses a machine .conf file (INI format, the same
// files the protection daemon consumes).
func LoadMachineConfig(path string) (*MachineConfig, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return parseMachineConfig(f)
}

// ParseMachineConfig parses machine configuration from raw INI bytes.
func ParseMachineConfig(data []byte) (*MachineConfig, error) {
	f, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}
	return parseMachineConfig(f)
}

func parseMachineConfig(f *ini.File) (*MachineConfig, error) {
	gs := f.Section("Globals")
	cfg := &MachineConfig{
		Globals: Globals{
			VISensePCM:  gs.Key("visense_pcm").MustInt(),
			Channels:    gs.Key("channels").MustInt(),
			Period:      gs.Key("period").MustInt(),
			TAmbient:    gs.Key("t_ambient").MustFloat64(),
			TSafeMax:    gs.Key("t_safe_max").MustFloat64(),
			THysteresis: gs.Key("t_hysteresis").MustFloat64(),
		},
	}

	if cfg.Globals.Channels <= 0 {
		return nil, fmt.Errorf("%w: globals channel count must be positive, got %d", ErrConfig, cfg.Globals.Channels)
	}

	for _, sec := range f.Sections() {
		name, ok := strings.CutPrefix(sec.Name(), speakerSectionPrefix)
		if !ok {
			continue
		}

		spk := SpeakerConfig{
			Name:      name,
			Group:     sec.Key("group").MustInt(),
			TRCoil:    sec.Key("tr_coil").MustFloat64(),
			TRMagnet:  sec.Key("tr_magnet").MustFloat64(),
			TauCoil:   sec.Key("tau_coil").MustFloat64(),
			TauMagnet: sec.Key("tau_magnet").MustFloat64(),
			TLimit:    sec.Key("t_limit").MustFloat64(),
			THeadroom: sec.Key("t_headroom").MustFloat64(),
			ZNominal:  sec.Key("z_nominal").MustFloat64(),
			ZShunt:    sec.Key("z_shunt").MustFloat64(0),
			ISScale:   sec.Key("is_scale").MustFloat64(),
			VSScale:   sec.Key("vs_scale").MustFloat64(),
			AT20C:     sec.Key("a_t_20c").MustFloat64(),
			AT35C:     sec.Key("a_t_35c").MustFloat64(),
			ISChan:    sec.Key("is_chan").MustInt(),
			VSChan:    sec.Key("vs_chan").MustInt(),
		}

		if err := spk.Validate(cfg.Globals.Channels); err != nil {
			return nil, err
		}
		cfg.Speakers = append(cfg.Speakers, spk)
	}

	slices.SortStableFunc(cfg.Speakers, func(a, b SpeakerConfig) int {
		return cmp.Compare(a.Group, b.Group)
	})

	return cfg, nil
}
