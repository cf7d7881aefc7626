package speakersafetyd

import "math"

// DefaultAmpGain is the amplifier output gain in dB assumed for
// machines not present in the gain table. This information is not
// recorded in the blackbox file.
const DefaultAmpGain = 15.50

// ampGain maps machine identifiers to amplifier output gain in dB.
var ampGain = map[string]float64{
	"apple,j180": 13.0,
	"apple,j313": 16.0,
	"apple,j274": 18.0,
	"apple,j375": 18.0,
	"apple,j473": 18.0,
	"apple,j474": 18.0,
	"apple,j475": 18.0,
}

// AmpGain returns the amplifier output gain in dB for a machine
// identifier, falling back to DefaultAmpGain.
func AmpGain(machine string) float64 {
	if gain, ok := ampGain[machine]; ok {
		return gain
	}
	return DefaultAmpGain
}

const (
	// pilotLevelDB is the level of the continuous pilot tone relative
	// to full scale.
	pilotLevelDB = -30.0

	// idleLevelDB stands in for "test signal off" in the overlay set.
	idleLevelDB = -1000.0
)

// referenceLevelsDB are the test signal levels annotated on power
// overlays.
var referenceLevelsDB = []float64{idleLevelDB, -6, -10, -15}

// ReferenceLevel is one annotated power level for overlay rendering by
// a presentation layer.
type ReferenceLevel struct {
	// LevelDB is the test signal level relative to full scale.
	LevelDB float64

	// Power is the expected dissipation in watts at that level: the
	// pilot tone baseline plus the test signal contribution.
	Power float64
}

// ReferenceLevels computes the expected power levels for a speaker on a
// given machine, for the standard overlay level set.
func ReferenceLevels(machine string, cfg *SpeakerConfig) []ReferenceLevel {
	gain := AmpGain(machine)
	z := cfg.ZNominal + cfg.ZShunt

	levels := make([]ReferenceLevel, 0, len(referenceLevelsDB))
	for _, level := range referenceLevelsDB {
		pbase := dbAmplitude(gain+pilotLevelDB) * dbAmplitude(gain+pilotLevelDB) / z
		ptest := dbAmplitude(gain+level) * dbAmplitude(gain+level) / z
		levels = append(levels, ReferenceLevel{
			LevelDB: level,
			Power:   pbase + ptest,
		})
	}
	return levels
}

// dbAmplitude converts a dB value to a linear amplitude ratio.
func dbAmplitude(x float64) float64 {
	return math.Pow(10, x/20)
}
