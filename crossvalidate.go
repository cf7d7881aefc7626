package speakersafetyd

import (
	"fmt"
)

// AlignedRun joins one speaker's three temperature signals and its
// power trace on a single time axis for comparison or export. Values
// are not transformed; this is purely a join on time.
type AlignedRun struct {
	// Time is the common per-sample time axis in seconds.
	Time []float64

	ModelCoil   []float64
	ModelMagnet []float64
	Impedance   []float64
	Power       []float64

	// CheckpointOffsets holds, for each checkpoint, the index into
	// Time at which it was logged (the block start).
	CheckpointOffsets []int
	CheckpointTime    []float64
	CheckpointCoil    []float64
	CheckpointMagnet  []float64
}

// CrossValidate aligns a completed speaker result against the capture's
// block structure. It fails with ErrMisalignedSeries when the series do
// not share one axis or when the checkpoint block boundaries do not
// partition the model's time axis exactly.
func (a *Analyzer) CrossValidate(res *SpeakerResult) (*AlignedRun, error) {
	if res == nil || res.Err != nil {
		return nil, fmt.Errorf("%w: speaker result incomplete", ErrMisalignedSeries)
	}

	n := res.ModelCoil.Len()
	for name, s := range map[string]Series{
		"model-magnet": res.ModelMagnet,
		"impedance":    res.Impedance,
		"power":        res.Power,
	} {
		if s.Len() != n {
			return nil, fmt.Errorf("%w: %s series has %d samples, model-coil has %d",
				ErrMisalignedSeries, name, s.Len(), n)
		}
	}

	total := 0
	for _, blk := range a.meta.Blocks {
		total += blk.SampleCount
	}
	if total != n {
		return nil, fmt.Errorf("%w: blocks cover %d samples, series have %d",
			ErrMisalignedSeries, total, n)
	}

	if res.CheckpointCoil.Len() != len(a.meta.Blocks) || res.CheckpointMagnet.Len() != len(a.meta.Blocks) {
		return nil, fmt.Errorf("%w: %d checkpoints for %d blocks",
			ErrMisalignedSeries, res.CheckpointCoil.Len(), len(a.meta.Blocks))
	}

	offsets := make([]int, len(a.meta.Blocks))
	off := 0
	for bi, blk := range a.meta.Blocks {
		// The checkpoint must land exactly on the model sample at the
		// block boundary; any drift means the join is invalid.
		if res.CheckpointCoil.Time[bi] != res.ModelCoil.Time[off] {
			return nil, fmt.Errorf("%w: checkpoint %d at t=%f, block starts at t=%f",
				ErrMisalignedSeries, bi, res.CheckpointCoil.Time[bi], res.ModelCoil.Time[off])
		}
		offsets[bi] = off
		off += blk.SampleCount
	}

	return &AlignedRun{
		Time:              res.ModelCoil.Time,
		ModelCoil:         res.ModelCoil.Value,
		ModelMagnet:       res.ModelMagnet.Value,
		Impedance:         res.Impedance.Value,
		Power:             res.Power.Value,
		CheckpointOffsets: offsets,
		CheckpointTime:    res.CheckpointCoil.Time,
		CheckpointCoil:    res.CheckpointCoil.Value,
		CheckpointMagnet:  res.CheckpointMagnet.Value,
	}, nil
}
