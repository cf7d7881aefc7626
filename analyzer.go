package speakersafetyd

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/AsahiLinux/speakersafetyd/internal/impedance"
	"github.com/AsahiLinux/speakersafetyd/internal/thermal"
)

// Analyzer binds one capture, its metadata and the machine's speaker
// configurations, and reconstructs each speaker's thermal-protection
// behavior: the firmware's internal RC temperature tracker replayed
// sample-by-sample, and an independent impedance-based temperature
// estimate derived from the pilot tone.
//
// All invariants are checked eagerly in NewAnalyzer. Speakers are
// analyzed independently; the only shared state is the immutable
// capture buffer, so runs execute in parallel.
type Analyzer struct {
	capture  *Capture
	meta     *Metadata
	speakers []SpeakerConfig
	coeff    TempCoefficient

	// Common time axis: one entry per frame, plus block start times.
	// Block-relative time uses each block's nominal rate; the thermal
	// integration step does not (see thermal.Params.DT).
	times        []float64
	blockStarts  []float64
	blockOffsets []int
}

// NewAnalyzer validates the capture against its metadata and speaker
// set and prepares the shared time axis. Speakers are reordered
// ascending by group to match the firmware's model indices, which is
// also the checkpoint order inside each block.
func NewAnalyzer(capture *Capture, meta *Metadata, speakers []SpeakerConfig, coeff TempCoefficient) (*Analyzer, error) {
	if capture == nil || meta == nil {
		return nil, fmt.Errorf("%w: capture and metadata are required", ErrConfig)
	}
	if len(speakers) == 0 {
		return nil, fmt.Errorf("%w: no speakers configured", ErrConfig)
	}
	if meta.Channels != capture.Channels() {
		return nil, fmt.Errorf("%w: metadata declares %d channels, capture has %d",
			ErrCaptureShape, meta.Channels, capture.Channels())
	}
	if len(meta.Blocks) == 0 {
		return nil, fmt.Errorf("%w: no sample blocks in metadata", ErrCaptureShape)
	}

	total := 0
	for bi, blk := range meta.Blocks {
		if blk.SampleRate <= 0 {
			return nil, fmt.Errorf("%w: block %d has invalid sample rate %d", ErrCaptureShape, bi, blk.SampleRate)
		}
		if blk.SampleCount < 0 {
			return nil, fmt.Errorf("%w: block %d has negative sample count", ErrCaptureShape, bi)
		}
		if len(blk.Speakers) < len(speakers) {
			return nil, fmt.Errorf("%w: block %d has %d checkpoints, need %d",
				ErrCaptureShape, bi, len(blk.Speakers), len(speakers))
		}
		total += blk.SampleCount
	}
	if total != capture.Frames() {
		return nil, fmt.Errorf("%w: blocks cover %d frames, capture has %d",
			ErrCaptureShape, total, capture.Frames())
	}

	ordered := slices.Clone(speakers)
	slices.SortStableFunc(ordered, func(a, b SpeakerConfig) int {
		return cmp.Compare(a.Group, b.Group)
	})
	for i := range ordered {
		if err := ordered[i].Validate(capture.Channels()); err != nil {
			return nil, err
		}
	}

	a := &Analyzer{
		capture:  capture,
		meta:     meta,
		speakers: ordered,
		coeff:    coeff,
	}
	a.buildTimeAxis()
	return a, nil
}

// buildTimeAxis lays the blocks out on one clock. Within a block,
// sample times advance at the block's nominal rate.
func (a *Analyzer) buildTimeAxis() {
	a.times = make([]float64, a.capture.Frames())
	a.blockStarts = make([]float64, len(a.meta.Blocks))
	a.blockOffsets = make([]int, len(a.meta.Blocks))

	t := 0.0
	off := 0
	for bi, blk := range a.meta.Blocks {
		a.blockStarts[bi] = t
		a.blockOffsets[bi] = off
		sr := float64(blk.SampleRate)
		for x := range blk.SampleCount {
			a.times[off+x] = t + float64(x)/sr
		}
		t += float64(blk.SampleCount) / sr
		off += blk.SampleCount
	}
}

// Speakers returns the speaker configurations in model index order.
func (a *Analyzer) Speakers() []SpeakerConfig {
	return a.speakers
}

// Machine returns the machine identifier from the capture metadata.
func (a *Analyzer) Machine() string {
	return a.meta.Machine
}

// SpeakerResult holds one speaker's outputs for one capture. The
// continuous series share the analyzer's time axis; the checkpoint
// series is sampled at block starts. If Err is non-nil the other fields
// are zero: a run either completes fully or reports an error, and one
// speaker's failure does not affect the others.
type SpeakerResult struct {
	Name   string
	Index  int
	Config SpeakerConfig

	// ModelCoil and ModelMagnet are the replayed firmware tracker
	// estimates, one point per sample.
	ModelCoil   Series
	ModelMagnet Series

	// Impedance is the pilot-tone resistance-derived coil temperature.
	Impedance Series

	// Power is the smoothed instantaneous power i*v in watts.
	Power Series

	// CheckpointCoil and CheckpointMagnet are the firmware's logged
	// ground truth, one point per block.
	CheckpointCoil   Series
	CheckpointMagnet Series

	// RRef is the impedance estimator's reference resistance in ohms.
	RRef float64

	Err error
}

// Run analyzes every speaker, in parallel, and returns the results in
// model index order. Per-speaker failures are reported in
// SpeakerResult.Err; the remaining speakers still complete.
func (a *Analyzer) Run() []SpeakerResult {
	results := make([]SpeakerResult, len(a.speakers))

	var wg sync.WaitGroup
	for idx := range a.speakers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := a.RunSpeaker(idx)
			if err != nil {
				results[idx] = SpeakerResult{
					Name:   a.speakers[idx].Name,
					Index:  idx,
					Config: a.speakers[idx],
					Err:    err,
				}
				return
			}
			results[idx] = *res
		}()
	}
	wg.Wait()

	return results
}

// RunSpeaker analyzes a single speaker by model index. The thermal
// model and the impedance estimator are independent of each other and
// run concurrently over the same scaled sense channels.
func (a *Analyzer) RunSpeaker(idx int) (*SpeakerResult, error) {
	if idx < 0 || idx >= len(a.speakers) {
		return nil, fmt.Errorf("%w: speaker index %d out of range", ErrConfig, idx)
	}
	cfg := a.speakers[idx]
	frames := a.capture.Frames()

	isense, err := a.capture.SenseChannel(cfg.ISChan, cfg.ISScale, 0, frames)
	if err != nil {
		return nil, err
	}
	vsense, err := a.capture.SenseChannel(cfg.VSChan, cfg.VSScale, 0, frames)
	if err != nil {
		return nil, err
	}

	seed := a.meta.Blocks[0].Speakers[idx]

	var (
		wg       sync.WaitGroup
		coilVals []float64
		magVals  []float64
		modelErr error

		est    *impedance.Result
		estErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		coilVals, magVals, modelErr = a.runModel(cfg, seed, isense, vsense)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		est, estErr = impedance.Estimate(isense, vsense, impedance.Params{
			SampleRate:      a.meta.SampleRate,
			ZShunt:          cfg.ZShunt,
			TempCoefficient: cfg.Coefficient(a.coeff),
			TRef:            seed.TCoil,
		})
		if errors.Is(estErr, impedance.ErrCaptureTooShort) {
			estErr = fmt.Errorf("%w: %v", ErrCaptureShape, estErr)
		}
	}()

	wg.Wait()

	if modelErr != nil {
		return nil, fmt.Errorf("%s: thermal model: %w", cfg.Name, modelErr)
	}
	if estErr != nil {
		return nil, fmt.Errorf("%s: impedance estimator: %w", cfg.Name, estErr)
	}

	res := &SpeakerResult{
		Name:        cfg.Name,
		Index:       idx,
		Config:      cfg,
		ModelCoil:   Series{Time: a.times, Value: coilVals},
		ModelMagnet: Series{Time: a.times, Value: magVals},
		Impedance:   Series{Time: a.times, Value: est.Temperature},
		Power:       Series{Time: a.times, Value: est.Power},
		RRef:        est.RRef,
	}

	res.CheckpointCoil = newSeries(len(a.meta.Blocks))
	res.CheckpointMagnet = newSeries(len(a.meta.Blocks))
	for bi, blk := range a.meta.Blocks {
		ckpt := blk.Speakers[idx]
		res.CheckpointCoil.Append(a.blockStarts[bi], ckpt.TCoil)
		res.CheckpointMagnet.Append(a.blockStarts[bi], ckpt.TMagnet)
	}

	return res, nil
}

// runModel replays the firmware tracker over the capture's blocks.
// Temperature state carries over across block boundaries unmodified,
// and the integration step is fixed to the overall capture rate even
// when a block declares a different nominal rate.
func (a *Analyzer) runModel(cfg SpeakerConfig, seed Checkpoint, isense, vsense []float64) (coilVals, magVals []float64, err error) {
	model, err := thermal.New(thermal.Params{
		TRCoil:    cfg.TRCoil,
		TRMagnet:  cfg.TRMagnet,
		TauCoil:   cfg.TauCoil,
		TauMagnet: cfg.TauMagnet,
		TAmbient:  a.meta.TAmbient,
		DT:        1 / float64(a.meta.SampleRate),
	}, seed.TCoil, seed.TMagnet)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %v", ErrConfig, cfg.Name, err)
	}

	frames := a.capture.Frames()
	coilVals = make([]float64, frames)
	magVals = make([]float64, frames)

	for bi, blk := range a.meta.Blocks {
		off := a.blockOffsets[bi]
		cnt := blk.SampleCount
		if err := model.Process(isense[off:off+cnt], vsense[off:off+cnt],
			coilVals[off:off+cnt], magVals[off:off+cnt]); err != nil {
			return nil, nil, err
		}
	}
	return coilVals, magVals, nil
}
