// Package speakersafetyd reconstructs and validates the
// thermal-protection behavior of a multi-speaker amplifier from
// recorded sense data.
//
// Given a per-speaker electro-thermal configuration and a preserved
// blackbox capture of time-synchronized current/voltage sense samples,
// the engine:
//
//   - replays the firmware's internal coil/magnet temperature tracker
//     sample-by-sample (two cascaded first-order RC updates driven by
//     instantaneous power), and
//   - independently derives a coil temperature estimate from the
//     physical change in voice-coil DC resistance, observed through a
//     continuous low-level pilot tone,
//
// then aligns both against the sparse ground-truth checkpoints the
// firmware logged at block boundaries.
//
// # Quick start
//
//	capture, meta, err := speakersafetyd.LoadBlackbox("blackbox/2024-01-01T00:00:00")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cfg, err := speakersafetyd.LoadMachineConfig("conf/apple/j314.conf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	an, err := speakersafetyd.NewAnalyzer(capture, meta, cfg.Speakers, speakersafetyd.CoeffAt35C)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, res := range an.Run() {
//	    if res.Err != nil {
//	        log.Printf("%s: %v", res.Name, res.Err)
//	        continue
//	    }
//	    aligned, err := an.CrossValidate(&res)
//	    ...
//	}
//
// The engine processes complete, pre-recorded captures; it does not
// operate in real time, and it does not compute the protection gain
// reduction itself, only the temperature signals that would drive it.
// Plotting and report rendering are left to consumers of the output
// series.
package speakersafetyd
