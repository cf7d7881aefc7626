package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/AsahiLinux/speakersafetyd"
)

var (
	flagConf     string
	flagOutDir   string
	flagCoeff    string
	flagDecimate int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <base>",
	Short: "Run the thermal analysis engine over a capture",
	Long: `Run the thermal analysis engine over a capture.

Replays the firmware's RC temperature tracker and the pilot-tone
impedance estimator for every configured speaker, cross-validates them
against the logged checkpoints, and writes one CSV per speaker with the
aligned series (time, model coil/magnet, impedance estimate, power),
plus a checkpoints CSV for comparison.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&flagConf, "conf", "", "machine .conf file (required)")
	analyzeCmd.Flags().StringVar(&flagOutDir, "out", ".", "output directory for CSV series")
	analyzeCmd.Flags().StringVar(&flagCoeff, "coeff", "35c", "temperature coefficient to use: 20c or 35c")
	analyzeCmd.Flags().IntVar(&flagDecimate, "decimate", 1, "write every Nth sample of the continuous series")
	_ = analyzeCmd.MarkFlagRequired("conf")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	coeff, err := parseCoeff(flagCoeff)
	if err != nil {
		return err
	}
	if flagDecimate < 1 {
		return fmt.Errorf("decimate must be at least 1, got %d", flagDecimate)
	}

	capture, meta, err := speakersafetyd.LoadBlackbox(args[0])
	if err != nil {
		return err
	}
	cfg, err := speakersafetyd.LoadMachineConfig(flagConf)
	if err != nil {
		return err
	}

	an, err := speakersafetyd.NewAnalyzer(capture, meta, cfg.Speakers, coeff)
	if err != nil {
		return err
	}

	log.Printf("Machine %s: %d speakers, %d frames @ %d Hz, %d blocks",
		meta.Machine, len(an.Speakers()), capture.Frames(), meta.SampleRate, len(meta.Blocks))

	failures := 0
	for _, res := range an.Run() {
		if res.Err != nil {
			log.Printf("speaker %d (%s): %v", res.Index, res.Name, res.Err)
			failures++
			continue
		}

		aligned, err := an.CrossValidate(&res)
		if err != nil {
			log.Printf("speaker %d (%s): %v", res.Index, res.Name, err)
			failures++
			continue
		}

		if err := writeSpeakerCSV(&res, aligned); err != nil {
			return err
		}

		log.Printf("speaker %d (%s): rref %.3f Ω, final coil %.2f °C / magnet %.2f °C",
			res.Index, res.Name,
			res.RRef,
			aligned.ModelCoil[len(aligned.ModelCoil)-1],
			aligned.ModelMagnet[len(aligned.ModelMagnet)-1])

		for _, level := range speakersafetyd.ReferenceLevels(meta.Machine, &res.Config) {
			log.Printf("  reference %.0f dB -> %.3f W", level.LevelDB, level.Power)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d speaker(s) failed", failures)
	}
	return nil
}

func parseCoeff(s string) (speakersafetyd.TempCoefficient, error) {
	switch s {
	case "20c":
		return speakersafetyd.CoeffAt20C, nil
	case "35c":
		return speakersafetyd.CoeffAt35C, nil
	default:
		return 0, fmt.Errorf("unknown temperature coefficient %q (want 20c or 35c)", s)
	}
}

func writeSpeakerCSV(res *speakersafetyd.SpeakerResult, aligned *speakersafetyd.AlignedRun) error {
	seriesPath := filepath.Join(flagOutDir, fmt.Sprintf("speaker_%d.csv", res.Index))
	if err := writeCSV(seriesPath,
		[]string{"time", "model_coil", "model_magnet", "impedance", "power"},
		func(w *csv.Writer) error {
			for i := 0; i < len(aligned.Time); i += flagDecimate {
				err := w.Write([]string{
					formatFloat(aligned.Time[i]),
					formatFloat(aligned.ModelCoil[i]),
					formatFloat(aligned.ModelMagnet[i]),
					formatFloat(aligned.Impedance[i]),
					formatFloat(aligned.Power[i]),
				})
				if err != nil {
					return err
				}
			}
			return nil
		}); err != nil {
		return err
	}

	ckptPath := filepath.Join(flagOutDir, fmt.Sprintf("speaker_%d_checkpoints.csv", res.Index))
	return writeCSV(ckptPath,
		[]string{"time", "t_coil", "t_magnet"},
		func(w *csv.Writer) error {
			for i := range aligned.CheckpointTime {
				err := w.Write([]string{
					formatFloat(aligned.CheckpointTime[i]),
					formatFloat(aligned.CheckpointCoil[i]),
					formatFloat(aligned.CheckpointMagnet[i]),
				})
				if err != nil {
					return err
				}
			}
			return nil
		})
}

func writeCSV(path string, header []string, body func(*csv.Writer) error) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return err
	}
	if err := body(w); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
