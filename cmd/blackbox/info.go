package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AsahiLinux/speakersafetyd"
)

var infoCmd = &cobra.Command{
	Use:   "info <base>",
	Short: "Print capture metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		capture, meta, err := speakersafetyd.LoadBlackbox(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Machine:      %s (amp gain %.2f dB)\n", meta.Machine, speakersafetyd.AmpGain(meta.Machine))
		if meta.Message != "" {
			fmt.Printf("Preserved:    %s\n", meta.Message)
		}
		fmt.Printf("Sample rate:  %d Hz\n", meta.SampleRate)
		fmt.Printf("Channels:     %d\n", meta.Channels)
		fmt.Printf("Frames:       %d (%.2f s)\n", capture.Frames(),
			float64(capture.Frames())/float64(meta.SampleRate))
		fmt.Printf("Ambient:      %.1f °C (safe max %.1f, hysteresis %.1f)\n",
			meta.TAmbient, meta.TSafeMax, meta.THysteresis)
		fmt.Printf("Blocks:       %d\n", len(meta.Blocks))

		for bi, blk := range meta.Blocks {
			fmt.Printf("  block %3d: %6d frames @ %d Hz", bi, blk.SampleCount, blk.SampleRate)
			for si, ckpt := range blk.Speakers {
				fmt.Printf("  [%d] coil %.2f °C magnet %.2f °C", si, ckpt.TCoil, ckpt.TMagnet)
			}
			fmt.Println()
		}
		return nil
	},
}
