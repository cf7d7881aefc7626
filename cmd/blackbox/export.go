package main

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/cobra"

	"github.com/AsahiLinux/speakersafetyd"
)

var flagExportOut string

const (
	exportBitDepth = 16
	wavFormatPCM   = 1
	int16Norm      = 32768
)

var exportCmd = &cobra.Command{
	Use:   "export <base>",
	Short: "Export the raw sense capture to a WAV file",
	Long: `Export the raw sense capture to a WAV file.

The interleaved sense channels are written unscaled, so the result can
be inspected in any audio tool (the pilot tone is clearly visible in a
spectrogram around its injection frequency).`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&flagExportOut, "out", "capture.wav", "output WAV path")
}

func runExport(cmd *cobra.Command, args []string) (err error) {
	capture, meta, err := speakersafetyd.LoadBlackbox(args[0])
	if err != nil {
		return err
	}

	f, err := os.Create(flagExportOut)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()

	enc := wav.NewEncoder(f, meta.SampleRate, exportBitDepth, meta.Channels, wavFormatPCM)

	// Undo the loader's normalization. 1/32768 is a power of two, so
	// the round trip through float64 is bit-exact.
	data := make([]int, capture.Frames()*meta.Channels)
	for ch := range meta.Channels {
		samples, err := capture.SenseChannel(ch, int16Norm, 0, capture.Frames())
		if err != nil {
			return err
		}
		for i, s := range samples {
			data[i*meta.Channels+ch] = int(s)
		}
	}

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: meta.Channels,
			SampleRate:  meta.SampleRate,
		},
		Data:           data,
		SourceBitDepth: exportBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	if err := enc.Close(); err != nil {
		return err
	}

	fmt.Printf("Wrote %s: %d frames, %d channels @ %d Hz\n",
		flagExportOut, capture.Frames(), meta.Channels, meta.SampleRate)
	return nil
}
