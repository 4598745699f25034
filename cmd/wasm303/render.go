package main

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/cwbudde/algo-vecmath"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/spf13/cobra"

	"github.com/thedjinn/wasm303/dsp/core"
	"github.com/thedjinn/wasm303/dsp/dither"
	"github.com/thedjinn/wasm303/dsp/window"
	"github.com/thedjinn/wasm303/host"
	"github.com/thedjinn/wasm303/measure/level"
	"github.com/thedjinn/wasm303/measure/spectrum"
)

const (
	wavBitDepth     = 16
	normalizeTarget = 0.98
	maxAnalysisSize = 1 << 16
)

var (
	renderSeconds   float64
	renderOutput    string
	renderNormalize bool
	renderWindow    string
	renderDither    string
	renderShaping   bool
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the running pattern to a 16-bit stereo WAV file",
	Args:  cobra.NoArgs,
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().Float64Var(&renderSeconds, "seconds", 8, "Duration to render in seconds")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "wasm303.wav", "Output WAV file path")
	renderCmd.Flags().BoolVar(&renderNormalize, "normalize", false, "Scale the output to a peak of -0.18 dBFS")
	renderCmd.Flags().StringVar(&renderWindow, "window", "hann", "Analysis window for the spectrum summary")
	renderCmd.Flags().StringVar(&renderDither, "dither", "triangular", "Dither noise (none, rectangular, triangular)")
	renderCmd.Flags().BoolVar(&renderShaping, "noise-shaping", false, "Feed quantization error back to shape the dither noise")
}

func runRender(cmd *cobra.Command, _ []string) error {
	if renderSeconds <= 0 || math.IsNaN(renderSeconds) || math.IsInf(renderSeconds, 0) {
		return fmt.Errorf("seconds must be > 0: %v", renderSeconds)
	}

	wt, err := window.ParseType(renderWindow)
	if err != nil {
		return err
	}

	dt, err := dither.ParseType(renderDither)
	if err != nil {
		return err
	}

	steps := 0
	d, err := newDriver(cmd, host.WithStepHandler(func(int) { steps++ }))
	if err != nil {
		return err
	}

	frames := int(math.Round(renderSeconds * core.SampleRate))
	samples := renderInterleaved(d, frames)

	if renderNormalize {
		if gain, ok := normalize(samples, normalizeTarget); ok {
			logger.Debug("normalized output", "gain", gain)
		}
	}

	data, err := quantize(samples, host.Channels, dither.WithType(dt), dither.WithErrorFeedback(renderShaping))
	if err != nil {
		return err
	}

	if err := writeWAV(renderOutput, data, int(core.SampleRate), host.Channels); err != nil {
		return err
	}

	logger.Info("rendered", "output", renderOutput, "frames", frames, "steps", steps)

	return printSummary(cmd.OutOrStdout(), leftChannel(samples), wt)
}

// renderInterleaved pulls frames stereo frames from d.
func renderInterleaved(d *host.Driver, frames int) []float64 {
	out := make([]float64, 0, frames*host.Channels)
	block := make([]float32, host.BlockFrames*host.Channels)
	wide := make([]float64, 0, len(block))

	for remaining := frames; remaining > 0; {
		n := min(d.RenderBlock(block), remaining)
		wide = core.Widen(wide, block[:n*host.Channels])
		out = append(out, wide...)
		remaining -= n
	}

	return out
}

// normalize scales samples in place so the absolute peak equals target. It
// reports false for silence.
func normalize(samples []float64, target float64) (float64, bool) {
	peak := level.Analyze(samples).Peak
	if peak == 0 {
		return 0, false
	}

	gain := target / peak
	vecmath.ScaleBlock(samples, samples, gain)

	return gain, true
}

func leftChannel(interleaved []float64) []float64 {
	out := make([]float64, len(interleaved)/host.Channels)
	for i := range out {
		out[i] = interleaved[i*host.Channels]
	}

	return out
}

// quantize converts interleaved samples in [-1, 1] to signed 16-bit
// integers with one quantizer per channel.
func quantize(samples []float64, channels int, opts ...dither.Option) ([]int, error) {
	if channels <= 0 || len(samples)%channels != 0 {
		return nil, fmt.Errorf("sample count %d is not a multiple of %d channels", len(samples), channels)
	}

	opts = append([]dither.Option{dither.WithBitDepth(wavBitDepth)}, opts...)

	quantizers := make([]*dither.Quantizer, channels)
	for ch := range quantizers {
		q, err := dither.NewQuantizer(opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create quantizer: %w", err)
		}

		quantizers[ch] = q
	}

	out := make([]int, len(samples))
	for i, v := range samples {
		out[i] = quantizers[i%channels].ProcessInteger(v)
	}

	return out, nil
}

func writeWAV(path string, data []int, sampleRate, channels int) error {
	if channels <= 0 || len(data)%channels != 0 {
		return fmt.Errorf("sample count %d is not a multiple of %d channels", len(data), channels)
	}

	outputFile, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	enc := wav.NewEncoder(outputFile, sampleRate, wavBitDepth, channels, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Data:           data,
		SourceBitDepth: wavBitDepth,
	}

	if err := enc.Write(buf); err != nil {
		_ = outputFile.Close()
		return fmt.Errorf("failed to write WAV data: %w", err)
	}

	if err := enc.Close(); err != nil {
		_ = outputFile.Close()
		return fmt.Errorf("failed to finalize WAV file: %w", err)
	}

	return outputFile.Close()
}

// analysisLength returns the largest power of two not above n, capped at
// maxAnalysisSize.
func analysisLength(n int) int {
	size := 1
	for size*2 <= n && size < maxAnalysisSize {
		size *= 2
	}

	return size
}

func printSummary(w io.Writer, mono []float64, wt window.Type) error {
	stats := level.Analyze(mono)

	if _, err := fmt.Fprintf(w, "peak %.2f dBFS  rms %.2f dBFS  dc %.5f  crest %.2f\n",
		stats.PeakDB(), stats.RMSDB(), stats.DC, stats.CrestFactor()); err != nil {
		return err
	}

	n := analysisLength(len(mono))
	if n < 2 || stats.Peak == 0 {
		return nil
	}

	mags, binHz, err := spectrum.MagnitudeWindow(mono[:n], core.SampleRate, wt)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "spectral peak %.1f Hz (%s, %d points)\n", spectrum.PeakFrequency(mags, binHz), wt, n)

	return err
}
