package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/thedjinn/wasm303/host"
	"github.com/thedjinn/wasm303/kernel"
)

type voiceFlag struct {
	name  string
	def   float64
	usage string
}

// voiceFlags mirror the engine defaults. Only flags set on the command line
// are sent to the engine.
var voiceFlags = []voiceFlag{
	{"tempo", 120, "Tempo in BPM"},
	{"cutoff", 450, "Filter cutoff in Hz"},
	{"resonance", 0.9, "Filter resonance (0..1)"},
	{"envmod", 0.7, "Envelope modulation depth (0..1)"},
	{"decay", 150, "Amplitude decay time in ms"},
	{"accent", 0.2, "Accent amount (0..1)"},
	{"tuning", 0, "Tuning offset in semitones"},
	{"waveform", 0, "Waveform index (0 sawtooth, 1 square)"},
	{"distortion", 5.0 / 9.0, "Foldback distortion amount (0..1)"},
	{"shape", 0.5, "Foldback shape (0..1)"},
	{"delay-send", 0.5, "Delay send level (0..1)"},
	{"delay-feedback", 0.5, "Delay feedback (0..1)"},
	{"delay-length", 20000, "Delay length in samples"},
}

func registerVoiceFlags(cmd *cobra.Command) {
	for _, f := range voiceFlags {
		cmd.PersistentFlags().Float64(f.name, f.def, f.usage)
	}
}

// applyVoiceFlags queues an instruction for every voice flag set on cmd.
func applyVoiceFlags(cmd *cobra.Command, d *host.Driver) error {
	flags := cmd.Flags()

	for _, f := range voiceFlags {
		if !flags.Changed(f.name) {
			continue
		}

		value, err := flags.GetFloat64(f.name)
		if err != nil {
			return err
		}

		if err := d.SendParam(f.name, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", f.name, err)
		}

		logger.Debug("voice parameter", "name", f.name, "value", value)
	}

	return nil
}

// newDriver creates an engine that reports through the CLI logger and
// queues the voice flags of cmd.
func newDriver(cmd *cobra.Command, opts ...host.Option) (*host.Driver, error) {
	reporter := &kernel.SlogReporter{Logger: logger}

	d, err := host.New([]kernel.Option{kernel.WithErrorReporter(reporter)}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	if err := applyVoiceFlags(cmd, d); err != nil {
		return nil, err
	}

	return d, nil
}
