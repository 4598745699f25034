package main

import (
	"fmt"
	"io"
	"math"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thedjinn/wasm303/dsp/core"
	"github.com/thedjinn/wasm303/dsp/filter/biquad"
	"github.com/thedjinn/wasm303/dsp/filter/design"
)

type designParams struct {
	freq      float64
	q         float64
	bandwidth float64
	gainDB    float64
	slope     float64
}

type designEntry struct {
	name  string
	build func(p designParams, sr float64) biquad.Coefficients
}

var designs = []designEntry{
	{"lowpass", func(p designParams, sr float64) biquad.Coefficients {
		return design.Lowpass12(p.freq, p.q, sr)
	}},
	{"highpass", func(p designParams, sr float64) biquad.Coefficients {
		return design.Highpass12(p.freq, p.q, sr)
	}},
	{"bandpass", func(p designParams, sr float64) biquad.Coefficients {
		return design.BandpassPeak(p.freq, p.bandwidth, sr)
	}},
	{"bandpass-skirt", func(p designParams, sr float64) biquad.Coefficients {
		return design.BandpassSkirt(p.freq, p.bandwidth, sr)
	}},
	{"notch", func(p designParams, sr float64) biquad.Coefficients {
		return design.Notch(p.freq, p.bandwidth, sr)
	}},
	{"allpass", func(p designParams, sr float64) biquad.Coefficients {
		return design.Allpass(p.freq, p.q, sr)
	}},
	{"peak", func(p designParams, sr float64) biquad.Coefficients {
		return design.PeakingEQ(p.freq, p.gainDB, p.bandwidth, sr)
	}},
	{"lowshelf", func(p designParams, sr float64) biquad.Coefficients {
		return design.LowShelf(p.freq, p.gainDB, p.slope, sr)
	}},
	{"highshelf", func(p designParams, sr float64) biquad.Coefficients {
		return design.HighShelf(p.freq, p.gainDB, p.slope, sr)
	}},
	{"butterworth-lowpass", func(p designParams, sr float64) biquad.Coefficients {
		return design.ButterworthLowpass6(p.freq, sr)
	}},
	{"butterworth-highpass", func(p designParams, sr float64) biquad.Coefficients {
		return design.ButterworthHighpass6(p.freq, sr)
	}},
	{"moorer-presence", func(p designParams, sr float64) biquad.Coefficients {
		return design.MoorerPresence(p.freq, octavesToHz(p.freq, p.bandwidth), p.gainDB, sr)
	}},
	{"moorer-lowshelf", func(p designParams, sr float64) biquad.Coefficients {
		return design.MoorerShelf(p.freq, p.gainDB, p.slope, false, sr)
	}},
	{"moorer-highshelf", func(p designParams, sr float64) biquad.Coefficients {
		return design.MoorerShelf(p.freq, p.gainDB, p.slope, true, sr)
	}},
}

var (
	responseParams designParams
	responsePoints int
	responseMinHz  float64
	responseMaxHz  float64
)

var responseCmd = &cobra.Command{
	Use:   "response <design>",
	Short: "Print the magnitude and phase response of a filter design",
	Long: `Prints a table of magnitude and phase over log-spaced frequencies for one
of the biquad designs used by the voice. Available designs:
  ` + strings.Join(designNames(), ", "),
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return writeResponse(cmd.OutOrStdout(), args[0], responseParams, responsePoints, responseMinHz, responseMaxHz)
	},
}

func init() {
	f := responseCmd.Flags()
	f.Float64Var(&responseParams.freq, "freq", 1000, "Center or corner frequency in Hz")
	f.Float64Var(&responseParams.q, "q", math.Sqrt2/2, "Quality factor")
	f.Float64Var(&responseParams.bandwidth, "bandwidth", 1, "Bandwidth in octaves")
	f.Float64Var(&responseParams.gainDB, "gain", 6, "Gain in dB for peaking and shelving designs")
	f.Float64Var(&responseParams.slope, "slope", 1, "Shelf slope")
	f.IntVar(&responsePoints, "points", 16, "Number of frequencies")
	f.Float64Var(&responseMinHz, "min-hz", 20, "Lowest frequency")
	f.Float64Var(&responseMaxHz, "max-hz", 20000, "Highest frequency")
}

func designNames() []string {
	names := make([]string, len(designs))
	for i, d := range designs {
		names[i] = d.name
	}

	return names
}

func lookupDesign(name string) (designEntry, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	i := slices.IndexFunc(designs, func(d designEntry) bool { return d.name == name })
	if i < 0 {
		return designEntry{}, fmt.Errorf("unknown design %q (available: %s)", name, strings.Join(designNames(), ", "))
	}

	return designs[i], nil
}

// octavesToHz converts a bandwidth in octaves around freq to Hz.
func octavesToHz(freq, octaves float64) float64 {
	half := math.Exp2(octaves / 2)
	return freq * (half - 1/half)
}

// logFrequencies returns n log-spaced frequencies from lo to hi inclusive.
func logFrequencies(lo, hi float64, n int) ([]float64, error) {
	if n < 2 {
		return nil, fmt.Errorf("points must be >= 2: %d", n)
	}

	if lo <= 0 || hi <= lo {
		return nil, fmt.Errorf("frequency range must satisfy 0 < min < max: %v..%v", lo, hi)
	}

	out := make([]float64, n)
	ratio := math.Log(hi / lo)

	for i := range out {
		out[i] = lo * math.Exp(ratio*float64(i)/float64(n-1))
	}

	return out, nil
}

func writeResponse(w io.Writer, name string, p designParams, points int, lo, hi float64) error {
	entry, err := lookupDesign(name)
	if err != nil {
		return err
	}

	freqs, err := logFrequencies(lo, min(hi, core.Nyquist(core.SampleRate)), points)
	if err != nil {
		return err
	}

	coeffs := entry.build(p, core.SampleRate)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Frequency [Hz]\tMagnitude [dB]\tPhase [deg]\n"); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}

	if _, err := fmt.Fprintf(tw, "--------------\t--------------\t-----------\n"); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}

	for _, f := range freqs {
		if _, err := fmt.Fprintf(tw, "%.1f\t%.2f\t%.1f\n",
			f,
			coeffs.MagnitudeDB(f, core.SampleRate),
			coeffs.Phase(f, core.SampleRate)*180/math.Pi,
		); err != nil {
			return fmt.Errorf("failed to write output row: %w", err)
		}
	}

	return tw.Flush()
}
