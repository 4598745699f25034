package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thedjinn/wasm303/dsp/dither"
	"github.com/thedjinn/wasm303/dsp/window"
	"github.com/thedjinn/wasm303/host"
	"github.com/thedjinn/wasm303/internal/testutil"
	"github.com/thedjinn/wasm303/measure/level"
)

func TestQuantize(t *testing.T) {
	got, err := quantize([]float64{0, 0.5, -0.5, -1, 2, -3}, 2, dither.WithType(dither.TypeNone))
	require.NoError(t, err)
	assert.Equal(t, []int{0, 16384, -16384, -32767, 32767, -32767}, got)

	_, err = quantize([]float64{0, 0, 0}, 2)
	require.Error(t, err)
}

func TestQuantize_Dithered(t *testing.T) {
	samples := testutil.DeterministicSine(440, 44100, 0.5, 2048)

	got, err := quantize(samples, 2)
	require.NoError(t, err)
	require.Len(t, got, len(samples))

	for i, v := range got {
		assert.InDelta(t, samples[i]*32767, float64(v), 1.5)
	}
}

func TestWriteWAV_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	data := []int{0, 0, 16384, -16384, 32767, -32767}

	require.NoError(t, writeWAV(path, data, 44100, 2))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())

	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)

	assert.Equal(t, uint16(2), dec.NumChans)
	assert.Equal(t, uint32(44100), dec.SampleRate)
	assert.Equal(t, uint16(16), dec.BitDepth)
	assert.Equal(t, []int{0, 0, 16384, -16384, 32767, -32767}, buf.Data)
}

func TestWriteWAV_CreateFails(t *testing.T) {
	err := writeWAV(filepath.Join(t.TempDir(), "missing", "out.wav"), []int{0, 0}, 44100, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestWriteWAV_ChannelMismatch(t *testing.T) {
	err := writeWAV(filepath.Join(t.TempDir(), "out.wav"), []int{0, 0, 0}, 44100, 2)
	require.Error(t, err)
}

func TestNormalize(t *testing.T) {
	samples := []float64{0.1, -0.25, 0.2}

	gain, ok := normalize(samples, 0.98)
	require.True(t, ok)
	assert.InDelta(t, 3.92, gain, 1e-12)
	assert.InDelta(t, 0.98, level.Analyze(samples).Peak, 1e-12)

	_, ok = normalize(make([]float64, 4), 0.98)
	assert.False(t, ok)
}

func TestAnalysisLength(t *testing.T) {
	assert.Equal(t, 1, analysisLength(1))
	assert.Equal(t, 512, analysisLength(1000))
	assert.Equal(t, 1024, analysisLength(1024))
	assert.Equal(t, maxAnalysisSize, analysisLength(1<<20))
}

func TestRenderInterleaved(t *testing.T) {
	d, err := host.New(nil)
	require.NoError(t, err)

	samples := renderInterleaved(d, 300)
	require.Len(t, samples, 600)
	testutil.RequireFinite(t, samples)

	left := leftChannel(samples)
	require.Len(t, left, 300)

	for i, v := range left {
		assert.Equal(t, v, samples[2*i+1], "frame %d channels differ", i)
	}

	assert.Positive(t, level.Analyze(left).Peak)
}

func TestPrintSummary(t *testing.T) {
	mono := testutil.DeterministicSine(11025, 44100, 0.5, 8192)

	var out bytes.Buffer
	require.NoError(t, printSummary(&out, mono, window.TypeHann))

	assert.Contains(t, out.String(), "peak -6.02 dBFS")
	assert.Contains(t, out.String(), "spectral peak 11025.0 Hz (hann, 8192 points)")
}

func TestPrintSummary_Silence(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printSummary(&out, make([]float64, 4096), window.TypeHann))
	assert.NotContains(t, out.String(), "spectral peak")
}
