package core

// Engine-wide constants. Every coefficient derivation in the voice uses
// SampleRate; it is never negotiated with the host.
const (
	// SampleRate is the fixed processing rate in Hz.
	SampleRate = 44100.0

	// BlockSize is the number of frames rendered per host call.
	BlockSize = 128

	// ControlBlockSize is the interval in samples between control-rate
	// updates (swept filter coefficients, portamento).
	ControlBlockSize = 64

	// AntiDenormal is added to recursive filter state after every sample
	// to keep it out of the subnormal range.
	AntiDenormal = 1e-20

	// MaxCutoffHz caps modulated filter cutoffs.
	MaxCutoffHz = 20000.0
)

// Nyquist returns half of sampleRate.
func Nyquist(sampleRate float64) float64 {
	return 0.5 * sampleRate
}
