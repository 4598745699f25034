// Package design provides the biquad coefficient designers used by the voice.
//
// All designers take the sample rate explicitly and return
// [biquad.Coefficients] normalized to a0 = 1. Three families are provided:
//
//   - RBJ cookbook forms (Lowpass12, Highpass12, BandpassSkirt, BandpassPeak,
//     Notch, Allpass, PeakingEQ, LowShelf, HighShelf).
//   - First-order Butterworth sections (ButterworthLowpass6,
//     ButterworthHighpass6).
//   - Moorer's conformal-mapping presence and shelving filters
//     (MoorerPresence, MoorerShelf).
//
// Frequencies outside (0, Nyquist) yield bypass coefficients.
package design
