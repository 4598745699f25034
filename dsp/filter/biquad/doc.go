// Package biquad provides the second-order IIR runtime used by the voice.
//
// A [Section] runs a Direct Form I recursion over [Coefficients] and keeps
// its input and output history (x1, x2, y1, y2) across calls. Every stored
// output carries the engine's anti-denormal bias so long decays never reach
// subnormal numbers.
//
// Coefficient design (RBJ cookbook, Butterworth, Moorer) lives in
// dsp/filter/design.
package biquad
