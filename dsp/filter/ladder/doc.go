// Package ladder provides the nonlinear four-pole ladder low-pass used as
// the voice's swept filter.
//
// The model follows the diode-ladder approximation popularized by the
// Open303 project: four leaky-integrator stages share neighbouring state,
// and resonance is fed back from the last stage through a fixed 150 Hz
// one-pole high-pass so heavy resonance cannot pump DC into the loop.
// Coefficients come from two fitted curves over the normalized cutoff: a
// low-order rational function for the stage gain b0 and a sixth-degree
// polynomial for the raw feedback gain k. Both are scaled by a skewed
// resonance curve, and the makeup gain g keeps passband level roughly
// constant as resonance rises.
//
// Coefficients are recomputed by SetCutoffHz, which the voice calls once per
// control block rather than per sample.
package ladder
