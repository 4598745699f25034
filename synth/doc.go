// Package synth implements the monophonic acid bass voice.
//
// A [Voice] owns the sequencer, the wavetable oscillator, the filter chain
// and the effects. It renders one sample per [Voice.Render] call and is
// configured by executing [vm.Instruction] values, so every host drives it
// through the same command protocol.
//
// The signal chain per sample is:
//
//	sequencer -> VCO -> highpass -> ladder -> allpass -> highpass -> notch
//	          -> gain (declicked) -> foldback -> delay
//
// Envelope-driven cutoff modulation and portamento run at control rate,
// once every [core.ControlBlockSize] samples.
package synth
