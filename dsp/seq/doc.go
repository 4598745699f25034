// Package seq implements the step sequencer that drives the voice.
//
// A [Sequencer] holds eight patterns of up to sixteen steps and is advanced
// once per output sample. When a step boundary is crossed it returns the new
// step; the voice turns that into envelope triggers and oscillator pitch.
// Pattern switches requested with [Sequencer.SetNextPattern] take effect at
// the next wrap of the active pattern.
package seq
