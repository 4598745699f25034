// Package effects provides the voice's post-filter effects.
//
//   - Foldback: memoryless wave-folding saturator with a threshold and a
//     hard-clip/fold blend.
//   - Delay: single-tap feedback delay with independent send, feedback and
//     length controls.
//
// Both effects are zero-allocation after construction and process one sample
// at a time, with in-place block helpers.
package effects
