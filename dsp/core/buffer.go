package core

// Interleave writes left and right into dst as L R L R ... and returns the
// number of frames written. The frame count is limited by the shortest input.
func Interleave(dst, left, right []float32) int {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}

	if len(dst)/2 < n {
		n = len(dst) / 2
	}

	for i := range n {
		dst[2*i] = left[i]
		dst[2*i+1] = right[i]
	}

	return n
}

// Widen converts float32 samples into dst, reusing its capacity if possible.
func Widen(dst []float64, src []float32) []float64 {
	if cap(dst) >= len(src) {
		dst = dst[:len(src)]
	} else {
		dst = make([]float64, len(src))
	}

	for i, v := range src {
		dst[i] = float64(v)
	}

	return dst
}
