package biquad_test

import (
	"fmt"

	"github.com/thedjinn/wasm303/dsp/filter/biquad"
)

func ExampleSection_ProcessSample() {
	s := biquad.NewSection(biquad.Coefficients{
		B0: 0.25, B1: 0.5, B2: 0.25,
		A1: -0.2, A2: 0.04,
	})

	for i := range 4 {
		var x float64
		if i == 0 {
			x = 1
		}

		fmt.Printf("y[%d] = %.4f\n", i, s.ProcessSample(x))
	}
	// Output:
	// y[0] = 0.2500
	// y[1] = 0.5500
	// y[2] = 0.3500
	// y[3] = 0.0480
}

func ExampleBypass() {
	s := biquad.Bypass()
	buf := []float64{0.5, -0.25, 1}
	s.ProcessBlock(buf)
	fmt.Println(buf)
	// Output:
	// [0.5 -0.25 1]
}
