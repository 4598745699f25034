package ladder_test

import (
	"fmt"

	"github.com/thedjinn/wasm303/dsp/filter/ladder"
)

func ExampleNew() {
	f, err := ladder.New(44100, ladder.WithCutoffHz(450), ladder.WithResonance(0.9))
	if err != nil {
		panic(err)
	}

	fmt.Printf("cutoff=%.0f resonance=%.1f feedback=%v\n", f.CutoffHz(), f.Resonance(), f.K > 0)
	// Output:
	// cutoff=450 resonance=0.9 feedback=true
}
