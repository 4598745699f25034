package window

import "fmt"

func ExampleGenerate() {
	w := Generate(TypeHann, 5)
	fmt.Printf("%.2f\n", w)
	// Output: [0.00 0.50 1.00 0.50 0.00]
}

func ExampleInfo() {
	m := Info(TypeHann)
	fmt.Printf("%s gain=%.2f enbw=%.2f\n", m.Name, m.CoherentGain, m.ENBW)
	// Output: hann gain=0.50 enbw=1.50
}
