package kernel_test

import (
	"fmt"

	"github.com/thedjinn/wasm303/kernel"
	"github.com/thedjinn/wasm303/vm"
)

func ExampleKernel_Process() {
	k, err := kernel.New()
	if err != nil {
		panic(err)
	}
	k.Initialize()

	cmds := vm.Encode(nil, vm.SetTempo, 130)
	n := copy(k.CommandBuffer(), cmds)

	written := k.Process(n)
	for in := range vm.Decode(k.CommandBuffer()[:written]) {
		fmt.Println(in.Op)
	}

	fmt.Println(len(k.Left()), k.CurrentSample())
	// Output:
	// BootstrapFinished
	// SetSequencerStep
	// 128 128
}
