//go:build js && wasm

package main

import (
	"syscall/js"

	"github.com/thedjinn/wasm303/kernel"
)

var (
	synth *kernel.Kernel
	funcs []js.Func
)

func main() {
	api := js.Global().Get("Object").New()
	api.Set("initialize", export(func(_ []js.Value) any {
		if synth == nil {
			k, err := kernel.New()
			if err != nil {
				return err.Error()
			}
			synth = k
		}
		synth.Initialize()
		return js.Null()
	}))

	api.Set("writeCommands", export(func(args []js.Value) any {
		if synth == nil || len(args) < 1 {
			return 0
		}
		return js.CopyBytesToGo(synth.CommandBuffer(), args[0])
	}))

	api.Set("process", export(func(args []js.Value) any {
		if synth == nil {
			return 0
		}
		n := 0
		if len(args) > 0 {
			n = args[0].Int()
		}
		return synth.Process(n)
	}))

	api.Set("readCommands", export(func(args []js.Value) any {
		if synth == nil || len(args) < 1 {
			return js.Global().Get("Uint8Array").New(0)
		}
		buf := synth.CommandBuffer()
		n := min(max(args[0].Int(), 0), len(buf))
		arr := js.Global().Get("Uint8Array").New(n)
		js.CopyBytesToJS(arr, buf[:n])
		return arr
	}))

	api.Set("left", export(func(_ []js.Value) any {
		if synth == nil {
			return js.Global().Get("Float32Array").New(0)
		}
		return float32Array(synth.Left())
	}))

	api.Set("right", export(func(_ []js.Value) any {
		if synth == nil {
			return js.Global().Get("Float32Array").New(0)
		}
		return float32Array(synth.Right())
	}))

	api.Set("commandCapacity", export(func(_ []js.Value) any {
		if synth == nil {
			return 0
		}
		return len(synth.CommandBuffer())
	}))

	js.Global().Set("Wasm303", api)
	select {}
}

func float32Array(buf []float32) js.Value {
	arr := js.Global().Get("Float32Array").New(len(buf))
	for i := range buf {
		arr.SetIndex(i, buf[i])
	}
	return arr
}

func export(fn func([]js.Value) any) js.Func {
	f := js.FuncOf(func(_ js.Value, args []js.Value) any {
		return fn(args)
	})
	funcs = append(funcs, f)
	return f
}
