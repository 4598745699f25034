package host

import (
	"errors"
	"slices"

	"github.com/thedjinn/wasm303/vm"
)

// ErrUnknownParam is returned for a parameter name with no opcode.
var ErrUnknownParam = errors.New("host: unknown parameter")

var params = map[string]vm.Opcode{
	"waveform":       vm.SetWaveformIndex,
	"delay-length":   vm.SetDelayLength,
	"running":        vm.SetRunning,
	"next-pattern":   vm.SetNextPattern,
	"cutoff":         vm.SetCutoff,
	"resonance":      vm.SetResonance,
	"envmod":         vm.SetEnvMod,
	"decay":          vm.SetDecay,
	"tempo":          vm.SetTempo,
	"tuning":         vm.SetTuning,
	"accent":         vm.SetAccent,
	"distortion":     vm.SetDistortionThreshold,
	"shape":          vm.SetDistortionShape,
	"delay-send":     vm.SetDelaySend,
	"delay-feedback": vm.SetDelayFeedback,
}

// ParamByName maps a CLI or HTTP parameter name to its opcode.
func ParamByName(name string) (vm.Opcode, bool) {
	op, ok := params[name]
	return op, ok
}

// ParamNames returns the known parameter names in sorted order.
func ParamNames() []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
