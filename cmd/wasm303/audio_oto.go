//go:build !headless

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/thedjinn/wasm303/dsp/core"
	"github.com/thedjinn/wasm303/host"
)

const outputBufferSize = 50 * time.Millisecond

type otoOutput struct {
	ctx    *oto.Context
	player *oto.Player
}

// openOutput starts playing float32 little-endian stereo frames read from
// src on the default audio device.
func openOutput(src io.Reader) (audioOutput, error) {
	op := &oto.NewContextOptions{
		SampleRate:   int(core.SampleRate),
		ChannelCount: host.Channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   outputBufferSize,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(src)
	player.Play()

	return &otoOutput{ctx: ctx, player: player}, nil
}

func (o *otoOutput) Close() error {
	return o.player.Close()
}
