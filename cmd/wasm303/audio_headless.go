//go:build headless

package main

import (
	"errors"
	"io"
)

var errNoAudio = errors.New("audio output is not available in headless builds")

func openOutput(io.Reader) (audioOutput, error) {
	return nil, errNoAudio
}
