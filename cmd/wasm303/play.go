package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thedjinn/wasm303/host"
)

// audioOutput is a running playback stream.
type audioOutput interface {
	Close() error
}

var playSeconds float64

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play the running pattern on the default audio device",
	Long:  `Plays until interrupted with Ctrl-C, or for --seconds when set.`,
	Args:  cobra.NoArgs,
	RunE:  runPlay,
}

func init() {
	playCmd.Flags().Float64Var(&playSeconds, "seconds", 0, "Stop after this many seconds (0 plays until interrupted)")
}

func runPlay(cmd *cobra.Command, _ []string) error {
	if playSeconds < 0 {
		return fmt.Errorf("seconds must be >= 0: %v", playSeconds)
	}

	d, err := newDriver(cmd, host.WithStepHandler(func(step int) {
		logger.Debug("step", "position", step)
	}))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if playSeconds > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(playSeconds*float64(time.Second)))
		defer cancel()
	}

	out, err := openOutput(d)
	if err != nil {
		return err
	}
	defer func() { _ = out.Close() }()

	logger.Info("playing", "seconds", playSeconds)
	<-ctx.Done()
	logger.Info("stopped")

	return nil
}
