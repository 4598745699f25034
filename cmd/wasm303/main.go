// Command wasm303 drives the acid bass voice from the command line.
//
// Usage:
//
//	wasm303 <command> [flags]
//
// Examples:
//
//	wasm303 render --seconds 8 -o groove.wav --cutoff 600
//	wasm303 play --tempo 132 --resonance 0.95
//	wasm303 serve --port 8303
//	wasm303 opcodes --format json
//	wasm303 response notch --freq 7.5164 --bandwidth 4.7
//	wasm303 windows hann flattop
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var logLevel string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "wasm303",
	Short: "Render, play and control a TB-303 style bass voice",
	Long: `wasm303 runs the monophonic bass voice and its step sequencer outside the
browser. Voice flags are sent to the engine as instructions through the
command buffer, the same way a browser host controls it.

Examples:
  wasm303 render --seconds 8 -o groove.wav
  wasm303 play --tempo 132 --cutoff 800
  wasm303 serve --port 8303
  wasm303 opcodes --format ts`,
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return initLogger(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	registerVoiceFlags(rootCmd)

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(opcodesCmd)
	rootCmd.AddCommand(responseCmd)
	rootCmd.AddCommand(windowsCmd)
}
