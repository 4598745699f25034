package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/thedjinn/wasm303/dsp/window"
)

var windowTypes = []window.Type{
	window.TypeRectangular,
	window.TypeHann,
	window.TypeHamming,
	window.TypeBlackman,
	window.TypeBlackmanHarris4Term,
	window.TypeFlatTop,
}

var windowsCmd = &cobra.Command{
	Use:   "windows [window-name ...]",
	Short: "Print properties of the analysis windows used by render",
	Long:  `Without arguments prints every window type accepted by render --window.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		types, err := resolveWindows(args)
		if err != nil {
			return err
		}

		return writeWindowInfo(cmd.OutOrStdout(), types)
	},
}

func resolveWindows(names []string) ([]window.Type, error) {
	if len(names) == 0 {
		return windowTypes, nil
	}

	types := make([]window.Type, 0, len(names))
	for _, name := range names {
		t, err := window.ParseType(name)
		if err != nil {
			return nil, err
		}

		types = append(types, t)
	}

	return types, nil
}

func writeWindowInfo(w io.Writer, types []window.Type) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if _, err := fmt.Fprintf(tw, "Window\tCoherent Gain\tENBW [bins]\n"); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}

	if _, err := fmt.Fprintf(tw, "------\t-------------\t-----------\n"); err != nil {
		return fmt.Errorf("failed to write output header: %w", err)
	}

	for _, t := range types {
		info := window.Info(t)
		if _, err := fmt.Fprintf(tw, "%s\t%.6f\t%.4f\n", info.Name, info.CoherentGain, info.ENBW); err != nil {
			return fmt.Errorf("failed to write output row: %w", err)
		}
	}

	return tw.Flush()
}
