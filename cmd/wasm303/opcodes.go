package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/thedjinn/wasm303/vm"
)

var opcodesFormat string

var opcodesCmd = &cobra.Command{
	Use:   "opcodes",
	Short: "Print the command buffer opcode table",
	Long:  `Prints the opcode table as a TypeScript constant map (ts) or as JSON.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeOpcodes(cmd.OutOrStdout(), opcodesFormat)
	},
}

func init() {
	opcodesCmd.Flags().StringVarP(&opcodesFormat, "format", "f", "ts", "Output format (ts, json)")
}

func writeOpcodes(w io.Writer, format string) error {
	switch format {
	case "ts":
		return writeOpcodesTS(w)
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(vm.Opcodes())
	default:
		return fmt.Errorf("unknown format %q (use ts or json)", format)
	}
}

func writeOpcodesTS(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "// Generated by wasm303 opcodes. Do not edit.\n\nexport const OperandSize = %d;\n\nexport const Opcode = {\n", vm.OperandSize); err != nil {
		return err
	}

	for _, op := range vm.Opcodes() {
		comment := op.KindName
		if op.Notification {
			comment += ", notification"
		}

		if _, err := fmt.Fprintf(w, "  %s: %d, // %s\n", op.Name, op.Code, comment); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintln(w, "} as const;")

	return err
}
