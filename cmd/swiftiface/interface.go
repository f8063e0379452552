package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/coreglyph/swiftsection/pkg/swiftinterface/printer"
)

func newInterfaceCmd(flags *sharedFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "interface <macho>",
		Short: "Print the full reconstructed interface: types, protocols, extensions and globals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, symbols, err := openIndexer(args[0], flags.indexerConfig(), flags.deps)
			if err != nil {
				return err
			}
			p := printer.New(symbols, flags.printerConfig())
			chunks := p.PrintInterface(ix)
			return printer.Render(os.Stdout, chunks, flags.renderOptions())
		},
	}
}
