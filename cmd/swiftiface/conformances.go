package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/coreglyph/swiftsection/pkg/swiftinterface/printer"
)

func newConformancesCmd(flags *sharedFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "conformances <macho>",
		Short: "Print every protocol-conformance extension",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, symbols, err := openIndexer(args[0], flags.indexerConfig(), flags.deps)
			if err != nil {
				return err
			}
			p := printer.New(symbols, flags.printerConfig())

			var chunks []printer.Chunk
			for i, def := range ix.ConformanceExtensionDefinitions() {
				if i > 0 {
					chunks = append(chunks, printer.Chunk{Text: "\n\n"})
				}
				chunks = append(chunks, p.PrintExtension(def)...)
			}
			return printer.Render(os.Stdout, chunks, flags.renderOptions())
		},
	}
}
