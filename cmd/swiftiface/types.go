package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/coreglyph/swiftsection/pkg/swiftinterface/printer"
)

func newTypesCmd(flags *sharedFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "types <macho>",
		Short: "Print every class/struct/enum declaration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ix, symbols, err := openIndexer(args[0], flags.indexerConfig(), flags.deps)
			if err != nil {
				return err
			}
			p := printer.New(symbols, flags.printerConfig())

			var chunks []printer.Chunk
			for i, def := range ix.RootTypeDefinitions() {
				if i > 0 {
					chunks = append(chunks, printer.Chunk{Text: "\n\n"})
				}
				chunks = append(chunks, p.PrintType(def)...)
			}
			return printer.Render(os.Stdout, chunks, flags.renderOptions())
		},
	}
}
