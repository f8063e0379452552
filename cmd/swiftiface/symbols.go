package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/coreglyph/swiftsection/internal/swiftdemangle"
)

func newSymbolsCmd(flags *sharedFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "symbols <macho>",
		Short: "List every language symbol the Symbol Index recognized, with its demangled form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, symbols, err := openIndexer(args[0], flags.indexerConfig(), flags.deps)
			if err != nil {
				return err
			}
			for _, sym := range symbols.AllSymbols() {
				text := sym.Symbol.Name
				if sym.Node != nil {
					text = swiftdemangle.Format(sym.Node)
				}
				fmt.Printf("%#010x  %s\n", sym.Symbol.Offset, text)
			}
			return nil
		},
	}
}
