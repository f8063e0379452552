package main

import (
	"github.com/spf13/cobra"

	"github.com/coreglyph/swiftsection/pkg/swiftinterface/indexer"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/printer"
)

// sharedFlags is bound once per invocation from the root command's
// persistent flag set; every subcommand reads through it.
type sharedFlags struct {
	showCImportedTypes bool
	offsets            bool
	layout             bool
	enumLayout         bool
	strippedSymbolic   bool
	color              bool
	deps               bool
}

func (f *sharedFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVar(&f.showCImportedTypes, "show-c-imported-types", false, "include types imported from the Objective-C/C bridging module")
	cmd.PersistentFlags().BoolVar(&f.offsets, "offsets", false, "annotate declarations with their file offset")
	cmd.PersistentFlags().BoolVar(&f.layout, "layout", false, "append an offset comment holding the type record's address to each field")
	cmd.PersistentFlags().BoolVar(&f.enumLayout, "enum-layout", false, "append the --layout offset comment to enum cases only")
	cmd.PersistentFlags().BoolVar(&f.strippedSymbolic, "stripped-symbolic", false, "render placeholders for members with no resolvable symbol")
	cmd.PersistentFlags().BoolVar(&f.color, "color", false, "syntax-highlight output")
	cmd.PersistentFlags().BoolVar(&f.deps, "deps", false, "widen the indexed symbol set with every resolvable imported library")
}

func (f *sharedFlags) indexerConfig() indexer.Configuration {
	return indexer.Configuration{ShowCImportedTypes: f.showCImportedTypes}
}

func (f *sharedFlags) printerConfig() printer.Configuration {
	return printer.Configuration{
		EmitOffsetComments:        f.offsets,
		PrintTypeLayout:           f.layout,
		PrintEnumLayout:           f.enumLayout,
		PrintStrippedSymbolicItem: f.strippedSymbolic,
	}
}

func (f *sharedFlags) renderOptions() printer.RenderOptions {
	return printer.RenderOptions{Color: f.color, DemangleBlob: !f.strippedSymbolic}
}

func newRootCmd() *cobra.Command {
	flags := &sharedFlags{}
	root := &cobra.Command{
		Use:   "swiftiface",
		Short: "Reconstruct a declarative Swift interface from a Mach-O binary",
		Long: `swiftiface reads a Mach-O image's Swift reflective metadata sections
(__swift5_types, __swift5_protos, __swift5_proto, __swift5_assocty,
__swift5_fieldmd) and prints the declarative interface they describe:
types, protocols, extensions, and top-level globals.`,
	}
	flags.register(root)

	root.AddCommand(newTypesCmd(flags))
	root.AddCommand(newProtocolsCmd(flags))
	root.AddCommand(newConformancesCmd(flags))
	root.AddCommand(newInterfaceCmd(flags))
	root.AddCommand(newSymbolsCmd(flags))

	return root
}
