package main

import (
	"fmt"

	"github.com/apex/log"
	macho "github.com/coreglyph/swiftsection"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/events"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/indexer"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/symtab"
)

// openIndexer opens the image at path, builds its Symbol Index, runs the
// Interface Indexer over it, and optionally widens the working symbol set
// with every imported library that resolves on disk (--deps). Resolving a
// dependency's own Swift metadata is out of scope here: only its symbol
// table is folded in, so member symbols living in a dependency can still be
// routed against types defined in the primary image.
func openIndexer(path string, cfg indexer.Configuration, withDeps bool) (*indexer.Indexer, *symtab.Storage, error) {
	f, err := macho.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}

	disp := events.New()
	disp.Subscribe(events.LogSubscriber())

	input := buildInput(f)
	if withDeps {
		for _, lib := range f.ImportedLibraries() {
			dep, err := macho.Open(lib)
			if err != nil {
				log.Warnf("--deps: could not open %s: %v", lib, err)
				continue
			}
			depInput := buildInput(dep)
			input.Ordinary = append(input.Ordinary, depInput.Ordinary...)
			input.Exported = append(input.Exported, depInput.Exported...)
		}
	}

	symbols := symtab.Build(input, disp)
	ix := indexer.New(f, symbols, disp, cfg)
	if err := ix.Prepare(); err != nil {
		return nil, nil, fmt.Errorf("indexing %s: %w", path, err)
	}
	return ix, symbols, nil
}

func buildInput(f *macho.File) symtab.BuildInput {
	input := symtab.BuildInput{IsFileRepresentation: true}
	if f.Symtab != nil {
		for _, sym := range f.Symtab.Syms {
			input.Ordinary = append(input.Ordinary, symtab.OrdinarySymbol{
				Offset:    sym.Value,
				Name:      sym.Name,
				External:  sym.Type.IsExternal(),
				Undefined: sym.Type.IsUndefinedSymbol(),
			})
		}
	}
	if entries, err := f.DyldExports(); err == nil {
		for _, e := range entries {
			input.Exported = append(input.Exported, symtab.ExportedSymbol{Offset: e.Address, Name: e.Name})
		}
	}
	return input
}
