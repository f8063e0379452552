package printer_test

import (
	"strings"
	"testing"

	"github.com/coreglyph/swiftsection/pkg/swiftinterface/indexer"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/metadata"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/printer"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/symtab"
	"github.com/coreglyph/swiftsection/types/swift"
)

type fakeSource struct {
	types []swift.Type
}

func (f fakeSource) GetSwiftTypes() ([]swift.Type, error) { return f.types, nil }
func (f fakeSource) GetSwiftProtocols() ([]swift.Protocol, error) { return nil, nil }
func (f fakeSource) GetSwiftProtocolConformances() ([]swift.ConformanceDescriptor, error) {
	return nil, nil
}
func (f fakeSource) GetSwiftAssociatedTypes() ([]swift.AssociatedType, error) { return nil, nil }

var _ metadata.Source = fakeSource{}

func TestPrintTypeEmptyBody(t *testing.T) {
	src := fakeSource{types: []swift.Type{{
		Address: 1, Name: "Foo", Kind: swift.CDKindClass,
		Parent: &swift.TargetModuleContext{Name: "Mod"},
	}}}
	syms := symtab.Build(symtab.BuildInput{}, nil)
	ix := indexer.New(src, syms, nil, indexer.Configuration{})
	if err := ix.Prepare(); err != nil {
		t.Fatal(err)
	}
	p := printer.New(syms, printer.Configuration{})
	chunks := p.PrintType(ix.RootTypeDefinitions()[0])
	text := printer.Join(chunks)
	if !strings.Contains(text, "class Mod.Foo {}") {
		t.Fatalf("want empty class body, got %q", text)
	}
}

func TestPrintTypeWithField(t *testing.T) {
	src := fakeSource{types: []swift.Type{{
		Address: 1, Name: "Foo", Kind: swift.CDKindStruct,
		Parent: &swift.TargetModuleContext{Name: "Mod"},
		Fields: []swift.Field{{Records: []swift.FieldRecord{
			{Name: "bar", MangledType: "Si"},
		}}},
	}}}
	syms := symtab.Build(symtab.BuildInput{}, nil)
	ix := indexer.New(src, syms, nil, indexer.Configuration{})
	if err := ix.Prepare(); err != nil {
		t.Fatal(err)
	}
	p := printer.New(syms, printer.Configuration{})
	chunks := p.PrintType(ix.RootTypeDefinitions()[0])
	text := printer.Join(chunks)
	if !strings.Contains(text, "struct Mod.Foo {") || !strings.Contains(text, "bar") || !strings.Contains(text, "Si") {
		t.Fatalf("want field bar: Si rendered, got %q", text)
	}
}

func TestChunkStreamCoalescesAdjacentSameType(t *testing.T) {
	src := fakeSource{types: []swift.Type{{
		Address: 1, Name: "Foo", Kind: swift.CDKindClass,
		Parent: &swift.TargetModuleContext{Name: "Mod"},
	}}}
	syms := symtab.Build(symtab.BuildInput{}, nil)
	ix := indexer.New(src, syms, nil, indexer.Configuration{})
	if err := ix.Prepare(); err != nil {
		t.Fatal(err)
	}
	p := printer.New(syms, printer.Configuration{})
	chunks := p.PrintType(ix.RootTypeDefinitions()[0])
	for i := 1; i < len(chunks); i++ {
		if chunks[i-1].Type == chunks[i].Type {
			t.Fatalf("adjacent chunks %d and %d share type %+v but were not coalesced", i-1, i, chunks[i].Type)
		}
	}
}

func TestRenderPlain(t *testing.T) {
	chunks := []printer.Chunk{{Text: "class Foo {}"}}
	var b strings.Builder
	if err := printer.Render(&b, chunks, printer.RenderOptions{}); err != nil {
		t.Fatal(err)
	}
	if b.String() != "class Foo {}" {
		t.Fatalf("want unchanged text, got %q", b.String())
	}
}
