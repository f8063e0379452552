package indexer_test

import (
	"testing"

	"github.com/coreglyph/swiftsection/pkg/swiftinterface/indexer"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/metadata"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/symtab"
	"github.com/coreglyph/swiftsection/types/swift"
)

type fakeSource struct {
	types           []swift.Type
	protocols       []swift.Protocol
	conformances    []swift.ConformanceDescriptor
	associatedTypes []swift.AssociatedType
}

func (f fakeSource) GetSwiftTypes() ([]swift.Type, error) { return f.types, nil }
func (f fakeSource) GetSwiftProtocols() ([]swift.Protocol, error) { return f.protocols, nil }
func (f fakeSource) GetSwiftProtocolConformances() ([]swift.ConformanceDescriptor, error) {
	return f.conformances, nil
}
func (f fakeSource) GetSwiftAssociatedTypes() ([]swift.AssociatedType, error) {
	return f.associatedTypes, nil
}

var _ metadata.Source = fakeSource{}

func TestPrepareRootType(t *testing.T) {
	src := fakeSource{types: []swift.Type{{Address: 1, Name: "Foo", Kind: swift.CDKindClass}}}
	syms := symtab.Build(symtab.BuildInput{}, nil)
	ix := indexer.New(src, syms, nil, indexer.Configuration{})
	if err := ix.Prepare(); err != nil {
		t.Fatal(err)
	}
	roots := ix.RootTypeDefinitions()
	if len(roots) != 1 || roots[0].TypeName != "Foo" {
		t.Fatalf("want 1 root type Foo, got %+v", roots)
	}
}

func TestPrepareExtensionMember(t *testing.T) {
	src := fakeSource{types: []swift.Type{{Address: 1, Name: "Foo", Kind: swift.CDKindClass}}}
	syms := symtab.Build(symtab.BuildInput{Ordinary: []symtab.OrdinarySymbol{
		{Offset: 10, Name: "$SMMod;XExt;CFoo;Zfbar;"},
	}}, nil)
	ix := indexer.New(src, syms, nil, indexer.Configuration{})
	if err := ix.Prepare(); err != nil {
		t.Fatal(err)
	}
	exts := ix.TypeExtensionDefinitions()
	found := false
	for _, e := range exts {
		if len(e.StaticFunctions) == 1 {
			found = true
		}
	}
	if !found {
		t.Fatalf("want an extension with one static function, got %+v", exts)
	}
}

func TestPrepareGlobalFunction(t *testing.T) {
	src := fakeSource{}
	syms := symtab.Build(symtab.BuildInput{Ordinary: []symtab.OrdinarySymbol{
		{Offset: 5, Name: "$SMMod;ffreeFunc;"},
	}}, nil)
	ix := indexer.New(src, syms, nil, indexer.Configuration{})
	if err := ix.Prepare(); err != nil {
		t.Fatal(err)
	}
	if got := ix.GlobalFunctionDefinitions(); len(got) != 1 || got[0].Name != "freeFunc" {
		t.Fatalf("want 1 global function named freeFunc, got %+v", got)
	}
}

func TestPrepareConformanceExtension(t *testing.T) {
	src := fakeSource{
		types: []swift.Type{{Address: 1, Name: "Foo", Kind: swift.CDKindClass}},
		conformances: []swift.ConformanceDescriptor{
			{Protocol: "Equatable", TypeRef: &swift.Type{Address: 1, Name: "Foo"}},
		},
	}
	syms := symtab.Build(symtab.BuildInput{}, nil)
	ix := indexer.New(src, syms, nil, indexer.Configuration{})
	if err := ix.Prepare(); err != nil {
		t.Fatal(err)
	}
	if got := ix.ConformanceExtensionDefinitions(); len(got) != 1 || got[0].ProtocolConformance.Protocol != "Equatable" {
		t.Fatalf("want 1 conformance extension for Equatable, got %+v", got)
	}
}

func TestCImportedTypeSkippedByDefault(t *testing.T) {
	src := fakeSource{types: []swift.Type{{
		Address: 1, Name: "NSFoo", Kind: swift.CDKindClass,
		Parent: &swift.TargetModuleContext{Name: swift.MANGLING_MODULE_OBJC},
	}}}
	syms := symtab.Build(symtab.BuildInput{}, nil)
	ix := indexer.New(src, syms, nil, indexer.Configuration{ShowCImportedTypes: false})
	if err := ix.Prepare(); err != nil {
		t.Fatal(err)
	}
	if got := ix.AllTypeDefinitions(); len(got) != 0 {
		t.Errorf("want 0 type definitions with C-imported types hidden, got %d", len(got))
	}
}
