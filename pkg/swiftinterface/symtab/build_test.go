package symtab_test

import (
	"testing"

	"github.com/coreglyph/swiftsection/internal/swiftdemangle"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/symtab"
)

func demangleHelper(name string) (*swiftdemangle.Node, error) {
	return swiftdemangle.DemangleSymbol(name)
}

func build(t *testing.T, names ...string) *symtab.Storage {
	t.Helper()
	var ordinary []symtab.OrdinarySymbol
	for i, n := range names {
		ordinary = append(ordinary, symtab.OrdinarySymbol{Offset: uint64(i + 1), Name: n})
	}
	return symtab.Build(symtab.BuildInput{Ordinary: ordinary}, nil)
}

func TestGlobalFunction(t *testing.T) {
	s := build(t, "$SMMod;ffreeFunc;")
	syms := s.GlobalSymbols(symtab.GlobalKind{Tag: symtab.GlobalFunction})
	if len(syms) != 1 {
		t.Fatalf("want 1 global function, got %d", len(syms))
	}
	if syms[0].Symbol.Name != "$SMMod;ffreeFunc;" {
		t.Errorf("unexpected symbol: %+v", syms[0].Symbol)
	}
}

func TestGlobalStoredVariable(t *testing.T) {
	s := build(t, "$SMMod;vcounter;")
	syms := s.GlobalSymbols(symtab.GlobalKind{Tag: symtab.GlobalVariable, IsStorage: true})
	if len(syms) != 1 {
		t.Fatalf("want 1 stored global variable, got %d", len(syms))
	}
}

func TestGlobalComputedVariableViaGetter(t *testing.T) {
	s := build(t, "$SMMod;gcomputed;")
	stored := s.GlobalSymbols(symtab.GlobalKind{Tag: symtab.GlobalVariable, IsStorage: true})
	computed := s.GlobalSymbols(symtab.GlobalKind{Tag: symtab.GlobalVariable, IsStorage: false})
	if len(stored) != 0 {
		t.Errorf("want 0 stored, got %d", len(stored))
	}
	if len(computed) != 1 {
		t.Fatalf("want 1 computed, got %d", len(computed))
	}
}

// TestExtensionStaticFunction matches spec scenario 1: a symbol decoding as
// global → static → function(extension(X, Y), …) lands under
// function(inExtension=true, isStatic=true) keyed by Y's simple name.
func TestExtensionStaticFunction(t *testing.T) {
	s := build(t, "$SMMod;XExt;CFoo;Zfbar;")
	mk := symtab.MemberKind{Tag: symtab.MemberFunction, InExtension: true, IsStatic: true}
	syms := s.MemberSymbolsForType("Foo", mk)
	if len(syms) != 1 {
		t.Fatalf("want 1 extension static function member, got %d", len(syms))
	}
	info, ok := s.TypeInfo("Foo")
	if !ok || info.Kind != symtab.TypeKindClass {
		t.Fatalf("want TypeInfo{Foo, class}, got %+v ok=%v", info, ok)
	}
}

func TestInstanceMethodNotExtension(t *testing.T) {
	s := build(t, "$SMMod;CFoo;fgreet;")
	mk := symtab.MemberKind{Tag: symtab.MemberFunction}
	syms := s.MemberSymbolsForType("Foo", mk)
	if len(syms) != 1 {
		t.Fatalf("want 1 plain instance method, got %d", len(syms))
	}
	inExt := symtab.MemberKind{Tag: symtab.MemberFunction, InExtension: true}
	if got := s.MemberSymbolsForType("Foo", inExt); len(got) != 0 {
		t.Errorf("want 0 in-extension matches, got %d", len(got))
	}
}

func TestMethodDescriptorWrapping(t *testing.T) {
	s := build(t, "$SUMMod;CFoo;fgreet;")
	mk := symtab.MemberKind{Tag: symtab.MemberFunction}
	got := s.MethodDescriptorSymbols("Foo", nil, mk)
	if len(got) != 1 {
		t.Fatalf("want 1 method-descriptor member, got %d", len(got))
	}
	if got := s.MemberSymbolsForType("Foo", mk); len(got) != 0 {
		t.Errorf("method-descriptor wrapped symbol leaked into plain membersByKind: %d", len(got))
	}
}

func TestProtocolWitnessWrapping(t *testing.T) {
	s := build(t, "$SWMMod;CFoo;fgreet;")
	mk := symtab.MemberKind{Tag: symtab.MemberFunction}
	got := s.ProtocolWitnessSymbols("Foo", nil, mk)
	if len(got) != 1 {
		t.Fatalf("want 1 protocol-witness member, got %d", len(got))
	}
}

func TestMergedFunctionUsesSecondChild(t *testing.T) {
	s := build(t, "$SJMMod;CFoo;fgreet;")
	mk := symtab.MemberKind{Tag: symtab.MemberFunction}
	got := s.MemberSymbolsForType("Foo", mk)
	if len(got) != 1 {
		t.Fatalf("want 1 merged-function member, got %d", len(got))
	}
}

func TestOpaqueTypeDescriptorRequiresNonZeroOffset(t *testing.T) {
	var ordinary []symtab.OrdinarySymbol
	ordinary = append(ordinary, symtab.OrdinarySymbol{Offset: 0, Name: "$SKBox;"})
	ordinary = append(ordinary, symtab.OrdinarySymbol{Offset: 10, Name: "$SKCrate;"})
	s := symtab.Build(symtab.BuildInput{Ordinary: ordinary}, nil)

	zeroOffsetNode, err := demangleHelper("$SKBox;")
	if err != nil {
		t.Fatal(err)
	}
	x := zeroOffsetNode.Children[0].Children[0].Children[0]
	if _, ok := s.OpaqueTypeDescriptor(x); ok {
		t.Errorf("offset-0 symbol must not be recorded as an opaque-type descriptor")
	}

	nonZeroNode, err := demangleHelper("$SKCrate;")
	if err != nil {
		t.Fatal(err)
	}
	y := nonZeroNode.Children[0].Children[0].Children[0]
	if _, ok := s.OpaqueTypeDescriptor(y); !ok {
		t.Errorf("offset>0 symbol should be recorded as an opaque-type descriptor")
	}
}

func TestStaticVariableMember(t *testing.T) {
	s := build(t, "$SMMod;CFoo;Zvshared;")
	mk := symtab.MemberKind{Tag: symtab.MemberVariable, IsStatic: true, IsStorage: true}
	if got := s.MemberSymbolsForType("Foo", mk); len(got) != 1 {
		t.Fatalf("want 1 static stored variable member, got %d", len(got))
	}
}

func TestSubscriptGetterMember(t *testing.T) {
	s := build(t, "$SMMod;CFoo;ig;")
	mk := symtab.MemberKind{Tag: symtab.MemberSubscript}
	if got := s.MemberSymbolsForType("Foo", mk); len(got) != 1 {
		t.Fatalf("want 1 subscript member, got %d", len(got))
	}
}

func TestDeterministicOrderAcrossBuilds(t *testing.T) {
	names := []string{"$SMMod;ffirst;", "$SMMod;fsecond;", "$SMMod;fthird;"}
	a := build(t, names...)
	b := build(t, names...)
	wantOrder := func(s *symtab.Storage) []string {
		var out []string
		for _, sym := range s.GlobalSymbols(symtab.GlobalKind{Tag: symtab.GlobalFunction}) {
			out = append(out, sym.Symbol.Name)
		}
		return out
	}
	oa, ob := wantOrder(a), wantOrder(b)
	if len(oa) != len(names) || len(ob) != len(names) {
		t.Fatalf("unexpected counts: %v %v", oa, ob)
	}
	for i := range oa {
		if oa[i] != ob[i] || oa[i] != names[i] {
			t.Errorf("order mismatch at %d: %q vs %q (want %q)", i, oa[i], ob[i], names[i])
		}
	}
}
