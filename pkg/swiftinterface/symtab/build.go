package symtab

import (
	"github.com/coreglyph/swiftsection/internal/swiftdemangle"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/events"
)

// OrdinarySymbol is one entry from the image's ordinary symbol table.
type OrdinarySymbol struct {
	Offset    uint64
	Name      string
	External  bool
	Undefined bool
}

// ExportedSymbol is one entry from the image's exported-symbol trie.
type ExportedSymbol struct {
	Offset uint64
	Name   string
}

// SharedCacheInfo describes the shared dyld cache an image may be attached
// to, when building the index against the on-disk file representation of an
// image whose runtime addresses are biased by sharedRegionStart.
type SharedCacheInfo struct {
	SharedRegionStart uint64
}

// BuildInput is everything Build needs, already extracted from a Mach-O
// image by the caller. Keeping this a plain struct (instead of threading a
// *macho.File reference through this package) keeps the Symbol Index
// testable without a real image on disk.
type BuildInput struct {
	Ordinary             []OrdinarySymbol
	Exported             []ExportedSymbol
	SharedCache          *SharedCacheInfo
	IsFileRepresentation bool
	ImageStartOffset     uint64
}

// Build ingests symbols in an initial pass and classifies them in a second,
// returning the finished read-only Storage. disp may be nil.
func Build(input BuildInput, disp *events.Dispatcher) *Storage {
	s := newStorage()

	// Step 1a: ordinary symbols.
	for _, osym := range input.Ordinary {
		if !IsLanguageSymbol(osym.Name) {
			continue
		}
		sym := Symbol{Offset: osym.Offset, Name: osym.Name, NList: &NListInfo{External: osym.External, Undefined: osym.Undefined}}
		s.recordSymbol(sym)
		if input.SharedCache != nil && input.IsFileRepresentation && osym.Offset != 0 {
			biased := sym
			biased.Offset = osym.Offset - input.SharedCache.SharedRegionStart
			s.recordSymbol(biased)
		}
	}

	// Step 1b: exported symbols, skipping names already seen.
	for _, esym := range input.Exported {
		if !IsLanguageSymbol(esym.Name) {
			continue
		}
		if _, seen := s.symbolByName[esym.Name]; seen {
			continue
		}
		sym := Symbol{Offset: esym.Offset, Name: esym.Name}
		s.recordSymbol(sym)
		biased := sym
		biased.Offset = esym.Offset + input.ImageStartOffset
		s.recordSymbol(biased)
	}

	// Step 2: classify every uniquely-named symbol once, in first-contact order.
	for _, name := range s.symbolOrder {
		s.classify(s.symbolByName[name], disp)
	}

	return s
}

func (s *Storage) recordSymbol(sym Symbol) {
	if _, seen := s.symbolByName[sym.Name]; !seen {
		s.symbolOrder = append(s.symbolOrder, sym.Name)
	}
	s.symbolByName[sym.Name] = sym
	list, _ := s.symbolsByOffset.Get(sym.Offset)
	s.symbolsByOffset.Set(sym.Offset, append(list, sym))
}

func (s *Storage) classify(sym Symbol, disp *events.Dispatcher) {
	root, err := swiftdemangle.DemangleSymbol(sym.Name)
	if err != nil {
		if disp != nil {
			disp.NameExtractionWarning("symtab", "demangle failed for "+sym.Name)
		}
		return
	}
	if root.Kind != swiftdemangle.KindGlobal || len(root.Children) == 0 {
		if disp != nil {
			disp.NameExtractionWarning("symtab", "not a root-global tree: "+sym.Name)
		}
		return
	}
	s.demangledNodeBySymbol.Set(sym.key(), root)

	n0 := root.Children[0]
	list, _ := s.allByKind.Get(n0.Kind)
	indexed := newIndexedSymbol(sym, root)
	s.allByKind.Set(n0.Kind, append(list, indexed))

	if isGlobalSymbol(n0) && !sym.isExternal() {
		if gk, ok := processGlobalSymbol(n0); ok {
			list, _ := s.globalsByKind.Get(gk)
			s.globalsByKind.Set(gk, append(list, indexed))
		}
		return
	}

	switch n0.Kind {
	case swiftdemangle.KindMethodDescriptor:
		child0 := n0.FirstChild()
		if mk, ctx, ok := processMemberSymbol(child0); ok {
			s.placeMember(s.methodDescriptorMembers, mk, ctx, indexed)
		}
	case swiftdemangle.KindProtocolWitness:
		child0 := n0.FirstChild()
		if mk, ctx, ok := processMemberSymbol(child0); ok {
			s.placeMember(s.protocolWitnessMembers, mk, ctx, indexed)
		}
	case swiftdemangle.KindMergedFunction:
		if len(root.Children) < 2 {
			return
		}
		classify0 := root.Children[1]
		if mk, ctx, ok := processMemberSymbol(classify0); ok {
			s.placeMember(s.membersByKind, mk, ctx, indexed)
		}
	case swiftdemangle.KindOpaqueTypeDescriptor:
		ret := n0.FirstChild()
		if ret == nil || ret.Kind != swiftdemangle.KindOpaqueReturnTypeOf {
			return
		}
		x := ret.FirstChild()
		if x == nil || sym.Offset == 0 {
			return
		}
		s.opaqueTypeDescriptorByNode.Set(x.Key(), indexed)
	default:
		if mk, ctx, ok := processMemberSymbol(n0); ok {
			s.placeMember(s.membersByKind, mk, ctx, indexed)
		}
	}
}

// placeMember emits the TypeInfo for ctx (if it names a recognized nominal
// kind) and appends sym into byKind[mk][typeName][typeNode].
func (s *Storage) placeMember(byKind *memberKindTable, mk MemberKind, ctx *swiftdemangle.Node, sym *IndexedSymbol) {
	if ctx == nil {
		return
	}
	tk, ok := typeKindOf(ctx.Kind)
	if !ok {
		return
	}
	typeNode := swiftdemangle.NewNode(swiftdemangle.KindType, "")
	typeNode.Append(ctx)
	typeName := typeNodeName(ctx)

	s.typeInfoByName.GetOrInsert(typeName, TypeInfo{Name: typeName, Kind: tk})

	table := tableFor(byKind, mk)
	insertIntoTable(table, typeName, typeNode, sym)
}

func typeKindOf(k swiftdemangle.NodeKind) (TypeKind, bool) {
	switch k {
	case swiftdemangle.KindEnum:
		return TypeKindEnum, true
	case swiftdemangle.KindStructure:
		return TypeKindStruct, true
	case swiftdemangle.KindClass:
		return TypeKindClass, true
	case swiftdemangle.KindProtocol:
		return TypeKindProtocol, true
	case swiftdemangle.KindTypeAlias:
		return TypeKindTypeAlias, true
	default:
		return "", false
	}
}

// typeNodeName renders a context node (class/struct/enum/protocol/typeAlias)
// to its simple interface-type-builder-only name: the trailing identifier.
// The full qualified-name printer lives outside this package; this is the minimal projection the
// Symbol Index itself needs for its typeName lookup key.
func typeNodeName(ctx *swiftdemangle.Node) string {
	if ctx == nil {
		return ""
	}
	if len(ctx.Children) > 0 {
		last := ctx.Children[len(ctx.Children)-1]
		if last.Kind == swiftdemangle.KindIdentifier && last.Text != "" {
			return last.Text
		}
	}
	return ctx.Text
}

// isGlobalSymbol implements the Glossary "isGlobal predicate": n0 is a
// getter/setter/function/variable whose innermost variable/function context
// is a module.
func isGlobalSymbol(n0 *swiftdemangle.Node) bool {
	if n0 == nil {
		return false
	}
	t := n0
	for t != nil && (t.Kind == swiftdemangle.KindGetter || t.Kind == swiftdemangle.KindSetter) {
		t = t.FirstChild()
	}
	if t == nil || (t.Kind != swiftdemangle.KindFunction && t.Kind != swiftdemangle.KindVariable) {
		return false
	}
	ctx := t.FirstChild()
	return ctx != nil && ctx.Kind == swiftdemangle.KindModule
}

// processGlobalSymbol classifies a root-global payload already known to
// satisfy isGlobalSymbol.
func processGlobalSymbol(n *swiftdemangle.Node) (GlobalKind, bool) {
	switch n.Kind {
	case swiftdemangle.KindFunction:
		return GlobalKind{Tag: GlobalFunction}, true
	case swiftdemangle.KindVariable:
		isStorage := n.Parent == nil || !isAccessorKind(n.Parent.Kind)
		return GlobalKind{Tag: GlobalVariable, IsStorage: isStorage}, true
	case swiftdemangle.KindGetter, swiftdemangle.KindSetter:
		return processGlobalSymbol(n.FirstChild())
	default:
		return GlobalKind{}, false
	}
}

// processMemberSymbol recursively peels static/extension/accessor wrappers
// from a member payload node.
func processMemberSymbol(n *swiftdemangle.Node) (MemberKind, *swiftdemangle.Node, bool) {
	return peelMember(n, false)
}

func peelMember(n *swiftdemangle.Node, isStatic bool) (MemberKind, *swiftdemangle.Node, bool) {
	if n == nil {
		return MemberKind{}, nil, false
	}
	switch n.Kind {
	case swiftdemangle.KindStatic:
		inner := n.FirstChild()
		if inner == nil || !inner.Kind.IsMember() {
			return MemberKind{}, nil, false
		}
		return peelMember(inner, true)

	case swiftdemangle.KindAllocator, swiftdemangle.KindConstructor, swiftdemangle.KindFunction:
		ctx, inExt := unwrapExtension(n.FirstChild())
		var tag MemberKindTag
		switch n.Kind {
		case swiftdemangle.KindAllocator:
			tag = MemberAllocator
		case swiftdemangle.KindConstructor:
			tag = MemberConstructor
		default:
			tag = MemberFunction
		}
		return MemberKind{Tag: tag, InExtension: inExt, IsStatic: isStatic}, ctx, true

	case swiftdemangle.KindDeallocator:
		return MemberKind{Tag: MemberDeallocator}, n.FirstChild(), true

	case swiftdemangle.KindDestructor:
		return MemberKind{Tag: MemberDestructor}, n.FirstChild(), true

	case swiftdemangle.KindVariable:
		ctx, inExt := unwrapExtension(n.FirstChild())
		return MemberKind{Tag: MemberVariable, InExtension: inExt, IsStatic: isStatic, IsStorage: true}, ctx, true

	case swiftdemangle.KindSubscript:
		ctx, inExt := unwrapExtension(n.FirstChild())
		return MemberKind{Tag: MemberSubscript, InExtension: inExt, IsStatic: isStatic}, ctx, true

	case swiftdemangle.KindGetter, swiftdemangle.KindSetter:
		child := n.FirstChild()
		if child == nil {
			return MemberKind{}, nil, false
		}
		mk, ctx, ok := peelMember(child, isStatic)
		if !ok {
			return MemberKind{}, nil, false
		}
		if child.Kind == swiftdemangle.KindVariable {
			mk.IsStorage = false
		}
		return mk, ctx, true

	default:
		return MemberKind{}, nil, false
	}
}

func isAccessorKind(k swiftdemangle.NodeKind) bool {
	switch k {
	case swiftdemangle.KindGetter, swiftdemangle.KindSetter, swiftdemangle.KindModifyAccessor, swiftdemangle.KindReadAccessor:
		return true
	default:
		return false
	}
}

func unwrapExtension(ctx *swiftdemangle.Node) (*swiftdemangle.Node, bool) {
	if ctx != nil && ctx.Kind == swiftdemangle.KindExtension {
		return ctx.ChildAt(1), true
	}
	return ctx, false
}
