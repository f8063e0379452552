package indexer

import "github.com/coreglyph/swiftsection/pkg/swiftinterface/symtab"

// extensionMemberKinds is the fixed list of inExtension=true axes Phase 4
// queries, in caller-authoritative iteration order: the kind list supplied
// by the caller is authoritative for outer order.
var extensionMemberKinds = []symtab.MemberKind{
	{Tag: symtab.MemberAllocator, InExtension: true},
	{Tag: symtab.MemberVariable, InExtension: true, IsStorage: false},
	{Tag: symtab.MemberVariable, InExtension: true, IsStatic: true, IsStorage: true},
	{Tag: symtab.MemberVariable, InExtension: true, IsStatic: true, IsStorage: false},
	{Tag: symtab.MemberFunction, InExtension: true, IsStatic: false},
	{Tag: symtab.MemberFunction, InExtension: true, IsStatic: true},
	{Tag: symtab.MemberSubscript, InExtension: true, IsStatic: false},
	{Tag: symtab.MemberSubscript, InExtension: true, IsStatic: true},
}

// indexExtensions implements Phase 4.
//
// Known gap: members carrying a dependentGenericSignature should be grouped
// by that signature node into their own ExtensionDefinition, separate from
// unconstrained members of the same (typeNode, kind). This is not done here,
// and it is not merely undone bookkeeping — parseContextChain's extension
// case (internal/swiftdemangle/symbol.go) never reads a trailing generic
// signature out of the mangled context chain at all, so there is no signature
// node anywhere in the tree to group by. Every member of a given (typeNode,
// kind) therefore lands in one ExtensionDefinition regardless of its generic
// constraints; a generically-constrained member is indistinguishable from an
// unconstrained one and is silently merged into the same extension. Fixing
// this requires teaching the context-chain parser to capture that trailing
// signature first.
func (ix *Indexer) indexExtensions() error {
	groups := ix.symbols.MemberSymbolsByNode(nil, extensionMemberKinds...)
	for _, group := range groups {
		info, ok := ix.symbols.TypeInfo(group.TypeName)
		if !ok {
			if ix.disp != nil {
				ix.disp.NameExtractionWarning("extensions", "no typeInfo for "+group.TypeName)
			}
			continue
		}
		if ix.disp != nil {
			ix.disp.ExtensionIndexingStarted(group.TypeName)
		}

		ext := &ExtensionDefinition{
			ExtensionName: ExtensionName{Node: group.TypeNode, Kind: targetKindFor(info.Kind)},
			// GenericSignature stays nil: see the gap documented above.
		}
		for _, k := range extensionMemberKinds {
			syms := group.ByKind[k]
			if len(syms) == 0 {
				continue
			}
			applyBuilder(&ext.MemberSet, k, syms)
		}
		ix.typeExtensionDefinitions = append(ix.typeExtensionDefinitions, ext)

		if ix.disp != nil {
			ix.disp.ExtensionIndexingCompleted(group.TypeName)
		}
	}
	return nil
}

func targetKindFor(k symtab.TypeKind) ExtensionTargetKind {
	switch k {
	case symtab.TypeKindProtocol:
		return ExtensionTargetProtocol
	case symtab.TypeKindTypeAlias:
		return ExtensionTargetTypeAlias
	default:
		return ExtensionTargetType
	}
}
