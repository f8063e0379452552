package indexer

import (
	"github.com/coreglyph/swiftsection/internal/swiftdemangle"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/symtab"
)

// globalKinds mirrors extensionMemberKinds's "caller-authoritative order"
// discipline: Phase 5 always visits function before variable×storage axes,
// never relying on globalsByKind's own key iteration.
var globalKinds = []symtab.GlobalKind{
	{Tag: symtab.GlobalFunction},
	{Tag: symtab.GlobalVariable, IsStorage: true},
	{Tag: symtab.GlobalVariable, IsStorage: false},
}

// indexGlobals implements Phase 5, reading straight out of the Symbol
// Index's globalsByKind.
func (ix *Indexer) indexGlobals() error {
	for _, gk := range globalKinds {
		for _, is := range ix.symbols.GlobalSymbols(gk) {
			switch gk.Tag {
			case symtab.GlobalFunction:
				payload := payloadNode(is.Node)
				name := ""
				if payload != nil {
					if id := payload.ChildAt(1); id != nil {
						name = id.Text
					}
				}
				ix.globalFunctionDefinitions = append(ix.globalFunctionDefinitions, FunctionDefinition{
					Kind:             swiftdemangle.KindFunction,
					Name:             name,
					Symbol:           is.Symbol.Name,
					Offset:           is.Symbol.Offset,
					IsGlobalOrStatic: true,
				})
			case symtab.GlobalVariable:
				payload := payloadNode(is.Node)
				var variable *swiftdemangle.Node
				accessorKind := swiftdemangle.KindVariable
				if payload != nil {
					switch payload.Kind {
					case swiftdemangle.KindGetter, swiftdemangle.KindSetter:
						accessorKind = payload.Kind
						variable = payload.FirstChild()
					case swiftdemangle.KindVariable:
						variable = payload
					}
				}
				ix.globalVariableDefinitions = append(ix.globalVariableDefinitions, VariableDefinition{
					Name:             variableIdentifier(variable),
					Node:             variable,
					IsGlobalOrStatic: true,
					Accessors: []Accessor{{
						Kind:   accessorKind,
						Symbol: is.Symbol.Name,
						Offset: is.Symbol.Offset,
					}},
				})
			}
		}
	}
	return nil
}
