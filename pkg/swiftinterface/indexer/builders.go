package indexer

import (
	"github.com/coreglyph/swiftsection/internal/orderedmap"
	"github.com/coreglyph/swiftsection/internal/swiftdemangle"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/symtab"
)

// payloadNode recovers the actual variable/function/subscript/allocator/
// constructor/deallocator/destructor node from a classified symbol's full
// demangled tree, undoing the method-descriptor/protocol-witness/merged-
// function/static wrapping the Symbol Index preserved but did not need to
// strip for its own bucketing.
func payloadNode(root *swiftdemangle.Node) *swiftdemangle.Node {
	if root == nil || len(root.Children) == 0 {
		return nil
	}
	n := root.Children[0]
	switch n.Kind {
	case swiftdemangle.KindMethodDescriptor, swiftdemangle.KindProtocolWitness:
		n = n.FirstChild()
	case swiftdemangle.KindMergedFunction:
		if len(root.Children) < 2 {
			return nil
		}
		n = root.Children[1]
	}
	if n != nil && n.Kind == swiftdemangle.KindStatic {
		n = n.FirstChild()
	}
	return n
}

// applyBuilder runs the Definition Builder matching mk.Tag over syms and
// appends its output into ms.
func applyBuilder(ms *MemberSet, mk symtab.MemberKind, syms []*symtab.IndexedSymbol) {
	switch mk.Tag {
	case symtab.MemberVariable:
		vars := buildVariables(mk, syms)
		if mk.IsStatic {
			ms.StaticVariables = append(ms.StaticVariables, vars...)
		} else {
			ms.Variables = append(ms.Variables, vars...)
		}
	case symtab.MemberSubscript:
		subs := buildSubscripts(mk, syms)
		if mk.IsStatic {
			ms.StaticSubscripts = append(ms.StaticSubscripts, subs...)
		} else {
			ms.Subscripts = append(ms.Subscripts, subs...)
		}
	case symtab.MemberFunction:
		fns := buildFunctions(mk, syms)
		if mk.IsStatic {
			ms.StaticFunctions = append(ms.StaticFunctions, fns...)
		} else {
			ms.Functions = append(ms.Functions, fns...)
		}
	case symtab.MemberAllocator:
		ms.Allocators = append(ms.Allocators, buildAllocators(syms)...)
	case symtab.MemberConstructor:
		ms.Constructors = append(ms.Constructors, buildConstructors(mk, syms)...)
	case symtab.MemberDeallocator:
		if len(syms) > 0 {
			ms.HasDeallocator = true
		}
	case symtab.MemberDestructor:
		if len(syms) > 0 {
			ms.HasDestructor = true
		}
	}
}

func variableIdentifier(variable *swiftdemangle.Node) string {
	if variable == nil {
		return ""
	}
	if id := variable.ChildAt(1); id != nil {
		return id.Text
	}
	return variable.Text
}

// buildVariables groups symbols by the identifier of the variable they
// implement, emitting one VariableDefinition per group whose representative
// node is the first with a getter (or, failing that, the stored symbol
// itself), carrying every accessor as an Accessor entry.
func buildVariables(mk symtab.MemberKind, syms []*symtab.IndexedSymbol) []VariableDefinition {
	order := orderedmap.New[string, *VariableDefinition]()
	for _, is := range syms {
		payload := payloadNode(is.Node)
		var variable *swiftdemangle.Node
		accessorKind := swiftdemangle.KindVariable
		switch {
		case payload == nil:
			continue
		case payload.Kind == swiftdemangle.KindGetter || payload.Kind == swiftdemangle.KindSetter ||
			payload.Kind == swiftdemangle.KindModifyAccessor || payload.Kind == swiftdemangle.KindReadAccessor:
			accessorKind = payload.Kind
			variable = payload.FirstChild()
		case payload.Kind == swiftdemangle.KindVariable:
			variable = payload
		default:
			continue
		}
		name := variableIdentifier(variable)
		def, ok := order.Get(name)
		if !ok {
			def = &VariableDefinition{
				Name:        name,
				Node:        variable,
				IsStatic:    mk.IsStatic,
				InExtension: mk.InExtension,
			}
			order.Set(name, def)
		}
		if accessorKind == swiftdemangle.KindGetter {
			def.Node = variable
		}
		def.Accessors = append(def.Accessors, Accessor{
			Kind:   accessorKind,
			Symbol: is.Symbol.Name,
			Offset: is.Symbol.Offset,
		})
	}
	out := make([]VariableDefinition, 0, order.Len())
	for _, def := range order.Values() {
		out = append(out, *def)
	}
	return out
}

func buildSubscripts(mk symtab.MemberKind, syms []*symtab.IndexedSymbol) []SubscriptDefinition {
	order := orderedmap.New[string, *SubscriptDefinition]()
	for _, is := range syms {
		payload := payloadNode(is.Node)
		var sub *swiftdemangle.Node
		accessorKind := swiftdemangle.KindSubscript
		switch {
		case payload == nil:
			continue
		case payload.Kind == swiftdemangle.KindGetter || payload.Kind == swiftdemangle.KindSetter:
			accessorKind = payload.Kind
			sub = payload.FirstChild()
		case payload.Kind == swiftdemangle.KindSubscript:
			sub = payload
		default:
			continue
		}
		if sub == nil {
			continue
		}
		key := sub.Key()
		def, ok := order.Get(key)
		if !ok {
			def = &SubscriptDefinition{Node: sub, IsStatic: mk.IsStatic, InExtension: mk.InExtension}
			order.Set(key, def)
		}
		if accessorKind == swiftdemangle.KindGetter {
			def.Node = sub
		}
		def.Accessors = append(def.Accessors, Accessor{
			Kind:   accessorKind,
			Symbol: is.Symbol.Name,
			Offset: is.Symbol.Offset,
		})
	}
	out := make([]SubscriptDefinition, 0, order.Len())
	for _, def := range order.Values() {
		out = append(out, *def)
	}
	return out
}

func buildFunctions(mk symtab.MemberKind, syms []*symtab.IndexedSymbol) []FunctionDefinition {
	var out []FunctionDefinition
	for _, is := range syms {
		payload := payloadNode(is.Node)
		if payload == nil || payload.Kind != swiftdemangle.KindFunction {
			continue
		}
		id := payload.ChildAt(1)
		if id == nil {
			continue
		}
		out = append(out, FunctionDefinition{
			Kind:        swiftdemangle.KindFunction,
			Name:        id.Text,
			Symbol:      is.Symbol.Name,
			Offset:      is.Symbol.Offset,
			IsStatic:    mk.IsStatic,
			InExtension: mk.InExtension,
		})
	}
	return out
}

func buildAllocators(syms []*symtab.IndexedSymbol) []FunctionDefinition {
	var out []FunctionDefinition
	for _, is := range syms {
		out = append(out, FunctionDefinition{
			Kind:             swiftdemangle.KindAllocator,
			Symbol:           is.Symbol.Name,
			Offset:           is.Symbol.Offset,
			IsGlobalOrStatic: true,
		})
	}
	return out
}

func buildConstructors(mk symtab.MemberKind, syms []*symtab.IndexedSymbol) []FunctionDefinition {
	var out []FunctionDefinition
	for _, is := range syms {
		out = append(out, FunctionDefinition{
			Kind:        swiftdemangle.KindConstructor,
			Symbol:      is.Symbol.Name,
			Offset:      is.Symbol.Offset,
			IsStatic:    mk.IsStatic,
			InExtension: mk.InExtension,
		})
	}
	return out
}
