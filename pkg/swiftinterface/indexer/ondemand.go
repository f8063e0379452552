package indexer

import (
	"runtime"
	"strings"
	"sync"

	"github.com/coreglyph/swiftsection/internal/swiftdemangle"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/symtab"
)

const lazyStoragePrefix = "$__lazy_storage_$_"

// nonExtensionMemberKinds is the fixed kind list TypeDefinition.index queries
// against the Symbol Index, analogous to extensionMemberKinds but with
// InExtension always false and including the deallocator/destructor/
// constructor tags an extension can never carry.
var nonExtensionMemberKinds = []symtab.MemberKind{
	{Tag: symtab.MemberAllocator},
	{Tag: symtab.MemberConstructor},
	{Tag: symtab.MemberDeallocator},
	{Tag: symtab.MemberDestructor},
	{Tag: symtab.MemberVariable, IsStorage: true},
	{Tag: symtab.MemberVariable, IsStorage: false},
	{Tag: symtab.MemberVariable, IsStatic: true, IsStorage: true},
	{Tag: symtab.MemberVariable, IsStatic: true, IsStorage: false},
	{Tag: symtab.MemberFunction},
	{Tag: symtab.MemberFunction, IsStatic: true},
	{Tag: symtab.MemberSubscript},
	{Tag: symtab.MemberSubscript, IsStatic: true},
}

// Index performs TypeDefinition's on-demand indexing, guarded
// by isIndexed so repeated calls from the Printer perform the work once.
func (t *TypeDefinition) Index(symbols *symtab.Storage) error {
	t.indexOnce.Do(func() {
		t.indexErr = t.doIndex(symbols)
		t.mu.Lock()
		t.isIndexed = true
		t.mu.Unlock()
	})
	return t.indexErr
}

func (t *TypeDefinition) doIndex(symbols *symtab.Storage) error {
	for _, field := range t.Type.Fields {
		for _, rec := range field.Records {
			name := rec.Name
			isLazy := strings.HasPrefix(name, lazyStoragePrefix)
			if isLazy {
				name = strings.TrimPrefix(name, lazyStoragePrefix)
			}
			t.Fields = append(t.Fields, FieldDefinition{
				Name:           name,
				MangledType:    rec.MangledType,
				IsLazy:         isLazy,
				IsWeak:         strings.Contains(rec.MangledType, "Xw"),
				IsVariable:     rec.Flags.IsVar(),
				IsIndirectCase: rec.Flags.IsIndirectCase(),
			})
		}
	}

	fieldNames := make(map[string]bool, len(t.Fields))
	for _, f := range t.Fields {
		fieldNames[f.Name] = true
	}

	for _, mk := range nonExtensionMemberKinds {
		syms := symbols.MemberSymbolsForType(t.TypeName, mk)
		if mk.Tag == symtab.MemberVariable {
			syms = filterOutFieldAccessors(syms, fieldNames)
		}
		applyBuilder(&t.MemberSet, mk, syms)
	}

	return nil
}

// filterOutFieldAccessors drops variable-bucket symbols whose accessor
// target names a field already surfaced by the field descriptor.
func filterOutFieldAccessors(syms []*symtab.IndexedSymbol, fieldNames map[string]bool) []*symtab.IndexedSymbol {
	if len(fieldNames) == 0 {
		return syms
	}
	var out []*symtab.IndexedSymbol
	for _, is := range syms {
		payload := payloadNode(is.Node)
		variable := payload
		if payload != nil && (payload.Kind == swiftdemangle.KindGetter || payload.Kind == swiftdemangle.KindSetter) {
			variable = payload.FirstChild()
		}
		name := variableIdentifier(variable)
		if name != "" && fieldNames[name] {
			continue
		}
		out = append(out, is)
	}
	return out
}

// Index performs ExtensionDefinition's on-demand indexing: resolving
// resilient witnesses against implementation symbols and attaching each
// match to MemberSet. Only meaningful when a protocol conformance with
// resilient witnesses is attached; otherwise it is a no-op.
func (e *ExtensionDefinition) Index(symbols *symtab.Storage) error {
	e.indexOnce.Do(func() {
		e.indexErr = e.doIndex(symbols)
		e.mu.Lock()
		e.isIndexed = true
		e.mu.Unlock()
	})
	return e.indexErr
}

// witnessMemberKinds is every shape a resilient witness's implementation can
// take once unwrapped: the non-extension and in-extension member kinds
// combined, since a protocol witness thunk can wrap either.
var witnessMemberKinds = append(append([]symtab.MemberKind{}, nonExtensionMemberKinds...), extensionMemberKinds...)

// primitiveTypeNameAliases maps bare Swift stdlib type names to the mangled
// substitution code a conforming type's own context node can carry instead
// (and back), so a resilient witness's type name can still be found when the
// conformance record and the classified symbol disagree on which form they use.
var primitiveTypeNameAliases = map[string]string{
	"Int": "Si", "Si": "Int",
	"UInt": "Su", "Su": "UInt",
	"Bool": "Sb", "Sb": "Bool",
	"Float": "Sf", "Sf": "Float",
	"Double": "Sd", "Sd": "Double",
	"String": "SS", "SS": "String",
	"Array": "Sa", "Sa": "Array",
	"Dictionary": "SD", "SD": "Dictionary",
	"Optional": "Sq", "Sq": "Optional",
	"Set": "Sh", "Sh": "Set",
}

func (e *ExtensionDefinition) doIndex(symbols *symtab.Storage) error {
	if e.ProtocolConformance == nil || len(e.ProtocolConformance.ResilientWitnesses) == 0 {
		return nil
	}
	typeName := ""
	if e.ProtocolConformance.TypeRef != nil {
		typeName = e.ProtocolConformance.TypeRef.Name
	}
	for _, w := range e.ProtocolConformance.ResilientWitnesses {
		is, mk, ok := resolveResilientWitness(symbols, typeName, e.ExtensionName.Node, w.Implementation)
		if !ok {
			e.MissingSymbolWitnesses = append(e.MissingSymbolWitnesses, w.ProtocolRequirement)
			continue
		}
		applyBuilder(&e.MemberSet, mk, []*symtab.IndexedSymbol{is})
	}
	return nil
}

// resolveResilientWitness finds the IndexedSymbol a resilient witness's
// implementation address resolves to, trying three tiers in order: an exact
// structural match against typeNode, a textual match on typeName alone, and
// a match against typeName rewritten through the primitive-name alias table.
func resolveResilientWitness(symbols *symtab.Storage, typeName string, typeNode *swiftdemangle.Node, implementation uint64) (*symtab.IndexedSymbol, symtab.MemberKind, bool) {
	raw := symbols.SymbolsAtOffset(implementation)
	if len(raw) == 0 || typeName == "" {
		return nil, symtab.MemberKind{}, false
	}
	if typeNode != nil {
		if is, mk, ok := matchWitnessCandidate(symbols, typeName, typeNode, raw); ok {
			return is, mk, true
		}
	}
	if is, mk, ok := matchWitnessCandidate(symbols, typeName, nil, raw); ok {
		return is, mk, true
	}
	if alt, ok := primitiveTypeNameAliases[typeName]; ok {
		if is, mk, ok := matchWitnessCandidate(symbols, alt, nil, raw); ok {
			return is, mk, true
		}
	}
	return nil, symtab.MemberKind{}, false
}

// matchWitnessCandidate looks up the protocol-witness table under
// (typeName, typeNode) for every witness member kind and returns the first
// candidate whose own symbol matches one of raw (the implementation address's
// resolved symbols).
func matchWitnessCandidate(symbols *symtab.Storage, typeName string, typeNode *swiftdemangle.Node, raw []symtab.Symbol) (*symtab.IndexedSymbol, symtab.MemberKind, bool) {
	for _, mk := range witnessMemberKinds {
		for _, is := range symbols.ProtocolWitnessSymbols(typeName, typeNode, mk) {
			for _, r := range raw {
				if is.Symbol.Offset == r.Offset && is.Symbol.Name == r.Name {
					return is, mk, true
				}
			}
		}
	}
	return nil, symtab.MemberKind{}, false
}

// IndexExtensionsConcurrently runs Index over every extension in exts,
// bounded to max(1, min(4, activeCpus)) in flight. Index is itself idempotent and
// lock-guarded, so concurrent calls across distinct extensions are safe.
func IndexExtensionsConcurrently(exts []*ExtensionDefinition, symbols *symtab.Storage) []error {
	workers := runtime.NumCPU()
	if workers > 4 {
		workers = 4
	}
	if workers < 1 {
		workers = 1
	}

	errs := make([]error, len(exts))
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, ext := range exts {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, ext *ExtensionDefinition) {
			defer wg.Done()
			defer func() { <-sem }()
			errs[i] = ext.Index(symbols)
		}(i, ext)
	}
	wg.Wait()
	return errs
}
