package symtab

import (
	"github.com/coreglyph/swiftsection/internal/orderedmap"
	"github.com/coreglyph/swiftsection/internal/swiftdemangle"
)

// memberBucket is the innermost leaf of the member tables: the structural
// type node a set of symbols were classified against, plus the symbols
// themselves in first-contact order.
type memberBucket struct {
	Node    *swiftdemangle.Node
	Symbols []*IndexedSymbol
}

// memberTable is the shape `map<typeName, map<typeNode, list<IndexedSymbol>>>`
// shared by membersByKind, methodDescriptorMembers, and protocolWitnessMembers.
type memberTable = orderedmap.Map[string, *orderedmap.Map[string, *memberBucket]]

func newMemberTable() *memberTable {
	return orderedmap.New[string, *orderedmap.Map[string, *memberBucket]]()
}

// memberKindTable is the shape `map<MemberKind, memberTable>` shared by
// membersByKind, methodDescriptorMembers, and protocolWitnessMembers.
type memberKindTable = orderedmap.Map[MemberKind, *memberTable]

// Storage is the built, read-only Symbol Index for one Mach-O image. The only
// field that ever mutates after Build returns is each IndexedSymbol's
// consumed latch.
type Storage struct {
	typeInfoByName *orderedmap.Map[string, TypeInfo]

	globalsByKind *orderedmap.Map[GlobalKind, []*IndexedSymbol]

	opaqueTypeDescriptorByNode *orderedmap.Map[string, *IndexedSymbol]

	membersByKind          *orderedmap.Map[MemberKind, *memberTable]
	methodDescriptorMembers *orderedmap.Map[MemberKind, *memberTable]
	protocolWitnessMembers  *orderedmap.Map[MemberKind, *memberTable]

	allByKind *orderedmap.Map[swiftdemangle.NodeKind, []*IndexedSymbol]

	symbolsByOffset *orderedmap.Map[uint64, []Symbol]

	demangledNodeBySymbol *orderedmap.Map[string, *swiftdemangle.Node]

	symbolByName map[string]Symbol
	symbolOrder  []string
}

func newStorage() *Storage {
	return &Storage{
		typeInfoByName:             orderedmap.New[string, TypeInfo](),
		globalsByKind:              orderedmap.New[GlobalKind, []*IndexedSymbol](),
		opaqueTypeDescriptorByNode: orderedmap.New[string, *IndexedSymbol](),
		membersByKind:              orderedmap.New[MemberKind, *memberTable](),
		methodDescriptorMembers:    orderedmap.New[MemberKind, *memberTable](),
		protocolWitnessMembers:     orderedmap.New[MemberKind, *memberTable](),
		allByKind:                  orderedmap.New[swiftdemangle.NodeKind, []*IndexedSymbol](),
		symbolsByOffset:            orderedmap.New[uint64, []Symbol](),
		demangledNodeBySymbol:      orderedmap.New[string, *swiftdemangle.Node](),
		symbolByName:               make(map[string]Symbol),
	}
}

func insertIntoTable(table *memberTable, typeName string, typeNode *swiftdemangle.Node, sym *IndexedSymbol) {
	inner, ok := table.Get(typeName)
	if !ok {
		inner = orderedmap.New[string, *memberBucket]()
		table.Set(typeName, inner)
	}
	key := typeNode.Key()
	bucket, ok := inner.Get(key)
	if !ok {
		bucket = &memberBucket{Node: typeNode}
		inner.Set(key, bucket)
	}
	bucket.Symbols = append(bucket.Symbols, sym)
}

func tableFor(byKind *orderedmap.Map[MemberKind, *memberTable], kind MemberKind) *memberTable {
	table, ok := byKind.Get(kind)
	if !ok {
		table = newMemberTable()
		byKind.Set(kind, table)
	}
	return table
}

// --- Consumption API ---

// AllSymbols returns every successfully classified symbol across every
// bucket, in root-global-kind iteration order.
func (s *Storage) AllSymbols() []*IndexedSymbol {
	var out []*IndexedSymbol
	s.allByKind.Range(func(_ swiftdemangle.NodeKind, list []*IndexedSymbol) bool {
		out = append(out, list...)
		return true
	})
	return touch(out)
}

// SymbolsByKind returns the root-global-children bucket for kind.
func (s *Storage) SymbolsByKind(kind swiftdemangle.NodeKind) []*IndexedSymbol {
	list, _ := s.allByKind.Get(kind)
	return touch(append([]*IndexedSymbol(nil), list...))
}

// Symbols returns the union of buckets for the given kinds, in the order the
// kinds were supplied.
func (s *Storage) Symbols(kinds ...swiftdemangle.NodeKind) []*IndexedSymbol {
	var out []*IndexedSymbol
	for _, k := range kinds {
		out = append(out, s.SymbolsByKind(k)...)
	}
	return out
}

// TypeInfo looks up the recorded type info for name.
func (s *Storage) TypeInfo(name string) (TypeInfo, bool) {
	return s.typeInfoByName.Get(name)
}

// SymbolsAtOffset returns every Symbol (raw, demangled or not) recorded at
// offset, including any shared-cache-biased duplicate.
func (s *Storage) SymbolsAtOffset(offset uint64) []Symbol {
	list, _ := s.symbolsByOffset.Get(offset)
	return list
}

// DemangledNode returns the demangled tree for sym, demangling on demand
// (without mutating Storage) if it was not captured during Build. Safe for
// concurrent use.
func (s *Storage) DemangledNode(sym Symbol) (*swiftdemangle.Node, error) {
	if node, ok := s.demangledNodeBySymbol.Get(sym.key()); ok {
		return node, nil
	}
	return swiftdemangle.DemangleSymbol(sym.Name)
}

// GlobalSymbols returns the symbols classified under kind.
func (s *Storage) GlobalSymbols(kind GlobalKind) []*IndexedSymbol {
	list, _ := s.globalsByKind.Get(kind)
	return touch(append([]*IndexedSymbol(nil), list...))
}

// GlobalKinds returns every GlobalKind that has at least one symbol, in
// first-contact order.
func (s *Storage) GlobalKinds() []GlobalKind { return s.globalsByKind.Keys() }

// OpaqueTypeDescriptor looks up the symbol recorded against the structural
// key of an opaque-return-type node.
func (s *Storage) OpaqueTypeDescriptor(node *swiftdemangle.Node) (*IndexedSymbol, bool) {
	sym, ok := s.opaqueTypeDescriptorByNode.Get(node.Key())
	if ok {
		sym.MarkConsumed()
	}
	return sym, ok
}

// MemberSymbols returns every member symbol across the given kinds, flattened
// in (kind, typeName, typeNode) insertion order.
func (s *Storage) MemberSymbols(kinds ...MemberKind) []*IndexedSymbol {
	var out []*IndexedSymbol
	for _, k := range kinds {
		table, ok := s.membersByKind.Get(k)
		if !ok {
			continue
		}
		table.Range(func(_ string, inner *orderedmap.Map[string, *memberBucket]) bool {
			inner.Range(func(_ string, bucket *memberBucket) bool {
				out = append(out, bucket.Symbols...)
				return true
			})
			return true
		})
	}
	return touch(out)
}

// MemberSymbolsForType returns every member symbol across kinds owned by
// typeName.
func (s *Storage) MemberSymbolsForType(typeName string, kinds ...MemberKind) []*IndexedSymbol {
	var out []*IndexedSymbol
	for _, k := range kinds {
		table, ok := s.membersByKind.Get(k)
		if !ok {
			continue
		}
		inner, ok := table.Get(typeName)
		if !ok {
			continue
		}
		inner.Range(func(_ string, bucket *memberBucket) bool {
			out = append(out, bucket.Symbols...)
			return true
		})
	}
	return touch(out)
}

// MemberSymbolsForNode returns the symbols owned by the exact structural
// typeNode under typeName for each of kinds.
func (s *Storage) MemberSymbolsForNode(typeName string, typeNode *swiftdemangle.Node, kinds ...MemberKind) []*IndexedSymbol {
	var out []*IndexedSymbol
	key := typeNode.Key()
	for _, k := range kinds {
		table, ok := s.membersByKind.Get(k)
		if !ok {
			continue
		}
		inner, ok := table.Get(typeName)
		if !ok {
			continue
		}
		bucket, ok := inner.Get(key)
		if !ok {
			continue
		}
		out = append(out, bucket.Symbols...)
	}
	return touch(out)
}

// MemberSymbolsByKind returns, for each requested kind with at least one
// match under typeName, the flattened symbol list, as a map keyed by kind
// (iterate `kinds` itself for deterministic order; this result is a lookup
// aid, not an iteration source).
func (s *Storage) MemberSymbolsByKind(typeName string, kinds ...MemberKind) map[MemberKind][]*IndexedSymbol {
	out := make(map[MemberKind][]*IndexedSymbol)
	for _, k := range kinds {
		if syms := s.MemberSymbolsForType(typeName, k); len(syms) > 0 {
			out[k] = syms
		}
	}
	return out
}

// MemberSymbolsByNode returns, for every distinct typeNode seen across kinds,
// its owning typeName and a per-kind symbol map. excluding skips type names
// present in the set.
func (s *Storage) MemberSymbolsByNode(excluding map[string]bool, kinds ...MemberKind) []NodeGroup {
	order := orderedmap.New[string, *NodeGroup]()
	for _, k := range kinds {
		table, ok := s.membersByKind.Get(k)
		if !ok {
			continue
		}
		table.Range(func(typeName string, inner *orderedmap.Map[string, *memberBucket]) bool {
			if excluding[typeName] {
				return true
			}
			inner.Range(func(nodeKey string, bucket *memberBucket) bool {
				group, ok := order.Get(nodeKey)
				if !ok {
					group = &NodeGroup{TypeName: typeName, TypeNode: bucket.Node, ByKind: map[MemberKind][]*IndexedSymbol{}}
					order.Set(nodeKey, group)
				}
				group.ByKind[k] = append(group.ByKind[k], bucket.Symbols...)
				return true
			})
			return true
		})
	}
	return order.Values()
}

// NodeGroup is one entry of MemberSymbolsByNode's result: every member
// symbol sharing a single structural typeNode, bucketed by MemberKind.
type NodeGroup struct {
	TypeName string
	TypeNode *swiftdemangle.Node
	ByKind   map[MemberKind][]*IndexedSymbol
}

// MethodDescriptorSymbols mirrors MemberSymbolsForNode over the
// methodDescriptor table.
func (s *Storage) MethodDescriptorSymbols(typeName string, typeNode *swiftdemangle.Node, kinds ...MemberKind) []*IndexedSymbol {
	return queryTable(s.methodDescriptorMembers, typeName, typeNode, kinds...)
}

// ProtocolWitnessSymbols mirrors MemberSymbolsForNode over the
// protocolWitness table.
func (s *Storage) ProtocolWitnessSymbols(typeName string, typeNode *swiftdemangle.Node, kinds ...MemberKind) []*IndexedSymbol {
	return queryTable(s.protocolWitnessMembers, typeName, typeNode, kinds...)
}

// TypeNode returns a structural node recorded for typeName, preferring the
// protocol-witness and method-descriptor tables (conformance-adjacent
// contexts) before falling back to ordinary members. Conformance records
// carry no demangled node of their own; this gives a conformance-derived
// extension a comparable structural anchor borrowed from whatever symbol
// the same typeName was already classified against.
func (s *Storage) TypeNode(typeName string) (*swiftdemangle.Node, bool) {
	if typeName == "" {
		return nil, false
	}
	for _, byKind := range []*memberKindTable{s.protocolWitnessMembers, s.methodDescriptorMembers, s.membersByKind} {
		var found *swiftdemangle.Node
		byKind.Range(func(_ MemberKind, table *memberTable) bool {
			inner, ok := table.Get(typeName)
			if !ok {
				return true
			}
			inner.Range(func(_ string, bucket *memberBucket) bool {
				found = bucket.Node
				return false
			})
			return found == nil
		})
		if found != nil {
			return found, true
		}
	}
	return nil, false
}

func queryTable(byKind *orderedmap.Map[MemberKind, *memberTable], typeName string, typeNode *swiftdemangle.Node, kinds ...MemberKind) []*IndexedSymbol {
	var out []*IndexedSymbol
	key := ""
	if typeNode != nil {
		key = typeNode.Key()
	}
	for _, k := range kinds {
		table, ok := byKind.Get(k)
		if !ok {
			continue
		}
		inner, ok := table.Get(typeName)
		if !ok {
			continue
		}
		if typeNode == nil {
			inner.Range(func(_ string, bucket *memberBucket) bool {
				out = append(out, bucket.Symbols...)
				return true
			})
			continue
		}
		if bucket, ok := inner.Get(key); ok {
			out = append(out, bucket.Symbols...)
		}
	}
	return touch(out)
}
