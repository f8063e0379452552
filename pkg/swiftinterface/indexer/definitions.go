// Package indexer builds the Definition graph: a lazily-indexed tree of
// types, protocols and extensions derived from the Metadata Record Readers
// and queried against the Symbol Index.
package indexer

import (
	"sync"

	"github.com/coreglyph/swiftsection/internal/swiftdemangle"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/metadata"
	"github.com/coreglyph/swiftsection/types/swift"
)

// ParentContextKind distinguishes the three ways a TypeDefinition or
// ProtocolDefinition's owning context can terminate when it is not another
// indexed type.
type ParentContextKind int

const (
	ParentContextNone ParentContextKind = iota
	ParentContextExtension
	ParentContextSymbol
)

// ParentContext records where a definition's context chain bottomed out when
// its immediate parent is not a sibling TypeDefinition.
type ParentContext struct {
	Kind      ParentContextKind
	Extension *swiftdemangle.Node // set when Kind == ParentContextExtension
	Symbol    string              // set when Kind == ParentContextSymbol
}

// Accessor is one symbol implementing a variable or subscript accessor.
type Accessor struct {
	Kind             swiftdemangle.NodeKind
	Symbol           string
	Offset           uint64
	MethodDescriptor *swift.Method
}

// FieldDefinition is one stored field of a class/struct/enum.
type FieldDefinition struct {
	Name          string
	MangledType   string
	IsLazy        bool
	IsWeak        bool
	IsVariable    bool
	IsIndirectCase bool
}

// VariableDefinition groups the getter/setter/modify/read accessors that
// implement one logical property.
type VariableDefinition struct {
	Name             string
	Node             *swiftdemangle.Node
	IsStatic         bool
	InExtension      bool
	IsGlobalOrStatic bool
	Accessors        []Accessor
}

// SubscriptDefinition groups accessors implementing one subscript.
type SubscriptDefinition struct {
	Node        *swiftdemangle.Node
	IsStatic    bool
	InExtension bool
	Accessors   []Accessor
}

// FunctionDefinition is one allocator, constructor, or ordinary function/method.
type FunctionDefinition struct {
	Kind             swiftdemangle.NodeKind
	Name             string
	Symbol           string
	Offset           uint64
	IsStatic         bool
	InExtension      bool
	IsGlobalOrStatic bool
	MethodDescriptor *swift.Method
}

// MemberSet bundles the per-kind output of the Definition Builders shared by
// TypeDefinition, ProtocolDefinition, and ExtensionDefinition.
type MemberSet struct {
	Variables          []VariableDefinition
	StaticVariables    []VariableDefinition
	Functions          []FunctionDefinition
	StaticFunctions    []FunctionDefinition
	Subscripts         []SubscriptDefinition
	StaticSubscripts   []SubscriptDefinition
	Allocators         []FunctionDefinition
	Constructors       []FunctionDefinition
	HasDeallocator     bool
	HasDestructor      bool
}

// TypeDefinition is one class/struct/enum/typeAlias node in the graph.
type TypeDefinition struct {
	Type     metadata.TypeRecord
	TypeName string

	Parent           *TypeDefinition
	ParentContext    *ParentContext
	TypeChildren     []*TypeDefinition
	ProtocolChildren []*ProtocolDefinition

	Fields []FieldDefinition
	MemberSet

	indexOnce sync.Once
	indexErr  error
	isIndexed bool
	mu        sync.Mutex
}

// IsIndexed reports whether index() has already run to completion.
func (t *TypeDefinition) IsIndexed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isIndexed
}

// ProtocolDefinition is one protocol node in the graph.
type ProtocolDefinition struct {
	Protocol metadata.ProtocolRecord
	Name     string

	Parent           *TypeDefinition
	ExtensionContext *swiftdemangle.Node

	MemberSet
}

// ExtensionTargetKind distinguishes what an ExtensionDefinition extends.
type ExtensionTargetKind int

const (
	ExtensionTargetType ExtensionTargetKind = iota
	ExtensionTargetProtocol
	ExtensionTargetTypeAlias
)

// ExtensionName is the (node, kind) pair an ExtensionDefinition is keyed by.
type ExtensionName struct {
	Node *swiftdemangle.Node
	Kind ExtensionTargetKind
}

// ExtensionDefinition is a synthesized `extension X { ... }` block, either
// derived from a nested non-module parent context (Phase 1/2) or from
// in-extension member symbols grouped by generic signature (Phase 4).
type ExtensionDefinition struct {
	ExtensionName ExtensionName

	GenericSignature *swiftdemangle.Node

	ProtocolConformance *metadata.ConformanceRecord
	AssociatedType      *metadata.AssociatedTypeRecord

	Types     []*TypeDefinition
	Protocols []*ProtocolDefinition

	MemberSet

	MissingSymbolWitnesses []string

	indexOnce sync.Once
	indexErr  error
	isIndexed bool
	mu        sync.Mutex
}

func (e *ExtensionDefinition) IsIndexed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.isIndexed
}
