package swiftdemangle

import "strings"

// NodeKind identifies the semantic role of a node in the Swift demangling AST.
type NodeKind string

const (
	// Kinds produced by the type-string grammar (DemangleType / parser.go).
	KindUnknown                     NodeKind = "unknown"
	KindGenericArgs                 NodeKind = "genericArguments"
	KindArgument                    NodeKind = "argument"
	KindArgumentTuple                NodeKind = "argumentTuple"
	KindBoundGeneric                NodeKind = "boundGeneric"
	KindOptional                    NodeKind = "optional"
	KindImplicitlyUnwrappedOptional NodeKind = "implicitlyUnwrappedOptional"
	KindArray                       NodeKind = "array"
	KindDictionary                  NodeKind = "dictionary"
	KindSet                         NodeKind = "set"
	KindAccessor                    NodeKind = "accessor"
	KindTuple                       NodeKind = "tuple"
	KindModule                      NodeKind = "module"
	KindIdentifier                  NodeKind = "identifier"
	KindClass                       NodeKind = "class"
	KindStructure                   NodeKind = "structure"
	KindEnum                        NodeKind = "enum"
	KindProtocol                    NodeKind = "protocol"
	KindTypeAlias                   NodeKind = "typeAlias"
	KindFunction                    NodeKind = "function"
	KindVariable                    NodeKind = "variable"
	KindMethodDescriptor            NodeKind = "methodDescriptor"

	// Metadata-accessor kinds (mangled symbols for runtime metadata machinery;
	// classified as regular members by the Symbol Index but otherwise opaque
	// to interface reconstruction).
	KindNominalTypeDescriptor                         NodeKind = "nominalTypeDescriptor"
	KindProtocolDescriptor                            NodeKind = "protocolDescriptor"
	KindPropertyDescriptor                            NodeKind = "propertyDescriptor"
	KindTypeMetadataAccessFunction                    NodeKind = "typeMetadataAccessFunction"
	KindTypeMetadataCompletionFunction                NodeKind = "typeMetadataCompletionFunction"
	KindTypeMetadataInstantiationFunction              NodeKind = "typeMetadataInstantiationFunction"
	KindTypeMetadataInstantiationCache                 NodeKind = "typeMetadataInstantiationCache"
	KindTypeMetadataSingletonInitializationCache       NodeKind = "typeMetadataSingletonInitializationCache"
	KindCanonicalSpecializedGenericTypeMetadataAccessFunction NodeKind = "canonicalSpecializedGenericTypeMetadataAccessFunction"
	KindCanonicalPrespecializedGenericTypeCachingOnceToken    NodeKind = "canonicalPrespecializedGenericTypeCachingOnceToken"
	KindClassMetadataBaseOffset                        NodeKind = "classMetadataBaseOffset"
	KindMethodLookupFunction                           NodeKind = "methodLookupFunction"
	KindObjCMetadataUpdateFunction                      NodeKind = "objcMetadataUpdateFunction"
	KindObjCResilientClassStub                          NodeKind = "objcResilientClassStub"
	KindFullObjCResilientClassStub                      NodeKind = "fullObjcResilientClassStub"
	KindFullTypeMetadata                                NodeKind = "fullTypeMetadata"

	// Kinds added for symbol-level classification in the Symbol Index.
	KindGlobal                   NodeKind = "global"
	KindSubscript                NodeKind = "subscript"
	KindAllocator                NodeKind = "allocator"
	KindDeallocator              NodeKind = "deallocator"
	KindConstructor              NodeKind = "constructor"
	KindDestructor               NodeKind = "destructor"
	KindGetter                   NodeKind = "getter"
	KindSetter                   NodeKind = "setter"
	KindModifyAccessor           NodeKind = "modifyAccessor"
	KindReadAccessor             NodeKind = "readAccessor"
	KindStatic                   NodeKind = "static"
	KindExtension                NodeKind = "extension"
	KindProtocolWitness          NodeKind = "protocolWitness"
	KindProtocolConformance      NodeKind = "protocolConformance"
	KindMergedFunction           NodeKind = "mergedFunction"
	KindOpaqueTypeDescriptor     NodeKind = "opaqueTypeDescriptor"
	KindOpaqueReturnTypeOf       NodeKind = "opaqueReturnTypeOf"
	KindType                     NodeKind = "type"
	KindDependentGenericSignature NodeKind = "dependentGenericSignature"
	KindRequirementKinds         NodeKind = "requirementKinds"
	KindLabelList                NodeKind = "labelList"
	KindPrivateDeclName          NodeKind = "privateDeclName"
	KindPrefixOperator           NodeKind = "prefixOperator"
	KindInfixOperator            NodeKind = "infixOperator"
	KindPostfixOperator          NodeKind = "postfixOperator"
)

// memberKinds are the kinds whose parent-membership wrapping rules
// treat them as members rather than top-level globals; see IsMember.
var memberKinds = map[NodeKind]bool{
	KindAllocator:       true,
	KindDeallocator:     true,
	KindConstructor:     true,
	KindDestructor:      true,
	KindSubscript:       true,
	KindVariable:        true,
	KindFunction:        true,
	KindGetter:          true,
	KindSetter:          true,
	KindModifyAccessor:  true,
	KindReadAccessor:    true,
	KindStatic:          true,
}

// IsMember reports whether a node of this kind participates in the member
// wrapping rules of the Symbol Index (see processMemberSymbol).
func (k NodeKind) IsMember() bool { return memberKinds[k] }

// NodeFlags holds auxiliary attributes that tweak formatting semantics.
type NodeFlags struct {
	Async    bool
	Throws   bool
	Escaping bool
}

// Node represents a demangled element. Two distinct parses of the same
// mangled input may yield distinct-identity Node trees; Equal and Key give a
// deterministic structural comparison for use as a map key, while ID gives an
// opaque per-allocation identity token for loop-breaking during resolution
// for loop-breaking during resolution where pointer identity would diverge
// from structural identity.
type Node struct {
	Kind     NodeKind
	Text     string
	Children []*Node
	Flags    NodeFlags
	Parent   *Node

	id int64
}

var nodeIDSeq int64

func nextNodeID() int64 {
	nodeIDSeq++
	return nodeIDSeq
}

// NewNode creates a new node with the given kind and text.
func NewNode(kind NodeKind, text string) *Node {
	return &Node{
		Kind: kind,
		Text: text,
		id:   nextNodeID(),
	}
}

// ID returns an opaque identity token, stable for the lifetime of this node
// value but not meaningful across separate demanglings of equal input.
func (n *Node) ID() int64 {
	if n == nil {
		return 0
	}
	return n.id
}

// Append appends child nodes to the receiver and wires their Parent back-reference.
func (n *Node) Append(children ...*Node) {
	if len(children) == 0 {
		return
	}
	for _, c := range children {
		if c != nil {
			c.Parent = n
		}
	}
	n.Children = append(n.Children, children...)
}

// Clone shallow-copies the node, assigning it a fresh identity. Children
// references are copied as-is (their Parent still points at the original).
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{
		Kind:  n.Kind,
		Text:  n.Text,
		Flags: n.Flags,
		id:    nextNodeID(),
	}
	if len(n.Children) > 0 {
		out.Children = append([]*Node(nil), n.Children...)
	}
	return out
}

// Equal reports whether two nodes are structurally equal: same kind, text,
// flags, and recursively-equal children. Parent back-references and
// identity are ignored, so two independent demanglings of the same mangled
// name compare equal.
func (n *Node) Equal(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.Kind != o.Kind || n.Text != o.Text || n.Flags != o.Flags {
		return false
	}
	if len(n.Children) != len(o.Children) {
		return false
	}
	for i := range n.Children {
		if !n.Children[i].Equal(o.Children[i]) {
			return false
		}
	}
	return true
}

// Key returns a deterministic string encoding of the node's structure,
// suitable as a map key anywhere structural-equality lookups are needed
// (e.g. membersByKind[...][typeNode]).
func (n *Node) Key() string {
	var b strings.Builder
	n.writeKey(&b)
	return b.String()
}

func (n *Node) writeKey(b *strings.Builder) {
	if n == nil {
		b.WriteString("<nil>")
		return
	}
	b.WriteByte('(')
	b.WriteString(string(n.Kind))
	b.WriteByte(':')
	b.WriteString(n.Text)
	for _, c := range n.Children {
		b.WriteByte(' ')
		c.writeKey(b)
	}
	b.WriteByte(')')
}

// FirstChild returns the first child or nil.
func (n *Node) FirstChild() *Node {
	if n == nil || len(n.Children) == 0 {
		return nil
	}
	return n.Children[0]
}

// ChildAt returns the child at index i, or nil if out of range.
func (n *Node) ChildAt(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}
