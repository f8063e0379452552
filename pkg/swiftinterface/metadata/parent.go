package metadata

import "github.com/coreglyph/swiftsection/types/swift"

// ParentAddress recovers the raw file-offset address of t's parent context
// descriptor, regardless of what kind of context t itself is. types/swift
// only resolves module parents eagerly (Type.Parent); a type nested under
// another type or an extension leaves Type.Parent nil, and the only
// remaining trace of that parent is the ParentOffset embedded in t.Type's
// concrete descriptor. The Interface Indexer uses this address to look up
// the owning record in its own address-keyed working set during Phase 1.
func ParentAddress(t swift.Type) (addr uint64, ok bool) {
	var parentOffset swift.RelativeDirectPointer
	switch d := t.Type.(type) {
	case swift.TargetClassDescriptor:
		parentOffset = d.ParentOffset
	case swift.TargetStructDescriptor:
		parentOffset = d.ParentOffset
	case swift.TargetEnumDescriptor:
		parentOffset = d.ParentOffset
	case swift.TargetExtensionContextDescriptor:
		parentOffset = d.ParentOffset
	case swift.TargetAnonymousContextDescriptor:
		parentOffset = d.ParentOffset
	case swift.TargetModuleContextDescriptor:
		parentOffset = d.ParentOffset
	case swift.TargetTypeContextDescriptor:
		parentOffset = d.ParentOffset
	default:
		return 0, false
	}
	if !parentOffset.IsSet() {
		return 0, false
	}
	return parentOffset.GetAddress(), true
}

// ProtocolParentAddress is ParentAddress's counterpart for protocol
// descriptors, whose parent offset types/swift already exposes directly.
func ProtocolParentAddress(p swift.Protocol) (addr uint64, ok bool) {
	if !p.ParentOffset.IsSet() {
		return 0, false
	}
	return p.ParentOffset.GetAddress(), true
}
