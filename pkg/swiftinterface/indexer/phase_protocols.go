package indexer

import "github.com/coreglyph/swiftsection/pkg/swiftinterface/metadata"

// indexProtocols implements Phase 2, walking the same parent-resolution
// rules as Phase 1 but against the protocol record list.
func (ix *Indexer) indexProtocols() error {
	for _, rec := range ix.records.Protocols {
		if ix.disp != nil {
			ix.disp.ProtocolIndexingStarted(rec.Name)
		}
		def := &ProtocolDefinition{Protocol: rec, Name: rec.Name}
		ix.allProtocolDefinitions = append(ix.allProtocolDefinitions, def)
		ix.linkProtocolParent(def)
		if ix.disp != nil {
			ix.disp.ProtocolIndexingCompleted(rec.Name)
		}
	}

	for _, def := range ix.allProtocolDefinitions {
		if def.Parent == nil && def.ExtensionContext == nil {
			ix.rootProtocolDefinitions = append(ix.rootProtocolDefinitions, def)
			continue
		}
		if def.ExtensionContext != nil {
			ix.typeExtensionDefinitions = append(ix.typeExtensionDefinitions, &ExtensionDefinition{
				ExtensionName: ExtensionName{Kind: ExtensionTargetProtocol, Node: def.ExtensionContext},
				Protocols:     []*ProtocolDefinition{def},
			})
		}
	}
	return nil
}

func (ix *Indexer) linkProtocolParent(def *ProtocolDefinition) {
	if def.Protocol.Parent != nil {
		return
	}
	addr, ok := metadata.ProtocolParentAddress(def.Protocol)
	if !ok {
		return
	}
	if parent, ok := ix.typeDefByAddr[addr]; ok {
		def.Parent = parent
		parent.ProtocolChildren = append(parent.ProtocolChildren, def)
	}
	// Unimplemented, same gap as linkTypeParent: ExtensionContext is never
	// set anywhere in this package. A protocol nested inside an extension of
	// a known type — which should attach under a synthesized `type`
	// extension via ExtensionContext, per indexProtocols above — instead
	// falls through this function having done nothing and surfaces as a root
	// protocol, because nothing here can tell an extension context
	// descriptor's address apart from any other unresolved address. Fixing
	// this needs the same descriptor-at-address read the type-parent walk is
	// missing.
}
