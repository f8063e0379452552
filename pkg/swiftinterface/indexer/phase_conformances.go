package indexer

import (
	"github.com/coreglyph/swiftsection/internal/orderedmap"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/metadata"
)

// indexConformances implements Phase 3: index conformance and associated-type
// records by (typeName, protocolName), then synthesize one
// ConformanceExtensionDefinition per conformance, consuming its matching
// associated-type record if present. Associated types left unconsumed after
// every conformance has been processed get their own bare extension.
func (ix *Indexer) indexConformances() error {
	for _, rec := range ix.records.Conformances {
		typeName := ""
		if rec.TypeRef != nil {
			typeName = rec.TypeRef.Name
		}
		protocolName := rec.Protocol
		if typeName == "" || protocolName == "" {
			if ix.disp != nil {
				ix.disp.NameExtractionWarning("conformances", "unresolvable type or protocol name for conformance")
			}
			continue
		}
		byProtocol, ok := ix.protocolConformancesByTypeName.Get(typeName)
		if !ok {
			byProtocol = orderedmap.New[string, metadata.ConformanceRecord]()
			ix.protocolConformancesByTypeName.Set(typeName, byProtocol)
		}
		byProtocol.Set(protocolName, rec)

		types, _ := ix.conformingTypesByProtocolName.Get(protocolName)
		if types == nil {
			types = make(map[string]bool)
		}
		types[typeName] = true
		ix.conformingTypesByProtocolName.Set(protocolName, types)
	}

	for _, rec := range ix.records.AssociatedTypes {
		typeName := rec.ConformingTypeName
		protocolName := rec.ProtocolTypeName
		if typeName == "" || protocolName == "" {
			continue
		}
		byProtocol, ok := ix.associatedTypesByTypeName.Get(typeName)
		if !ok {
			byProtocol = orderedmap.New[string, metadata.AssociatedTypeRecord]()
			ix.associatedTypesByTypeName.Set(typeName, byProtocol)
		}
		byProtocol.Set(protocolName, rec)
	}

	ix.protocolConformancesByTypeName.Range(func(typeName string, byProtocol *orderedmap.Map[string, metadata.ConformanceRecord]) bool {
		byProtocol.Range(func(protocolName string, conf metadata.ConformanceRecord) bool {
			ix.buildConformanceExtension(typeName, protocolName, conf)
			return true
		})
		return true
	})

	ix.associatedTypesByTypeName.Range(func(typeName string, byProtocol *orderedmap.Map[string, metadata.AssociatedTypeRecord]) bool {
		byProtocol.Range(func(protocolName string, at metadata.AssociatedTypeRecord) bool {
			cp := at
			ix.conformanceExtensionDefinitions = append(ix.conformanceExtensionDefinitions, &ExtensionDefinition{
				ExtensionName:  ExtensionName{Kind: ExtensionTargetType},
				AssociatedType: &cp,
			})
			return true
		})
		return true
	})

	return nil
}

func (ix *Indexer) buildConformanceExtension(typeName, protocolName string, conf metadata.ConformanceRecord) {
	cp := conf
	name := ExtensionName{Kind: ExtensionTargetType}
	if node, ok := ix.symbols.TypeNode(typeName); ok {
		name.Node = node
	}
	ext := &ExtensionDefinition{
		ExtensionName:       name,
		ProtocolConformance: &cp,
	}
	if byProtocol, ok := ix.associatedTypesByTypeName.Get(typeName); ok {
		if at, ok := byProtocol.Get(protocolName); ok {
			cpAt := at
			ext.AssociatedType = &cpAt
			byProtocol.Delete(protocolName)
		}
	}
	ix.conformanceExtensionDefinitions = append(ix.conformanceExtensionDefinitions, ext)
}
