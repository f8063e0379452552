package metadata

import "github.com/coreglyph/swiftsection/types/swift"

// The Metadata Record Readers intentionally do not re-shape what the
// Mach-O layer already produces in an Indexer-friendly form; they alias it.
type (
	TypeRecord           = swift.Type
	ProtocolRecord        = swift.Protocol
	ConformanceRecord     = swift.ConformanceDescriptor
	AssociatedTypeRecord  = swift.AssociatedType
)

// Records is the Phase 0 extraction result: four independently-fallible
// lists, one per reflective metadata section.
type Records struct {
	Types           []TypeRecord
	Protocols       []ProtocolRecord
	Conformances    []ConformanceRecord
	AssociatedTypes []AssociatedTypeRecord
}
