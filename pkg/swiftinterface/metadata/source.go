// Package metadata adapts the raw Mach-O Swift metadata readers (types/swift)
// into the four record lists the Interface Indexer's Phase 0 extraction
// consumes. It owns no file-format knowledge of its own: everything here is a
// projection of records already decoded by the root macho package.
package metadata

import "github.com/coreglyph/swiftsection/types/swift"

// Source is the subset of *macho.File the extractor needs. Depending on an
// interface instead of the concrete type keeps this package (and its tests)
// free of a real Mach-O image on disk.
type Source interface {
	GetSwiftTypes() ([]swift.Type, error)
	GetSwiftProtocols() ([]swift.Protocol, error)
	GetSwiftProtocolConformances() ([]swift.ConformanceDescriptor, error)
	GetSwiftAssociatedTypes() ([]swift.AssociatedType, error)
}
