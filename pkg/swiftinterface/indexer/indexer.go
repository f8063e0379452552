package indexer

import (
	"fmt"

	"github.com/coreglyph/swiftsection/internal/orderedmap"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/events"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/metadata"
	"github.com/coreglyph/swiftsection/pkg/swiftinterface/symtab"
	"github.com/coreglyph/swiftsection/types/swift"
)

// Configuration recognizes the one documented indexing option.
type Configuration struct {
	ShowCImportedTypes bool
}

// Indexer orchestrates the five extraction/indexing phases and owns the
// resulting Definition graph. The Symbol Index it queries is built
// separately and handed in read-only.
type Indexer struct {
	source  metadata.Source
	symbols *symtab.Storage
	disp    *events.Dispatcher
	config  Configuration

	records metadata.Records

	allTypeDefinitions    []*TypeDefinition
	typeDefByName         *orderedmap.Map[string, *TypeDefinition]
	typeDefByAddr         map[uint64]*TypeDefinition
	rootTypeDefinitions   []*TypeDefinition

	allProtocolDefinitions  []*ProtocolDefinition
	rootProtocolDefinitions []*ProtocolDefinition

	typeExtensionDefinitions []*ExtensionDefinition

	protocolConformancesByTypeName *orderedmap.Map[string, *orderedmap.Map[string, metadata.ConformanceRecord]]
	conformingTypesByProtocolName  *orderedmap.Map[string, map[string]bool]
	associatedTypesByTypeName      *orderedmap.Map[string, *orderedmap.Map[string, metadata.AssociatedTypeRecord]]
	conformanceExtensionDefinitions []*ExtensionDefinition

	globalVariableDefinitions []VariableDefinition
	globalFunctionDefinitions []FunctionDefinition
}

// New creates an Indexer over source (the Metadata Record Readers) and
// symbols (an already-built Symbol Index for the same image).
func New(source metadata.Source, symbols *symtab.Storage, disp *events.Dispatcher, config Configuration) *Indexer {
	return &Indexer{
		source:                         source,
		symbols:                        symbols,
		disp:                           disp,
		config:                         config,
		typeDefByName:                  orderedmap.New[string, *TypeDefinition](),
		typeDefByAddr:                  make(map[uint64]*TypeDefinition),
		protocolConformancesByTypeName: orderedmap.New[string, *orderedmap.Map[string, metadata.ConformanceRecord]](),
		conformingTypesByProtocolName:  orderedmap.New[string, map[string]bool](),
		associatedTypesByTypeName:      orderedmap.New[string, *orderedmap.Map[string, metadata.AssociatedTypeRecord]](),
	}
}

// Prepare runs all five phases in order. A failure inside a phase is
// re-thrown after the phase's failed event is published; extraction and
// per-record errors never reach here (they are recovered in place).
func (ix *Indexer) Prepare() error {
	ix.records = metadata.Extract(ix.source, ix.disp)

	if err := ix.runPhase(events.PhaseTypes, ix.indexTypes); err != nil {
		return err
	}
	if err := ix.runPhase(events.PhaseProtocols, ix.indexProtocols); err != nil {
		return err
	}
	if err := ix.runPhase(events.PhaseConformances, ix.indexConformances); err != nil {
		return err
	}
	if err := ix.runPhase(events.PhaseExtensions, ix.indexExtensions); err != nil {
		return err
	}
	if err := ix.runPhase(events.PhaseGlobals, ix.indexGlobals); err != nil {
		return err
	}
	return nil
}

func (ix *Indexer) runPhase(phase events.Phase, fn func() error) error {
	if ix.disp != nil {
		ix.disp.PhaseTransition(phase, events.StateStarted, nil)
	}
	if err := fn(); err != nil {
		if ix.disp != nil {
			ix.disp.PhaseTransition(phase, events.StateFailed, err)
		}
		return fmt.Errorf("phase %s: %w", phase, err)
	}
	if ix.disp != nil {
		ix.disp.PhaseTransition(phase, events.StateCompleted, nil)
	}
	return nil
}

// AllTypeDefinitions exposes Phase 1's result for tests/printers.
func (ix *Indexer) AllTypeDefinitions() []*TypeDefinition { return ix.allTypeDefinitions }

// RootTypeDefinitions exposes the type definitions with neither a parent
// TypeDefinition nor a recorded ParentContext.
func (ix *Indexer) RootTypeDefinitions() []*TypeDefinition { return ix.rootTypeDefinitions }

// AllProtocolDefinitions exposes Phase 2's result.
func (ix *Indexer) AllProtocolDefinitions() []*ProtocolDefinition { return ix.allProtocolDefinitions }

// RootProtocolDefinitions exposes top-level (non-nested, non-extension-hosted) protocols.
func (ix *Indexer) RootProtocolDefinitions() []*ProtocolDefinition { return ix.rootProtocolDefinitions }

// TypeExtensionDefinitions exposes every synthesized type/protocol/typeAlias
// extension from phases 1, 2 and 4 combined.
func (ix *Indexer) TypeExtensionDefinitions() []*ExtensionDefinition { return ix.typeExtensionDefinitions }

// ConformanceExtensionDefinitions exposes Phase 3's result.
func (ix *Indexer) ConformanceExtensionDefinitions() []*ExtensionDefinition {
	return ix.conformanceExtensionDefinitions
}

// GlobalVariableDefinitions exposes Phase 5's result.
func (ix *Indexer) GlobalVariableDefinitions() []VariableDefinition { return ix.globalVariableDefinitions }

// GlobalFunctionDefinitions exposes Phase 5's result.
func (ix *Indexer) GlobalFunctionDefinitions() []FunctionDefinition { return ix.globalFunctionDefinitions }

func isCImportedType(t swift.Type) bool {
	return t.Parent != nil && t.Parent.Name == swift.MANGLING_MODULE_OBJC
}
