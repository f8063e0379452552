// Package events is the fire-and-forget progress/diagnostic bus shared by
// the Symbol Index and the Interface Indexer. Nothing on the correctness
// path depends on a subscriber actually being attached.
package events

import "fmt"

// Phase names the six Interface Indexer phases, in their declared order.
type Phase string

const (
	PhaseExtraction   Phase = "extraction"
	PhaseTypes        Phase = "types"
	PhaseProtocols    Phase = "protocols"
	PhaseConformances Phase = "conformances"
	PhaseExtensions   Phase = "extensions"
	PhaseGlobals      Phase = "globals"
)

// PhaseState is the lifecycle state of a phase transition event.
type PhaseState string

const (
	StateStarted   PhaseState = "started"
	StateCompleted PhaseState = "completed"
	StateFailed    PhaseState = "failed"
)

// Event is the common envelope for everything published on the Dispatcher.
// Kind identifies which concrete meaning Fields carries; consumers that only
// care about logging can ignore Fields and print Message.
type Event struct {
	Kind    string
	Message string
	Fields  map[string]any
}

// Subscriber receives every published Event synchronously from the
// publishing goroutine. Subscribers must not block.
type Subscriber func(Event)

// Dispatcher is a push-only pub/sub bus. The zero value is not usable; use
// New.
type Dispatcher struct {
	subscribers []Subscriber
}

// New creates a Dispatcher with no subscribers attached.
func New() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe registers fn to receive every subsequently published event.
func (d *Dispatcher) Subscribe(fn Subscriber) {
	d.subscribers = append(d.subscribers, fn)
}

func (d *Dispatcher) publish(ev Event) {
	for _, sub := range d.subscribers {
		sub(ev)
	}
}

// PhaseTransition announces a phase entering started, completed, or failed.
func (d *Dispatcher) PhaseTransition(phase Phase, state PhaseState, err error) {
	fields := map[string]any{"phase": phase, "state": state}
	msg := fmt.Sprintf("phase %s: %s", phase, state)
	if err != nil {
		fields["error"] = err
		msg = fmt.Sprintf("phase %s: failed: %v", phase, err)
	}
	d.publish(Event{Kind: "phaseTransition", Message: msg, Fields: fields})
}

// ExtractionStarted announces the start of a metadata section extraction.
func (d *Dispatcher) ExtractionStarted(section string) {
	d.publish(Event{Kind: "extractionStarted", Message: "extracting " + section, Fields: map[string]any{"section": section}})
}

// ExtractionCompleted announces a successful extraction with its record count.
func (d *Dispatcher) ExtractionCompleted(section string, count int) {
	d.publish(Event{
		Kind:    "extractionCompleted",
		Message: fmt.Sprintf("extracted %d records from %s", count, section),
		Fields:  map[string]any{"section": section, "count": count},
	})
}

// ExtractionFailed announces a non-fatal extraction failure; the caller
// always substitutes an empty record list and continues.
func (d *Dispatcher) ExtractionFailed(section string, err error) {
	d.publish(Event{
		Kind:    "extractionFailed",
		Message: fmt.Sprintf("failed to extract %s: %v", section, err),
		Fields:  map[string]any{"section": section, "error": err},
	})
}

// TypeIndexingStarted/Completed bracket Phase 1 work on a single type record.
func (d *Dispatcher) TypeIndexingStarted(name string) {
	d.publish(Event{Kind: "typeIndexingStarted", Message: "indexing type " + name, Fields: map[string]any{"name": name}})
}
func (d *Dispatcher) TypeIndexingCompleted(name string) {
	d.publish(Event{Kind: "typeIndexingCompleted", Message: "indexed type " + name, Fields: map[string]any{"name": name}})
}

// ProtocolIndexing brackets Phase 2 work on a single protocol record.
func (d *Dispatcher) ProtocolIndexingStarted(name string) {
	d.publish(Event{Kind: "protocolIndexingStarted", Message: "indexing protocol " + name, Fields: map[string]any{"name": name}})
}
func (d *Dispatcher) ProtocolIndexingCompleted(name string) {
	d.publish(Event{Kind: "protocolIndexingCompleted", Message: "indexed protocol " + name, Fields: map[string]any{"name": name}})
}

// ConformanceIndexing brackets Phase 3 work on a single conformance record.
func (d *Dispatcher) ConformanceIndexingStarted(typeName, protocolName string) {
	d.publish(Event{
		Kind:    "conformanceIndexingStarted",
		Message: fmt.Sprintf("indexing conformance %s: %s", typeName, protocolName),
		Fields:  map[string]any{"typeName": typeName, "protocolName": protocolName},
	})
}
func (d *Dispatcher) ConformanceIndexingCompleted(typeName, protocolName string) {
	d.publish(Event{
		Kind:    "conformanceIndexingCompleted",
		Message: fmt.Sprintf("indexed conformance %s: %s", typeName, protocolName),
		Fields:  map[string]any{"typeName": typeName, "protocolName": protocolName},
	})
}

// ExtensionIndexing brackets Phase 4 work on a single extension group.
func (d *Dispatcher) ExtensionIndexingStarted(typeName string) {
	d.publish(Event{Kind: "extensionIndexingStarted", Message: "indexing extension of " + typeName, Fields: map[string]any{"typeName": typeName}})
}
func (d *Dispatcher) ExtensionIndexingCompleted(typeName string) {
	d.publish(Event{Kind: "extensionIndexingCompleted", Message: "indexed extension of " + typeName, Fields: map[string]any{"typeName": typeName}})
}

// ProcessingFailed reports a per-record construction failure that does not
// abort the phase.
func (d *Dispatcher) ProcessingFailed(what string, err error) {
	d.publish(Event{
		Kind:    "processingFailed",
		Message: fmt.Sprintf("failed to process %s: %v", what, err),
		Fields:  map[string]any{"what": what, "error": err},
	})
}

// NameExtractionWarning reports a resolution failure (missing type info,
// unresolvable witness, unextractable name) that causes a record or witness
// to be skipped/deferred rather than aborting.
func (d *Dispatcher) NameExtractionWarning(section, reason string) {
	d.publish(Event{
		Kind:    "nameExtractionWarning",
		Message: fmt.Sprintf("%s: %s", section, reason),
		Fields:  map[string]any{"section": section, "reason": reason},
	})
}

// Diagnostic emits a free-form leveled message with no other structured
// meaning.
func (d *Dispatcher) Diagnostic(level, message string) {
	d.publish(Event{Kind: "diagnostic", Message: message, Fields: map[string]any{"level": level}})
}
