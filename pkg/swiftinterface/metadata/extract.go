package metadata

import "github.com/coreglyph/swiftsection/pkg/swiftinterface/events"

const (
	sectionTypes           = "__swift5_types"
	sectionProtocols       = "__swift5_protos"
	sectionConformances    = "__swift5_proto"
	sectionAssociatedTypes = "__swift5_assocty"
)

// Extract runs Phase 0: pull the four record lists out of source. Each list
// is extracted independently; a failure on one substitutes an empty list and
// publishes an extractionFailed event rather than aborting the others.
func Extract(source Source, disp *events.Dispatcher) Records {
	var recs Records

	recs.Types = extractOne(disp, sectionTypes, source.GetSwiftTypes)
	recs.Protocols = extractOne(disp, sectionProtocols, source.GetSwiftProtocols)
	recs.Conformances = extractOne(disp, sectionConformances, source.GetSwiftProtocolConformances)
	recs.AssociatedTypes = extractOne(disp, sectionAssociatedTypes, source.GetSwiftAssociatedTypes)

	return recs
}

func extractOne[T any](disp *events.Dispatcher, section string, read func() ([]T, error)) []T {
	if disp != nil {
		disp.ExtractionStarted(section)
	}
	list, err := read()
	if err != nil {
		if disp != nil {
			disp.ExtractionFailed(section, err)
		}
		return nil
	}
	if disp != nil {
		disp.ExtractionCompleted(section, len(list))
	}
	return list
}
