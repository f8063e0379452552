package events

import "github.com/apex/log"

// LogSubscriber returns a Subscriber that renders every event through
// apex/log, matching the field-based logging style the reference Swift
// dumper (blacktop/ipsw) uses for this exact domain.
func LogSubscriber() Subscriber {
	return func(ev Event) {
		entry := log.WithField("event", ev.Kind)
		for k, v := range ev.Fields {
			entry = entry.WithField(k, v)
		}
		switch ev.Kind {
		case "extractionFailed", "processingFailed":
			entry.Error(ev.Message)
		case "nameExtractionWarning":
			entry.Warn(ev.Message)
		default:
			entry.Debug(ev.Message)
		}
	}
}
