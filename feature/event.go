package feature

import (
	"time"

	"gofreeze/process"
)

// EventType names an outcome reported by a feature.
type EventType string

const (
	EventStarted       EventType = "started"
	EventStopped       EventType = "stopped"
	EventFailed        EventType = "failed"
	EventScanStarted   EventType = "scan_started"
	EventScanFinished  EventType = "scan_finished"
	EventPairMatched   EventType = "pair_matched"
	EventPairsCleared  EventType = "pairs_cleared"
	EventModifyStarted EventType = "modify_started"
	EventModifyStopped EventType = "modify_stopped"
	EventValueChanged  EventType = "value_changed"
)

// Event is one reported outcome. Kind is set for EventFailed only. Pairs
// carries the pair count for scan, modify and clear events; Value carries the new
// enabled value for EventValueChanged.
type Event struct {
	Time    time.Time
	Feature string
	Type    EventType
	Kind    Kind
	Address process.ProcessMemoryAddress
	Pairs   int
	Value   float64
	Err     error
}

// Reporter receives events. Report is called with the feature's lock held
// and must not call back into the feature.
type Reporter interface {
	Report(Event)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Event)

func (f ReporterFunc) Report(e Event) { f(e) }

// Discard drops every event.
var Discard Reporter = ReporterFunc(func(Event) {})
