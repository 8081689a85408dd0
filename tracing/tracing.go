// Package tracing records feature events: to the log, to a SQLite trace
// database, or to several reporters at once.
package tracing

import (
	"fmt"

	"gofreeze/feature"

	"github.com/Moonlight-Companies/gologger/coloransi"
	"github.com/Moonlight-Companies/gologger/logger"
)

// LogReporter writes events to a gologger logger.
type LogReporter struct {
	log *logger.Logger
}

// NewLogReporter creates a LogReporter with an "events" prefix.
func NewLogReporter() *LogReporter {
	return &LogReporter{
		log: logger.NewLogger(coloransi.Color(coloransi.ColorPurple, coloransi.ColorOrange, "events")),
	}
}

func (r *LogReporter) Report(e feature.Event) {
	switch e.Type {
	case feature.EventFailed:
		r.log.Warn(fmt.Sprintf("%s: %s failure at %s: %v", e.Feature, e.Kind, e.Address, e.Err))
	case feature.EventValueChanged:
		r.log.Debugln(e.Feature, "value set to", e.Value)
	case feature.EventPairMatched:
		r.log.Debugln(e.Feature, "pair matched at", e.Address.ToString(), "total", e.Pairs)
	case feature.EventScanFinished, feature.EventModifyStarted, feature.EventModifyStopped, feature.EventPairsCleared:
		r.log.Infoln(e.Feature, e.Type, "pairs:", e.Pairs)
	default:
		r.log.Infoln(e.Feature, e.Type, e.Address.ToString())
	}
}

type multi []feature.Reporter

func (m multi) Report(e feature.Event) {
	for _, r := range m {
		r.Report(e)
	}
}

// Multi reports every event to each non-nil reporter in order.
func Multi(reporters ...feature.Reporter) feature.Reporter {
	var m multi
	for _, r := range reporters {
		if r != nil {
			m = append(m, r)
		}
	}
	return m
}
