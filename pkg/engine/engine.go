// Package engine provides the HTTPS proxy engine that grizzly supervises.
package engine

import (
	"context"

	"github.com/gooddata/grizzly/pkg/config"
)

// EventKind identifies a lifecycle signal emitted by an Engine.
type EventKind int

const (
	// EventStarted confirms a successful bind for an attempt.
	EventStarted EventKind = iota + 1
	// EventFailed reports that an attempt, or a running server, failed.
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventStarted:
		return "started"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event is a lifecycle signal. Attempt correlates it with the Start call
// that caused it.
type Event struct {
	Kind    EventKind
	Attempt int
	// Err is set for EventFailed and is always an *EngineError.
	Err error
}

// Engine is the contract the orchestrator drives.
//
// Start must not block; the outcome of each call arrives later on Events.
// ReportBoundAddress is only meaningful after EventStarted.
type Engine interface {
	Start(attempt int, cfg config.Configuration)
	Events() <-chan Event
	ReportBoundAddress()
	Shutdown(ctx context.Context) error
}

// Started builds an EventStarted for attempt.
func Started(attempt int) Event {
	return Event{Kind: EventStarted, Attempt: attempt}
}

// Failed builds an EventFailed for attempt. Errors that are not already an
// *EngineError are classified and wrapped under op.
func Failed(attempt int, op string, err error) Event {
	return Event{Kind: EventFailed, Attempt: attempt, Err: Wrap(op, err)}
}
