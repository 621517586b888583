// Package progress defines the event stream emitted by the analysis pipeline.
package progress

import (
	"errors"
	"time"
)

// Stage denotes the milestone an Event represents.
type Stage string

// Supported progress stages.
const (
	StageRunStart Stage = "RUN_START"
	StageRunDone  Stage = "RUN_DONE"
	StagePageDone Stage = "PAGE_DONE"
)

// Event captures one milestone of an analysis run. Page completions carry the
// URL and the number of records produced; run milestones carry totals.
type Event struct {
	// TS is the UTC timestamp recorded by the emitter.
	TS time.Time
	// Stage denotes which milestone occurred.
	Stage Stage
	// URL is the landing page for page-level events.
	URL string
	// Records is the number of analysis records produced.
	Records int
	// Failed marks a page whose fetch did not succeed.
	Failed bool
	// Dur is the wall time of the page pipeline or run.
	Dur time.Duration
	// Note carries low-volume debug context.
	Note string
}

// Validate performs coarse validation on Event payloads.
func (e Event) Validate() error {
	if e.TS.IsZero() {
		return errors.New("timestamp is required")
	}
	switch e.Stage {
	case StageRunStart, StageRunDone:
	case StagePageDone:
		if e.URL == "" {
			return errors.New("page done requires url")
		}
	default:
		return errors.New("unknown stage")
	}
	return nil
}
