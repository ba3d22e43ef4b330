package metrics

import "time"

// Sink defines the interface for recording metrics.
// All methods are fire-and-forget: implementations must not block or propagate errors.
type Sink interface {
	// Request metrics
	TimetableRequest(outcome string, duration time.Duration, days int)
	SlotsReturned(count int)

	// Data source metrics
	DataSourceFallback(source string)
	SnapshotCache(hit bool)

	// Feed metrics
	SnapshotInvalidated(topic string)
}

// Outcome constants for TimetableRequest.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Data source labels for DataSourceFallback.
const (
	SourceEvents    = "events"
	SourceWorkhours = "workhours"
)
