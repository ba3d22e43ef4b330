package metrics

import "time"

// NoopSink is used when metrics are disabled to avoid nil checks.
type NoopSink struct{}

func NewNoopSink() *NoopSink {
	return &NoopSink{}
}

func (n *NoopSink) TimetableRequest(outcome string, duration time.Duration, days int) {}
func (n *NoopSink) SlotsReturned(count int)                                           {}
func (n *NoopSink) DataSourceFallback(source string)                                  {}
func (n *NoopSink) SnapshotCache(hit bool)                                            {}
func (n *NoopSink) SnapshotInvalidated(topic string)                                  {}
