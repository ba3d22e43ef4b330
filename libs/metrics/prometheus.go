package metrics

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink implements Sink using the Prometheus client library.
// Registration errors are logged but never propagated.
type PrometheusSink struct {
	logger *slog.Logger

	requestsTotal   *prometheus.CounterVec
	requestDuration prometheus.Histogram
	requestedDays   prometheus.Histogram
	slotsReturned   prometheus.Histogram

	fallbacksTotal   *prometheus.CounterVec
	cacheTotal       *prometheus.CounterVec
	invalidatedTotal *prometheus.CounterVec
}

func NewPrometheusSink(reg prometheus.Registerer, logger *slog.Logger) *PrometheusSink {
	s := &PrometheusSink{logger: logger}
	s.initRequestMetrics(reg)
	s.initSourceMetrics(reg)
	return s
}

func (s *PrometheusSink) initRequestMetrics(reg prometheus.Registerer) {
	s.requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "availability_timetable_requests_total",
		Help: "Total number of timetable computations by outcome.",
	}, []string{"outcome"})
	s.requestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "availability_timetable_duration_seconds",
		Help:    "Time spent computing a timetable response, including data loads.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
	})
	s.requestedDays = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "availability_timetable_days",
		Help:    "Number of days requested per computation.",
		Buckets: []float64{1, 2, 7, 14, 31, 62},
	})
	s.slotsReturned = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "availability_slots_returned",
		Help:    "Number of free slots returned per computation.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})

	s.register(reg, s.requestsTotal, "availability_timetable_requests_total")
	s.register(reg, s.requestDuration, "availability_timetable_duration_seconds")
	s.register(reg, s.requestedDays, "availability_timetable_days")
	s.register(reg, s.slotsReturned, "availability_slots_returned")
}

func (s *PrometheusSink) initSourceMetrics(reg prometheus.Registerer) {
	s.fallbacksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "availability_datasource_fallbacks_total",
		Help: "Data source loads that failed and were replaced by an empty set.",
	}, []string{"source"})
	s.cacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "availability_snapshot_cache_total",
		Help: "Snapshot cache lookups by result.",
	}, []string{"hit"})
	s.invalidatedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "availability_snapshot_invalidations_total",
		Help: "Snapshot invalidations triggered by the booking feed.",
	}, []string{"topic"})

	s.register(reg, s.fallbacksTotal, "availability_datasource_fallbacks_total")
	s.register(reg, s.cacheTotal, "availability_snapshot_cache_total")
	s.register(reg, s.invalidatedTotal, "availability_snapshot_invalidations_total")
}

func (s *PrometheusSink) register(reg prometheus.Registerer, c prometheus.Collector, name string) {
	if err := reg.Register(c); err != nil && s.logger != nil {
		s.logger.Warn("metrics: failed to register collector", "name", name, "err", err)
	}
}

func (s *PrometheusSink) TimetableRequest(outcome string, duration time.Duration, days int) {
	s.requestsTotal.WithLabelValues(outcome).Inc()
	s.requestDuration.Observe(duration.Seconds())
	if days > 0 {
		s.requestedDays.Observe(float64(days))
	}
}

func (s *PrometheusSink) SlotsReturned(count int) {
	s.slotsReturned.Observe(float64(count))
}

func (s *PrometheusSink) DataSourceFallback(source string) {
	s.fallbacksTotal.WithLabelValues(source).Inc()
}

func (s *PrometheusSink) SnapshotCache(hit bool) {
	s.cacheTotal.WithLabelValues(strconv.FormatBool(hit)).Inc()
}

func (s *PrometheusSink) SnapshotInvalidated(topic string) {
	s.invalidatedTotal.WithLabelValues(topic).Inc()
}
