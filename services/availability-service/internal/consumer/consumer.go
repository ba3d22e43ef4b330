package consumer

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/md-rashed-zaman/apptslots/libs/kafkax"
	"github.com/md-rashed-zaman/apptslots/libs/metrics"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Invalidator drops cached availability data.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// Consumer listens to booking events and invalidates the snapshot cache so the
// next timetable request sees the new schedule.
type Consumer struct {
	reader  messageReader
	logger  *slog.Logger
	cache   Invalidator
	metrics metrics.Sink
}

type Config struct {
	Brokers []string
	GroupID string
	Topics  []string
}

func New(logger *slog.Logger, cache Invalidator, sink metrics.Sink, cfg Config) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		GroupTopics: cfg.Topics,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
	return newConsumer(reader, logger, cache, sink)
}

func newConsumer(reader messageReader, logger *slog.Logger, cache Invalidator, sink metrics.Sink) *Consumer {
	if sink == nil {
		sink = metrics.NewNoopSink()
	}
	return &Consumer{reader: reader, logger: logger, cache: cache, metrics: sink}
}

func (c *Consumer) Run(ctx context.Context) {
	defer c.reader.Close()

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Error("kafka read error", "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		c.handle(ctx, msg)
	}
}

// bookingEvent is the subset of a booking event the consumer checks before acting.
type bookingEvent struct {
	AppointmentID string `json:"appointment_id"`
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	ctxMsg := kafkax.ExtractTraceContext(ctx, msg)
	ctxSpan, span := otel.Tracer("kafka").Start(ctxMsg, "kafka.consume",
		trace.WithAttributes(
			attribute.String("messaging.system", "kafka"),
			attribute.String("messaging.destination", msg.Topic),
		),
	)
	defer span.End()

	meta := kafkax.ExtractEventMeta(msg)
	logger := c.logger.With("event_id", meta.EventID, "event_type", meta.EventType)
	if meta.RequestID != "" {
		logger = logger.With("request_id", meta.RequestID)
	}

	var evt bookingEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		logger.Warn("skipping malformed booking event", "err", err)
		return
	}

	if err := c.cache.Invalidate(ctxSpan); err != nil {
		logger.Error("snapshot invalidation failed", "err", err)
		span.RecordError(err)
		return
	}
	c.metrics.SnapshotInvalidated(msg.Topic)
	logger.Debug("snapshot invalidated", "appointment_id", evt.AppointmentID)
}
