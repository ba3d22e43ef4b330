package availability

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/md-rashed-zaman/apptslots/libs/metrics"
	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/timezone"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// EventSource loads the existing bookings.
type EventSource interface {
	LoadEvents(ctx context.Context) ([]Event, error)
}

// WorkhourSource loads the per-weekday working hours.
type WorkhourSource interface {
	LoadWorkhours(ctx context.Context) ([]WorkhourRule, error)
}

// Source provides both data sets.
type Source interface {
	EventSource
	WorkhourSource
}

type Options struct {
	// ReferenceDate (YYYYMMDD) pins "today" for day modifiers. Empty means the live clock.
	ReferenceDate string
	Now           func() time.Time
	Metrics       metrics.Sink
}

type Service struct {
	source    Source
	logger    *slog.Logger
	metrics   metrics.Sink
	formatter *timezone.Formatter
	tracer    trace.Tracer
	now       func() time.Time

	reference    CivilDate
	hasReference bool
}

func NewService(source Source, logger *slog.Logger, opts Options) (*Service, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &Service{
		source:    source,
		logger:    logger,
		metrics:   opts.Metrics,
		formatter: timezone.NewFormatter(logger),
		tracer:    otel.Tracer("availability"),
		now:       opts.Now,
	}
	if s.metrics == nil {
		s.metrics = metrics.NewNoopSink()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if opts.ReferenceDate != "" {
		ref, err := ParseDayIdentifier(opts.ReferenceDate)
		if err != nil {
			return nil, fmt.Errorf("reference date: %w", err)
		}
		s.reference = ref
		s.hasReference = true
	}
	return s, nil
}

// Timetables computes one DayTimetable per requested day, in ascending day order.
// Validation errors wrap timezone.ErrInvalidTimezone, ErrInvalidDateIdentifier or
// ErrInvalidParameter. Data-source failures never fail the request.
func (s *Service) Timetables(ctx context.Context, req Request) ([]DayTimetable, error) {
	started := time.Now()
	ctx, span := s.tracer.Start(ctx, "availability.timetables", trace.WithAttributes(
		attribute.String("availability.start_day", req.StartDayIdentifier),
		attribute.String("availability.timezone", req.TimezoneIdentifier),
		attribute.Int("availability.days", req.Days),
	))
	defer span.End()

	days, err := s.timetables(ctx, req)
	outcome := metrics.OutcomeOK
	if err != nil {
		outcome = metrics.OutcomeError
		if IsValidationError(err) {
			outcome = metrics.OutcomeInvalid
		}
		span.RecordError(err)
	} else {
		slots := 0
		for _, d := range days {
			slots += len(d.Timeslots)
		}
		s.metrics.SlotsReturned(slots)
		span.SetAttributes(attribute.Int("availability.slots", slots))
	}
	s.metrics.TimetableRequest(outcome, time.Since(started), req.Days)
	return days, err
}

func (s *Service) timetables(ctx context.Context, req Request) ([]DayTimetable, error) {
	logger := LoggerFromContext(ctx, s.logger)

	loc, err := timezone.Load(req.TimezoneIdentifier)
	if err != nil {
		return nil, err
	}
	start, err := ParseDayIdentifier(req.StartDayIdentifier)
	if err != nil {
		return nil, err
	}
	if req.ServiceDuration <= 0 {
		return nil, fmt.Errorf("%w: service_duration must be positive", ErrInvalidParameter)
	}
	if req.TimeslotInterval <= 0 {
		return nil, fmt.Errorf("%w: timeslot_interval must be positive", ErrInvalidParameter)
	}
	if req.Days < 0 {
		return nil, fmt.Errorf("%w: days must not be negative", ErrInvalidParameter)
	}
	if req.Days == 0 {
		return []DayTimetable{}, nil
	}

	events, rules := s.load(ctx, logger, req)

	today := s.today(loc)
	plan := dayPlan{
		loc:            loc,
		rules:          rules,
		events:         events,
		duration:       req.ServiceDuration,
		interval:       req.TimeslotInterval,
		ignoreWorkhour: req.IgnoreWorkhour,
	}

	out := make([]DayTimetable, 0, req.Days)
	for i := 0; i < req.Days; i++ {
		startOfDay := start.AddDays(i).Instant(loc)
		out = append(out, plan.build(startOfDay, DayModifier(startOfDay, today)))
	}

	logger.Debug("timetables computed",
		"start_date", s.formatter.FormatDate(start.Instant(loc), req.TimezoneIdentifier),
		"timezone", req.TimezoneIdentifier,
		"days", req.Days,
		"events", len(events),
		"workhour_rules", len(rules),
	)
	return out, nil
}

// load fetches both data sets concurrently. Failures degrade to empty sets.
func (s *Service) load(ctx context.Context, logger *slog.Logger, req Request) ([]TimeInterval, Workhours) {
	var (
		g      errgroup.Group
		events []TimeInterval
		rules  Workhours
	)
	if !req.IgnoreSchedule {
		g.Go(func() error {
			loaded, err := s.source.LoadEvents(ctx)
			if err != nil {
				logger.Warn("events unavailable; continuing without schedule", "source", metrics.SourceEvents, "err", err)
				s.metrics.DataSourceFallback(metrics.SourceEvents)
				return nil
			}
			events = sanitizeEvents(logger, loaded)
			return nil
		})
	}
	if !req.IgnoreWorkhour {
		g.Go(func() error {
			loaded, err := s.source.LoadWorkhours(ctx)
			if err != nil {
				logger.Warn("work hours unavailable; continuing without work hours", "source", metrics.SourceWorkhours, "err", err)
				s.metrics.DataSourceFallback(metrics.SourceWorkhours)
				return nil
			}
			rules = sanitizeWorkhours(logger, loaded)
			return nil
		})
	}
	_ = g.Wait()
	return events, rules
}

// today returns local midnight of the reference day in loc.
func (s *Service) today(loc *time.Location) time.Time {
	if s.hasReference {
		return s.reference.Instant(loc)
	}
	return timezone.LocalMidnight(s.now(), loc)
}

// DayModifier is the signed whole-day distance from today to day.
func DayModifier(day, today time.Time) int {
	return int(math.Round(float64(day.Unix()-today.Unix()) / secondsPerDay))
}

func sanitizeEvents(logger *slog.Logger, events []Event) []TimeInterval {
	out := make([]TimeInterval, 0, len(events))
	for _, e := range events {
		iv := e.Interval()
		if !iv.Valid() {
			logger.Debug("dropping invalid event", "begin_at", e.BeginAt, "end_at", e.EndAt)
			continue
		}
		out = append(out, iv)
	}
	return out
}

func sanitizeWorkhours(logger *slog.Logger, rules []WorkhourRule) Workhours {
	out := make(Workhours, 0, len(rules))
	for _, r := range rules {
		if r.Weekday < 1 || r.Weekday > 7 {
			logger.Warn("ignoring work hour rule with invalid weekday", "weekday", r.Weekday)
			continue
		}
		if !r.IsDayOff && (r.OpenInterval < 0 || r.OpenInterval >= r.CloseInterval || r.CloseInterval > secondsPerDay) {
			logger.Warn("work hour rule outside 0 <= open < close <= 86400",
				"weekday", r.Weekday,
				"open_interval", r.OpenInterval,
				"close_interval", r.CloseInterval,
			)
		}
		out = append(out, r)
	}
	return out
}
