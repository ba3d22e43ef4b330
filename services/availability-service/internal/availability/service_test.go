package availability

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/md-rashed-zaman/apptslots/services/availability-service/internal/timezone"
)

type fakeSource struct {
	events       []Event
	rules        []WorkhourRule
	eventsErr    error
	workhoursErr error
	eventCalls   int
	ruleCalls    int
}

func (f *fakeSource) LoadEvents(context.Context) ([]Event, error) {
	f.eventCalls++
	return f.events, f.eventsErr
}

func (f *fakeSource) LoadWorkhours(context.Context) ([]WorkhourRule, error) {
	f.ruleCalls++
	return f.rules, f.workhoursErr
}

func newTestService(t *testing.T, src Source) *Service {
	t.Helper()
	svc, err := NewService(src, slog.New(slog.NewTextHandler(io.Discard, nil)), Options{ReferenceDate: "20230925"})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func baseRequest() Request {
	return Request{
		StartDayIdentifier: "20231001",
		TimezoneIdentifier: "UTC",
		ServiceDuration:    3600,
		Days:               1,
		TimeslotInterval:   1800,
		IgnoreSchedule:     true,
		IgnoreWorkhour:     true,
	}
}

func TestTimetables_UTCIgnoringEverything(t *testing.T) {
	src := &fakeSource{}
	days, err := newTestService(t, src).Timetables(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("Timetables: %v", err)
	}
	if len(days) != 1 {
		t.Fatalf("expected 1 day, got %d", len(days))
	}
	d := days[0]
	if d.StartOfDay != 1696118400 || d.IsDayOff {
		t.Fatalf("unexpected day header %+v", d)
	}
	if d.DayModifier != 6 {
		t.Fatalf("day modifier = %d, want 6", d.DayModifier)
	}
	if d.Timeslots[0] != (TimeInterval{BeginAt: 1696118400, EndAt: 1696122000}) {
		t.Fatalf("first slot %+v", d.Timeslots[0])
	}
	if d.Timeslots[1] != (TimeInterval{BeginAt: 1696120200, EndAt: 1696123800}) {
		t.Fatalf("second slot %+v", d.Timeslots[1])
	}
	if src.eventCalls != 0 || src.ruleCalls != 0 {
		t.Fatalf("ignored data sets must not be loaded")
	}
}

func TestTimetables_MultipleDays(t *testing.T) {
	req := baseRequest()
	req.Days = 3
	days, err := newTestService(t, &fakeSource{}).Timetables(context.Background(), req)
	if err != nil {
		t.Fatalf("Timetables: %v", err)
	}
	if len(days) != 3 {
		t.Fatalf("expected 3 days, got %d", len(days))
	}
	for i, d := range days {
		if d.DayModifier != days[0].DayModifier+i {
			t.Fatalf("day %d modifier %d not consecutive", i, d.DayModifier)
		}
		if d.StartOfDay != days[0].StartOfDay+int64(i)*86400 {
			t.Fatalf("day %d start %d not spaced by 86400", i, d.StartOfDay)
		}
	}
}

func TestTimetables_SlotProperties(t *testing.T) {
	req := baseRequest()
	req.IgnoreSchedule = false
	req.IgnoreWorkhour = false
	req.Days = 7
	req.ServiceDuration = 2700
	req.TimeslotInterval = 900
	src := &fakeSource{
		events: []Event{
			{BeginAt: 1696125600, EndAt: 1696129200},
			{BeginAt: 1696129200, EndAt: 1696129200}, // invalid, dropped
		},
		rules: []WorkhourRule{
			{Weekday: 1, OpenInterval: 36000, CloseInterval: 72000},
			{Weekday: 2, OpenInterval: 0, CloseInterval: 86400},
			{Weekday: 7, IsDayOff: true},
		},
	}
	days, err := newTestService(t, src).Timetables(context.Background(), req)
	if err != nil {
		t.Fatalf("Timetables: %v", err)
	}
	event := TimeInterval{BeginAt: 1696125600, EndAt: 1696129200}
	for _, d := range days {
		if d.IsDayOff && len(d.Timeslots) != 0 {
			t.Fatalf("day off with slots: %+v", d)
		}
		for i, s := range d.Timeslots {
			if s.EndAt-s.BeginAt != req.ServiceDuration {
				t.Fatalf("slot %+v has wrong length", s)
			}
			if Overlaps(s, event) {
				t.Fatalf("slot %+v overlaps the event", s)
			}
			if i > 0 && (s.BeginAt-d.Timeslots[i-1].BeginAt)%req.TimeslotInterval != 0 {
				t.Fatalf("slot %+v is off the interval grid", s)
			}
		}
	}
	// Sunday 2023-10-01: 10:00..20:00 window.
	for _, s := range days[0].Timeslots {
		if s.BeginAt < 1696118400+36000 || s.EndAt > 1696118400+72000 {
			t.Fatalf("slot %+v outside work hours", s)
		}
	}
	// Saturday 2023-10-07 is the last day and is off.
	if !days[6].IsDayOff {
		t.Fatalf("expected Saturday off, got %+v", days[6])
	}
}

func TestTimetables_DataSourceFailuresDegrade(t *testing.T) {
	req := baseRequest()
	req.IgnoreSchedule = false
	req.IgnoreWorkhour = false
	src := &fakeSource{eventsErr: errors.New("file missing"), workhoursErr: errors.New("corrupt")}

	days, err := newTestService(t, src).Timetables(context.Background(), req)
	if err != nil {
		t.Fatalf("data source failures must not fail the request: %v", err)
	}
	if len(days[0].Timeslots) != 46 {
		t.Fatalf("expected the unconstrained full day (46 slots), got %d", len(days[0].Timeslots))
	}
}

func TestTimetables_Validation(t *testing.T) {
	svc := newTestService(t, &fakeSource{})
	cases := []struct {
		name   string
		mutate func(*Request)
		want   error
	}{
		{"empty timezone", func(r *Request) { r.TimezoneIdentifier = "" }, timezone.ErrInvalidTimezone},
		{"unknown timezone", func(r *Request) { r.TimezoneIdentifier = "Atlantis/Capital" }, timezone.ErrInvalidTimezone},
		{"short date", func(r *Request) { r.StartDayIdentifier = "2023101" }, ErrInvalidDateIdentifier},
		{"non numeric", func(r *Request) { r.StartDayIdentifier = "2023-10-" }, ErrInvalidDateIdentifier},
		{"signed", func(r *Request) { r.StartDayIdentifier = "+2023101" }, ErrInvalidDateIdentifier},
		{"impossible date", func(r *Request) { r.StartDayIdentifier = "20230230" }, ErrInvalidDateIdentifier},
		{"zero duration", func(r *Request) { r.ServiceDuration = 0 }, ErrInvalidParameter},
		{"zero interval", func(r *Request) { r.TimeslotInterval = 0 }, ErrInvalidParameter},
		{"negative days", func(r *Request) { r.Days = -1 }, ErrInvalidParameter},
	}
	for _, c := range cases {
		req := baseRequest()
		c.mutate(&req)
		if _, err := svc.Timetables(context.Background(), req); !errors.Is(err, c.want) {
			t.Fatalf("%s: expected %v, got %v", c.name, c.want, err)
		}
	}
}

func TestTimetables_TimezoneValidatedBeforeDate(t *testing.T) {
	req := baseRequest()
	req.TimezoneIdentifier = "Nope/Nope"
	req.StartDayIdentifier = "bad"
	_, err := newTestService(t, &fakeSource{}).Timetables(context.Background(), req)
	if !errors.Is(err, timezone.ErrInvalidTimezone) {
		t.Fatalf("expected timezone error first, got %v", err)
	}
}

func TestTimetables_ZeroDays(t *testing.T) {
	req := baseRequest()
	req.Days = 0
	days, err := newTestService(t, &fakeSource{}).Timetables(context.Background(), req)
	if err != nil || days == nil || len(days) != 0 {
		t.Fatalf("expected empty result, got %v, %v", days, err)
	}
}

func TestTimetables_TimezoneSensitivity(t *testing.T) {
	svc := newTestService(t, &fakeSource{})
	utc, err := svc.Timetables(context.Background(), baseRequest())
	if err != nil {
		t.Fatalf("utc: %v", err)
	}
	req := baseRequest()
	req.TimezoneIdentifier = "America/New_York"
	ny, err := svc.Timetables(context.Background(), req)
	if err != nil {
		t.Fatalf("ny: %v", err)
	}
	if ny[0].StartOfDay-utc[0].StartOfDay != 4*3600 {
		t.Fatalf("expected a 4h shift, got %d", ny[0].StartOfDay-utc[0].StartOfDay)
	}
	if ny[0].DayModifier != utc[0].DayModifier {
		t.Fatalf("day modifiers should match across zones")
	}
}

func TestTimetables_Idempotent(t *testing.T) {
	req := baseRequest()
	req.IgnoreSchedule = false
	req.IgnoreWorkhour = false
	req.Days = 5
	src := &fakeSource{
		events: []Event{{BeginAt: 1696125600, EndAt: 1696129200}},
		rules:  []WorkhourRule{{Weekday: 3, OpenInterval: 3600, CloseInterval: 7200}},
	}
	svc := newTestService(t, src)
	first, err := svc.Timetables(context.Background(), req)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.Timetables(context.Background(), req)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("results differ between identical requests")
	}
}

func TestTimetables_LiveClockReference(t *testing.T) {
	now := time.Date(2023, time.October, 3, 23, 30, 0, 0, time.UTC)
	svc, err := NewService(&fakeSource{}, nil, Options{Now: func() time.Time { return now }})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	req := baseRequest()
	req.TimezoneIdentifier = "Asia/Tokyo" // already Oct 4 there
	days, err := svc.Timetables(context.Background(), req)
	if err != nil {
		t.Fatalf("Timetables: %v", err)
	}
	if days[0].DayModifier != -3 {
		t.Fatalf("day modifier = %d, want -3", days[0].DayModifier)
	}
}

func TestNewService_InvalidReferenceDate(t *testing.T) {
	if _, err := NewService(&fakeSource{}, nil, Options{ReferenceDate: "2023"}); !errors.Is(err, ErrInvalidDateIdentifier) {
		t.Fatalf("expected ErrInvalidDateIdentifier, got %v", err)
	}
}

func TestDayModifier_AcrossDST(t *testing.T) {
	loc := mustLoad(t, "Europe/Berlin")
	today := timezone.CivilDateToInstant(2023, time.October, 28, loc)
	for i := 0; i < 4; i++ {
		day := timezone.CivilDateToInstant(2023, time.October, 28+i, loc)
		if got := DayModifier(day, today); got != i {
			t.Fatalf("DayModifier(+%d) = %d", i, got)
		}
	}
}

func TestIsValidationError(t *testing.T) {
	if !IsValidationError(fmt.Errorf("wrapped: %w", ErrInvalidParameter)) {
		t.Fatalf("wrapped parameter error should be a validation error")
	}
	if IsValidationError(context.Canceled) {
		t.Fatalf("context errors are not validation errors")
	}
}

type recordingSink struct {
	outcomes  []string
	fallbacks []string
	slots     int
}

func (r *recordingSink) TimetableRequest(outcome string, _ time.Duration, _ int) {
	r.outcomes = append(r.outcomes, outcome)
}
func (r *recordingSink) SlotsReturned(count int)          { r.slots += count }
func (r *recordingSink) DataSourceFallback(source string) { r.fallbacks = append(r.fallbacks, source) }
func (r *recordingSink) SnapshotCache(bool)               {}
func (r *recordingSink) SnapshotInvalidated(string)       {}

func TestTimetables_RecordsMetrics(t *testing.T) {
	sink := &recordingSink{}
	svc, err := NewService(&fakeSource{eventsErr: errors.New("gone")}, nil, Options{ReferenceDate: "20231001", Metrics: sink})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	req := baseRequest()
	req.IgnoreSchedule = false
	if _, err := svc.Timetables(context.Background(), req); err != nil {
		t.Fatalf("Timetables: %v", err)
	}
	req.TimezoneIdentifier = "bogus"
	_, _ = svc.Timetables(context.Background(), req)

	if !reflect.DeepEqual(sink.outcomes, []string{"ok", "invalid"}) {
		t.Fatalf("unexpected outcomes %v", sink.outcomes)
	}
	if !reflect.DeepEqual(sink.fallbacks, []string{"events"}) {
		t.Fatalf("unexpected fallbacks %v", sink.fallbacks)
	}
	if sink.slots != 46 {
		t.Fatalf("expected 46 slots recorded, got %d", sink.slots)
	}
}
